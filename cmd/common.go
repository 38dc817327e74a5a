/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/valpere/xmlmessage/internal/catalog"
	"github.com/valpere/xmlmessage/internal/store"
	"github.com/valpere/xmlmessage/pkg/ui"
	"github.com/valpere/xmlmessage/pkg/xmlmsg"
)

func openStore() (*store.Store, error) {
	db, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// primaryLocale is the most preferred configured locale.
func primaryLocale() string {
	if len(cfg.Locales) > 0 {
		return cfg.Locales[0]
	}
	return cfg.DefaultLocale
}

// buildEngine loads the message files directory and the catalog database
// into a formatting engine for the configured locales.
func buildEngine(ctx context.Context, db *store.Store) (*catalog.Engine, error) {
	engine := catalog.New(cfg.DefaultTag(),
		catalog.WithLogger(logger),
		catalog.WithLocales(cfg.Locales...),
	)

	if cfg.MessagesDir != "" {
		n, err := engine.LoadDir(cfg.MessagesDir)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded message files", "dir", cfg.MessagesDir, "files", n)
	}

	n, err := engine.LoadStore(ctx, db)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded stored messages", "count", n)
	return engine, nil
}

func buildFormatter(engine xmlmsg.Engine) *xmlmsg.Formatter {
	opts := []xmlmsg.Option{
		xmlmsg.WithLogger(logger),
		xmlmsg.WithTextContainer(containerType(cfg.TextContainer)),
	}
	if len(cfg.PrimitiveKinds) > 0 {
		opts = append(opts, xmlmsg.WithPrimitiveKinds(cfg.PrimitiveKinds...))
	}
	return xmlmsg.New(engine, opts...)
}

func containerType(name string) ui.Type {
	if name == "fragment" {
		return ui.Fragment
	}
	return ui.Tag(name)
}

// parseScalar reads integers, floats and booleans as such so the engine can
// format them; anything else stays a string.
func parseScalar(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// parseValues turns name=value pairs into values, keeping flag order.
func parseValues(pairs []string) (xmlmsg.Values, error) {
	var values xmlmsg.Values
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid value %q: want name=value", p)
		}
		values = append(values, xmlmsg.V(name, parseScalar(value)))
	}
	return values, nil
}

// parseTags builds tag mappings from name=kind pairs and name.prop=value
// defaults. A tag with default props maps to an element of its kind.
func parseTags(mappings, props []string) (xmlmsg.Tags, error) {
	kinds := map[string]string{}
	for _, m := range mappings {
		name, kind, ok := strings.Cut(m, "=")
		if !ok || name == "" || kind == "" {
			return nil, fmt.Errorf("invalid tag %q: want name=kind", m)
		}
		kinds[name] = kind
	}

	defaults := map[string]ui.Props{}
	for _, p := range props {
		key, value, ok := strings.Cut(p, "=")
		name, prop, dotted := strings.Cut(key, ".")
		if !ok || !dotted || name == "" || prop == "" {
			return nil, fmt.Errorf("invalid tag prop %q: want name.prop=value", p)
		}
		if defaults[name] == nil {
			defaults[name] = ui.Props{}
		}
		defaults[name][prop] = value
	}

	tags := xmlmsg.Tags{}
	for name, kind := range kinds {
		tags[name] = ui.Tag(kind)
	}
	for name, p := range defaults {
		kind, ok := kinds[name]
		if !ok {
			kind = name
		}
		tags[name] = ui.NewElement(ui.Tag(kind), p)
	}
	return tags, nil
}
