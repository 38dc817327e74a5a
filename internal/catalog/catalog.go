// Package catalog is the message formatting engine: a go-i18n bundle filled
// from message files and the sqlite store, formatting ICU arguments.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"github.com/valpere/xmlmessage/internal/icu"
	"github.com/valpere/xmlmessage/internal/logging"
	"github.com/valpere/xmlmessage/internal/store"
	"github.com/valpere/xmlmessage/pkg/xmlmsg"
)

// ErrMessageNotFound is returned when no locale in the chain has the message
// and the descriptor carries no default.
var ErrMessageNotFound = errors.New("catalog: message not found")

// Ensure Engine implements the formatting engine contract.
var _ xmlmsg.Engine = (*Engine)(nil)

var unmarshalFuncs = map[string]i18n.UnmarshalFunc{
	"toml": toml.Unmarshal,
}

// Engine formats messages for a preferred locale list, falling back to the
// bundle's default language. Load messages before sharing an Engine between
// goroutines; formatting itself only reads the bundle.
type Engine struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
	locales         []string
	logger          *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for fallback and load diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithLocales sets the preferred locales, most preferred first.
func WithLocales(locales ...string) Option {
	return func(e *Engine) { e.locales = locales }
}

// New returns an Engine whose bundle falls back to defaultLanguage.
func New(defaultLanguage language.Tag, opts ...Option) *Engine {
	bundle := i18n.NewBundle(defaultLanguage)
	for format, fn := range unmarshalFuncs {
		bundle.RegisterUnmarshalFunc(format, fn)
	}

	e := &Engine{
		bundle:          bundle,
		defaultLanguage: defaultLanguage,
		logger:          logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// In returns a copy of e that prefers locales. The bundle is shared.
func (e *Engine) In(locales ...string) *Engine {
	c := *e
	c.locales = locales
	return &c
}

// DefaultLanguage returns the bundle's fallback language.
func (e *Engine) DefaultLanguage() language.Tag { return e.defaultLanguage }

// LanguageTags returns the languages that have messages, sorted.
func (e *Engine) LanguageTags() []string {
	var tags []string
	for _, t := range e.bundle.LanguageTags() {
		tags = append(tags, t.String())
	}
	sort.Strings(tags)
	return tags
}

// LoadFile loads a go-i18n message file (TOML or JSON). The language comes
// from the file name, e.g. active.fr.toml.
func (e *Engine) LoadFile(path string) error {
	if _, err := e.bundle.LoadMessageFile(path); err != nil {
		return fmt.Errorf("catalog: load %s: %w", path, err)
	}
	return nil
}

// LoadDir loads every *.toml and *.json file in dir and returns how many
// files were loaded.
func (e *Engine) LoadDir(dir string) (int, error) {
	var paths []string
	for _, pattern := range []string{"*.toml", "*.json"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return 0, err
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	for i, p := range paths {
		if err := e.LoadFile(p); err != nil {
			return i, err
		}
		e.logger.Debug("loaded message file", "path", p)
	}
	return len(paths), nil
}

// LoadStore adds every stored message to the bundle and returns the count.
func (e *Engine) LoadStore(ctx context.Context, s *store.Store) (int, error) {
	msgs, err := s.List(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("catalog: list stored messages: %w", err)
	}

	byLocale := map[string][]*i18n.Message{}
	for _, m := range msgs {
		byLocale[m.Locale] = append(byLocale[m.Locale], ToI18n(m))
	}

	for locale, ms := range byLocale {
		tag, err := language.Parse(locale)
		if err != nil {
			return 0, fmt.Errorf("catalog: stored locale %q: %w", locale, err)
		}
		if err := e.bundle.AddMessages(tag, ms...); err != nil {
			return 0, fmt.Errorf("catalog: add %s messages: %w", locale, err)
		}
	}
	return len(msgs), nil
}

// AddMessages adds messages for tag.
func (e *Engine) AddMessages(tag language.Tag, msgs ...*i18n.Message) error {
	return e.bundle.AddMessages(tag, msgs...)
}

// FormatMessage implements xmlmsg.Engine. A message missing from every
// locale falls back to d.DefaultMessage when set.
func (e *Engine) FormatMessage(d xmlmsg.Descriptor, values map[string]any) (string, error) {
	languages := append(append([]string{}, e.locales...), e.defaultLanguage.String())
	localizer := i18n.NewLocalizer(e.bundle, languages...)

	lc := &i18n.LocalizeConfig{
		MessageID:      d.ID,
		TemplateData:   values,
		PluralCount:    d.PluralCount,
		TemplateParser: icu.NewParser(e.formatTag()),
	}
	if d.DefaultMessage != "" {
		lc.DefaultMessage = &i18n.Message{
			ID:          d.ID,
			Description: d.Description,
			Other:       d.DefaultMessage,
		}
	}

	msg, tag, err := localizer.LocalizeWithTag(lc)

	var notFound *i18n.MessageNotFoundErr
	if errors.As(err, &notFound) {
		if tag == language.Und {
			return "", fmt.Errorf("%w: %s (locales %v)", ErrMessageNotFound, d.ID, languages)
		}
		e.logger.Debug("message not in preferred locale, using fallback",
			"id", d.ID,
			"locales", languages,
			"resolved", tag.String())
		// localize again in the resolved language so template errors surface
		msg, _, err = i18n.NewLocalizer(e.bundle, tag.String()).LocalizeWithTag(lc)
	}
	if err == nil {
		return msg, nil
	}

	// a missing plural form falls back to the "other" form
	if msg != "" {
		e.logger.Debug("plural form missing, using other",
			"id", d.ID,
			"plural_count", d.PluralCount,
			"error", err)
		return msg, nil
	}
	return "", fmt.Errorf("catalog: localize %s: %w", d.ID, err)
}

// formatTag is the locale used for number formatting: the first preferred
// locale that parses, else the default language.
func (e *Engine) formatTag() language.Tag {
	for _, l := range e.locales {
		if tag, err := language.Parse(l); err == nil {
			return tag
		}
	}
	return e.defaultLanguage
}

// ReadFile parses a go-i18n message file without loading it.
func ReadFile(path string) (*i18n.MessageFile, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mf, err := i18n.ParseMessageFileBytes(buf, path, unmarshalFuncs)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	return mf, nil
}

// ToI18n converts a stored message.
func ToI18n(m store.Message) *i18n.Message {
	return &i18n.Message{
		ID:          m.ID,
		Description: m.Description,
		Zero:        m.Zero,
		One:         m.One,
		Two:         m.Two,
		Few:         m.Few,
		Many:        m.Many,
		Other:       m.Other,
	}
}

// FromI18n converts a go-i18n message for storage under locale.
func FromI18n(locale string, m *i18n.Message) store.Message {
	return store.Message{
		ID:          m.ID,
		Locale:      locale,
		Description: m.Description,
		Zero:        m.Zero,
		One:         m.One,
		Two:         m.Two,
		Few:         m.Few,
		Many:        m.Many,
		Other:       m.Other,
	}
}
