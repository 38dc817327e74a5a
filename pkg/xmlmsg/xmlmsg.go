// Package xmlmsg formats localized messages that contain XML tags into ui
// node trees.
//
// A message such as
//
//	Hey check out my <blog-link href="https://my-blog.fr">blog</blog-link>, {name}!
//
// is resolved by a formatting Engine, parsed as strict XML and rebuilt with
// every tag replaced according to Tags. Interpolation values never reach the
// XML parser: strings, elements and other non-primitive values are swapped
// for randomly named marker tags before formatting and restored afterwards,
// so user-supplied text that looks like markup stays text.
package xmlmsg

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/valpere/xmlmessage/internal/logging"
	"github.com/valpere/xmlmessage/internal/placeholder"
	"github.com/valpere/xmlmessage/internal/transform"
	"github.com/valpere/xmlmessage/pkg/markup"
	"github.com/valpere/xmlmessage/pkg/ui"
)

// ErrNoRoot is returned when the parsed document has no root element.
var ErrNoRoot = errors.New("xmlmsg: parsed message has no root element")

// Descriptor identifies a message. It is handed to the Engine unchanged.
type Descriptor struct {
	ID             string
	DefaultMessage string
	Description    string

	// PluralCount selects the plural form when the engine supports it.
	PluralCount any

	// Meta carries engine-specific metadata.
	Meta map[string]any
}

// Value is a single interpolation value.
type Value struct {
	Key   string
	Value any
}

// Values is an ordered list of interpolation values. The order fixes the
// marker index of each value.
type Values []Value

// V is shorthand for a Value.
func V(key string, value any) Value { return Value{Key: key, Value: value} }

// ValuesFromMap returns m as Values in sorted key order.
func ValuesFromMap(m map[string]any) Values {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	vs := make(Values, 0, len(keys))
	for _, k := range keys {
		vs = append(vs, Value{Key: k, Value: m[k]})
	}
	return vs
}

// Tags maps tag names to replacements. Accepted replacements are a tag name
// (ui.Tag or string), a *ui.Component, or a pre-built *ui.Element whose props
// act as defaults under the attributes written in the message.
type Tags map[string]any

// Request is one formatting call.
type Request struct {
	Descriptor
	Tags   Tags
	Values Values
}

// Engine resolves a descriptor to a message string with values substituted.
// Values that are marker strings must be inserted verbatim.
type Engine interface {
	FormatMessage(d Descriptor, values map[string]any) (string, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(d Descriptor, values map[string]any) (string, error)

func (f EngineFunc) FormatMessage(d Descriptor, values map[string]any) (string, error) {
	return f(d, values)
}

// Formatter turns requests into node trees. It is safe for concurrent use
// when its Engine is.
type Formatter struct {
	engine         Engine
	parser         markup.Parser
	provider       *markup.Provider
	logger         *slog.Logger
	container      ui.Type
	primitiveKinds map[string]bool
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithParser uses p for every call instead of resolving one from a provider.
func WithParser(p markup.Parser) Option {
	return func(f *Formatter) { f.parser = p }
}

// WithProvider resolves the parser from p. The default is
// markup.DefaultProvider.
func WithProvider(p *markup.Provider) Option {
	return func(f *Formatter) { f.provider = p }
}

// WithLogger receives per-node diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(f *Formatter) { f.logger = l }
}

// WithTextContainer sets the type of the element wrapping the output. The
// default is ui.Tag("span").
func WithTextContainer(t ui.Type) Option {
	return func(f *Formatter) { f.container = t }
}

// WithPrimitiveKinds restricts unmapped tags to names. Without it any
// unmapped tag name becomes an element of that name.
func WithPrimitiveKinds(names ...string) Option {
	return func(f *Formatter) {
		f.primitiveKinds = make(map[string]bool, len(names))
		for _, n := range names {
			f.primitiveKinds[n] = true
		}
	}
}

// New returns a Formatter backed by engine.
func New(engine Engine, opts ...Option) *Formatter {
	f := &Formatter{
		engine:    engine,
		provider:  markup.DefaultProvider(),
		logger:    logging.Nop(),
		container: ui.Tag("span"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats req and returns the tree wrapped in the text container.
// Engine and parser failures are returned as is, wrapped; no partial tree is
// produced.
func (f *Formatter) Format(req Request) (*ui.Element, error) {
	tagName := placeholder.NewTagName()

	original := make([]any, len(req.Values))
	for i, v := range req.Values {
		original[i] = v.Value
	}
	safe, encoded := placeholder.Encode(original, tagName)

	safeValues := make(map[string]any, len(req.Values))
	for i, v := range req.Values {
		safeValues[v.Key] = safe[i]
	}

	message, err := f.engine.FormatMessage(req.Descriptor, safeValues)
	if err != nil {
		return nil, fmt.Errorf("xmlmsg: format %q: %w", req.ID, err)
	}

	if missing := placeholder.Missing(message, tagName, encoded); len(missing) > 0 {
		f.logger.Debug("values not referenced by message", "id", req.ID, "indices", missing)
	}

	parser, err := f.resolveParser()
	if err != nil {
		return nil, err
	}

	doc, err := parser.Parse(`<?xml version="1.0"?><root>`+message+`</root>`, markup.MimeXML)
	if err != nil {
		return nil, fmt.Errorf("xmlmsg: parse %q: %w", req.ID, err)
	}
	roots := doc.Children()
	if len(roots) == 0 {
		return nil, fmt.Errorf("xmlmsg: parse %q: %w", req.ID, ErrNoRoot)
	}

	nodes := transform.Transform(roots[0].ChildNodes(), transform.Options{
		Tags:           req.Tags,
		TagName:        tagName,
		Values:         original,
		PrimitiveKinds: f.primitiveKinds,
		Logger:         f.logger.With("id", req.ID),
	})

	return ui.NewElement(f.container, nil, nodes...), nil
}

func (f *Formatter) resolveParser() (markup.Parser, error) {
	if f.parser != nil {
		return f.parser, nil
	}
	return f.provider.Parser()
}

// FormatXMLMessage formats req with engine using the default parser provider.
func FormatXMLMessage(req Request, engine Engine) (*ui.Element, error) {
	return New(engine).Format(req)
}
