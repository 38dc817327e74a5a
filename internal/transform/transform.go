// Package transform rebuilds a parsed markup tree as a ui node tree,
// resolving placeholder markers to their original values and mapping tags to
// the caller's replacements.
package transform

import (
	"log/slog"
	"strconv"

	"github.com/valpere/xmlmessage/internal/logging"
	"github.com/valpere/xmlmessage/internal/placeholder"
	"github.com/valpere/xmlmessage/pkg/markup"
	"github.com/valpere/xmlmessage/pkg/ui"
)

// Options configures a single Transform call.
type Options struct {
	// Tags maps tag names to replacements: ui.Tag or string, *ui.Component,
	// *ui.Element or ui.Element.
	Tags map[string]any

	// TagName is the placeholder marker tag name for this call.
	TagName string

	// Values holds the original interpolation values in index order.
	Values []any

	// PrimitiveKinds, when non-nil, restricts unmapped tags to the listed
	// names. Unlisted unmapped tags are dropped with a diagnostic.
	PrimitiveKinds map[string]bool

	Logger *slog.Logger
}

// replacement kinds
type kind int

const (
	kindInvalid kind = iota
	kindType
	kindElement
)

type replacement struct {
	kind kind
	typ  ui.Type
	elem *ui.Element
}

// resolve classifies a replacement. Element instances are matched before
// ui.Type because *ui.Element also has a TypeName method.
func resolve(v any) replacement {
	switch r := v.(type) {
	case *ui.Element:
		if r == nil {
			return replacement{}
		}
		return replacement{kind: kindElement, elem: r}
	case ui.Element:
		return replacement{kind: kindElement, elem: &r}
	case ui.Tag:
		return replacement{kind: kindType, typ: r}
	case string:
		return replacement{kind: kindType, typ: ui.Tag(r)}
	case *ui.Component:
		if r == nil {
			return replacement{}
		}
		return replacement{kind: kindType, typ: r}
	case ui.Type:
		if r == nil {
			return replacement{}
		}
		return replacement{kind: kindType, typ: r}
	default:
		return replacement{}
	}
}

// Transform converts nodes, in order, into ui nodes. Problems with a single
// node are logged and that position becomes nil; they never abort the tree.
func Transform(nodes []markup.Node, opts Options) []ui.Node {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return transformNodes(nodes, &opts)
}

func transformNodes(nodes []markup.Node, opts *Options) []ui.Node {
	out := make([]ui.Node, len(nodes))
	for i, n := range nodes {
		out[i] = transformNode(n, i, opts)
	}
	return out
}

func transformNode(n markup.Node, pos int, opts *Options) ui.Node {
	switch n.NodeType() {
	case markup.TextNode:
		return n.TextContent()
	case markup.ElementNode:
	default:
		opts.Logger.Error("only text and element nodes are supported",
			"node_type", n.NodeType().String(),
			"node_name", n.NodeName())
		return nil
	}

	key := strconv.Itoa(pos)
	name := n.NodeName()

	if opts.TagName != "" && name == opts.TagName {
		value, err := placeholder.Decode(n, opts.Values)
		if err != nil {
			opts.Logger.Error("unresolvable placeholder", "error", err)
			return nil
		}
		// element values are reissued with a position key so siblings stay
		// distinguishable
		switch el := value.(type) {
		case *ui.Element:
			if el != nil {
				return el.Clone(ui.Props{ui.KeyProp: key})
			}
		case ui.Element:
			return el.Clone(ui.Props{ui.KeyProp: key})
		}
		return value
	}

	mapped, ok := opts.Tags[name]
	if !ok {
		if opts.PrimitiveKinds != nil && !opts.PrimitiveKinds[name] {
			opts.Logger.Error("unmapped tag is not a known primitive kind", "tag", name)
			return nil
		}
		mapped = ui.Tag(name)
	}

	props := attributesToProps(n.Attributes())
	props[ui.KeyProp] = key

	children := transformNodes(n.ChildNodes(), opts)
	if len(children) == 0 {
		// some element kinds reject an empty child list
		children = nil
	}

	r := resolve(mapped)
	switch r.kind {
	case kindType:
		return ui.NewElement(r.typ, props, children...)
	case kindElement:
		return r.elem.CloneWithChildren(props, children)
	default:
		opts.Logger.Error("invalid replacement: must be a tag name, a component or an element",
			"tag", name,
			"replacement", mapped)
		return nil
	}
}

func attributesToProps(attrs []markup.Attr) ui.Props {
	props := make(ui.Props, len(attrs)+1)
	for _, a := range attrs {
		props[a.Name] = a.Value
	}
	return props
}
