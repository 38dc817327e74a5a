// Package ui defines the framework-agnostic node tree produced from XML
// messages. Nothing in this package renders anything: a host framework walks
// the tree and mounts it.
//
// A Node is one of:
//   - string, emitted for text
//   - *Element, a constructed or reissued element
//   - []Node, a nested sequence
//   - any value passed through untouched (nil, numbers, bools, caller objects)
package ui

import (
	"maps"
	"strconv"
)

// Node is a single position in an output tree.
type Node = any

// KeyProp is the reserved prop carrying an element's sibling identity. It is
// moved into Element.Key by NewElement and Clone and never kept in Props.
const KeyProp = "key"

// Props holds element attributes. Values decoded from markup are strings;
// pre-built elements may carry anything.
type Props map[string]any

// Clone returns a shallow copy of p. A nil map clones to nil.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	return maps.Clone(p)
}

// String returns the prop value formatted as a string, or "" when absent.
func (p Props) String(name string) string {
	switch v := p[name].(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Type identifies what kind of element to construct.
type Type interface {
	TypeName() string
}

// Tag is a primitive element kind named by its tag, like "em" or "a".
type Tag string

func (t Tag) TypeName() string { return string(t) }

type fragment struct{}

func (fragment) TypeName() string { return "#fragment" }

// Fragment groups children without introducing an element of its own.
var Fragment Type = fragment{}

// RenderFunc builds a component's output from its props and children.
type RenderFunc func(props Props, children []Node) Node

// Component is a constructor reference. Elements of a component type are
// compared by pointer identity on the *Component.
type Component struct {
	Name   string
	Render RenderFunc
}

// NewComponent returns a component named name.
func NewComponent(name string, render RenderFunc) *Component {
	return &Component{Name: name, Render: render}
}

func (c *Component) TypeName() string { return c.Name }

// Element is a node of the output tree. Children is nil when the element has
// no content; it is never an empty non-nil slice once built by this package.
type Element struct {
	Type     Type
	Key      string
	Props    Props
	Children []Node
}

// NewElement builds an element of type t. A "key" prop becomes the element
// key. Empty children normalize to nil.
func NewElement(t Type, props Props, children ...Node) *Element {
	e := &Element{Type: t, Props: props.Clone()}
	e.takeKey()
	if len(children) > 0 {
		e.Children = children
	}
	return e
}

// Clone reissues e with overrides layered over its props. Overrides take
// precedence; children are kept.
func (e *Element) Clone(overrides Props) *Element {
	return e.clone(overrides, e.Children)
}

// CloneWithChildren is Clone with children replaced, nil included.
func (e *Element) CloneWithChildren(overrides Props, children []Node) *Element {
	if len(children) == 0 {
		children = nil
	}
	return e.clone(overrides, children)
}

func (e *Element) clone(overrides Props, children []Node) *Element {
	props := e.Props.Clone()
	if len(overrides) > 0 && props == nil {
		props = make(Props, len(overrides))
	}
	maps.Copy(props, overrides)

	c := &Element{Type: e.Type, Key: e.Key, Props: props, Children: children}
	c.takeKey()
	return c
}

func (e *Element) takeKey() {
	v, ok := e.Props[KeyProp]
	if !ok {
		return
	}
	delete(e.Props, KeyProp)
	switch k := v.(type) {
	case string:
		e.Key = k
	case int:
		e.Key = strconv.Itoa(k)
	}
	if len(e.Props) == 0 {
		e.Props = nil
	}
}

// TypeName returns the name of the element's type, or "" when unset.
func (e *Element) TypeName() string {
	if e == nil || e.Type == nil {
		return ""
	}
	return e.Type.TypeName()
}

// Is reports whether e was built from type t.
func (e *Element) Is(t Type) bool {
	if e == nil {
		return false
	}
	return e.Type == t
}
