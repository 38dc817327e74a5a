package markup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

func init() {
	RegisterDefault(func() (Parser, error) { return NewEtreeParser(), nil })
}

// EtreeParser is the default Parser. It decodes strictly: unclosed or
// mismatched tags, undeclared entities and stray markup characters are
// errors.
type EtreeParser struct {
	// Entity maps extra entity names to their replacement text, for
	// catalogs that use named entities beyond the five XML predefines.
	Entity map[string]string
}

// NewEtreeParser returns a strict XML parser.
func NewEtreeParser() *EtreeParser {
	return &EtreeParser{}
}

// Shareable reports true: the parser holds no per-parse state.
func (p *EtreeParser) Shareable() bool { return true }

// Parse reads text as a standalone XML document.
func (p *EtreeParser) Parse(text, mimeType string) (Document, error) {
	if mimeType != MimeXML && mimeType != MimeAppXML {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMimeType, mimeType)
	}

	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		Permissive: false,
		Entity:     p.Entity,
	}
	if err := doc.ReadFromString(text); err != nil {
		return nil, &ParseError{MimeType: mimeType, Err: err}
	}

	if err := checkProlog(&doc.Element); err != nil {
		return nil, &ParseError{MimeType: mimeType, Err: err}
	}

	return &etreeDocument{doc: doc}, nil
}

// checkProlog enforces a single root element and no text outside of it,
// which the token reader alone does not.
func checkProlog(doc *etree.Element) error {
	roots := 0
	for _, t := range doc.Child {
		switch t := t.(type) {
		case *etree.Element:
			roots++
		case *etree.CharData:
			if !t.IsWhitespace() {
				return errors.New("text outside of the root element")
			}
		}
	}
	switch roots {
	case 0:
		return errors.New("no root element")
	case 1:
		return nil
	default:
		return fmt.Errorf("%d root elements, expected one", roots)
	}
}

type etreeDocument struct {
	doc *etree.Document
}

func (d *etreeDocument) Children() []Node {
	var out []Node
	for _, e := range d.doc.ChildElements() {
		out = append(out, &etreeElement{e: e})
	}
	return out
}

func wrapToken(t etree.Token) Node {
	switch t := t.(type) {
	case *etree.Element:
		return &etreeElement{e: t}
	case *etree.CharData:
		return &etreeText{c: t}
	case *etree.Comment:
		return &etreeComment{c: t}
	case *etree.ProcInst:
		return &etreeProcInst{p: t}
	case *etree.Directive:
		return &etreeDirective{d: t}
	default:
		return nil
	}
}

type etreeElement struct {
	e *etree.Element
}

func (n *etreeElement) NodeType() NodeType { return ElementNode }
func (n *etreeElement) NodeName() string   { return n.e.FullTag() }

func (n *etreeElement) TextContent() string {
	var b strings.Builder
	collectText(&b, n.e)
	return b.String()
}

func collectText(b *strings.Builder, e *etree.Element) {
	for _, t := range e.Child {
		switch t := t.(type) {
		case *etree.CharData:
			b.WriteString(t.Data)
		case *etree.Element:
			collectText(b, t)
		}
	}
}

func (n *etreeElement) Attributes() []Attr {
	if len(n.e.Attr) == 0 {
		return nil
	}
	attrs := make([]Attr, 0, len(n.e.Attr))
	for i := range n.e.Attr {
		a := &n.e.Attr[i]
		attrs = append(attrs, Attr{Name: a.FullKey(), Value: a.Value})
	}
	return attrs
}

func (n *etreeElement) ChildNodes() []Node {
	if len(n.e.Child) == 0 {
		return nil
	}
	nodes := make([]Node, 0, len(n.e.Child))
	for _, t := range n.e.Child {
		if w := wrapToken(t); w != nil {
			nodes = append(nodes, w)
		}
	}
	return nodes
}

type etreeText struct {
	c *etree.CharData
}

func (n *etreeText) NodeType() NodeType  { return TextNode }
func (n *etreeText) NodeName() string    { return "#text" }
func (n *etreeText) TextContent() string { return n.c.Data }
func (n *etreeText) Attributes() []Attr  { return nil }
func (n *etreeText) ChildNodes() []Node  { return nil }

type etreeComment struct {
	c *etree.Comment
}

func (n *etreeComment) NodeType() NodeType  { return CommentNode }
func (n *etreeComment) NodeName() string    { return "#comment" }
func (n *etreeComment) TextContent() string { return n.c.Data }
func (n *etreeComment) Attributes() []Attr  { return nil }
func (n *etreeComment) ChildNodes() []Node  { return nil }

type etreeProcInst struct {
	p *etree.ProcInst
}

func (n *etreeProcInst) NodeType() NodeType  { return ProcessingInstructionNode }
func (n *etreeProcInst) NodeName() string    { return n.p.Target }
func (n *etreeProcInst) TextContent() string { return n.p.Inst }
func (n *etreeProcInst) Attributes() []Attr  { return nil }
func (n *etreeProcInst) ChildNodes() []Node  { return nil }

type etreeDirective struct {
	d *etree.Directive
}

func (n *etreeDirective) NodeType() NodeType  { return DirectiveNode }
func (n *etreeDirective) NodeName() string    { return "#directive" }
func (n *etreeDirective) TextContent() string { return n.d.Data }
func (n *etreeDirective) Attributes() []Attr  { return nil }
func (n *etreeDirective) ChildNodes() []Node  { return nil }
