// Package markup defines the parser capability used to read XML messages and
// the provider that resolves which implementation to use.
//
// Resolution order is: an explicit override installed with SetParser, then
// the platform default registered with RegisterDefault, then ErrNoParser.
// Importing this package registers the etree-backed strict XML parser as the
// platform default.
package markup

import (
	"errors"
	"fmt"
)

// Mime types accepted by Parse. Both select strict XML parsing.
const (
	MimeXML    = "text/xml"
	MimeAppXML = "application/xml"
)

var (
	// ErrNoParser is returned when neither an override nor a default parser
	// is available.
	ErrNoParser = errors.New("markup: no XML parser implementation available; install one with markup.SetParser or import a package that registers a default")

	// ErrMalformed matches every *ParseError.
	ErrMalformed = errors.New("markup: malformed document")

	// ErrUnsupportedMimeType is returned for anything but strict XML.
	ErrUnsupportedMimeType = errors.New("markup: unsupported mime type")
)

// NodeType is the kind of a parsed node.
type NodeType int

const (
	ElementNode NodeType = iota + 1
	TextNode
	CommentNode
	ProcessingInstructionNode
	DirectiveNode
)

func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	case ProcessingInstructionNode:
		return "processing-instruction"
	case DirectiveNode:
		return "directive"
	default:
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
}

// Attr is a single attribute in document order.
type Attr struct {
	Name  string
	Value string
}

// Node is one node of a parsed document.
type Node interface {
	NodeType() NodeType
	// NodeName is the qualified tag name for elements ("prefix:local" when
	// prefixed) and "#text", "#comment", ... for the other kinds.
	NodeName() string
	TextContent() string
	Attributes() []Attr
	ChildNodes() []Node
}

// Document is the result of a successful parse.
type Document interface {
	// Children returns the element children of the document; the first one
	// is the root element.
	Children() []Node
}

// Parser turns text into a Document. Errors for malformed input must be
// reported, never swallowed.
type Parser interface {
	Parse(text, mimeType string) (Document, error)
}

// Shareable is implemented by parsers that keep no state between Parse calls
// and are safe for concurrent use. Only those are cached by a Provider.
type Shareable interface {
	Shareable() bool
}

// Factory builds a parser instance.
type Factory func() (Parser, error)

// ParseError wraps a failure to parse a document.
type ParseError struct {
	MimeType string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("markup: parse %s: %v", e.MimeType, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrMalformed) hold for every ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrMalformed }

// Attribute returns the value of the named attribute of n and whether it was
// present.
func Attribute(n Node, name string) (string, bool) {
	for _, a := range n.Attributes() {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Text concatenates the text content of nodes, depth first.
func Text(nodes []Node) string {
	var out []byte
	for _, n := range nodes {
		out = append(out, n.TextContent()...)
	}
	return string(out)
}
