package markup_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/xmlmessage/pkg/markup"
)

func parseRoot(t *testing.T, text string) markup.Node {
	t.Helper()
	doc, err := markup.NewEtreeParser().Parse(text, markup.MimeXML)
	require.NoError(t, err)
	children := doc.Children()
	require.Len(t, children, 1)
	return children[0]
}

func TestEtreeParser_ElementsAndText(t *testing.T) {
	root := parseRoot(t, `<?xml version="1.0"?><root>I am a message with <strong>strong text</strong></root>`)

	assert.Equal(t, markup.ElementNode, root.NodeType())
	assert.Equal(t, "root", root.NodeName())

	kids := root.ChildNodes()
	require.Len(t, kids, 2)
	assert.Equal(t, markup.TextNode, kids[0].NodeType())
	assert.Equal(t, "I am a message with ", kids[0].TextContent())
	assert.Equal(t, "strong", kids[1].NodeName())
	assert.Equal(t, "strong text", kids[1].TextContent())
	assert.Equal(t, "I am a message with strong text", root.TextContent())
}

func TestEtreeParser_AttributesInDocumentOrder(t *testing.T) {
	root := parseRoot(t, `<root><blog-link href="https://my-blog.fr" rel="me" xml:lang="fr">blog</blog-link></root>`)

	link := root.ChildNodes()[0]
	assert.Equal(t, "blog-link", link.NodeName())
	assert.Equal(t, []markup.Attr{
		{Name: "href", Value: "https://my-blog.fr"},
		{Name: "rel", Value: "me"},
		{Name: "xml:lang", Value: "fr"},
	}, link.Attributes())

	v, ok := markup.Attribute(link, "rel")
	assert.True(t, ok)
	assert.Equal(t, "me", v)
	_, ok = markup.Attribute(link, "title")
	assert.False(t, ok)
}

func TestEtreeParser_EntitiesDecoded(t *testing.T) {
	root := parseRoot(t, `<root>Tom &amp; Jerry &lt;3</root>`)
	assert.Equal(t, "Tom & Jerry <3", root.TextContent())
}

func TestEtreeParser_NonElementNodes(t *testing.T) {
	root := parseRoot(t, `<root>a<!-- note -->b<?php echo 1 ?></root>`)

	kinds := []markup.NodeType{}
	for _, n := range root.ChildNodes() {
		kinds = append(kinds, n.NodeType())
	}
	assert.Equal(t, []markup.NodeType{
		markup.TextNode,
		markup.CommentNode,
		markup.TextNode,
		markup.ProcessingInstructionNode,
	}, kinds)
	assert.Equal(t, "ab", root.TextContent())
}

func TestEtreeParser_Malformed(t *testing.T) {
	cases := map[string]string{
		"unclosed":      `<root><em>text</root>`,
		"mismatched":    `<root><em>text</strong></root>`,
		"bare lt":       `<root>1 < 2</root>`,
		"bare amp":      `<root>Tom & Jerry</root>`,
		"unknown ent":   `<root>&nbsp;</root>`,
		"two roots":     `<a/><b/>`,
		"no root":       `<?xml version="1.0"?>`,
		"trailing text": `<root/>junk`,
		"leading text":  `junk<root/>`,
	}

	p := markup.NewEtreeParser()
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := p.Parse(text, markup.MimeXML)
			require.Error(t, err)
			assert.True(t, errors.Is(err, markup.ErrMalformed), "expected ErrMalformed, got %v", err)

			var pe *markup.ParseError
			assert.True(t, errors.As(err, &pe))
		})
	}
}

func TestEtreeParser_CustomEntity(t *testing.T) {
	p := &markup.EtreeParser{Entity: map[string]string{"nbsp": " "}}
	doc, err := p.Parse(`<root>a&nbsp;b</root>`, markup.MimeXML)
	require.NoError(t, err)
	assert.Equal(t, "a b", doc.Children()[0].TextContent())
}

func TestEtreeParser_UnsupportedMimeType(t *testing.T) {
	_, err := markup.NewEtreeParser().Parse(`<root/>`, "text/html")
	assert.ErrorIs(t, err, markup.ErrUnsupportedMimeType)

	_, err = markup.NewEtreeParser().Parse(`<root/>`, markup.MimeAppXML)
	assert.NoError(t, err)
}

func TestText(t *testing.T) {
	root := parseRoot(t, `<root>Hey <em>you</em>!</root>`)
	assert.Equal(t, "Hey you!", markup.Text(root.ChildNodes()))
}

func TestNodeType_String(t *testing.T) {
	assert.Equal(t, "element", markup.ElementNode.String())
	assert.Equal(t, "NodeType(42)", markup.NodeType(42).String())
}
