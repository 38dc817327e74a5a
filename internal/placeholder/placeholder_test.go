package placeholder_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/valpere/xmlmessage/internal/placeholder"
	"github.com/valpere/xmlmessage/pkg/markup"
	"github.com/valpere/xmlmessage/pkg/ui"
)

func TestNewTagName_ShapeAndUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		name := placeholder.NewTagName()
		if !placeholder.IsTagName(name) {
			t.Fatalf("unexpected tag name shape %q", name)
		}
		if seen[name] {
			t.Fatalf("duplicate tag name %q after %d calls", name, i)
		}
		seen[name] = true
	}
}

func TestNewTagName_ParsesAsElement(t *testing.T) {
	name := placeholder.NewTagName()
	doc, err := markup.NewEtreeParser().Parse("<root>"+placeholder.Marker(name, 3)+"</root>", markup.MimeXML)
	if err != nil {
		t.Fatalf("marker did not parse: %v", err)
	}
	marker := doc.Children()[0].ChildNodes()[0]
	if marker.NodeName() != name {
		t.Errorf("expected node name %q, got %q", name, marker.NodeName())
	}
}

func TestMarker(t *testing.T) {
	got := placeholder.Marker("xmlmsg-value-abc", 7)
	want := `<xmlmsg-value-abc ki="7"/>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPassthrough(t *testing.T) {
	type count int
	var nilElem *ui.Element

	tests := []struct {
		name string
		v    any
		want bool
	}{
		{"nil", nil, true},
		{"typed nil pointer", nilElem, true},
		{"nil slice", []string(nil), true},
		{"bool", true, true},
		{"int", 42, true},
		{"named int", count(3), true},
		{"uint8", uint8(1), true},
		{"float", 1.5, true},
		{"string", "hello", false},
		{"empty string", "", false},
		{"element", ui.NewElement(ui.Tag("a"), nil), false},
		{"slice", []any{"a", 1}, false},
		{"map", map[string]int{"a": 1}, false},
		{"struct", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := placeholder.Passthrough(tt.v); got != tt.want {
				t.Errorf("Passthrough(%#v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestEncode_ReplacesUnsafeValuesByIndex(t *testing.T) {
	link := ui.NewElement(ui.Tag("a"), ui.Props{"href": "https://text.com"}, "Here")
	values := []any{
		`<a href="https://malicious-website.com">Blog</a>`,
		5,
		link,
		nil,
	}

	safe, encoded := placeholder.Encode(values, "xmlmsg-value-t")

	if safe[0] != `<xmlmsg-value-t ki="0"/>` {
		t.Errorf("string value not encoded: %v", safe[0])
	}
	if safe[1] != 5 {
		t.Errorf("int value must pass through, got %v", safe[1])
	}
	if safe[2] != `<xmlmsg-value-t ki="2"/>` {
		t.Errorf("element value not encoded: %v", safe[2])
	}
	if safe[3] != nil {
		t.Errorf("nil must pass through, got %v", safe[3])
	}
	if len(encoded) != 2 || encoded[0] != 0 || encoded[1] != 2 {
		t.Errorf("expected encoded [0 2], got %v", encoded)
	}
	if values[0] != `<a href="https://malicious-website.com">Blog</a>` {
		t.Error("Encode must not modify its input")
	}
}

func markerNode(t *testing.T, xml string) markup.Node {
	t.Helper()
	doc, err := markup.NewEtreeParser().Parse("<root>"+xml+"</root>", markup.MimeXML)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc.Children()[0].ChildNodes()[0]
}

func TestDecode_ReturnsOriginalValue(t *testing.T) {
	link := ui.NewElement(ui.Tag("a"), nil)
	values := []any{"x", link}

	got, err := placeholder.Decode(markerNode(t, `<m ki="1"/>`), values)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != link {
		t.Errorf("expected the same element pointer back, got %#v", got)
	}
}

func TestDecode_Errors(t *testing.T) {
	values := []any{"only"}

	tests := []struct {
		name string
		xml  string
		want error
	}{
		{"missing attr", `<m/>`, placeholder.ErrBadIndex},
		{"not a number", `<m ki="one"/>`, placeholder.ErrBadIndex},
		{"too large", `<m ki="1"/>`, placeholder.ErrIndexOutOfRange},
		{"negative", `<m ki="-1"/>`, placeholder.ErrIndexOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := placeholder.Decode(markerNode(t, tt.xml), values)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestMissing(t *testing.T) {
	tag := "xmlmsg-value-t"
	text := "check out " + placeholder.Marker(tag, 0) + " now"

	missing := placeholder.Missing(text, tag, []int{0, 2})
	if len(missing) != 1 || missing[0] != 2 {
		t.Errorf("expected missing [2], got %v", missing)
	}
	if m := placeholder.Missing(text, tag, nil); len(m) != 0 {
		t.Errorf("expected nothing missing, got %v", m)
	}
}

func TestIsTagName(t *testing.T) {
	if placeholder.IsTagName("strong") {
		t.Error("plain tag must not look like a marker")
	}
	if placeholder.IsTagName(placeholder.TagPrefix + strings.Repeat("z", 32)) {
		t.Error("non-hex suffix accepted")
	}
}
