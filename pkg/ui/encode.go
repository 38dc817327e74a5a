package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

type elementJSON struct {
	Type     string `json:"type"`
	Key      string `json:"key,omitempty"`
	Props    Props  `json:"props,omitempty"`
	Children []Node `json:"children,omitempty"`
}

// MarshalJSON encodes the element as {"type", "key", "props", "children"}.
func (e *Element) MarshalJSON() ([]byte, error) {
	return json.Marshal(elementJSON{
		Type:     e.TypeName(),
		Key:      e.Key,
		Props:    e.Props,
		Children: e.Children,
	})
}

// WriteOutline writes an indented, one-node-per-line dump of n to w.
func WriteOutline(w io.Writer, n Node) error {
	var b strings.Builder
	outline(&b, n, 0)
	_, err := io.WriteString(w, b.String())
	return err
}

// Outline returns the WriteOutline dump of n as a string.
func Outline(n Node) string {
	var b strings.Builder
	outline(&b, n, 0)
	return b.String()
}

func outline(b *strings.Builder, n Node, depth int) {
	indent := strings.Repeat("  ", depth)

	switch v := n.(type) {
	case *Element:
		if v == nil {
			fmt.Fprintf(b, "%s<nil>\n", indent)
			return
		}
		fmt.Fprintf(b, "%s<%s", indent, v.TypeName())
		if v.Key != "" {
			fmt.Fprintf(b, " key=%q", v.Key)
		}
		keys := make([]string, 0, len(v.Props))
		for k := range v.Props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(b, " %s=%v", k, quoteValue(v.Props[k]))
		}
		b.WriteString(">\n")
		for _, c := range v.Children {
			outline(b, c, depth+1)
		}
	case []Node:
		fmt.Fprintf(b, "%s[\n", indent)
		for _, c := range v {
			outline(b, c, depth+1)
		}
		fmt.Fprintf(b, "%s]\n", indent)
	case string:
		fmt.Fprintf(b, "%s%q\n", indent, v)
	case nil:
		fmt.Fprintf(b, "%s<nil>\n", indent)
	default:
		fmt.Fprintf(b, "%s%v\n", indent, v)
	}
}

func quoteValue(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}
