// Package validator checks catalog messages: ICU syntax, XML well-formedness
// once arguments are substituted, and that the text is in the language of its
// locale.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"

	"github.com/valpere/xmlmessage/internal/detector"
	"github.com/valpere/xmlmessage/internal/icu"
	"github.com/valpere/xmlmessage/internal/placeholder"
	"github.com/valpere/xmlmessage/internal/store"
	"github.com/valpere/xmlmessage/pkg/markup"
)

// Kind classifies a Problem.
type Kind string

const (
	KindSyntax   Kind = "syntax"
	KindMarkup   Kind = "markup"
	KindLanguage Kind = "language"
)

// Problem is one failed check on one plural form of a message.
type Problem struct {
	ID     string
	Locale string
	Form   string
	Kind   Kind
	Err    error
}

func (p Problem) Error() string {
	return fmt.Sprintf("%s/%s [%s] %s: %v", p.Locale, p.ID, p.Form, p.Kind, p.Err)
}

func (p Problem) Unwrap() error { return p.Err }

type Config struct {
	// MinDetectLength is the shortest plain text, in runes, whose language
	// is checked. Shorter texts produce unreliable results.
	MinDetectLength int

	// MinConfidence is the confidence the detected language needs before a
	// mismatch is reported.
	MinConfidence float64
}

// Validator checks messages. It is safe for concurrent use.
type Validator struct {
	parser markup.Parser
	det    *detector.Detector
	cfg    Config
}

// New returns a Validator. With a nil detector the language check is
// skipped.
func New(parser markup.Parser, det *detector.Detector, cfg Config) *Validator {
	return &Validator{parser: parser, det: det, cfg: cfg}
}

// Check runs every check on every form of m and returns the problems found,
// ordered by form name.
func (v *Validator) Check(m store.Message) []Problem {
	tag, err := language.Parse(m.Locale)
	if err != nil {
		return []Problem{{ID: m.ID, Locale: m.Locale, Form: "other", Kind: KindSyntax, Err: fmt.Errorf("locale: %w", err)}}
	}

	forms := m.Forms()
	names := make([]string, 0, len(forms))
	for name := range forms {
		names = append(names, name)
	}
	sort.Strings(names)

	var problems []Problem
	for _, name := range names {
		kind, err := v.checkForm(tag, m.Locale, forms[name])
		if err != nil {
			problems = append(problems, Problem{ID: m.ID, Locale: m.Locale, Form: name, Kind: kind, Err: err})
		}
	}
	return problems
}

func (v *Validator) checkForm(tag language.Tag, locale, text string) (Kind, error) {
	tmpl, err := icu.NewParser(tag).Parse(text, "", "")
	if err != nil {
		return KindSyntax, err
	}

	tagName := placeholder.NewTagName()
	data := map[string]any{}
	// a name used with a number style anywhere must be a number everywhere
	for i, arg := range tmpl.(*icu.Message).Args() {
		if arg.Numeric {
			data[arg.Name] = 1
		} else if _, ok := data[arg.Name]; !ok {
			data[arg.Name] = placeholder.Marker(tagName, i)
		}
	}
	formatted, err := tmpl.Execute(data)
	if err != nil {
		return KindSyntax, err
	}

	doc, err := v.parser.Parse(`<?xml version="1.0"?><root>`+formatted+`</root>`, markup.MimeXML)
	if err != nil {
		return KindMarkup, err
	}

	if v.det == nil {
		return "", nil
	}
	plain := strings.TrimSpace(plainText(doc.Children()[0].ChildNodes(), tagName))
	if len([]rune(plain)) < v.cfg.MinDetectLength {
		return "", nil
	}
	want, ok := detector.Language(locale)
	if !ok {
		return "", nil
	}
	got, ok := v.det.Detect(plain)
	if !ok || got == want {
		return "", nil
	}
	gotCode := strings.ToLower(got.IsoCode639_1().String())
	if c, _ := v.det.Confidence(plain, gotCode); c < v.cfg.MinConfidence {
		return "", nil
	}
	return KindLanguage, fmt.Errorf("expected %s but detected %s", locale, gotCode)
}

// plainText joins the text content of nodes, leaving out placeholder
// markers.
func plainText(nodes []markup.Node, tagName string) string {
	var b strings.Builder
	for _, n := range nodes {
		switch n.NodeType() {
		case markup.TextNode:
			b.WriteString(n.TextContent())
		case markup.ElementNode:
			if n.NodeName() == tagName {
				b.WriteString(" ")
				continue
			}
			b.WriteString(plainText(n.ChildNodes(), tagName))
		}
	}
	return b.String()
}
