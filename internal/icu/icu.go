// Package icu implements the simple-argument subset of ICU MessageFormat as a
// go-i18n template parser.
//
// Supported syntax:
//
//	{name}             value, numbers formatted for the locale
//	{name, number}     decimal number
//	{name, integer}    decimal number without fraction digits
//	{name, percent}    percentage
//	'{literal}'        quoted braces, '' is an apostrophe
//
// Select and plural arguments are not supported; plural forms are chosen by
// go-i18n from the message's plural categories.
package icu

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/nicksnyder/go-i18n/v2/i18n/template"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var (
	ErrSyntax          = errors.New("icu: syntax error")
	ErrUnknownStyle    = errors.New("icu: unknown argument style")
	ErrMissingArgument = errors.New("icu: missing argument")
)

// Parser parses ICU messages and formats numbers for Tag.
type Parser struct {
	Tag language.Tag
}

var _ template.Parser = (*Parser)(nil)

// NewParser returns a Parser formatting for tag.
func NewParser(tag language.Tag) *Parser {
	return &Parser{Tag: tag}
}

// Cacheable is false: parsed messages are bound to the parser's locale and
// a message may be reached through several fallback locales.
func (p *Parser) Cacheable() bool { return false }

// Parse compiles src. The delimiters are ignored.
func (p *Parser) Parse(src, _, _ string) (template.ParsedTemplate, error) {
	parts, err := compile(src)
	if err != nil {
		return nil, err
	}
	return &Message{parts: parts, printer: message.NewPrinter(p.Tag)}, nil
}

type style int

const (
	styleNone style = iota
	styleNumber
	styleInteger
	stylePercent
)

var styles = map[string]style{
	"number":  styleNumber,
	"integer": styleInteger,
	"percent": stylePercent,
}

type part struct {
	literal string
	arg     string
	style   style
}

// Message is a compiled ICU message.
type Message struct {
	parts   []part
	printer *message.Printer
}

// Arg is an argument reference in a message.
type Arg struct {
	Name string

	// Numeric is set for styled arguments, which only accept numbers.
	Numeric bool
}

// Args returns the argument references in order of appearance.
func (m *Message) Args() []Arg {
	var args []Arg
	for _, p := range m.parts {
		if p.arg != "" {
			args = append(args, Arg{Name: p.arg, Numeric: p.style != styleNone})
		}
	}
	return args
}

// Execute formats the message. data must be a map keyed by argument name,
// or nil when the message has no arguments.
func (m *Message) Execute(data any) (string, error) {
	args, err := toArgs(data)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, p := range m.parts {
		if p.arg == "" {
			b.WriteString(p.literal)
			continue
		}
		v, ok := args[p.arg]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrMissingArgument, p.arg)
		}
		s, err := m.format(v, p.style)
		if err != nil {
			return "", fmt.Errorf("icu: argument %s: %w", p.arg, err)
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

func (m *Message) format(v any, st style) (string, error) {
	isNum := isNumber(v)
	if st != styleNone && !isNum {
		return "", fmt.Errorf("not a number: %T", v)
	}
	switch {
	case st == styleInteger:
		return m.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(0))), nil
	case st == stylePercent:
		return m.printer.Sprint(number.Percent(v)), nil
	case isNum:
		return m.printer.Sprint(number.Decimal(v)), nil
	case v == nil:
		return "", nil
	default:
		return fmt.Sprint(v), nil
	}
}

func toArgs(data any) (map[string]any, error) {
	switch d := data.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return d, nil
	case map[string]string:
		args := make(map[string]any, len(d))
		for k, v := range d {
			args[k] = v
		}
		return args, nil
	default:
		return nil, fmt.Errorf("icu: unsupported template data %T", data)
	}
}

func isNumber(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func compile(src string) ([]part, error) {
	var (
		parts []part
		lit   strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, part{literal: lit.String()})
			lit.Reset()
		}
	}

	rs := []rune(src)
	for i := 0; i < len(rs); i++ {
		switch c := rs[i]; c {
		case '\'':
			i = quoted(rs, i, &lit)
		case '{':
			end := indexRune(rs, i+1, '}')
			if end < 0 {
				return nil, fmt.Errorf("%w: unclosed argument at offset %d", ErrSyntax, i)
			}
			p, err := argument(string(rs[i+1 : end]))
			if err != nil {
				return nil, err
			}
			flush()
			parts = append(parts, p)
			i = end
		case '}':
			return nil, fmt.Errorf("%w: unmatched } at offset %d", ErrSyntax, i)
		default:
			lit.WriteRune(c)
		}
	}
	flush()
	return parts, nil
}

// quoted handles an apostrophe at rs[i] and returns the index of the last
// consumed rune.
func quoted(rs []rune, i int, lit *strings.Builder) int {
	if i+1 >= len(rs) {
		lit.WriteRune('\'')
		return i
	}
	switch rs[i+1] {
	case '\'':
		lit.WriteRune('\'')
		return i + 1
	case '{', '}':
	default:
		lit.WriteRune('\'')
		return i
	}

	// quoted literal up to the next lone apostrophe or the end of input
	for j := i + 1; j < len(rs); j++ {
		if rs[j] != '\'' {
			lit.WriteRune(rs[j])
			continue
		}
		if j+1 < len(rs) && rs[j+1] == '\'' {
			lit.WriteRune('\'')
			j++
			continue
		}
		return j
	}
	return len(rs) - 1
}

func indexRune(rs []rune, from int, r rune) int {
	for i := from; i < len(rs); i++ {
		if rs[i] == r {
			return i
		}
	}
	return -1
}

func argument(body string) (part, error) {
	name, rest, hasStyle := strings.Cut(body, ",")
	name = strings.TrimSpace(name)
	if !validName(name) {
		return part{}, fmt.Errorf("%w: invalid argument name %q", ErrSyntax, name)
	}
	if !hasStyle {
		return part{arg: name}, nil
	}
	st, ok := styles[strings.TrimSpace(rest)]
	if !ok {
		return part{}, fmt.Errorf("%w: %q", ErrUnknownStyle, strings.TrimSpace(rest))
	}
	return part{arg: name, style: st}, nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			return false
		}
	}
	return true
}
