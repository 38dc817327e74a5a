// Package placeholder shields interpolation values from the XML parser.
// Before formatting, every value that is not a plain number, bool or nil is
// replaced with a self-closing marker tag (<TAG ki="N"/>) whose name is
// random per call. After parsing, Decode maps a marker element back to the
// original value by its index.
package placeholder

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/valpere/xmlmessage/pkg/markup"
)

const (
	// TagPrefix starts every generated marker tag name.
	TagPrefix = "xmlmsg-value-"

	// IndexAttr is the marker attribute holding the value index.
	IndexAttr = "ki"
)

var (
	ErrBadIndex        = errors.New("placeholder: marker has no numeric index")
	ErrIndexOutOfRange = errors.New("placeholder: marker index out of range")
)

// tag names are TagPrefix + 32 lowercase hex digits
var reTagName = regexp.MustCompile(`^` + regexp.QuoteMeta(TagPrefix) + `[0-9a-f]{32}$`)

// NewTagName returns a fresh marker tag name carrying the 122 random bits of
// a version 4 UUID. The result is always a valid XML element name.
func NewTagName() string {
	return TagPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// IsTagName reports whether name has the shape produced by NewTagName.
func IsTagName(name string) bool {
	return reTagName.MatchString(name)
}

// Marker returns the marker string standing in for the value at index.
func Marker(tagName string, index int) string {
	return fmt.Sprintf(`<%s %s="%d"/>`, tagName, IndexAttr, index)
}

// Passthrough reports whether v can be handed to the formatting engine as
// is: nil (typed nil included), bools and numeric kinds. Strings may carry
// markup and everything else cannot be expressed as engine tokens.
func Passthrough(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// Encode returns a copy of values in which every non-passthrough value is
// replaced by its marker string, plus the indices that were replaced.
func Encode(values []any, tagName string) ([]any, []int) {
	safe := make([]any, len(values))
	var encoded []int

	for i, v := range values {
		if Passthrough(v) {
			safe[i] = v
			continue
		}
		// the index is a number we control, unlike the caller's key
		safe[i] = Marker(tagName, i)
		encoded = append(encoded, i)
	}

	return safe, encoded
}

// Decode returns the value a marker element stands in for.
func Decode(n markup.Node, values []any) (any, error) {
	raw, ok := markup.Attribute(n, IndexAttr)
	if !ok {
		return nil, ErrBadIndex
	}
	idx, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadIndex, raw)
	}
	if idx < 0 || idx >= len(values) {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, idx, len(values))
	}
	return values[idx], nil
}

// Missing returns the encoded indices whose marker does not appear in text.
// A message is free not to reference every value, so this is informational.
func Missing(text, tagName string, encoded []int) []int {
	var missing []int
	for _, i := range encoded {
		if !strings.Contains(text, Marker(tagName, i)) {
			missing = append(missing, i)
		}
	}
	return missing
}
