package table

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

type kind int

const (
	kindNull kind = iota
	kindBool
	kindNumber
	kindString
	kindOther
)

// Key is a comparable identity for a cell value. Two values with the same Key
// are Equal. It is used to group and index rows by a column.
type Key struct {
	kind kind
	num  float64
	str  string
}

// KeyOf returns the identity of v. Numbers of any Go numeric type share one
// identity per value; strings never equal numbers.
func KeyOf(v any) Key {
	switch x := v.(type) {
	case nil:
		return Key{kind: kindNull}
	case string:
		return Key{kind: kindString, str: x}
	case bool:
		if x {
			return Key{kind: kindBool, num: 1}
		}
		return Key{kind: kindBool}
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		f, err := cast.ToFloat64E(x)
		if err != nil {
			return Key{kind: kindOther, str: fmt.Sprint(x)}
		}
		return Key{kind: kindNumber, num: f}
	default:
		return Key{kind: kindOther, str: fmt.Sprint(x)}
	}
}

// Equal reports whether two cell values are strictly equal: same kind and same
// value. nil equals only nil.
func Equal(a, b any) bool {
	ka, kb := KeyOf(a), KeyOf(b)
	if ka.kind == kindNumber && kb.kind == kindNumber && (math.IsNaN(ka.num) || math.IsNaN(kb.num)) {
		return false
	}
	return ka == kb
}

// Text formats a cell value for text surfaces. nil renders as "".
func Text(v any) string {
	if v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}

// Compare orders two cell values. nil sorts after everything else, numbers
// before strings, and mixed kinds fall back to their text form.
func Compare(a, b any) int {
	ka, kb := KeyOf(a), KeyOf(b)
	switch {
	case ka.kind == kindNull && kb.kind == kindNull:
		return 0
	case ka.kind == kindNull:
		return 1
	case kb.kind == kindNull:
		return -1
	}
	if ka.kind == kb.kind && (ka.kind == kindNumber || ka.kind == kindBool) {
		switch {
		case ka.num < kb.num:
			return -1
		case ka.num > kb.num:
			return 1
		default:
			return 0
		}
	}
	if ka.kind == kindNumber && kb.kind == kindString {
		return -1
	}
	if ka.kind == kindString && kb.kind == kindNumber {
		return 1
	}
	return strings.Compare(Text(a), Text(b))
}
