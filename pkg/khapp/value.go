// SPDX-License-Identifier: MPL-2.0

package khapp

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

const (
	// KindNull is the JSON null literal.
	KindNull Kind = iota
	// KindString is a UTF-8 string.
	KindString
	// KindNumber is a JSON number kept as normalized literal text.
	KindNumber
	// KindBool is a JSON boolean.
	KindBool
	// KindMap is a nested ordered mapping.
	KindMap
	// KindList is a JSON array.
	KindList
)

type (
	// Kind identifies which member of the Value union is set.
	Kind uint8

	// Value is a small tagged union covering everything a manifest, metadata or
	// digest record may carry.
	//
	// Numbers are stored as text. Integer literals are kept as written (only
	// "-0" becomes "0"). Literals with a fraction or exponent are parsed as
	// float64 and printed in shortest round-trip form with at least one
	// fractional digit, switching to exponent notation below 1e-4 and from
	// 1e16 on: 1E5 is stored as 100000.0, 1.10 as 1.1 and 1e16 as 1e+16. A
	// literal beyond float64 range is kept as written. A decoded container
	// re-encodes byte-for-byte because normalized text normalizes to itself.
	Value struct {
		kind Kind
		str  string
		b    bool
		m    *Map
		list []Value
	}

	// Map is a string-keyed mapping that remembers insertion order.
	Map struct {
		keys   []string
		values map[string]Value
	}
)

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a number value from its JSON literal text, normalized as
// described on Value. The caller is responsible for passing a valid JSON
// number.
func Number(literal string) Value {
	return Value{kind: KindNumber, str: normalizeNumber(literal)}
}

func normalizeNumber(lit string) string {
	if !strings.ContainsAny(lit, ".eE") {
		if strings.Trim(lit, "-0") == "" && lit != "" {
			return "0"
		}
		return lit
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil || math.IsInf(f, 0) {
		return lit
	}
	return formatFloat(f)
}

// formatFloat prints f in shortest round-trip form, fixed notation for
// exponents in [-4, 16) and d.ddde±XX otherwise.
func formatFloat(f float64) string {
	if f == 0 {
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}

	// "-1.2345e+05" -> sign "-", digits "12345", exp 5
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	sign := ""
	if sci[0] == '-' {
		sign, sci = "-", sci[1:]
	}
	mant, expText, _ := strings.Cut(sci, "e")
	exp, _ := strconv.Atoi(expText)
	digits := strings.Replace(mant, ".", "", 1)

	if exp < -4 || exp >= 16 {
		out := sign + digits[:1]
		if len(digits) > 1 {
			out += "." + digits[1:]
		}
		expSign := "+"
		if exp < 0 {
			expSign, exp = "-", -exp
		}
		return fmt.Sprintf("%se%s%02d", out, expSign, exp)
	}
	if exp < 0 {
		return sign + "0." + strings.Repeat("0", -exp-1) + digits
	}
	if len(digits) <= exp+1 {
		return sign + digits + strings.Repeat("0", exp+1-len(digits)) + ".0"
	}
	return sign + digits[:exp+1] + "." + digits[exp+1:]
}

// Int returns a number value for an integer.
func Int(n int64) Value { return Number(strconv.FormatInt(n, 10)) }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// MapValue wraps a nested map. A nil map is stored as an empty one.
func MapValue(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return Value{kind: KindMap, m: m}
}

// List returns an array value.
func List(items ...Value) Value {
	return Value{kind: KindList, list: slices.Clone(items)}
}

// Strings returns an array value of strings.
func Strings(items ...string) Value {
	list := make([]Value, len(items))
	for i, s := range items {
		list[i] = String(s)
	}
	return Value{kind: KindList, list: list}
}

// Kind reports which member of the union is set.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string payload and whether v is a string.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// NumberLiteral returns the literal text of a number and whether v is a number.
func (v Value) NumberLiteral() (string, bool) { return v.str, v.kind == KindNumber }

// Int64 parses a number value as an integer.
func (v Value) Int64() (int64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	n, err := strconv.ParseInt(v.str, 10, 64)
	return n, err == nil
}

// BoolValue returns the boolean payload and whether v is a boolean.
func (v Value) BoolValue() (b, ok bool) { return v.b, v.kind == KindBool }

// MapPayload returns the nested map and whether v is a map.
func (v Value) MapPayload() (*Map, bool) { return v.m, v.kind == KindMap }

// Items returns a copy of the array elements and whether v is a list.
func (v Value) Items() ([]Value, bool) { return slices.Clone(v.list), v.kind == KindList }

// Equal reports whether two values are semantically equal. Map comparison
// ignores key order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString, KindNumber:
		return v.str == o.str
	case KindBool:
		return v.b == o.b
	case KindMap:
		return v.m.Equal(o.m)
	case KindList:
		return slices.EqualFunc(v.list, o.list, Value.Equal)
	default:
		return false
	}
}

func (v Value) clone() Value {
	switch v.kind {
	case KindMap:
		return MapValue(v.m.Clone())
	case KindList:
		items := make([]Value, len(v.list))
		for i, item := range v.list {
			items[i] = item.clone()
		}
		return Value{kind: KindList, list: items}
	default:
		return v
	}
}

// NewMap creates an empty ordered map.
func NewMap() *Map {
	return &Map{values: make(map[string]Value)}
}

// Set stores value under key. A new key is appended to the iteration order;
// an existing key keeps its position. The zero Map is ready to use.
func (m *Map) Set(key string, value Value) *Map {
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
	return m
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.values[key]
	return v, ok
}

// GetString returns the string stored under key, or fallback when the key is
// absent or not a string.
func (m *Map) GetString(key, fallback string) string {
	v, ok := m.Get(key)
	if !ok {
		return fallback
	}
	if s, isStr := v.Str(); isStr {
		return s
	}
	return fallback
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key.
func (m *Map) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Clone returns a deep copy.
func (m *Map) Clone() *Map {
	out := NewMap()
	if m == nil {
		return out
	}
	for _, k := range m.keys {
		out.Set(k, m.values[k].clone())
	}
	return out
}

// Equal reports whether both maps hold the same keys and equal values,
// regardless of insertion order.
func (m *Map) Equal(o *Map) bool {
	if m.Len() != o.Len() {
		return false
	}
	for _, k := range m.Keys() {
		ov, ok := o.Get(k)
		if !ok {
			return false
		}
		if !m.values[k].Equal(ov) {
			return false
		}
	}
	return true
}
