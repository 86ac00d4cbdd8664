// SPDX-License-Identifier: MPL-2.0

package khapp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"unicode/utf8"
)

// jsonStyle selects between the text forms used inside a container. All forms
// share the ", " and ": " separators of the reference tooling so containers
// built by either toolchain carry identical section bytes.
type jsonStyle struct {
	sortKeys  bool
	asciiOnly bool
}

var (
	// storedStyle is used for the manifest section and locale payloads.
	storedStyle = jsonStyle{}
	// canonicalStyle is the hashed manifest form.
	canonicalStyle = jsonStyle{sortKeys: true, asciiOnly: true}
	// recordStyle is used for the metadata and digest sections.
	recordStyle = jsonStyle{asciiOnly: true}
)

const hexDigits = "0123456789abcdef"

// MarshalJSON renders the map in its stored form: insertion order with
// non-ASCII text emitted as UTF-8.
func (m *Map) MarshalJSON() ([]byte, error) {
	return storedStyle.appendMap(nil, m), nil
}

// CanonicalJSON renders the map with keys sorted at every level and all
// non-ASCII text escaped. Two maps that are Equal produce identical output.
func (m *Map) CanonicalJSON() []byte {
	return canonicalStyle.appendMap(nil, m)
}

// MarshalJSON renders the value in its stored form.
func (v Value) MarshalJSON() ([]byte, error) {
	return storedStyle.appendValue(nil, v), nil
}

func (s jsonStyle) appendMap(dst []byte, m *Map) []byte {
	keys := m.Keys()
	if s.sortKeys {
		slices.Sort(keys)
	}
	dst = append(dst, '{')
	for i, k := range keys {
		if i > 0 {
			dst = append(dst, ',', ' ')
		}
		dst = s.appendString(dst, k)
		dst = append(dst, ':', ' ')
		v, _ := m.Get(k)
		dst = s.appendValue(dst, v)
	}
	return append(dst, '}')
}

func (s jsonStyle) appendValue(dst []byte, v Value) []byte {
	switch v.kind {
	case KindString:
		return s.appendString(dst, v.str)
	case KindNumber:
		return append(dst, v.str...)
	case KindBool:
		if v.b {
			return append(dst, "true"...)
		}
		return append(dst, "false"...)
	case KindMap:
		return s.appendMap(dst, v.m)
	case KindList:
		dst = append(dst, '[')
		for i, item := range v.list {
			if i > 0 {
				dst = append(dst, ',', ' ')
			}
			dst = s.appendValue(dst, item)
		}
		return append(dst, ']')
	default:
		return append(dst, "null"...)
	}
}

func (s jsonStyle) appendString(dst []byte, str string) []byte {
	dst = append(dst, '"')
	for _, r := range str {
		switch r {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			switch {
			case r < 0x20:
				dst = appendEscape(dst, r)
			case s.asciiOnly && r > 0x7e:
				if r > 0xffff {
					r -= 0x10000
					dst = appendEscape(dst, 0xd800|(r>>10)&0x3ff)
					dst = appendEscape(dst, 0xdc00|r&0x3ff)
				} else {
					dst = appendEscape(dst, r)
				}
			default:
				dst = utf8.AppendRune(dst, r)
			}
		}
	}
	return append(dst, '"')
}

func appendEscape(dst []byte, r rune) []byte {
	return append(dst, '\\', 'u',
		hexDigits[r>>12&0xf], hexDigits[r>>8&0xf], hexDigits[r>>4&0xf], hexDigits[r&0xf])
}

// ParseMap decodes a JSON object into an ordered Map. Key order, number
// literals and nesting are preserved. Input that is not valid UTF-8, not a
// single JSON object, or followed by trailing data is rejected.
func ParseMap(data []byte) (*Map, error) {
	if !utf8.Valid(data) {
		return nil, errors.New("invalid UTF-8")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading JSON: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}
	m, err := parseObject(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON object")
	}
	return m, nil
}

// parseObject reads object members after the opening brace has been consumed.
func parseObject(dec *json.Decoder) (*Map, error) {
	m := NewMap()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading object key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		v, err := parseValue(dec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		m.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading object end: %w", err)
	}
	return m, nil
}

func parseValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, fmt.Errorf("reading value: %w", err)
	}
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(t), nil
	case json.Number:
		return Number(t.String()), nil
	case bool:
		return Bool(t), nil
	case json.Delim:
		switch t {
		case '{':
			m, err := parseObject(dec)
			if err != nil {
				return Value{}, err
			}
			return MapValue(m), nil
		case '[':
			var items []Value
			for dec.More() {
				item, err := parseValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, fmt.Errorf("reading array end: %w", err)
			}
			return Value{kind: KindList, list: items}, nil
		}
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}
