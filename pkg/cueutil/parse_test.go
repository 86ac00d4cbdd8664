// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"

	"cuelang.org/go/cue"
)

const testSchema = `
#Settings: {
	name:     string & !=""
	count:    int & >=0
	enabled:  bool
	tags?:    [...string]
	...
}
`

type testSettings struct {
	Name    string   `json:"name"`
	Count   int      `json:"count"`
	Enabled bool     `json:"enabled"`
	Tags    []string `json:"tags,omitempty"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	t.Run("CUE input", func(t *testing.T) {
		t.Parallel()

		data := []byte(`
name:    "batik"
count:   4
enabled: true
tags: ["kawung", "parang"]
`)
		result, err := ParseAndDecode[testSettings]([]byte(testSchema), data, "#Settings")
		if err != nil {
			t.Fatalf("ParseAndDecode() error = %v", err)
		}
		v := result.Value
		if v.Name != "batik" || v.Count != 4 || !v.Enabled || len(v.Tags) != 2 {
			t.Errorf("decoded %+v", v)
		}
	})

	t.Run("JSON input with unknown fields", func(t *testing.T) {
		t.Parallel()

		data := []byte(`{"name": "SiBatik", "count": 1, "enabled": false, "author": "Nusantara"}`)
		result, err := ParseAndDecode[testSettings]([]byte(testSchema), data, "#Settings",
			WithFilename("manifest.json"))
		if err != nil {
			t.Fatalf("ParseAndDecode() error = %v", err)
		}
		if result.Value.Name != "SiBatik" {
			t.Errorf("Name = %q", result.Value.Name)
		}
		author, err := result.Unified.LookupPath(cue.ParsePath("author")).String()
		if err != nil || author != "Nusantara" {
			t.Errorf("Unified author = %q, %v", author, err)
		}
	})

	t.Run("type mismatch names the file and field", func(t *testing.T) {
		t.Parallel()

		data := []byte(`{"name": "x", "count": "many", "enabled": true}`)
		_, err := ParseAndDecode[testSettings]([]byte(testSchema), data, "#Settings",
			WithFilename("manifest.json"))
		var se *SchemaError
		if !errors.As(err, &se) {
			t.Fatalf("error = %v, want *SchemaError", err)
		}
		if se.File != "manifest.json" || !strings.Contains(err.Error(), "count") {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("constraint violation", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testSettings]([]byte(testSchema),
			[]byte(`{"name": "", "count": 1, "enabled": true}`), "#Settings")
		if !errors.Is(err, ErrSchema) {
			t.Errorf("error = %v, want ErrSchema", err)
		}
	})

	t.Run("missing field fails when concrete", func(t *testing.T) {
		t.Parallel()

		data := []byte(`{"name": "x", "enabled": true}`)
		if _, err := ParseAndDecode[testSettings]([]byte(testSchema), data, "#Settings"); err == nil {
			t.Error("expected error for missing count")
		}
	})

	t.Run("syntax error", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testSettings]([]byte(testSchema), []byte(`{"name": `), "#Settings",
			WithFilename("broken.cue"))
		if err == nil || !strings.Contains(err.Error(), "broken.cue") {
			t.Errorf("error = %v, want mention of broken.cue", err)
		}
	})

	t.Run("size limit", func(t *testing.T) {
		t.Parallel()

		data := []byte(`{"name": "x", "count": 1, "enabled": true}`)
		_, err := ParseAndDecode[testSettings]([]byte(testSchema), data, "#Settings", WithMaxFileSize(8))
		if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
			t.Errorf("error = %v, want size error", err)
		}
	})

	t.Run("unknown definition is an internal error", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testSettings]([]byte(testSchema), []byte(`{}`), "#Missing")
		if err == nil || !strings.Contains(err.Error(), "internal error") {
			t.Errorf("error = %v, want internal error", err)
		}
	})
}

func TestWithConcreteFalseAllowsPartialInput(t *testing.T) {
	t.Parallel()

	const schema = `
#Partial: {
	signer?: string
	locale:  string | *"id_ID"
}
`
	type partial struct {
		Signer string `json:"signer,omitempty"`
		Locale string `json:"locale"`
	}

	result, err := ParseAndDecode[partial]([]byte(schema), []byte(`{}`), "#Partial", WithConcrete(false))
	if err != nil {
		t.Fatalf("ParseAndDecode() error = %v", err)
	}
	if result.Value.Locale != "id_ID" {
		t.Errorf("Locale = %q, want default id_ID", result.Value.Locale)
	}
}
