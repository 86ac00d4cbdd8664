// SPDX-License-Identifier: MPL-2.0

package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/khatulistiwa/khatdev/pkg/khapp"
)

const (
	// DefaultLocale is the locale generated for every package.
	DefaultLocale = "id_ID"
	// LocalesDir holds optional <code>.json localization files.
	LocalesDir = "locales"
)

var languageNames = map[string]string{
	"id":  "Bahasa Indonesia",
	"en":  "English",
	"jv":  "Basa Jawa",
	"su":  "Basa Sunda",
	"ms":  "Bahasa Melayu",
	"ban": "Basa Bali",
}

// LanguageName returns the display name for a locale code such as "id_ID",
// or the code itself when the language is unknown.
func LanguageName(code string) string {
	lang, _, _ := strings.Cut(code, "_")
	if name, ok := languageNames[lang]; ok {
		return name
	}
	return code
}

// DefaultLocaleEntry builds the generated localization entry for locale from
// the manifest's name and description.
func DefaultLocaleEntry(manifest *khapp.Map, locale string) khapp.Entry {
	m := khapp.NewMap().
		Set("app_name", khapp.String(manifest.GetString("name", "Unknown App"))).
		Set("app_description", khapp.String(manifest.GetString("description", "No description"))).
		Set("language", khapp.String(LanguageName(locale)))
	data, _ := m.MarshalJSON()
	return khapp.Entry{Name: locale, Data: data}
}

// CollectLocalization returns the generated default locale entry followed by
// one entry per locales/<code>.json file, in lexical order. A file named after
// the default locale replaces the generated entry.
func CollectLocalization(root string, manifest *khapp.Map, defaultLocale string) ([]khapp.Entry, error) {
	if defaultLocale == "" {
		defaultLocale = DefaultLocale
	}
	entries := []khapp.Entry{DefaultLocaleEntry(manifest, defaultLocale)}

	files, err := os.ReadDir(filepath.Join(root, LocalesDir))
	if errors.Is(err, fs.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading locales: %w", err)
	}

	for _, f := range files {
		code, ok := strings.CutSuffix(f.Name(), ".json")
		if !ok || code == "" || f.IsDir() {
			continue
		}
		path := filepath.Join(root, LocalesDir, f.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading locale %s: %w", code, err)
		}
		m, err := khapp.ParseMap(jsonc.ToJSON(raw))
		if err != nil {
			return nil, fmt.Errorf("locale %s: %w", path, err)
		}
		data, _ := m.MarshalJSON()

		if code == defaultLocale {
			entries[0].Data = data
			continue
		}
		entries = append(entries, khapp.Entry{Name: code, Data: data})
	}
	return entries, nil
}
