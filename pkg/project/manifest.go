// SPDX-License-Identifier: MPL-2.0

package project

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/khatulistiwa/khatdev/pkg/cueutil"
	"github.com/khatulistiwa/khatdev/pkg/khapp"

	"github.com/tidwall/jsonc"
)

// ManifestFile is the manifest file name inside a project.
const ManifestFile = "manifest.json"

//go:embed manifest_schema.cue
var manifestSchema []byte

type (
	// Manifest is a loaded manifest.json: the ordered map that goes into the
	// container verbatim plus a typed view for the build pipeline.
	Manifest struct {
		Path string
		Map  *khapp.Map
		Info ManifestInfo
	}

	// ManifestInfo is the typed subset of the manifest the toolchain reads.
	ManifestInfo struct {
		Name               string       `json:"name"`
		Version            string       `json:"version"`
		Description        string       `json:"description"`
		Author             string       `json:"author"`
		Category           string       `json:"category,omitempty"`
		Type               string       `json:"type,omitempty"`
		Cultural           CulturalInfo `json:"cultural,omitempty"`
		Permissions        []string     `json:"permissions,omitempty"`
		Dependencies       []string     `json:"dependencies,omitempty"`
		MinOSVersion       string       `json:"min_os_version,omitempty"`
		UIFramework        string       `json:"ui_framework,omitempty"`
		BuildDate          string       `json:"build_date,omitempty"`
		CulturalCompliance bool         `json:"cultural_compliance,omitempty"`
	}

	// CulturalInfo is the manifest's "cultural" block.
	CulturalInfo struct {
		IndonesianElements bool              `json:"indonesian_elements,omitempty"`
		BatikTheme         string            `json:"batik_theme,omitempty"`
		GarudaAnimations   bool              `json:"garuda_animations,omitempty"`
		TraditionalSounds  bool              `json:"traditional_sounds,omitempty"`
		CulturalColors     map[string]string `json:"cultural_colors,omitempty"`
	}
)

// LoadManifest reads dir/manifest.json. Comments and trailing commas are
// stripped, key order is preserved, the required fields are enforced and the
// field types are checked against the manifest schema.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", dir, ErrManifestNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return ParseManifest(path, data)
}

// typedView returns the JSON checked against the schema. The required fields
// may hold any JSON value; the view carries their text so the typed fields
// stay strings. A null becomes "".
func typedView(m *khapp.Map) ([]byte, error) {
	view := m.Clone()
	for _, field := range khapp.RequiredManifestFields {
		v, _ := view.Get(field)
		switch v.Kind() {
		case khapp.KindString:
		case khapp.KindNull:
			view.Set(field, khapp.String(""))
		default:
			text, err := v.MarshalJSON()
			if err != nil {
				return nil, err
			}
			view.Set(field, khapp.String(string(text)))
		}
	}
	return view.MarshalJSON()
}

// ParseManifest parses manifest bytes; path is used in error messages.
func ParseManifest(path string, data []byte) (*Manifest, error) {
	stripped := jsonc.ToJSON(data)

	m, err := khapp.ParseMap(stripped)
	if err != nil {
		return nil, &ManifestError{Path: path, Err: err}
	}
	if err := khapp.ValidateManifest(m); err != nil {
		return nil, &ManifestError{Path: path, Err: err}
	}

	view, err := typedView(m)
	if err != nil {
		return nil, &ManifestError{Path: path, Err: err}
	}
	result, err := cueutil.ParseAndDecode[ManifestInfo](manifestSchema, view, "#Manifest",
		cueutil.WithFilename(path))
	if err != nil {
		return nil, &ManifestError{Path: path, Err: err}
	}

	return &Manifest{Path: path, Map: m, Info: *result.Value}, nil
}
