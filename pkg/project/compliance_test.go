// SPDX-License-Identifier: MPL-2.0

package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fourColors() map[string]string {
	return map[string]string{"primary": "a", "secondary": "b", "accent": "c", "background": "d"}
}

func TestVerifyCompliance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		cultural   CulturalInfo
		wantFailed []string
	}{
		{
			name:     "complete",
			cultural: CulturalInfo{IndonesianElements: true, BatikTheme: "sekar_jagad", CulturalColors: fourColors()},
		},
		{
			name:       "no elements",
			cultural:   CulturalInfo{BatikTheme: "parang", CulturalColors: fourColors()},
			wantFailed: []string{"Indonesian elements"},
		},
		{
			name:       "unknown theme",
			cultural:   CulturalInfo{IndonesianElements: true, BatikTheme: "tartan", CulturalColors: fourColors()},
			wantFailed: []string{"Batik theme"},
		},
		{
			name:       "three colors",
			cultural:   CulturalInfo{IndonesianElements: true, BatikTheme: "parang", CulturalColors: map[string]string{"a": "1", "b": "2", "c": "3"}},
			wantFailed: []string{"Cultural colors"},
		},
		{
			name:       "empty block",
			wantFailed: []string{"Indonesian elements", "Batik theme", "Cultural colors"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			report := VerifyCompliance(ManifestInfo{Cultural: tt.cultural})
			if len(report.Checks) != 3 {
				t.Fatalf("len(Checks) = %d, want 3", len(report.Checks))
			}

			var failed []string
			for _, c := range report.Checks {
				if !c.Passed {
					failed = append(failed, c.Name)
				}
			}
			if strings.Join(failed, ",") != strings.Join(tt.wantFailed, ",") {
				t.Errorf("failed checks = %v, want %v", failed, tt.wantFailed)
			}

			if report.Passed() != (len(tt.wantFailed) == 0) {
				t.Errorf("Passed() = %v", report.Passed())
			}
			err := report.Err()
			if len(tt.wantFailed) == 0 {
				if err != nil {
					t.Errorf("Err() = %v, want nil", err)
				}
			} else if !errors.Is(err, ErrComplianceFailed) {
				t.Errorf("Err() = %v, want ErrComplianceFailed", err)
			}
		})
	}
}

func TestCheckCompliance(t *testing.T) {
	t.Parallel()

	withCultural := t.TempDir()
	if err := os.Mkdir(filepath.Join(withCultural, "cultural"), 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		dir  string
		info ManifestInfo
		want []string
	}{
		{
			name: "clean",
			dir:  withCultural,
			info: ManifestInfo{Cultural: CulturalInfo{IndonesianElements: true, BatikTheme: "kawung"}},
		},
		{
			name: "theme omitted is not reported",
			dir:  withCultural,
			info: ManifestInfo{Cultural: CulturalInfo{IndonesianElements: true}},
		},
		{
			name: "everything missing",
			dir:  t.TempDir(),
			info: ManifestInfo{Cultural: CulturalInfo{BatikTheme: "plaid"}},
			want: []string{
				"no Indonesian elements specified",
				"unknown batik theme: plaid",
				"no cultural assets directory found",
			},
		},
		{
			name: "misspelled theme gets a suggestion",
			dir:  withCultural,
			info: ManifestInfo{Cultural: CulturalInfo{IndonesianElements: true, BatikTheme: "prang"}},
			want: []string{"unknown batik theme: prang (did you mean parang?)"},
		},
		{
			name: "semantic versions pass with or without v",
			dir:  withCultural,
			info: ManifestInfo{Version: "v1.2.0", Cultural: CulturalInfo{IndonesianElements: true}},
		},
		{
			name: "non-semantic version",
			dir:  withCultural,
			info: ManifestInfo{Version: "1.0-beta", Cultural: CulturalInfo{IndonesianElements: true}},
			want: []string{`version "1.0-beta" is not a semantic version`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CheckCompliance(tt.dir, tt.info)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("CheckCompliance() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateStructure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	err := ValidateStructure(dir)

	var serr *StructureError
	if !errors.As(err, &serr) {
		t.Fatalf("ValidateStructure() error = %v, want *StructureError", err)
	}
	if strings.Join(serr.Missing, ",") != "manifest.json,src" {
		t.Errorf("Missing = %v", serr.Missing)
	}
	if !errors.Is(err, ErrInvalidStructure) {
		t.Error("StructureError does not wrap ErrInvalidStructure")
	}
}

func TestIsKnownTheme(t *testing.T) {
	t.Parallel()

	for _, theme := range BatikThemes {
		if !IsKnownTheme(theme) {
			t.Errorf("IsKnownTheme(%q) = false", theme)
		}
	}
	if IsKnownTheme("Parang") {
		t.Error("theme matching must be case-sensitive")
	}
}
