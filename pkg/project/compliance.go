// SPDX-License-Identifier: MPL-2.0

package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sahilm/fuzzy"
	"golang.org/x/exp/slices"
	"golang.org/x/mod/semver"
)

// MinCulturalColors is the number of cultural_colors entries VerifyCompliance
// requires.
const MinCulturalColors = 4

// BatikThemes are the recognised values of cultural.batik_theme.
var BatikThemes = []string{
	"parang", "kawung", "mega_mendung", "ceplok", "nitik",
	"truntum", "sogan", "sekar_jagad", "sido_mukti", "wahyu_tumurun",
}

// CulturalColors is the Indonesian palette used for generated projects.
var CulturalColors = map[string]string{
	"merah_delima": "#DC143C",
	"kuning_emas":  "#FFD700",
	"hijau_daun":   "#228B22",
	"biru_laut":    "#006994",
	"coklat_tanah": "#8B4513",
	"putih_kapas":  "#F8F8FF",
	"hitam_arang":  "#2F2F2F",
}

type (
	// Check is the outcome of one strict compliance check.
	Check struct {
		Name   string
		Passed bool
		Detail string
	}

	// ComplianceReport lists every strict check, passed or not.
	ComplianceReport struct {
		Checks []Check
	}
)

// IsKnownTheme reports whether theme is one of BatikThemes.
func IsKnownTheme(theme string) bool {
	return slices.Contains(BatikThemes, theme)
}

// SuggestTheme returns the recognised theme closest to theme, or "" when
// none is similar.
func SuggestTheme(theme string) string {
	matches := fuzzy.Find(strings.ToLower(theme), BatikThemes)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}

// ValidateStructure checks that manifest.json and src exist under dir.
func ValidateStructure(dir string) error {
	var missing []string
	for _, name := range []string{ManifestFile, "src"} {
		if _, err := os.Stat(filepath.Join(dir, name)); errors.Is(err, fs.ErrNotExist) {
			missing = append(missing, name)
		} else if err != nil {
			return err
		}
	}
	if len(missing) > 0 {
		return &StructureError{Dir: dir, Missing: missing}
	}
	return nil
}

// CheckCompliance returns non-fatal warnings about the project's cultural
// declarations. An empty result means nothing to report.
func CheckCompliance(dir string, info ManifestInfo) []string {
	var warnings []string
	if !info.Cultural.IndonesianElements {
		warnings = append(warnings, "no Indonesian elements specified")
	}
	if theme := info.Cultural.BatikTheme; theme != "" && !IsKnownTheme(theme) {
		msg := "unknown batik theme: " + theme
		if guess := SuggestTheme(theme); guess != "" {
			msg += fmt.Sprintf(" (did you mean %s?)", guess)
		}
		warnings = append(warnings, msg)
	}
	if v := info.Version; v != "" && !semver.IsValid("v"+strings.TrimPrefix(v, "v")) {
		warnings = append(warnings, fmt.Sprintf("version %q is not a semantic version", v))
	}
	if st, err := os.Stat(filepath.Join(dir, "cultural")); err != nil || !st.IsDir() {
		warnings = append(warnings, "no cultural assets directory found")
	}
	return warnings
}

// VerifyCompliance runs the strict checks. Every check is evaluated so the
// report is complete even when an early one fails.
func VerifyCompliance(info ManifestInfo) ComplianceReport {
	c := info.Cultural
	var report ComplianceReport

	if c.IndonesianElements {
		report.add("Indonesian elements", true, "present")
	} else {
		report.add("Indonesian elements", false, "missing")
	}

	if IsKnownTheme(c.BatikTheme) {
		report.add("Batik theme", true, c.BatikTheme)
	} else {
		report.add("Batik theme", false, "invalid or missing")
	}

	n := len(c.CulturalColors)
	report.add("Cultural colors", n >= MinCulturalColors,
		fmt.Sprintf("%d defined, %d required", n, MinCulturalColors))

	return report
}

// Passed reports whether every check passed.
func (r ComplianceReport) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Err returns nil when the report passed, otherwise an error naming the
// failed checks that wraps ErrComplianceFailed.
func (r ComplianceReport) Err() error {
	var failed []string
	for _, c := range r.Checks {
		if !c.Passed {
			failed = append(failed, strings.ToLower(c.Name))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrComplianceFailed, strings.Join(failed, ", "))
}

func (r *ComplianceReport) add(name string, passed bool, detail string) {
	r.Checks = append(r.Checks, Check{Name: name, Passed: passed, Detail: detail})
}
