// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SampleManifest is a minimal manifest.json accepted by the project loader.
const SampleManifest = `{
  "name": "SiBatik",
  "version": "1.0.0",
  "description": "Batik pattern gallery",
  "author": "Nusantara Studio",
  "cultural": {
    "indonesian_elements": true,
    "batik_theme": "parang",
    "cultural_colors": {
      "primary": "#DC143C",
      "secondary": "#FFD700",
      "accent": "#228B22",
      "background": "#F8F8FF"
    }
  }
}
`

// WriteFiles creates each file under root, making parent directories as
// needed. Keys use forward slashes.
func WriteFiles(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
}

// NewProject creates a project directory named name inside a fresh temporary
// directory, with SampleManifest, a src directory and the given extra files.
// It returns the project path.
func NewProject(t testing.TB, name string, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(filepath.Join(dir, "src"), 0o755); err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	all := map[string]string{"manifest.json": SampleManifest}
	for k, v := range files {
		all[k] = v
	}
	WriteFiles(t, dir, all)
	return dir
}
