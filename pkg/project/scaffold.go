// SPDX-License-Identifier: MPL-2.0

package project

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/khatulistiwa/khatdev/pkg/khapp"
)

const (
	// DefaultTemplate is the template used when none is requested.
	DefaultTemplate = "basic"
	// DefaultTheme is the batik theme of a new project.
	DefaultTheme = "parang"

	dirPerm  = 0o755
	filePerm = 0o644
	execPerm = 0o755
)

// ProjectDirs is the directory tree of a new project.
var ProjectDirs = []string{
	"src",
	"resources/icons",
	"resources/sounds",
	"resources/themes",
	"cultural/batik",
	"cultural/ornaments",
	"cultural/sounds",
	"tests",
	"docs",
}

// CreateOptions configures Create.
type CreateOptions struct {
	// Name is the application name and the project directory name.
	Name string
	// ParentDir defaults to the current directory.
	ParentDir string
	// Template is copied from TemplatesDir before generated files are written.
	Template string
	// TemplatesDir holds one directory per template. Empty disables copying.
	TemplatesDir string
	// Theme is the batik theme recorded in the manifest.
	Theme string
	// Now defaults to time.Now and stamps the manifest's build_date.
	Now func() time.Time
	// Git initializes a repository in the new project.
	Git bool
}

// Create scaffolds a new project and returns its absolute path. The target
// directory must not exist. On failure the partially created tree is removed.
func Create(opts CreateOptions) (path string, err error) {
	if err := validateProjectName(opts.Name); err != nil {
		return "", err
	}
	if opts.Template == "" {
		opts.Template = DefaultTemplate
	}
	if opts.Theme == "" {
		opts.Theme = DefaultTheme
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	parent := opts.ParentDir
	if parent == "" {
		if parent, err = os.Getwd(); err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
	}
	parent, err = filepath.Abs(parent)
	if err != nil {
		return "", fmt.Errorf("failed to resolve parent directory: %w", err)
	}

	projectPath := filepath.Join(parent, opts.Name)
	if _, statErr := os.Stat(projectPath); statErr == nil {
		return "", fmt.Errorf("%s: %w", projectPath, ErrProjectExists)
	}

	templatePath, err := resolveTemplate(opts.TemplatesDir, opts.Template)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(projectPath, dirPerm); err != nil {
		return "", fmt.Errorf("failed to create project directory: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(projectPath) // Best-effort cleanup on error path
		}
	}()

	for _, dir := range ProjectDirs {
		if err := os.MkdirAll(filepath.Join(projectPath, filepath.FromSlash(dir)), dirPerm); err != nil {
			return "", fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	if templatePath != "" {
		if err := copyTree(templatePath, projectPath); err != nil {
			return "", fmt.Errorf("failed to copy template %s: %w", opts.Template, err)
		}
	}

	manifest, err := indentJSON(NewManifest(opts.Name, opts.Theme, opts.Now()))
	if err != nil {
		return "", err
	}
	theme, err := indentJSON(themeConfig(opts.Theme))
	if err != nil {
		return "", err
	}
	sounds, err := indentJSON(soundConfig())
	if err != nil {
		return "", err
	}

	files := []struct {
		name string
		data []byte
		perm fs.FileMode
	}{
		{ManifestFile, manifest, filePerm},
		{"cultural/batik/theme.json", theme, filePerm},
		{"cultural/sounds/config.json", sounds, filePerm},
		{"main" + SourceExtension, []byte(mainSource(opts.Name)), filePerm},
		{"build.sh", []byte(buildScript), execPerm},
		{"tests/test_manifest.sh", []byte(manifestTestScript), filePerm},
	}
	for _, f := range files {
		target := filepath.Join(projectPath, filepath.FromSlash(f.name))
		if err := os.WriteFile(target, f.data, f.perm); err != nil {
			return "", fmt.Errorf("failed to create %s: %w", f.name, err)
		}
		// WriteFile only applies perm to new files; template copies keep theirs.
		if err := os.Chmod(target, f.perm); err != nil {
			return "", fmt.Errorf("failed to set mode of %s: %w", f.name, err)
		}
	}

	if opts.Git {
		if err := InitRepository(projectPath); err != nil {
			return "", err
		}
	}

	return projectPath, nil
}

// NewManifest returns the manifest written for a new project.
func NewManifest(name, theme string, created time.Time) *khapp.Map {
	colors := khapp.NewMap().
		Set("primary", khapp.String(CulturalColors["merah_delima"])).
		Set("secondary", khapp.String(CulturalColors["kuning_emas"])).
		Set("accent", khapp.String(CulturalColors["hijau_daun"])).
		Set("background", khapp.String(CulturalColors["putih_kapas"]))

	cultural := khapp.NewMap().
		Set("indonesian_elements", khapp.Bool(true)).
		Set("batik_theme", khapp.String(theme)).
		Set("garuda_animations", khapp.Bool(true)).
		Set("traditional_sounds", khapp.Bool(true)).
		Set("cultural_colors", khapp.MapValue(colors))

	return khapp.NewMap().
		Set("name", khapp.String(name)).
		Set("version", khapp.String("1.0.0")).
		Set("description", khapp.String("Aplikasi Khatulistiwa OS dengan tema "+theme)).
		Set("author", khapp.String("Developer Nusantara")).
		Set("category", khapp.String("application")).
		Set("type", khapp.String("user_application")).
		Set("cultural", khapp.MapValue(cultural)).
		Set("permissions", khapp.Strings("basic_ui", "cultural_assets_access", "audio_playback")).
		Set("dependencies", khapp.Strings("khatui_runtime.khat", "khatcore_runtime.khat")).
		Set("min_os_version", khapp.String(DefaultMinOSVersion)).
		Set("ui_framework", khapp.String(DefaultUIFramework)).
		Set("build_date", khapp.String(created.Format("2006-01-02T15:04:05"))).
		Set("cultural_compliance", khapp.Bool(true))
}

func themeConfig(theme string) *khapp.Map {
	colors := khapp.NewMap().
		Set("primary", khapp.String(CulturalColors["merah_delima"])).
		Set("secondary", khapp.String(CulturalColors["kuning_emas"])).
		Set("background", khapp.String(CulturalColors["putih_kapas"]))

	return khapp.NewMap().
		Set("theme", khapp.String(theme)).
		Set("primary_pattern", khapp.String(theme+"_primary")).
		Set("secondary_pattern", khapp.String(theme+"_secondary")).
		Set("colors", khapp.MapValue(colors)).
		Set("ornaments", khapp.Strings(
			"ornamen_"+theme+"_1",
			"ornamen_"+theme+"_2",
			"ornamen_"+theme+"_3",
		))
}

func soundConfig() *khapp.Map {
	sounds := khapp.NewMap().
		Set("button_click", khapp.String("gamelan_click.ogg")).
		Set("notification", khapp.String("gong_notification.ogg")).
		Set("success", khapp.String("gamelan_success.ogg")).
		Set("error", khapp.String("gong_error.ogg"))

	volumes := khapp.NewMap().
		Set("ui_sounds", khapp.Number("0.7")).
		Set("notifications", khapp.Number("0.8")).
		Set("cultural_music", khapp.Number("0.6"))

	return khapp.NewMap().
		Set("cultural_sounds", khapp.MapValue(sounds)).
		Set("volume_levels", khapp.MapValue(volumes))
}

// indentJSON renders m in stored form with two-space indentation.
func indentJSON(m *khapp.Map) ([]byte, error) {
	raw, err := m.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func validateProjectName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.New("project name cannot be empty")
	case name == "." || name == "..", strings.ContainsAny(name, `/\`):
		return fmt.Errorf("project name %q must be a plain directory name", name)
	}
	return nil
}

// resolveTemplate returns the directory to copy, falling back to the basic
// template. An empty templatesDir means no template files are copied.
func resolveTemplate(templatesDir, template string) (string, error) {
	if templatesDir == "" {
		return "", nil
	}
	for _, name := range []string{template, DefaultTemplate} {
		dir := filepath.Join(templatesDir, name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}
	return "", fmt.Errorf("%s in %s: %w", template, templatesDir, ErrTemplateNotFound)
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, dirPerm)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, info.Mode().Perm())
	})
}

func mainSource(name string) string {
	return fmt.Sprintf(`// %s
// Entry point compiled into the .khapp executable section.

app %q {
    theme: batik
    window {
        title: %q
    }
}
`, name, name, name)
}

const buildScript = `#!/bin/sh
# Build or test this Khatulistiwa OS application.
#   ./build.sh        build the .khapp container
#   ./build.sh test   run cultural compliance and project tests
set -e

if [ "$1" = "test" ]; then
	exec khatdev test .
fi
exec khatdev build .
`

const manifestTestScript = `#!/bin/sh
# Project layout checks, run by "khatdev test".
set -e

[ -f manifest.json ] || { echo "manifest.json missing"; exit 1; }
[ -d src ] || { echo "src directory missing"; exit 1; }
[ -d cultural ] || { echo "cultural directory missing"; exit 1; }
[ -f main.khat ] || { echo "main.khat missing"; exit 1; }
grep -Eq '"indonesian_elements": *true' manifest.json || { echo "cultural.indonesian_elements is not true"; exit 1; }
echo "project layout ok"
`
