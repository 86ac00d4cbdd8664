// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/khatulistiwa/khatdev/internal/issue"
	"github.com/khatulistiwa/khatdev/pkg/cueutil"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// isolated returns options that never touch the user's real config.
func isolated(t *testing.T) LoadOptions {
	t.Helper()
	return LoadOptions{ConfigDirPath: t.TempDir(), BaseDir: t.TempDir()}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Builder.Signer != "KhatSDK" {
		t.Errorf("Signer = %q, want KhatSDK", cfg.Builder.Signer)
	}
	if cfg.Builder.DefaultLocale != "id_ID" {
		t.Errorf("DefaultLocale = %q, want id_ID", cfg.Builder.DefaultLocale)
	}
	if want := []string{"resources", "assets", "cultural"}; !slices.Equal(cfg.Builder.AssetDirs, want) {
		t.Errorf("AssetDirs = %v, want %v", cfg.Builder.AssetDirs, want)
	}
	if cfg.Project.DefaultTheme != "parang" || cfg.Project.DefaultTemplate != "basic" {
		t.Errorf("Project = %+v", cfg.Project)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto || cfg.UI.Verbose {
		t.Errorf("UI = %+v", cfg.UI)
	}
	if valid, errs := cfg.IsValid(); !valid {
		t.Errorf("DefaultConfig() is invalid: %v", errs)
	}
}

func TestConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux")
	}

	t.Setenv(ConfigDirEnv, "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg-config")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if dir != filepath.Join("/tmp/test-xdg-config", AppName) {
		t.Errorf("ConfigDir() = %q", dir)
	}

	t.Setenv(ConfigDirEnv, "/override")
	if dir, _ := ConfigDir(); dir != "/override" {
		t.Errorf("ConfigDir() with override = %q", dir)
	}
	path, _ := DefaultConfigPath()
	if path != filepath.Join("/override", "config.cue") {
		t.Errorf("DefaultConfigPath() = %q", path)
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Parallel()

	opts := isolated(t)
	cfg, path, err := loadWithOptions(context.Background(), opts)
	if err != nil {
		t.Fatalf("load error = %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want none", path)
	}
	if cfg.Builder.Signer != "KhatSDK" || len(cfg.Builder.AssetDirs) != 3 {
		t.Errorf("cfg = %+v, want defaults", cfg.Builder)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Parallel()

	opts := isolated(t)
	want := writeConfig(t, opts.ConfigDirPath, `
builder: {
	signer: "CI Pipeline"
	asset_dirs: ["resources", "media"]
	checksum: true
}
ui: color_scheme: "dark"
`)

	cfg, path, err := loadWithOptions(context.Background(), opts)
	if err != nil {
		t.Fatalf("load error = %v", err)
	}
	if path != want {
		t.Errorf("resolved path = %q, want %q", path, want)
	}
	if cfg.Builder.Signer != "CI Pipeline" {
		t.Errorf("Signer = %q", cfg.Builder.Signer)
	}
	if !slices.Equal(cfg.Builder.AssetDirs, []string{"resources", "media"}) {
		t.Errorf("AssetDirs = %v", cfg.Builder.AssetDirs)
	}
	if !cfg.Builder.Checksum {
		t.Error("Checksum = false, want true")
	}
	if cfg.UI.ColorScheme != ColorSchemeDark {
		t.Errorf("ColorScheme = %q", cfg.UI.ColorScheme)
	}
	// Untouched keys keep their defaults.
	if cfg.Builder.DefaultLocale != DefaultLocale || cfg.Project.DefaultTheme != "parang" {
		t.Errorf("defaults lost: %+v %+v", cfg.Builder, cfg.Project)
	}
}

func TestLoad_BaseDirFallback(t *testing.T) {
	t.Parallel()

	opts := isolated(t)
	want := writeConfig(t, opts.BaseDir, `project: default_theme: "kawung"`)

	cfg, path, err := loadWithOptions(context.Background(), opts)
	if err != nil {
		t.Fatalf("load error = %v", err)
	}
	if path != want || cfg.Project.DefaultTheme != "kawung" {
		t.Errorf("path = %q theme = %q", path, cfg.Project.DefaultTheme)
	}
}

func TestLoad_ConfigDirWinsOverBaseDir(t *testing.T) {
	t.Parallel()

	opts := isolated(t)
	want := writeConfig(t, opts.ConfigDirPath, `project: default_theme: "truntum"`)
	writeConfig(t, opts.BaseDir, `project: default_theme: "kawung"`)

	cfg, path, err := loadWithOptions(context.Background(), opts)
	if err != nil {
		t.Fatalf("load error = %v", err)
	}
	if path != want || cfg.Project.DefaultTheme != "truntum" {
		t.Errorf("path = %q theme = %q", path, cfg.Project.DefaultTheme)
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		field   string
	}{
		{name: "wrong type", content: `ui: verbose: "yes"`, field: "verbose"},
		{name: "unknown color scheme", content: `ui: color_scheme: "neon"`, field: "color_scheme"},
		{name: "bad locale", content: `builder: default_locale: "indonesian"`, field: "default_locale"},
		{name: "unknown field", content: `builder: compress: true`, field: "compress"},
		{name: "empty signer", content: `builder: signer: ""`, field: "signer"},
		{name: "syntax error", content: `builder: {`, field: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := isolated(t)
			path := writeConfig(t, opts.ConfigDirPath, tt.content)

			_, _, err := loadWithOptions(context.Background(), opts)
			if err == nil {
				t.Fatal("expected error")
			}

			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("error should be ActionableError, got %T", err)
			}
			if ae.Resource != path || ae.Issue != issue.ConfigLoadFailedId {
				t.Errorf("ActionableError = %+v", ae)
			}
			if tt.field != "" {
				if !errors.Is(err, cueutil.ErrSchema) {
					t.Errorf("error should wrap cueutil.ErrSchema: %v", err)
				}
				if !strings.Contains(err.Error(), tt.field) {
					t.Errorf("error should mention %q: %v", tt.field, err)
				}
			}
		})
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	t.Parallel()

	t.Run("used exclusively", func(t *testing.T) {
		t.Parallel()

		opts := isolated(t)
		writeConfig(t, opts.ConfigDirPath, `builder: signer: "from-dir"`)
		explicit := filepath.Join(t.TempDir(), "custom.cue")
		if err := os.WriteFile(explicit, []byte(`builder: signer: "explicit"`), 0o644); err != nil {
			t.Fatal(err)
		}
		opts.ConfigFilePath = explicit

		cfg, path, err := loadWithOptions(context.Background(), opts)
		if err != nil {
			t.Fatalf("load error = %v", err)
		}
		if path != explicit || cfg.Builder.Signer != "explicit" {
			t.Errorf("path = %q signer = %q", path, cfg.Builder.Signer)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		opts := isolated(t)
		opts.ConfigFilePath = filepath.Join(t.TempDir(), "nope.cue")

		_, _, err := loadWithOptions(context.Background(), opts)
		var ae *issue.ActionableError
		if !errors.As(err, &ae) {
			t.Fatalf("error = %v, want ActionableError", err)
		}
		if !strings.Contains(ae.Error(), "config file not found") {
			t.Errorf("error = %v", ae)
		}
	})
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("KHATDEV_BUILDER_SIGNER", "EnvSigner")
	t.Setenv("KHATDEV_UI_VERBOSE", "true")

	opts := isolated(t)
	writeConfig(t, opts.ConfigDirPath, `builder: signer: "FileSigner"`)

	cfg, _, err := loadWithOptions(context.Background(), opts)
	if err != nil {
		t.Fatalf("load error = %v", err)
	}
	if cfg.Builder.Signer != "EnvSigner" {
		t.Errorf("Signer = %q, want environment value", cfg.Builder.Signer)
	}
	if !cfg.UI.Verbose {
		t.Error("Verbose = false, want true from environment")
	}
}

func TestLoad_InvalidEnvironmentValue(t *testing.T) {
	t.Setenv("KHATDEV_BUILDER_DEFAULT_LOCALE", "klingon")

	_, _, err := loadWithOptions(context.Background(), isolated(t))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := loadWithOptions(ctx, isolated(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Builder.Signer = `Studio "Nusantara"`
	cfg.Builder.OutputDir = "dist"
	cfg.Builder.Exclude = []string{"**/*.psd", "resources/raw/**"}
	cfg.Project.TemplatesDir = "/opt/khat/templates"
	cfg.UI.Verbose = true

	opts := isolated(t)
	path := filepath.Join(opts.ConfigDirPath, "config.cue")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, _, err := loadWithOptions(context.Background(), opts)
	if err != nil {
		t.Fatalf("load error = %v\n%s", err, GenerateCUE(cfg))
	}
	if got.Builder.Signer != cfg.Builder.Signer || got.Builder.OutputDir != "dist" ||
		got.Project.TemplatesDir != cfg.Project.TemplatesDir || !got.UI.Verbose {
		t.Errorf("round trip = %+v, want %+v", got, cfg)
	}
	if !slices.Equal(got.Builder.AssetDirs, cfg.Builder.AssetDirs) {
		t.Errorf("AssetDirs = %v", got.Builder.AssetDirs)
	}
	if !slices.Equal(got.Builder.Exclude, cfg.Builder.Exclude) {
		t.Errorf("Exclude = %v", got.Builder.Exclude)
	}
}

func TestWriteDefault(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.cue")

	written, err := WriteDefault(path, false)
	if err != nil || !written {
		t.Fatalf("WriteDefault() = %v, %v", written, err)
	}

	if err := os.WriteFile(path, []byte("// mine\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	written, err = WriteDefault(path, false)
	if err != nil || written {
		t.Errorf("WriteDefault() on existing file = %v, %v; want untouched", written, err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "// mine\n" {
		t.Error("existing file was overwritten without force")
	}

	if written, err = WriteDefault(path, true); err != nil || !written {
		t.Errorf("WriteDefault(force) = %v, %v", written, err)
	}
}
