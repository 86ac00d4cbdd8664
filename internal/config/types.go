// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultLocale is the locale of the generated localization entry.
	DefaultLocale LocaleCode = "id_ID"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidLocaleCode is returned when a LocaleCode is not of the form ll_CC.
	ErrInvalidLocaleCode = errors.New("invalid locale code")
	// ErrInvalidBuilderConfig is the sentinel error wrapped by InvalidBuilderConfigError.
	ErrInvalidBuilderConfig = errors.New("invalid builder config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")

	localePattern = regexp.MustCompile(`^[a-z]{2,3}_[A-Z]{2}$`)
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError wraps ErrInvalidColorScheme.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// LocaleCode is a language and region code such as "id_ID" or "en_US".
	// It doubles as the entry name in a container's localization table.
	LocaleCode string

	// InvalidLocaleCodeError wraps ErrInvalidLocaleCode.
	InvalidLocaleCodeError struct {
		Value LocaleCode
	}

	// InvalidBuilderConfigError collects the field errors of a BuilderConfig.
	InvalidBuilderConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError collects every field error of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config is the khatdev configuration.
	Config struct {
		Builder BuilderConfig `json:"builder" mapstructure:"builder"`
		Project ProjectConfig `json:"project" mapstructure:"project"`
		UI      UIConfig      `json:"ui" mapstructure:"ui"`
	}

	// BuilderConfig controls container builds.
	BuilderConfig struct {
		// Signer is written into the digest record.
		Signer string `json:"signer" mapstructure:"signer"`
		// DefaultLocale names the generated localization entry.
		DefaultLocale LocaleCode `json:"default_locale" mapstructure:"default_locale"`
		// AssetDirs are the project subdirectories collected as assets.
		AssetDirs []string `json:"asset_dirs" mapstructure:"asset_dirs"`
		// Exclude holds doublestar patterns of asset names left out of builds.
		Exclude []string `json:"exclude" mapstructure:"exclude"`
		// OutputDir receives build output when no explicit path is given.
		OutputDir string `json:"output_dir" mapstructure:"output_dir"`
		// Checksum writes a .sha256 sidecar next to every container.
		Checksum bool `json:"checksum" mapstructure:"checksum"`
	}

	// ProjectConfig controls project scaffolding.
	ProjectConfig struct {
		TemplatesDir    string `json:"templates_dir" mapstructure:"templates_dir"`
		DefaultTemplate string `json:"default_template" mapstructure:"default_template"`
		DefaultTheme    string `json:"default_theme" mapstructure:"default_theme"`
	}

	// UIConfig controls terminal output.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
	}
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Builder: BuilderConfig{
			Signer:        "KhatSDK",
			DefaultLocale: DefaultLocale,
			AssetDirs:     []string{"resources", "assets", "cultural"},
		},
		Project: ProjectConfig{
			DefaultTemplate: "basic",
			DefaultTheme:    "parang",
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

func (cs ColorScheme) String() string { return string(cs) }

// IsValid reports whether cs is one of the known schemes.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

func (l LocaleCode) String() string { return string(l) }

// IsValid reports whether l has the ll_CC shape.
func (l LocaleCode) IsValid() (bool, []error) {
	if !localePattern.MatchString(string(l)) {
		return false, []error{&InvalidLocaleCodeError{Value: l}}
	}
	return true, nil
}

func (e *InvalidLocaleCodeError) Error() string {
	return fmt.Sprintf("invalid locale code %q: expected language_REGION such as id_ID", e.Value)
}

func (e *InvalidLocaleCodeError) Unwrap() error { return ErrInvalidLocaleCode }

// IsValid checks the builder settings that the schema cannot see after
// defaults and environment overrides are applied.
func (c BuilderConfig) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(c.Signer) == "" {
		errs = append(errs, errors.New("builder.signer must not be empty"))
	}
	if valid, fieldErrs := c.DefaultLocale.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	for i, dir := range c.AssetDirs {
		if strings.TrimSpace(dir) == "" {
			errs = append(errs, fmt.Errorf("builder.asset_dirs[%d] must not be empty", i))
		}
	}
	for i, pat := range c.Exclude {
		if !doublestar.ValidatePattern(pat) {
			errs = append(errs, fmt.Errorf("builder.exclude[%d] %q is not a valid glob", i, pat))
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidBuilderConfigError{FieldErrors: errs}}
	}
	return true, nil
}

func (e *InvalidBuilderConfigError) Error() string {
	return fmt.Sprintf("invalid builder config: %s", joinErrors(e.FieldErrors))
}

func (e *InvalidBuilderConfigError) Unwrap() error { return ErrInvalidBuilderConfig }

// IsValid validates every section.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Builder.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s", joinErrors(e.FieldErrors))
}

func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

func joinErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}
