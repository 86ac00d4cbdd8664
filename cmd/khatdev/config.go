// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khatulistiwa/khatdev/internal/config"
)

var configKeys = []string{
	"builder.signer", "builder.default_locale", "builder.asset_dirs",
	"builder.output_dir", "builder.checksum",
	"project.templates_dir", "project.default_template", "project.default_theme",
	"ui.color_scheme", "ui.verbose",
}

// newConfigCommand creates the `khatdev config` command tree. Subcommands
// read the configuration the root command already loaded.
func newConfigCommand(app *App, flags *globalFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage khatdev configuration",
		Long: `Manage khatdev configuration.

Configuration is stored in:
  - Linux: ~/.config/khatdev/config.cue
  - macOS: ~/Library/Application Support/khatdev/config.cue
  - Windows: %APPDATA%\khatdev\config.cue

A config.cue in the working directory is used when the user file is absent.
KHATDEV_* environment variables override file values, for example
KHATDEV_BUILDER_SIGNER.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(app, flags)
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app, flags, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app, flags)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  "Set a configuration value.\n\nValid keys: " + strings.Join(configKeys, ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(app, flags, args[0], args[1])
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(app.stdout, config.GenerateCUE(app.cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(app *App, flags *globalFlags) error {
	out := app.stdout
	cfg := app.cfg
	valueStyle := SuccessStyle

	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)

	path, err := config.Locate(config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil || path == "" {
		fmt.Fprintf(out, "%s: %s\n", CmdStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	} else {
		fmt.Fprintf(out, "%s: %s\n", CmdStyle.Render("Config file"), path)
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "%s:\n", CmdStyle.Render("builder"))
	fmt.Fprintf(out, "  signer: %s\n", valueStyle.Render(cfg.Builder.Signer))
	fmt.Fprintf(out, "  default_locale: %s\n", valueStyle.Render(cfg.Builder.DefaultLocale.String()))
	fmt.Fprintf(out, "  asset_dirs: %s\n", valueStyle.Render(strings.Join(cfg.Builder.AssetDirs, ", ")))
	fmt.Fprintf(out, "  output_dir: %s\n", orNone(cfg.Builder.OutputDir))
	fmt.Fprintf(out, "  checksum: %s\n", valueStyle.Render(strconv.FormatBool(cfg.Builder.Checksum)))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", CmdStyle.Render("project"))
	fmt.Fprintf(out, "  templates_dir: %s\n", orNone(cfg.Project.TemplatesDir))
	fmt.Fprintf(out, "  default_template: %s\n", valueStyle.Render(cfg.Project.DefaultTemplate))
	fmt.Fprintf(out, "  default_theme: %s\n", valueStyle.Render(cfg.Project.DefaultTheme))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", CmdStyle.Render("ui"))
	fmt.Fprintf(out, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(out, "  verbose: %s\n", valueStyle.Render(strconv.FormatBool(cfg.UI.Verbose)))

	return nil
}

func orNone(s string) string {
	if s == "" {
		return SubtitleStyle.Render("(none)")
	}
	return SuccessStyle.Render(s)
}

// targetPath is the file init and set write to: --config, else the file
// currently in use, else the user config file.
func targetPath(flags *globalFlags) (string, error) {
	if flags.configPath != "" {
		return flags.configPath, nil
	}
	if path, err := config.Locate(config.LoadOptions{}); err == nil && path != "" {
		return path, nil
	}
	return config.DefaultConfigPath()
}

func initConfig(app *App, flags *globalFlags, force bool) error {
	path := flags.configPath
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return app.fail(err, "locate configuration", "")
		}
	}

	written, err := config.WriteDefault(path, force)
	if err != nil {
		return app.fail(err, "write configuration", path)
	}
	if !written {
		fmt.Fprintf(app.stdout, "%s Configuration already exists at %s (use --force to overwrite)\n", WarningStyle.Render("!"), path)
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func showConfigPath(app *App, flags *globalFlags) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return app.fail(err, "locate configuration", "")
	}
	fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)

	path, err := config.Locate(config.LoadOptions{ConfigFilePath: flags.configPath})
	switch {
	case err != nil:
		return app.fail(err, "locate configuration", flags.configPath)
	case path == "":
		def, _ := config.DefaultConfigPath()
		fmt.Fprintf(app.stdout, "Config file: %s %s\n", def, SubtitleStyle.Render("(not created)"))
	default:
		fmt.Fprintf(app.stdout, "Config file: %s\n", path)
	}
	return nil
}

func setConfigValue(app *App, flags *globalFlags, key, value string) error {
	cfg := *app.cfg
	cfg.Builder.AssetDirs = append([]string(nil), app.cfg.Builder.AssetDirs...)

	if err := applyConfigValue(&cfg, key, value); err != nil {
		return app.fail(err, "set configuration", key)
	}
	if valid, errs := cfg.IsValid(); !valid {
		return app.fail(errs[0], "set configuration", key)
	}

	path, err := targetPath(flags)
	if err != nil {
		return app.fail(err, "locate configuration", "")
	}
	if err := config.Save(path, &cfg); err != nil {
		return app.fail(err, "save configuration", path)
	}
	*app.cfg = cfg

	fmt.Fprintf(app.stdout, "%s Set %s = %s\n", SuccessStyle.Render("✓"), key, value)
	return nil
}

func applyConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "builder.signer":
		cfg.Builder.Signer = value
	case "builder.default_locale":
		cfg.Builder.DefaultLocale = config.LocaleCode(value)
	case "builder.asset_dirs":
		var dirs []string
		for _, d := range strings.Split(value, ",") {
			if d = strings.TrimSpace(d); d != "" {
				dirs = append(dirs, d)
			}
		}
		cfg.Builder.AssetDirs = dirs
	case "builder.output_dir":
		cfg.Builder.OutputDir = value
	case "builder.checksum":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid builder.checksum %q: must be true or false", value)
		}
		cfg.Builder.Checksum = b
	case "project.templates_dir":
		cfg.Project.TemplatesDir = value
	case "project.default_template":
		cfg.Project.DefaultTemplate = value
	case "project.default_theme":
		cfg.Project.DefaultTheme = value
	case "ui.color_scheme":
		cfg.UI.ColorScheme = config.ColorScheme(value)
	case "ui.verbose":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid ui.verbose %q: must be true or false", value)
		}
		cfg.UI.Verbose = b
	default:
		return fmt.Errorf("unknown configuration key: %s\nValid keys: %s", key, strings.Join(configKeys, ", "))
	}
	return nil
}
