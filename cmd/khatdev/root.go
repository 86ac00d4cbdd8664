// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for khatdev.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// NewRootCommand builds the khatdev command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "khatdev",
		Short: "Build, inspect and verify Khatulistiwa OS application containers",
		Long: TitleStyle.Render("khatdev") + SubtitleStyle.Render(" - Khatulistiwa OS developer tools") + `

khatdev packages a project directory into a single .khapp container holding
the manifest, the executable, assets, localization data and build metadata,
sealed with a SHA-256 content digest.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Scaffold a project:   khatdev create SiBatik --theme kawung
  2. Check it:             khatdev test SiBatik
  3. Build the container:  khatdev build SiBatik

` + SubtitleStyle.Render("Examples:") + `
  khatdev build . -o dist/app.khapp   Build with an explicit output path
  khatdev inspect app.khapp           Show sections, assets and digest
  khatdev verify app.khapp            Recompute and compare the digest
  khatdev config show                 Show current configuration`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.setup(cmd.Context(), flags); err != nil {
				return app.fail(err, "load configuration", flags.configPath)
			}
			return nil
		},
	}
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)

	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/khatdev/config.cue)")

	root.AddCommand(
		newBuildCommand(app),
		newInspectCommand(app),
		newVerifyCommand(app),
		newExtractCommand(app),
		newCreateCommand(app),
		newTestCommand(app, flags),
		newArchiveCommand(app),
		newConfigCommand(app, flags),
	)
	return root
}

// Execute runs khatdev with process defaults and exits with the command's
// exit code. Called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(ExitFailure)
	}
}
