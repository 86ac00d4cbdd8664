// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/khatulistiwa/khatdev/internal/config"
)

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives it and writes through its stdout and stderr.
	App struct {
		Config config.Provider
		stdout io.Writer
		stderr io.Writer
		now    func() time.Time

		// Set by the root command before any subcommand runs.
		cfg    *config.Config
		logger *log.Logger
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Stdout io.Writer
		Stderr io.Writer
		Now    func() time.Time
	}

	// globalFlags holds the persistent root flags.
	globalFlags struct {
		verbose    bool
		configPath string
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &App{
		Config: deps.Config,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
		now:    deps.Now,
		cfg:    config.DefaultConfig(),
		logger: log.New(io.Discard),
	}
}

// setup loads configuration and builds the logger for one invocation. The
// --verbose flag wins over ui.verbose.
func (a *App) setup(ctx context.Context, flags *globalFlags) error {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return err
	}
	a.cfg = cfg
	if !flags.verbose {
		flags.verbose = cfg.UI.Verbose
	}

	level := log.WarnLevel
	if flags.verbose {
		level = log.DebugLevel
	}
	a.logger = log.NewWithOptions(a.stderr, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
	return nil
}

// issueStyle maps ui.color_scheme to a glamour style name. Output that is
// not a terminal gets the plain style regardless of the scheme.
func (a *App) issueStyle() string {
	if !isTerminal(a.stderr) {
		return "notty"
	}
	switch a.cfg.UI.ColorScheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
