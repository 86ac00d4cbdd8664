// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/khatulistiwa/khatdev/internal/scripttest"
	"github.com/khatulistiwa/khatdev/pkg/project"
)

// ErrScriptsFailed is returned by the test command when a project script
// exits with a non-zero status.
var ErrScriptsFailed = errors.New("project test scripts failed")

func newTestCommand(app *App, flags *globalFlags) *cobra.Command {
	var keepGoing bool

	cmd := &cobra.Command{
		Use:   "test [project_dir]",
		Short: "Run compliance checks and project test scripts",
		Long: `Run compliance checks and project test scripts.

First checks the manifest's cultural declarations: Indonesian elements must be
present, the batik theme must be recognised and at least four cultural colors
must be defined. Then runs every tests/test_*.sh script in the project with an
in-process POSIX shell, stopping at the first failing script unless
--keep-going is set.

Scripts run with the project directory as working directory and
KHAT_PROJECT_DIR set to its absolute path.

Examples:
  khatdev test
  khatdev --verbose test ./SiBatik --keep-going`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runTest(cmd, app, dir, flags.verbose, keepGoing)
		},
	}

	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "run remaining scripts after a failure")

	return cmd
}

func runTest(cmd *cobra.Command, app *App, dir string, verbose, keepGoing bool) error {
	out := app.stdout

	m, err := project.LoadManifest(dir)
	if err != nil {
		return app.fail(err, "load manifest", dir)
	}

	fmt.Fprintln(out, TitleStyle.Render("Cultural Compliance"))
	report := project.VerifyCompliance(m.Info)
	for _, c := range report.Checks {
		fmt.Fprintf(out, "  %s %s\n", checkMark(c.Passed), keyStyle.Render(c.Name)+" "+SubtitleStyle.Render(c.Detail))
	}
	if err := report.Err(); err != nil {
		return app.fail(err, "check compliance", m.Path)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, TitleStyle.Render("Project Tests"))

	opts := scripttest.Options{KeepGoing: keepGoing, Logger: app.logger}
	if verbose {
		opts.Stdout, opts.Stderr = out, app.stderr
	}
	res, err := scripttest.Run(cmd.Context(), dir, opts)
	if err != nil {
		return app.fail(err, "run test scripts", dir)
	}
	if len(res.Results) == 0 {
		fmt.Fprintf(out, "  %s\n", SubtitleStyle.Render("(no tests/test_*.sh scripts)"))
	}
	for _, r := range res.Results {
		line := fmt.Sprintf("  %s %s %s", checkMark(r.Passed()), r.Name, SubtitleStyle.Render(r.Duration.Round(time.Millisecond).String()))
		if !r.Passed() {
			line += " " + ErrorStyle.Render(fmt.Sprintf("exit %d", r.ExitCode))
		}
		fmt.Fprintln(out, line)
		if r.Err != nil {
			fmt.Fprintf(out, "    %s\n", ErrorStyle.Render(r.Err.Error()))
		}
	}

	if !res.Passed() {
		failed := res.Failed()
		if !verbose {
			// Output was only captured; show the first failing script's.
			for _, r := range res.Results {
				if !r.Passed() && len(r.Output) > 0 {
					fmt.Fprintf(out, "\n%s\n%s", SubtitleStyle.Render(r.Name+" output:"), r.Output)
					break
				}
			}
		}
		return app.fail(fmt.Errorf("%w: %s", ErrScriptsFailed, strings.Join(failed, ", ")), "run test scripts", dir)
	}

	fmt.Fprintf(out, "\n%s %d checks, %d scripts\n", SuccessStyle.Render("✓ All tests passed:"), len(report.Checks), len(res.Results))
	return nil
}

func checkMark(passed bool) string {
	if passed {
		return SuccessStyle.Render("✓")
	}
	return ErrorStyle.Render("✗")
}
