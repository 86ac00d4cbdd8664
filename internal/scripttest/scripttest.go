// SPDX-License-Identifier: MPL-2.0

package scripttest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/khatulistiwa/khatdev/internal/coreutils"
)

const (
	// TestsDir is the project directory scanned for scripts.
	TestsDir = "tests"
	// Pattern matches script file names inside TestsDir.
	Pattern = "test_*.sh"
	// ProjectDirEnv is exported to every script with the absolute project path.
	ProjectDirEnv = "KHAT_PROJECT_DIR"
)

type (
	// Options configures Run.
	Options struct {
		// Stdout and Stderr receive script output as it is produced. Output is
		// always captured in the result as well.
		Stdout io.Writer
		Stderr io.Writer
		// Env holds extra KEY=VALUE pairs appended to the process environment.
		Env []string
		// KeepGoing runs the remaining scripts after a failure.
		KeepGoing bool
		// Builtins resolves commands in-process before the PATH is searched.
		// Nil means coreutils.Default().
		Builtins *coreutils.Registry
		Logger   *log.Logger
	}

	// Result is the outcome of one script.
	Result struct {
		Name     string
		ExitCode int
		// Err is set when the script could not be parsed or interpreted.
		Err      error
		Output   []byte
		Duration time.Duration
	}

	// Report collects the results of a Run.
	Report struct {
		Results []Result
	}
)

// Passed reports whether the script exited with status zero.
func (r Result) Passed() bool { return r.ExitCode == 0 && r.Err == nil }

// Passed reports whether every script that ran passed.
func (r Report) Passed() bool {
	for _, res := range r.Results {
		if !res.Passed() {
			return false
		}
	}
	return true
}

// Failed returns the names of the scripts that did not pass.
func (r Report) Failed() []string {
	var names []string
	for _, res := range r.Results {
		if !res.Passed() {
			names = append(names, res.Name)
		}
	}
	return names
}

// Discover returns the script paths under projectDir/tests in lexical order.
// A project without a tests directory has no scripts.
func Discover(projectDir string) ([]string, error) {
	// Glob sorts its matches and only fails on a malformed pattern.
	return filepath.Glob(filepath.Join(projectDir, TestsDir, Pattern))
}

// Run executes every discovered script with the project directory as the
// working directory. It stops after the first failure unless KeepGoing is
// set. The returned error is non-nil only when scripts could not be run at
// all, for example when ctx is canceled.
func Run(ctx context.Context, projectDir string, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	absDir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}
	scripts, err := Discover(absDir)
	if err != nil {
		return nil, err
	}

	env := append(os.Environ(), ProjectDirEnv+"="+absDir)
	env = append(env, opts.Env...)
	if opts.Builtins == nil {
		opts.Builtins = coreutils.Default()
	}

	report := &Report{}
	for _, path := range scripts {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		logger.Debug("running script", "script", filepath.Base(path))
		res, err := runScript(ctx, absDir, path, env, opts)
		if err != nil {
			return report, err
		}
		report.Results = append(report.Results, res)
		logger.Debug("script finished", "script", res.Name, "exit", res.ExitCode, "duration", res.Duration)

		if !res.Passed() && !opts.KeepGoing {
			break
		}
	}
	return report, nil
}

// runScript returns an error only for context cancellation; script failures
// are reported in the Result.
func runScript(ctx context.Context, dir, path string, env []string, opts Options) (res Result, err error) {
	res.Name = filepath.Base(path)
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	src, err := os.ReadFile(path)
	if err != nil {
		res.ExitCode, res.Err = 1, fmt.Errorf("failed to read script: %w", err)
		return res, nil
	}

	prog, err := syntax.NewParser().Parse(bytes.NewReader(src), res.Name)
	if err != nil {
		res.ExitCode, res.Err = 1, fmt.Errorf("failed to parse script: %w", err)
		return res, nil
	}

	var output bytes.Buffer
	stdout, stderr := io.Writer(&output), io.Writer(&output)
	if opts.Stdout != nil {
		stdout = io.MultiWriter(&output, opts.Stdout)
	}
	if opts.Stderr != nil {
		stderr = io.MultiWriter(&output, opts.Stderr)
	}

	runner, err := interp.New(
		interp.Dir(dir),
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(nil, stdout, stderr),
		interp.ExecHandlers(opts.Builtins.ExecHandler),
	)
	if err != nil {
		res.ExitCode, res.Err = 1, fmt.Errorf("failed to create interpreter: %w", err)
		return res, nil
	}

	err = runner.Run(ctx, prog)
	res.Output = output.Bytes()
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}
	var exitStatus interp.ExitStatus
	if errors.As(err, &exitStatus) {
		res.ExitCode = int(exitStatus)
		return res, nil
	}
	res.ExitCode, res.Err = 1, fmt.Errorf("script execution failed: %w", err)
	return res, nil
}
