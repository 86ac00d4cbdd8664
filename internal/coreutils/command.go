// SPDX-License-Identifier: MPL-2.0

package coreutils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/pflag"
	"golang.org/x/exp/slices"
	"mvdan.cc/sh/v3/interp"
)

type (
	// Command is one in-process utility. args[0] is the command name.
	Command interface {
		Name() string
		Run(ctx context.Context, args []string) error
	}

	// IO is the environment a Command runs in.
	IO struct {
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
		// Dir resolves relative file arguments.
		Dir string
	}

	// Registry maps command names to implementations. It is safe for
	// concurrent use.
	Registry struct {
		mu       sync.RWMutex
		commands map[string]Command
	}

	ioKey struct{}
)

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Default returns a registry holding every utility in this package.
func Default() *Registry {
	r := NewRegistry()
	for _, cmd := range []Command{
		headCommand{}, tailCommand{}, wcCommand{}, grepCommand{},
		basenameCommand{}, dirnameCommand{}, sha256sumCommand{},
	} {
		r.Register(cmd)
	}
	return r
}

// Register adds cmd. It panics on an empty or duplicate name.
func (r *Registry) Register(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := cmd.Name()
	if name == "" {
		panic("coreutils: command with empty name")
	}
	if _, exists := r.commands[name]; exists {
		panic(fmt.Sprintf("coreutils: command %q already registered", name))
	}
	r.commands[name] = cmd
}

func (r *Registry) Lookup(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ExecHandler returns interpreter middleware that runs registered commands
// in-process and hands everything else to next.
//
// A command error other than an exit status is printed to stderr as
// "name: message" and becomes exit status 1, so a failing utility fails the
// script line instead of aborting the interpreter.
func (r *Registry) ExecHandler(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		if len(args) == 0 {
			return next(ctx, args)
		}
		cmd, ok := r.Lookup(args[0])
		if !ok {
			return next(ctx, args)
		}

		hc := interp.HandlerCtx(ctx)
		cio := &IO{Stdin: hc.Stdin, Stdout: hc.Stdout, Stderr: hc.Stderr, Dir: hc.Dir}
		err := cmd.Run(WithIO(ctx, cio), args)
		return exitStatus(cio.Stderr, args[0], err)
	}
}

// WithIO attaches cio to ctx for a Command to pick up.
func WithIO(ctx context.Context, cio *IO) context.Context {
	return context.WithValue(ctx, ioKey{}, cio)
}

// IOFrom returns the IO attached to ctx, or one that reads nothing and
// discards output.
func IOFrom(ctx context.Context) *IO {
	if cio, ok := ctx.Value(ioKey{}).(*IO); ok {
		return cio
	}
	return &IO{Stdin: eofReader{}, Stdout: io.Discard, Stderr: io.Discard}
}

func exitStatus(stderr io.Writer, name string, err error) error {
	if err == nil {
		return nil
	}
	var status interp.ExitStatus
	if errors.As(err, &status) {
		return status
	}
	if stderr != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
	}
	var se *statusError
	if errors.As(err, &se) {
		return interp.ExitStatus(se.code)
	}
	return interp.ExitStatus(1)
}

// statusError carries the exit status a failing command should report.
type statusError struct {
	code uint8
	err  error
}

func (e *statusError) Error() string { return e.err.Error() }

func (e *statusError) Unwrap() error { return e.err }

func withStatus(code uint8, err error) error {
	if err == nil {
		return nil
	}
	return &statusError{code: code, err: err}
}

// usagef reports a bad invocation, exit status 2.
func usagef(format string, args ...any) error {
	return withStatus(2, fmt.Errorf(format, args...))
}

// newFlags returns a flag set that reports problems as errors instead of
// printing them.
func newFlags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return withStatus(2, err)
	}
	return nil
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
