// SPDX-License-Identifier: MPL-2.0

package coreutils

import (
	"io"
	"os"
	"path/filepath"
)

// input is one file argument, or stdin when name is "-".
type input struct {
	name string
	r    io.Reader
}

// eachInput calls fn for every file in names, or once for stdin when names
// is empty. Relative names resolve against cio.Dir. It stops at the first
// error.
func eachInput(cio *IO, names []string, fn func(in input, index int) error) error {
	if len(names) == 0 {
		return fn(input{name: "-", r: cio.Stdin}, 0)
	}
	for i, name := range names {
		if err := withFile(cio, name, func(in input) error { return fn(in, i) }); err != nil {
			return err
		}
	}
	return nil
}

func withFile(cio *IO, name string, fn func(in input) error) (err error) {
	if name == "-" {
		return fn(input{name: name, r: cio.Stdin})
	}
	f, err := os.Open(resolve(cio.Dir, name))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(input{name: name, r: f})
}

func resolve(dir, name string) string {
	if filepath.IsAbs(name) || dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}
