// SPDX-License-Identifier: MPL-2.0

package coreutils

import (
	"context"
	"fmt"
	"path"
	"strings"
)

type (
	basenameCommand struct{}
	dirnameCommand  struct{}
)

func (basenameCommand) Name() string { return "basename" }

// Run prints NAME without its directory and, when given, without SUFFIX.
func (basenameCommand) Run(ctx context.Context, args []string) error {
	cio := IOFrom(ctx)
	if len(args) < 2 || len(args) > 3 {
		return usagef("basename NAME [SUFFIX]")
	}
	base := path.Base(args[1])
	if len(args) == 3 && base != args[2] {
		base = strings.TrimSuffix(base, args[2])
	}
	fmt.Fprintln(cio.Stdout, base)
	return nil
}

func (dirnameCommand) Name() string { return "dirname" }

// Run prints each NAME with its last element removed.
func (dirnameCommand) Run(ctx context.Context, args []string) error {
	cio := IOFrom(ctx)
	if len(args) < 2 {
		return usagef("dirname NAME...")
	}
	for _, name := range args[1:] {
		trimmed := strings.TrimRight(name, "/")
		if trimmed == "" && strings.HasPrefix(name, "/") {
			fmt.Fprintln(cio.Stdout, "/")
			continue
		}
		fmt.Fprintln(cio.Stdout, path.Dir(trimmed))
	}
	return nil
}
