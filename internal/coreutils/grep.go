// SPDX-License-Identifier: MPL-2.0

package coreutils

import (
	"context"
	"fmt"
	"regexp"

	"mvdan.cc/sh/v3/interp"
)

type grepCommand struct{}

func (grepCommand) Name() string { return "grep" }

// Run searches inputs for lines matching a Go regular expression. The exit
// status is 0 when a line was selected, 1 when none was, and 2 on error.
func (grepCommand) Run(ctx context.Context, args []string) error {
	cio := IOFrom(ctx)
	fs := newFlags("grep")
	ignoreCase := fs.BoolP("ignore-case", "i", false, "ignore case")
	invert := fs.BoolP("invert-match", "v", false, "select non-matching lines")
	lineNumbers := fs.BoolP("line-number", "n", false, "prefix line numbers")
	countOnly := fs.BoolP("count", "c", false, "print match counts")
	filesOnly := fs.BoolP("files-with-matches", "l", false, "print matching file names")
	quiet := fs.BoolP("quiet", "q", false, "print nothing")
	fixed := fs.BoolP("fixed-strings", "F", false, "treat the pattern as a literal")
	fs.BoolP("extended-regexp", "E", false, "accepted for compatibility")
	if err := parseFlags(fs, args[1:]); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return usagef("missing pattern")
	}
	pattern, files := rest[0], rest[1:]
	if *fixed {
		pattern = regexp.QuoteMeta(pattern)
	}
	if *ignoreCase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return usagef("invalid pattern: %v", err)
	}

	prefix := len(files) > 1
	selected := false
	err = eachInput(cio, files, func(in input, _ int) error {
		count, lineNo := 0, 0
		s := newScanner(in.r)
		for s.Scan() {
			lineNo++
			line := s.Text()
			if re.MatchString(line) == *invert {
				continue
			}
			count++
			selected = true
			if *quiet {
				return nil
			}
			if *countOnly || *filesOnly {
				continue
			}
			if prefix {
				fmt.Fprintf(cio.Stdout, "%s:", in.name)
			}
			if *lineNumbers {
				fmt.Fprintf(cio.Stdout, "%d:", lineNo)
			}
			fmt.Fprintln(cio.Stdout, line)
		}
		if err := s.Err(); err != nil {
			return err
		}
		switch {
		case *quiet:
		case *filesOnly:
			if count > 0 {
				fmt.Fprintln(cio.Stdout, displayName(in.name))
			}
		case *countOnly:
			if prefix {
				fmt.Fprintf(cio.Stdout, "%s:", in.name)
			}
			fmt.Fprintln(cio.Stdout, count)
		}
		return nil
	})
	if err != nil {
		return withStatus(2, err)
	}
	if !selected {
		return interp.ExitStatus(1)
	}
	return nil
}

func displayName(name string) string {
	if name == "-" {
		return "(standard input)"
	}
	return name
}
