// SPDX-License-Identifier: MPL-2.0

package coreutils

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"
)

const maxLine = 1 << 20

type (
	headCommand struct{}
	tailCommand struct{}
	wcCommand   struct{}

	wcCounts struct {
		lines, words, bytes int
	}
)

func newScanner(r io.Reader) *bufio.Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLine)
	return s
}

func fileHeader(w io.Writer, name string, index, total int) {
	if total < 2 {
		return
	}
	if index > 0 {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "==> %s <==\n", name)
}

func (headCommand) Name() string { return "head" }

// Run prints the first -n lines (default 10) of each input.
func (headCommand) Run(ctx context.Context, args []string) error {
	cio := IOFrom(ctx)
	fs := newFlags("head")
	n := fs.IntP("lines", "n", 10, "number of lines")
	if err := parseFlags(fs, args[1:]); err != nil {
		return err
	}
	if *n < 0 {
		return usagef("invalid number of lines: %d", *n)
	}

	files := fs.Args()
	return eachInput(cio, files, func(in input, i int) error {
		fileHeader(cio.Stdout, in.name, i, len(files))
		s := newScanner(in.r)
		for count := 0; count < *n && s.Scan(); count++ {
			fmt.Fprintln(cio.Stdout, s.Text())
		}
		return s.Err()
	})
}

func (tailCommand) Name() string { return "tail" }

// Run prints the last -n lines (default 10) of each input.
func (tailCommand) Run(ctx context.Context, args []string) error {
	cio := IOFrom(ctx)
	fs := newFlags("tail")
	n := fs.IntP("lines", "n", 10, "number of lines")
	if err := parseFlags(fs, args[1:]); err != nil {
		return err
	}
	if *n < 0 {
		return usagef("invalid number of lines: %d", *n)
	}

	files := fs.Args()
	return eachInput(cio, files, func(in input, i int) error {
		fileHeader(cio.Stdout, in.name, i, len(files))
		if *n == 0 {
			_, err := io.Copy(io.Discard, in.r)
			return err
		}
		ring := make([]string, 0, *n)
		s := newScanner(in.r)
		for s.Scan() {
			if len(ring) == *n {
				ring = ring[1:]
			}
			ring = append(ring, s.Text())
		}
		if err := s.Err(); err != nil {
			return err
		}
		for _, line := range ring {
			fmt.Fprintln(cio.Stdout, line)
		}
		return nil
	})
}

func (wcCommand) Name() string { return "wc" }

// Run prints line, word and byte counts. With no selection flags all three
// are shown; a name column follows for file arguments, and a total line
// when there is more than one.
func (wcCommand) Run(ctx context.Context, args []string) error {
	cio := IOFrom(ctx)
	fs := newFlags("wc")
	lines := fs.BoolP("lines", "l", false, "print line count")
	words := fs.BoolP("words", "w", false, "print word count")
	bytes := fs.BoolP("bytes", "c", false, "print byte count")
	if err := parseFlags(fs, args[1:]); err != nil {
		return err
	}
	if !*lines && !*words && !*bytes {
		*lines, *words, *bytes = true, true, true
	}

	format := func(c wcCounts, name string) string {
		var cols []string
		if *lines {
			cols = append(cols, fmt.Sprint(c.lines))
		}
		if *words {
			cols = append(cols, fmt.Sprint(c.words))
		}
		if *bytes {
			cols = append(cols, fmt.Sprint(c.bytes))
		}
		if name != "-" {
			cols = append(cols, name)
		}
		return strings.Join(cols, " ")
	}

	files := fs.Args()
	var total wcCounts
	err := eachInput(cio, files, func(in input, _ int) error {
		c, err := countReader(in.r)
		if err != nil {
			return err
		}
		total.lines += c.lines
		total.words += c.words
		total.bytes += c.bytes
		fmt.Fprintln(cio.Stdout, format(c, in.name))
		return nil
	})
	if err != nil {
		return err
	}
	if len(files) > 1 {
		fmt.Fprintln(cio.Stdout, format(total, "total"))
	}
	return nil
}

func countReader(r io.Reader) (wcCounts, error) {
	var c wcCounts
	br := bufio.NewReader(r)
	inWord := false
	for {
		ch, size, err := br.ReadRune()
		if err == io.EOF {
			return c, nil
		}
		if err != nil {
			return c, err
		}
		c.bytes += size
		if ch == '\n' {
			c.lines++
		}
		if unicode.IsSpace(ch) {
			inWord = false
		} else if !inWord {
			inWord = true
			c.words++
		}
	}
}
