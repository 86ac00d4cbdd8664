// SPDX-License-Identifier: MPL-2.0

package coreutils

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

type sha256sumCommand struct{}

func (sha256sumCommand) Name() string { return "sha256sum" }

// Run prints "HASH  NAME" for each input, or with -c checks the lines of
// checksum files in that same format, the one .khapp.sha256 sidecars use.
func (sha256sumCommand) Run(ctx context.Context, args []string) error {
	cio := IOFrom(ctx)
	fs := newFlags("sha256sum")
	check := fs.BoolP("check", "c", false, "verify checksums listed in FILE")
	quiet := fs.Bool("quiet", false, "do not print OK lines")
	if err := parseFlags(fs, args[1:]); err != nil {
		return err
	}

	if !*check {
		return eachInput(cio, fs.Args(), func(in input, _ int) error {
			sum, err := hashReader(in.r)
			if err != nil {
				return err
			}
			fmt.Fprintf(cio.Stdout, "%s  %s\n", sum, in.name)
			return nil
		})
	}

	failed := 0
	err := eachInput(cio, fs.Args(), func(in input, _ int) error {
		s := newScanner(in.r)
		for s.Scan() {
			line := strings.TrimSpace(s.Text())
			if line == "" {
				continue
			}
			want, name, ok := parseSumLine(line)
			if !ok {
				return fmt.Errorf("%s: improperly formatted line %q", in.name, line)
			}
			got, err := hashFile(cio, name)
			switch {
			case err != nil:
				fmt.Fprintf(cio.Stdout, "%s: FAILED open or read\n", name)
				failed++
			case got != want:
				fmt.Fprintf(cio.Stdout, "%s: FAILED\n", name)
				failed++
			case !*quiet:
				fmt.Fprintf(cio.Stdout, "%s: OK\n", name)
			}
		}
		return s.Err()
	})
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("WARNING: %d computed checksum(s) did NOT match", failed)
	}
	return nil
}

// parseSumLine splits "HASH  NAME" or "HASH *NAME".
func parseSumLine(line string) (sum, name string, ok bool) {
	sum, rest, found := strings.Cut(line, " ")
	if !found || len(sum) != sha256.Size*2 {
		return "", "", false
	}
	if _, err := hex.DecodeString(sum); err != nil {
		return "", "", false
	}
	name = strings.TrimPrefix(strings.TrimPrefix(rest, " "), "*")
	if name == "" {
		return "", "", false
	}
	return strings.ToLower(sum), name, true
}

func hashFile(cio *IO, name string) (sum string, err error) {
	err = withFile(cio, name, func(in input) error {
		sum, err = hashReader(in.r)
		return err
	})
	return sum, err
}

func hashReader(r io.Reader) (string, error) {
	if r == nil {
		return "", errors.New("no input")
	}
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
