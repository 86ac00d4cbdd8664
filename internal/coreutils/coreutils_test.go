// SPDX-License-Identifier: MPL-2.0

package coreutils

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// runCmd runs cmd directly with the given stdin and working directory.
func runCmd(t *testing.T, cmd Command, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	ctx := WithIO(context.Background(), &IO{
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
		Stderr: &bytes.Buffer{},
		Dir:    dir,
	})
	err := cmd.Run(ctx, append([]string{cmd.Name()}, args...))
	return stdout.String(), err
}

// runScript interprets src with the default registry installed.
func runScript(t *testing.T, dir, src string) (stdout, stderr string, err error) {
	t.Helper()
	prog, err := syntax.NewParser().Parse(strings.NewReader(src), "test.sh")
	if err != nil {
		t.Fatal(err)
	}
	var out, errOut bytes.Buffer
	runner, err := interp.New(
		interp.Dir(dir),
		interp.StdIO(nil, &out, &errOut),
		interp.ExecHandlers(Default().ExecHandler),
	)
	if err != nil {
		t.Fatal(err)
	}
	err = runner.Run(context.Background(), prog)
	return out.String(), errOut.String(), err
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := Default()
	want := []string{"basename", "dirname", "grep", "head", "sha256sum", "tail", "wc"}
	if got := r.Names(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	if _, ok := r.Lookup("git"); ok {
		t.Error("Lookup(git) should miss")
	}

	defer func() {
		if recover() == nil {
			t.Error("duplicate Register should panic")
		}
	}()
	r.Register(headCommand{})
}

func TestHeadTail(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var lines strings.Builder
	for _, s := range []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"} {
		lines.WriteString(s + "\n")
	}
	writeFile(t, dir, "n.txt", lines.String())
	writeFile(t, dir, "ab.txt", "a\nb\n")

	tests := []struct {
		name string
		cmd  Command
		args []string
		want string
	}{
		{name: "head default", cmd: headCommand{}, args: []string{"n.txt"}, want: "1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n"},
		{name: "head -n", cmd: headCommand{}, args: []string{"-n", "2", "n.txt"}, want: "1\n2\n"},
		{name: "head -n0", cmd: headCommand{}, args: []string{"-n0", "n.txt"}, want: ""},
		{name: "head headers", cmd: headCommand{}, args: []string{"-n1", "n.txt", "ab.txt"}, want: "==> n.txt <==\n1\n\n==> ab.txt <==\na\n"},
		{name: "tail default", cmd: tailCommand{}, args: []string{"n.txt"}, want: "3\n4\n5\n6\n7\n8\n9\n10\n11\n12\n"},
		{name: "tail -n", cmd: tailCommand{}, args: []string{"-n", "1", "n.txt"}, want: "12\n"},
		{name: "tail short file", cmd: tailCommand{}, args: []string{"-n", "5", "ab.txt"}, want: "a\nb\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := runCmd(t, tt.cmd, dir, "", tt.args...)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHeadReadsStdin(t *testing.T) {
	t.Parallel()

	got, err := runCmd(t, headCommand{}, t.TempDir(), "x\ny\nz\n", "-n", "2")
	if err != nil {
		t.Fatal(err)
	}
	if got != "x\ny\n" {
		t.Errorf("output = %q", got)
	}
}

func TestWc(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "hello world\nsampai jumpa\n")
	writeFile(t, dir, "b.txt", "satu\n")

	tests := []struct {
		name  string
		args  []string
		stdin string
		want  string
	}{
		{name: "all columns", args: []string{"a.txt"}, want: "2 4 25 a.txt\n"},
		{name: "lines from stdin", args: []string{"-l"}, stdin: "a\nb\nc\n", want: "3\n"},
		{name: "words and bytes", args: []string{"-wc", "b.txt"}, want: "1 5 b.txt\n"},
		{name: "total", args: []string{"-l", "a.txt", "b.txt"}, want: "2 a.txt\n1 b.txt\n3 total\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := runCmd(t, wcCommand{}, dir, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGrep(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "m.json", "{\n  \"name\": \"SiBatik\",\n  \"version\": \"1.0.0\"\n}\n")
	writeFile(t, dir, "o.txt", "Batik\nkawung\n")

	tests := []struct {
		name   string
		args   []string
		want   string
		status int
	}{
		{name: "match", args: []string{"name", "m.json"}, want: "  \"name\": \"SiBatik\",\n"},
		{name: "ignore case", args: []string{"-i", "batik", "o.txt"}, want: "Batik\n"},
		{name: "invert and count", args: []string{"-vc", "a", "o.txt"}, want: "0\n", status: 1},
		{name: "line numbers", args: []string{"-n", "version", "m.json"}, want: "3:  \"version\": \"1.0.0\"\n"},
		{name: "fixed string", args: []string{"-F", "1.0.0", "m.json"}, want: "  \"version\": \"1.0.0\"\n"},
		{name: "files with matches", args: []string{"-l", "Batik", "m.json", "o.txt"}, want: "m.json\no.txt\n"},
		{name: "prefix for many files", args: []string{"kawung", "m.json", "o.txt"}, want: "o.txt:kawung\n"},
		{name: "quiet", args: []string{"-q", "kawung", "o.txt"}, want: ""},
		{name: "no match", args: []string{"parang", "o.txt"}, status: 1},
		{name: "missing file", args: []string{"x", "nope.txt"}, status: 2},
		{name: "bad pattern", args: []string{"(", "o.txt"}, status: 2},
		{name: "missing pattern", args: nil, status: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := runCmd(t, grepCommand{}, dir, "", tt.args...)
			var status interp.ExitStatus
			if st := exitStatus(nil, "grep", err); st != nil && !errors.As(st, &status) {
				t.Fatalf("unexpected error %v", err)
			}
			if int(status) != tt.status {
				t.Errorf("status = %d, want %d (err %v)", status, tt.status, err)
			}
			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBasenameDirname(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cmd  Command
		args []string
		want string
	}{
		{cmd: basenameCommand{}, args: []string{"dist/SiBatik.khapp"}, want: "SiBatik.khapp\n"},
		{cmd: basenameCommand{}, args: []string{"dist/SiBatik.khapp", ".khapp"}, want: "SiBatik\n"},
		{cmd: basenameCommand{}, args: []string{"src/"}, want: "src\n"},
		{cmd: dirnameCommand{}, args: []string{"a/b/c.txt"}, want: "a/b\n"},
		{cmd: dirnameCommand{}, args: []string{"main.khat"}, want: ".\n"},
		{cmd: dirnameCommand{}, args: []string{"/"}, want: "/\n"},
		{cmd: dirnameCommand{}, args: []string{"a/b/"}, want: "a\n"},
	}

	for _, tt := range tests {
		t.Run(tt.cmd.Name()+" "+strings.Join(tt.args, " "), func(t *testing.T) {
			t.Parallel()

			got, err := runCmd(t, tt.cmd, "", "", tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := runCmd(t, basenameCommand{}, "", ""); err == nil {
		t.Error("basename without arguments should fail")
	}
}

func TestSha256sum(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "app.khapp", "KHAP")
	sum := sha256.Sum256([]byte("KHAP"))
	hexSum := hex.EncodeToString(sum[:])

	got, err := runCmd(t, sha256sumCommand{}, dir, "", "app.khapp")
	if err != nil {
		t.Fatal(err)
	}
	if want := hexSum + "  app.khapp\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	writeFile(t, dir, "app.khapp.sha256", hexSum+"  app.khapp\n")
	got, err = runCmd(t, sha256sumCommand{}, dir, "", "-c", "app.khapp.sha256")
	if err != nil {
		t.Fatalf("check error = %v", err)
	}
	if got != "app.khapp: OK\n" {
		t.Errorf("check output = %q", got)
	}

	writeFile(t, dir, "app.khapp", "KHAX")
	got, err = runCmd(t, sha256sumCommand{}, dir, "", "-c", "app.khapp.sha256")
	if err == nil {
		t.Error("check of a modified file should fail")
	}
	if got != "app.khapp: FAILED\n" {
		t.Errorf("check output = %q", got)
	}

	writeFile(t, dir, "bad.sha256", "not a checksum line\n")
	if _, err := runCmd(t, sha256sumCommand{}, dir, "", "-c", "bad.sha256"); err == nil {
		t.Error("malformed checksum file should fail")
	}
}

func TestExecHandlerInScripts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "manifest.json", "{\n  \"name\": \"SiBatik\"\n}\n")

	t.Run("builtins run in-process", func(t *testing.T) {
		t.Parallel()

		out, _, err := runScript(t, dir, `grep -q SiBatik manifest.json && wc -l < manifest.json`)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if out != "3\n" {
			t.Errorf("stdout = %q, want 3", out)
		}
	})

	t.Run("failure becomes exit status", func(t *testing.T) {
		t.Parallel()

		_, stderr, err := runScript(t, dir, `head missing.txt; echo "status=$?"; exit 4`)
		var status interp.ExitStatus
		if !errors.As(err, &status) || status != 4 {
			t.Fatalf("Run() error = %v, want exit status 4", err)
		}
		if !strings.HasPrefix(stderr, "head: ") {
			t.Errorf("stderr = %q, want head: prefix", stderr)
		}
	})

	t.Run("status visible to the script", func(t *testing.T) {
		t.Parallel()

		out, _, err := runScript(t, dir, `grep parang manifest.json; echo $?`)
		if err != nil {
			t.Fatal(err)
		}
		if out != "1\n" {
			t.Errorf("stdout = %q, want 1", out)
		}
	})
}
