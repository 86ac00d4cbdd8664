// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/khatulistiwa/khatdev/pkg/khapp"
)

// Output formats accepted by inspect --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
	formatTOML = "toml"
)

func newInspectCommand(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "inspect <file.khapp>",
		Short: "Show the sections, assets and digest of a container",
		Long: `Show the sections, assets and digest of a container.

The digest is displayed as stored; use 'khatdev verify' to recompute it.

Examples:
  khatdev inspect SiBatik.khapp
  khatdev inspect SiBatik.khapp --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := khapp.ReadFile(args[0])
			if err != nil {
				return app.fail(err, "read container", args[0])
			}
			if err := writeSummary(app.stdout, khapp.Inspect(c), format); err != nil {
				return app.fail(err, "render summary", args[0])
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json, yaml or toml")

	return cmd
}

func writeSummary(w io.Writer, s khapp.Summary, format string) error {
	switch format {
	case formatText:
		writeSummaryText(w, s)
		return nil
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	case formatTOML:
		return toml.NewEncoder(w).Encode(s)
	default:
		return fmt.Errorf("unknown format %q (want text, json, yaml or toml)", format)
	}
}

func writeSummaryText(w io.Writer, s khapp.Summary) {
	fmt.Fprintln(w, TitleStyle.Render(s.Name)+" "+SubtitleStyle.Render(s.Version))
	fmt.Fprintf(w, "  %s %s\n", keyStyle.Render("Author"), s.Author)
	fmt.Fprintf(w, "  %s %d\n", keyStyle.Render("Format"), s.FormatVersion)

	exe := fmt.Sprintf("%d bytes", s.Executable.Size)
	switch {
	case s.Executable.Placeholder:
		exe += " " + SubtitleStyle.Render("(placeholder)")
	case s.Executable.Tagged:
		exe += fmt.Sprintf(" (KHAT, %d bytes of source)", s.Executable.SourceSize)
	}
	fmt.Fprintf(w, "  %s %s\n", keyStyle.Render("Executable"), exe)

	writeEntries(w, "Assets", s.Assets)
	writeEntries(w, "Localization", s.Localization)

	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("Digest"))
	fmt.Fprintf(w, "  %s %s\n", keyStyle.Render("Algorithm"), s.Digest.Algorithm)
	fmt.Fprintf(w, "  %s %s\n", keyStyle.Render("Hash"), AccentStyle.Render(s.Digest.Hash))
	fmt.Fprintf(w, "  %s %s\n", keyStyle.Render("Signed at"), time.Unix(s.Digest.Timestamp, 0).UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "  %s %s\n", keyStyle.Render("Signer"), s.Digest.Signer)

	sz := s.Sections
	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("Sections"))
	for _, row := range []struct {
		name string
		size int
	}{
		{"manifest", sz.Manifest},
		{"executable", sz.Executable},
		{"assets", sz.Assets},
		{"localization", sz.Localization},
		{"metadata", sz.Metadata},
		{"digest", sz.Digest},
	} {
		fmt.Fprintf(w, "  %s %d\n", keyStyle.Render(row.name), row.size)
	}
	fmt.Fprintf(w, "  %s %d bytes\n", keyStyle.Render("total"), sz.Total)
}

func writeEntries(w io.Writer, title string, entries []khapp.EntryInfo) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render(title), SubtitleStyle.Render(fmt.Sprintf("(%d)", len(entries))))
	if len(entries) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none)"))
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "  %s %8d  %s\n", CmdStyle.Render(e.Name), e.Size, SubtitleStyle.Render(e.SHA256[:12]))
	}
}
