// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khatulistiwa/khatdev/pkg/archive"
	"github.com/khatulistiwa/khatdev/pkg/project"
)

func newArchiveCommand(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "archive [project_dir]",
		Short: "Pack a project into a zip distribution archive",
		Long: `Pack a project into a zip distribution archive.

The archive holds manifest.json at its root and the src, resources and
cultural trees. A <name>.khapp.sha256 sidecar with the archive's SHA-256 is
written next to it. Without -o the archive goes to <project_dir>/dist/<name>.khapp.

This is the simple distribution package; use 'khatdev build' for the binary
container format.

Examples:
  khatdev archive ./SiBatik
  khatdev archive ./SiBatik -o release/SiBatik.khapp`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runArchive(cmd, app, dir, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output archive path")

	return cmd
}

func runArchive(cmd *cobra.Command, app *App, dir, output string) error {
	out := app.stdout

	if err := project.ValidateStructure(dir); err != nil {
		return app.fail(err, "validate project", dir)
	}
	m, err := project.LoadManifest(dir)
	if err != nil {
		return app.fail(err, "load manifest", dir)
	}

	fmt.Fprintln(out, TitleStyle.Render("Archive Project"))
	for _, w := range project.CheckCompliance(dir, m.Info) {
		fmt.Fprintf(out, "  %s %s\n", WarningStyle.Render("!"), w)
	}

	if output == "" {
		output = archive.DefaultOutputPath(dir, m.Info.Name)
	}
	res, err := archive.Pack(cmd.Context(), dir, output)
	if err != nil {
		return app.fail(err, "pack archive", output)
	}
	app.logger.Debug("archive written", "output", res.Output, "files", len(res.Files))

	fmt.Fprintf(out, "  %s %d\n", keyStyle.Render("Files"), len(res.Files))
	fmt.Fprintf(out, "  %s %s\n", keyStyle.Render("SHA-256"), AccentStyle.Render(res.Checksum))
	fmt.Fprintf(out, "  %s %s\n", keyStyle.Render("Sidecar"), res.ChecksumFile)
	fmt.Fprintf(out, "\n%s %s\n", SuccessStyle.Render("✓ Archived"), CmdStyle.Render(res.Output))
	return nil
}
