// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khatulistiwa/khatdev/internal/watch"
	"github.com/khatulistiwa/khatdev/pkg/archive"
	"github.com/khatulistiwa/khatdev/pkg/project"
)

func newBuildCommand(app *App) *cobra.Command {
	var (
		output   string
		checksum bool
		watching bool
	)

	cmd := &cobra.Command{
		Use:   "build [source_dir]",
		Short: "Build a .khapp container from a project directory",
		Long: `Build a .khapp container from a project directory.

The container holds manifest.json, the compiled entry point (<name>.khat,
main.khat or app.khat at the project root), every file under the asset
directories, localization entries and build metadata, sealed with a SHA-256
digest. Without -o the container is written to <source_dir name>.khapp, inside
builder.output_dir when that is configured.

Examples:
  khatdev build
  khatdev build ./SiBatik -o dist/SiBatik.khapp
  khatdev build ./SiBatik --checksum
  khatdev build ./SiBatik --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := "."
			if len(args) == 1 {
				source = args[0]
			}
			checksum = checksum || app.cfg.Builder.Checksum
			if watching {
				return watchBuild(cmd.Context(), app, source, output, checksum)
			}
			return runBuild(cmd.Context(), app, source, output, checksum)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output container path")
	cmd.Flags().BoolVar(&checksum, "checksum", false, "also write a <output>.sha256 sidecar")
	cmd.Flags().BoolVarP(&watching, "watch", "w", false, "rebuild whenever the project changes")

	return cmd
}

func runBuild(ctx context.Context, app *App, source, output string, checksum bool) error {
	cfg := app.cfg.Builder
	if output == "" {
		output = project.DefaultOutputPath(source)
		if cfg.OutputDir != "" {
			output = filepath.Join(cfg.OutputDir, output)
		}
	}

	out := app.stdout
	fmt.Fprintln(out, TitleStyle.Render("Build Container"))
	fmt.Fprintf(out, "  %s %s\n", keyStyle.Render("Source"), CmdStyle.Render(source))

	if m, err := project.LoadManifest(source); err == nil {
		for _, w := range project.CheckCompliance(source, m.Info) {
			fmt.Fprintf(out, "  %s %s\n", WarningStyle.Render("!"), w)
		}
	}

	builder := project.NewBuilder(
		project.WithSigner(cfg.Signer),
		project.WithDefaultLocale(string(cfg.DefaultLocale)),
		project.WithAssetDirs(cfg.AssetDirs),
		project.WithExclude(cfg.Exclude),
		project.WithClock(app.now),
		project.WithLogger(app.logger),
	)
	res, err := builder.Build(ctx, source, output)
	if err != nil {
		return app.fail(err, "build container", source)
	}

	sum := res.Container.Digest
	fmt.Fprintf(out, "  %s %s\n", keyStyle.Render("App"), AccentStyle.Render(res.Container.Manifest.GetString("name", "")))
	if res.Executable != "" {
		fmt.Fprintf(out, "  %s %s\n", keyStyle.Render("Executable"), res.Executable)
	} else {
		fmt.Fprintf(out, "  %s %s\n", keyStyle.Render("Executable"), SubtitleStyle.Render("(placeholder)"))
	}
	fmt.Fprintf(out, "  %s %d\n", keyStyle.Render("Assets"), len(res.Container.Assets))
	fmt.Fprintf(out, "  %s %s\n", keyStyle.Render("Digest"), AccentStyle.Render(sum.Hash))

	if checksum {
		fileSum, sidecar, err := archive.WriteChecksumFile(res.Output)
		if err != nil {
			return app.fail(err, "write checksum", res.Output)
		}
		fmt.Fprintf(out, "  %s %s (%s)\n", keyStyle.Render("Checksum"), fileSum, sidecar)
	}

	fmt.Fprintf(out, "\n%s %s (%d bytes)\n", SuccessStyle.Render("✓ Built"), CmdStyle.Render(res.Output), res.Size)
	return nil
}

// watchBuild builds once, then rebuilds on every change until ctx is
// canceled. Failed builds are reported and watching continues.
func watchBuild(ctx context.Context, app *App, source, output string, checksum bool) error {
	_ = runBuild(ctx, app, source, output, checksum)

	w, err := watch.New(watch.Config{
		Dir:    source,
		Logger: app.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintf(app.stdout, "\n%s %s\n", SubtitleStyle.Render("changed:"), strings.Join(changed, ", "))
			return runBuild(ctx, app, source, output, checksum)
		},
	})
	if err != nil {
		return app.fail(err, "watch project", source)
	}
	fmt.Fprintf(app.stdout, "\n%s %s %s\n", SubtitleStyle.Render("Watching"), CmdStyle.Render(w.Dir()), SubtitleStyle.Render("(Ctrl+C to stop)"))
	if err := w.Run(ctx); err != nil {
		return app.fail(err, "watch project", source)
	}
	return nil
}
