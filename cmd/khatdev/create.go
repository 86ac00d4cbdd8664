// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/khatulistiwa/khatdev/pkg/project"
)

func newCreateCommand(app *App) *cobra.Command {
	var (
		template string
		theme    string
		parent   string
		git      bool
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Scaffold a new Khatulistiwa application project",
		Long: `Scaffold a new Khatulistiwa application project.

Creates <path>/<name> with a manifest, a main.khat entry point, batik theme
and sound configuration, a build script and a starter test script. The
directory must not exist yet.

Template and theme default to project.default_template and
project.default_theme from the configuration. Templates are looked up in
project.templates_dir.

Examples:
  khatdev create SiBatik
  khatdev create Wayang --theme kawung --path ./apps
  khatdev create Gamelan --git`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(app, project.CreateOptions{
				Name:         args[0],
				ParentDir:    parent,
				Template:     template,
				TemplatesDir: app.cfg.Project.TemplatesDir,
				Theme:        theme,
				Now:          app.now,
				Git:          git,
			})
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "", "project template (default: project.default_template)")
	cmd.Flags().StringVar(&theme, "theme", "", "batik theme (default: project.default_theme)")
	cmd.Flags().StringVarP(&parent, "path", "p", "", "parent directory (default: current directory)")
	cmd.Flags().BoolVar(&git, "git", false, "initialize a git repository with the files staged")

	return cmd
}

func runCreate(app *App, opts project.CreateOptions) error {
	if opts.Template == "" {
		opts.Template = app.cfg.Project.DefaultTemplate
	}
	if opts.Theme == "" {
		opts.Theme = app.cfg.Project.DefaultTheme
	}

	out := app.stdout
	if opts.Theme != "" && !project.IsKnownTheme(opts.Theme) {
		fmt.Fprintf(out, "%s %q is not a recognised batik theme; compliance checks will fail\n",
			WarningStyle.Render("!"), opts.Theme)
	}

	path, err := project.Create(opts)
	if err != nil {
		return app.fail(err, "create project", filepath.Join(opts.ParentDir, opts.Name))
	}
	app.logger.Debug("project created", "path", path, "template", opts.Template, "theme", opts.Theme)

	fmt.Fprintf(out, "%s %s\n\n", SuccessStyle.Render("✓ Created"), CmdStyle.Render(path))
	fmt.Fprintln(out, SubtitleStyle.Render("Next steps:"))
	fmt.Fprintf(out, "  cd %s\n", path)
	fmt.Fprintf(out, "  khatdev test .\n")
	fmt.Fprintf(out, "  khatdev build .\n")
	return nil
}
