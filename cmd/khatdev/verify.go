// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/khatulistiwa/khatdev/pkg/archive"
	"github.com/khatulistiwa/khatdev/pkg/khapp"
)

func newVerifyCommand(app *App) *cobra.Command {
	var checksum bool

	cmd := &cobra.Command{
		Use:   "verify <file.khapp>",
		Short: "Recompute a container's digest and compare it with the stored one",
		Long: `Recompute a container's digest and compare it with the stored one.

The digest covers the manifest, the executable and every asset. Localization
entries and build metadata are informational and not covered.

Exit status is 0 when the container is intact, 2 when the digest or the
sidecar checksum does not match, and 1 for any other failure.

Examples:
  khatdev verify SiBatik.khapp
  khatdev verify SiBatik.khapp --checksum`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(app, args[0], checksum)
		},
	}

	cmd.Flags().BoolVar(&checksum, "checksum", false, "also check the <file>.sha256 sidecar when present")

	return cmd
}

func runVerify(app *App, path string, checksum bool) error {
	out := app.stdout

	c, err := khapp.ReadFile(path, khapp.WithVerify())
	if err != nil {
		var ie *khapp.IntegrityError
		if errors.As(err, &ie) {
			fmt.Fprintf(out, "%s %s\n", ErrorStyle.Render("✗ Integrity check failed:"), CmdStyle.Render(path))
			fmt.Fprintf(out, "  %s %s\n", keyStyle.Render("Stored"), ie.Expected)
			if ie.Actual != "" {
				fmt.Fprintf(out, "  %s %s\n", keyStyle.Render("Computed"), ie.Actual)
			}
		}
		return app.fail(err, "verify container", path)
	}

	fmt.Fprintf(out, "%s %s\n", SuccessStyle.Render("✓ Integrity verified:"), CmdStyle.Render(path))
	fmt.Fprintf(out, "  %s %s\n", keyStyle.Render("App"), AccentStyle.Render(c.Manifest.GetString("name", "")))
	fmt.Fprintf(out, "  %s %s\n", keyStyle.Render(c.Digest.Algorithm), c.Digest.Hash)
	fmt.Fprintf(out, "  %s %s\n", keyStyle.Render("Signer"), c.Digest.Signer)

	if !checksum {
		return nil
	}
	sidecar := archive.ChecksumPath(path)
	if _, err := os.Stat(sidecar); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(out, "  %s %s\n", keyStyle.Render("Checksum"), SubtitleStyle.Render("(no sidecar)"))
		return nil
	}
	if err := archive.VerifyChecksumFile(path); err != nil {
		return app.fail(err, "verify checksum", sidecar)
	}
	fmt.Fprintf(out, "  %s %s\n", keyStyle.Render("Checksum"), SuccessStyle.Render("matches "+sidecar))
	return nil
}
