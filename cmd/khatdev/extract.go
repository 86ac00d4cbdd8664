// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khatulistiwa/khatdev/pkg/khapp"
	"github.com/khatulistiwa/khatdev/pkg/project"
)

func newExtractCommand(app *App) *cobra.Command {
	var dest string

	cmd := &cobra.Command{
		Use:   "extract <file.khapp>",
		Short: "Unpack a container into a directory",
		Long: `Unpack a container into a directory.

Writes manifest.json, the executable (main.khat when it carries a KHAT
header, executable.bin otherwise), every asset at its stored name, one
locales/<code>.json per localization entry, metadata.json and digest.json.
The container is verified before anything is written.

Examples:
  khatdev extract SiBatik.khapp -d SiBatik-unpacked`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dest == "" {
				dest = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}
			return runExtract(app, args[0], dest)
		},
	}

	cmd.Flags().StringVarP(&dest, "dir", "d", "", "destination directory (default: container name without extension)")

	return cmd
}

func runExtract(app *App, path, dest string) error {
	c, err := khapp.ReadFile(path, khapp.WithVerify())
	if err != nil {
		return app.fail(err, "read container", path)
	}

	files, err := extractFiles(c)
	if err != nil {
		return app.fail(err, "extract container", path)
	}

	for _, f := range files {
		target := filepath.Join(dest, filepath.FromSlash(f.name))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return app.fail(err, "create directory", filepath.Dir(target))
		}
		if err := os.WriteFile(target, f.data, 0o644); err != nil {
			return app.fail(err, "write file", target)
		}
		app.logger.Debug("extracted", "file", f.name, "bytes", len(f.data))
	}

	fmt.Fprintf(app.stdout, "%s %d files into %s\n", SuccessStyle.Render("✓ Extracted"), len(files), CmdStyle.Render(dest))
	return nil
}

type extractedFile struct {
	name string
	data []byte
}

var errUnsafeName = errors.New("unsafe entry name")

// extractLayout collects the files to write, rejecting names that are not
// clean relative paths or that clash with a name already taken.
type extractLayout struct {
	files []extractedFile
	seen  map[string]string
}

func (l *extractLayout) add(kind, name string, data []byte) error {
	if name == "" || path.Clean(name) != name || !filepath.IsLocal(filepath.FromSlash(name)) {
		return fmt.Errorf("%w: %s %q is not a clean path inside the destination", errUnsafeName, kind, name)
	}
	if prev, ok := l.seen[name]; ok {
		return fmt.Errorf("%w: %s %q collides with the %s of the same name", errUnsafeName, kind, name, prev)
	}
	l.seen[name] = kind
	l.files = append(l.files, extractedFile{name, data})
	return nil
}

// extractFiles lays the container out as files.
func extractFiles(c *khapp.Container) ([]extractedFile, error) {
	manifest, err := indented(c.Manifest)
	if err != nil {
		return nil, err
	}
	metadata, err := indented(c.Metadata)
	if err != nil {
		return nil, err
	}
	digest, err := indented(c.Digest.Map())
	if err != nil {
		return nil, err
	}

	l := &extractLayout{seen: make(map[string]string)}
	// Generated files are registered first so assets cannot replace them.
	if err := l.add("manifest", project.ManifestFile, manifest); err != nil {
		return nil, err
	}
	if src, ok := khapp.SplitExecutable(c.Executable); ok {
		err = l.add("executable", "main"+project.SourceExtension, src)
	} else {
		err = l.add("executable", "executable.bin", c.Executable)
	}
	if err != nil {
		return nil, err
	}
	if err := l.add("metadata", "metadata.json", metadata); err != nil {
		return nil, err
	}
	if err := l.add("digest", "digest.json", digest); err != nil {
		return nil, err
	}
	for _, loc := range c.Localization {
		if err := l.add("locale", project.LocalesDir+"/"+loc.Name+".json", loc.Data); err != nil {
			return nil, err
		}
	}
	for _, a := range c.Assets {
		if err := l.add("asset", a.Name, a.Data); err != nil {
			return nil, err
		}
	}
	return l.files, nil
}

func indented(m *khapp.Map) ([]byte, error) {
	raw, err := m.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
