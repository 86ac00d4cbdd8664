// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

// ManifestFile is stored at the archive root.
const ManifestFile = "manifest.json"

// Trees are the project directories copied into the archive, in order.
var Trees = []string{"src", "resources", "cultural"}

// ErrNoManifest is returned when the project has no manifest.json.
var ErrNoManifest = errors.New("manifest.json not found")

// Result describes a written archive.
type Result struct {
	Output       string
	ChecksumFile string
	Checksum     string
	// Files lists the archive member names in write order.
	Files []string
}

// DefaultOutputPath returns <projectDir>/dist/<appName>.khapp. An empty
// appName falls back to the project directory name.
func DefaultOutputPath(projectDir, appName string) string {
	if appName == "" {
		if abs, err := filepath.Abs(projectDir); err == nil {
			appName = filepath.Base(abs)
		}
	}
	return filepath.Join(projectDir, "dist", appName+".khapp")
}

// Pack writes the zip archive for projectDir to outputPath, creating parent
// directories as needed, then writes the checksum sidecar. A partially
// written archive is removed on failure.
func Pack(ctx context.Context, projectDir, outputPath string) (res *Result, err error) {
	manifestPath := filepath.Join(projectDir, ManifestFile)
	if _, statErr := os.Stat(manifestPath); errors.Is(statErr, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", projectDir, ErrNoManifest)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close archive: %w", closeErr)
		}
		if err != nil {
			_ = os.Remove(outputPath) // Best-effort cleanup on error path
		}
	}()

	zw := zip.NewWriter(f)
	res = &Result{Output: outputPath}

	if err := addFile(zw, manifestPath, ManifestFile); err != nil {
		return nil, err
	}
	res.Files = append(res.Files, ManifestFile)

	for _, tree := range Trees {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		names, err := addTree(ctx, zw, projectDir, tree)
		if err != nil {
			return nil, err
		}
		res.Files = append(res.Files, names...)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish archive: %w", err)
	}
	if err := f.Sync(); err != nil {
		return nil, fmt.Errorf("failed to flush archive: %w", err)
	}

	sum, err := checksumReader(f)
	if err != nil {
		return nil, err
	}
	res.Checksum = sum
	res.ChecksumFile = ChecksumPath(outputPath)
	if err := writeChecksum(res.ChecksumFile, sum, filepath.Base(outputPath)); err != nil {
		return nil, err
	}
	return res, nil
}

func addTree(ctx context.Context, zw *zip.Writer, projectDir, tree string) ([]string, error) {
	base := filepath.Join(projectDir, tree)
	if st, err := os.Stat(base); err != nil || !st.IsDir() {
		return nil, nil
	}

	var names []string
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(projectDir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if err := addFile(zw, path, name); err != nil {
			return err
		}
		names = append(names, name)
		return nil
	})
	return names, err
}

func addFile(zw *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", name, err)
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to build header for %s: %w", name, err)
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", name, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// List returns the member names of a zip archive.
func List(path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names, nil
}
