// SPDX-License-Identifier: MPL-2.0

package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"github.com/khatulistiwa/khatdev/pkg/khapp"
)

// DefaultAssetDirs are the project directories collected into the asset table.
var DefaultAssetDirs = []string{"resources", "assets", "cultural"}

// CollectAssets walks each asset directory under root in order and returns
// one entry per regular file, named "<dir>/<relative path>" with forward
// slashes. Files inside a directory are visited in lexical order. Missing
// directories are skipped; unreadable files are logged and skipped.
func CollectAssets(root string, dirs []string, logger *log.Logger) ([]khapp.Entry, error) {
	if logger == nil {
		logger = discardLogger()
	}

	var entries []khapp.Entry
	for _, dir := range dirs {
		base := filepath.Join(root, dir)
		info, err := os.Stat(base)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			logger.Warn("asset path is not a directory, skipping", "path", base)
			continue
		}

		walkErr := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == base {
					return err
				}
				logger.Warn("cannot read asset path, skipping", "path", path, "err", err)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}

			data, err := os.ReadFile(path)
			if err != nil {
				logger.Warn("cannot read asset, skipping", "path", path, "err", err)
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			entries = append(entries, khapp.NewEntry(filepath.ToSlash(rel), data))
			return nil
		})
		if walkErr != nil {
			return nil, walkErr
		}
	}
	return entries, nil
}

// ExcludeAssets drops the entries whose name matches any of the doublestar
// patterns, for example "**/*.psd" or "resources/raw/**". Order is kept.
func ExcludeAssets(entries []khapp.Entry, patterns []string) ([]khapp.Entry, error) {
	if err := ValidatePatterns(patterns); err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		return entries, nil
	}

	kept := entries[:0:0]
	for _, e := range entries {
		if !matchAny(patterns, e.Name) {
			kept = append(kept, e)
		}
	}
	return kept, nil
}

// ValidatePatterns reports the first malformed exclude pattern.
func ValidatePatterns(patterns []string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("invalid exclude pattern %q: %w", pat, doublestar.ErrBadPattern)
		}
	}
	return nil
}

func matchAny(patterns []string, name string) bool {
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, name); err == nil && ok {
			return true
		}
	}
	return false
}
