// SPDX-License-Identifier: MPL-2.0

package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/khatulistiwa/khatdev/pkg/khapp"
)

type (
	// Builder assembles project directories into sealed containers.
	Builder struct {
		signer        string
		defaultLocale string
		assetDirs     []string
		exclude       []string
		buildVersion  string
		now           func() time.Time
		logger        *log.Logger
	}

	// BuilderOption configures a Builder.
	BuilderOption func(*Builder)

	// BuildResult describes a finished build.
	BuildResult struct {
		Output string
		// Executable is the entry point file that was compiled, or empty when
		// the placeholder was stored.
		Executable string
		Container  *khapp.Container
		Size       int64
	}
)

// NewBuilder returns a Builder with the default signer, locale and asset
// directories.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		signer:        khapp.DefaultSigner,
		defaultLocale: DefaultLocale,
		assetDirs:     DefaultAssetDirs,
		buildVersion:  DefaultBuildVersion,
		now:           time.Now,
		logger:        discardLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// WithSigner sets the signer label of the digest record.
func WithSigner(signer string) BuilderOption {
	return func(b *Builder) {
		if signer != "" {
			b.signer = signer
		}
	}
}

// WithDefaultLocale sets the locale of the generated localization entry.
func WithDefaultLocale(code string) BuilderOption {
	return func(b *Builder) {
		if code != "" {
			b.defaultLocale = code
		}
	}
}

// WithAssetDirs replaces the directories collected as assets.
func WithAssetDirs(dirs []string) BuilderOption {
	return func(b *Builder) {
		if len(dirs) > 0 {
			b.assetDirs = dirs
		}
	}
}

// WithExclude drops assets whose name matches any of the doublestar
// patterns.
func WithExclude(patterns []string) BuilderOption {
	return func(b *Builder) {
		b.exclude = patterns
	}
}

// WithBuildVersion sets the build_version metadata field.
func WithBuildVersion(v string) BuilderOption {
	return func(b *Builder) {
		if v != "" {
			b.buildVersion = v
		}
	}
}

// WithClock sets the time source used for the build time and digest timestamp.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithLogger sets the logger for build progress and skipped files.
func WithLogger(l *log.Logger) BuilderOption {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// DefaultOutputPath returns "<base name of sourceDir>.khapp". A relative
// sourceDir such as "." is resolved first so the name is never ".khapp".
func DefaultOutputPath(sourceDir string) string {
	if abs, err := filepath.Abs(sourceDir); err == nil {
		sourceDir = abs
	}
	return filepath.Base(filepath.Clean(sourceDir)) + khapp.FileExtension
}

// Package assembles the unsealed package for the project at sourceDir.
func (b *Builder) Package(ctx context.Context, sourceDir string) (*khapp.Package, error) {
	pkg, _, _, err := b.assemble(ctx, sourceDir, b.now())
	return pkg, err
}

func (b *Builder) assemble(ctx context.Context, sourceDir string, buildTime time.Time) (*khapp.Package, *Manifest, string, error) {
	info, err := os.Stat(sourceDir)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
		return nil, nil, "", fmt.Errorf("%s: %w", sourceDir, ErrSourceNotFound)
	}
	if err != nil {
		return nil, nil, "", err
	}

	manifest, err := LoadManifest(sourceDir)
	if err != nil {
		return nil, nil, "", err
	}
	b.logger.Debug("loaded manifest", "name", manifest.Info.Name, "version", manifest.Info.Version)

	if err := ctx.Err(); err != nil {
		return nil, nil, "", err
	}

	exe, exeSource, err := CompileExecutable(sourceDir, manifest.Info.Name)
	if err != nil {
		return nil, nil, "", err
	}
	if exeSource == "" {
		b.logger.Warn("no entry point found, storing placeholder executable",
			"candidates", ExecutableCandidates(manifest.Info.Name))
	} else {
		b.logger.Debug("compiled executable", "source", exeSource, "bytes", len(exe))
	}

	assets, err := CollectAssets(sourceDir, b.assetDirs, b.logger)
	if err != nil {
		return nil, nil, "", fmt.Errorf("collecting assets: %w", err)
	}
	if n := len(assets); len(b.exclude) > 0 {
		if assets, err = ExcludeAssets(assets, b.exclude); err != nil {
			return nil, nil, "", err
		}
		b.logger.Debug("excluded assets", "count", n-len(assets))
	}
	b.logger.Debug("collected assets", "count", len(assets))

	if err := ctx.Err(); err != nil {
		return nil, nil, "", err
	}

	locales, err := CollectLocalization(sourceDir, manifest.Map, b.defaultLocale)
	if err != nil {
		return nil, nil, "", err
	}

	md := GenerateMetadata(manifest.Info, buildTime, b.buildVersion)

	return &khapp.Package{
		Manifest:     manifest.Map,
		Executable:   exe,
		Assets:       assets,
		Localization: locales,
		Metadata:     md.Map(),
	}, manifest, exeSource, nil
}

// Build assembles, seals and writes the container for sourceDir. An empty
// outputPath selects DefaultOutputPath. On failure no output file is left
// behind.
func (b *Builder) Build(ctx context.Context, sourceDir, outputPath string) (*BuildResult, error) {
	if outputPath == "" {
		outputPath = DefaultOutputPath(sourceDir)
	}

	buildTime := b.now()
	pkg, manifest, exeSource, err := b.assemble(ctx, sourceDir, buildTime)
	if err != nil {
		return nil, err
	}

	c, err := khapp.Seal(pkg, khapp.WithSigner(b.signer), khapp.WithTimestamp(buildTime))
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := khapp.WriteFile(outputPath, c); err != nil {
		return nil, err
	}

	var size int64
	if st, err := os.Stat(outputPath); err == nil {
		size = st.Size()
	}
	b.logger.Info("built container", "app", manifest.Info.Name, "output", outputPath, "bytes", size)

	return &BuildResult{Output: outputPath, Executable: exeSource, Container: c, Size: size}, nil
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}
