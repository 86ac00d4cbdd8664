// SPDX-License-Identifier: MPL-2.0

package khapp

import (
	"bytes"
	"encoding/binary"
	"math"
	"slices"
	"strings"
	"unicode/utf8"
)

// Container format constants.
const (
	// Magic is the 4-byte container signature.
	Magic = "KHAP"
	// FormatVersion is the only container layout this package reads and writes.
	FormatVersion uint32 = 1
	// FileExtension is the conventional container file suffix.
	FileExtension = ".khapp"

	// ExecutableTag prefixes a compiled executable, followed by a uint32 LE
	// length of the source that follows.
	ExecutableTag = "KHAT"
	// PlaceholderExecutable is stored verbatim when no source artifact exists.
	PlaceholderExecutable = "KHAT_PLACEHOLDER_EXECUTABLE"

	// executableHeaderSize is the tag plus the length field.
	executableHeaderSize = 8
)

// RequiredManifestFields are the manifest keys every package must declare.
var RequiredManifestFields = []string{"name", "version", "description", "author"}

type (
	// Entry is a named blob inside the asset or localization table.
	Entry struct {
		Name string
		Data []byte
	}

	// Package holds the caller-supplied logical content of a container.
	// Assets and Localization keep the order in which they are written to the
	// container; the digest always visits assets sorted by name.
	Package struct {
		Manifest     *Map
		Executable   []byte
		Assets       []Entry
		Localization []Entry
		Metadata     *Map
	}

	// Container is a sealed package: the content plus the digest record
	// computed over it. Containers are write-once; revising one means sealing
	// a new package.
	Container struct {
		Version uint32
		Package
		Digest Digest
	}
)

// NewEntry creates an entry with the name normalized to forward slashes.
func NewEntry(name string, data []byte) Entry {
	return Entry{Name: NormalizeName(name), Data: data}
}

// NormalizeName converts Windows path separators to forward slashes.
func NormalizeName(name string) string {
	return strings.ReplaceAll(name, `\`, "/")
}

// TagExecutable prefixes compiled source with the KHAT header.
func TagExecutable(source []byte) []byte {
	out := make([]byte, executableHeaderSize, executableHeaderSize+len(source))
	copy(out, ExecutableTag)
	binary.LittleEndian.PutUint32(out[4:], uint32(len(source)))
	return append(out, source...)
}

// SplitExecutable reports whether exe carries a KHAT header and returns the
// embedded source when it does. A header whose length disagrees with the
// payload is treated as untagged.
func SplitExecutable(exe []byte) (source []byte, tagged bool) {
	if len(exe) < executableHeaderSize || string(exe[:4]) != ExecutableTag {
		return nil, false
	}
	n := binary.LittleEndian.Uint32(exe[4:8])
	if uint64(n) != uint64(len(exe)-executableHeaderSize) {
		return nil, false
	}
	return exe[executableHeaderSize:], true
}

// IsPlaceholder reports whether exe is the placeholder sentinel.
func IsPlaceholder(exe []byte) bool {
	return bytes.Equal(exe, []byte(PlaceholderExecutable))
}

// ValidateManifest checks that all required fields are present.
func ValidateManifest(m *Map) error {
	verr := &ValidationError{}
	checkManifest(verr, m)
	if verr.empty() {
		return nil
	}
	return verr
}

func checkManifest(verr *ValidationError, m *Map) {
	if m == nil {
		verr.MissingFields = slices.Clone(RequiredManifestFields)
		return
	}
	for _, field := range RequiredManifestFields {
		if !m.Has(field) {
			verr.MissingFields = append(verr.MissingFields, field)
		}
	}
}

// Validate checks everything Encode relies on, so a failed validation never
// leaves partial output behind.
func (p *Package) Validate() error {
	verr := &ValidationError{}
	checkManifest(verr, p.Manifest)
	if p.Metadata == nil {
		verr.addf("metadata is required")
	}
	if len(p.Localization) == 0 {
		verr.addf("at least one locale entry is required")
	}
	validateEntries(verr, "asset", p.Assets)
	validateEntries(verr, "locale", p.Localization)
	if uint64(len(p.Executable)) > math.MaxUint32 {
		verr.addf("executable is %d bytes, larger than a section can hold", len(p.Executable))
	}
	if verr.empty() {
		return nil
	}
	return verr
}

func validateEntries(verr *ValidationError, kind string, entries []Entry) {
	if uint64(len(entries)) > math.MaxUint32 {
		verr.addf("too many %s entries (%d)", kind, len(entries))
	}
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		switch {
		case e.Name == "":
			verr.addf("%s entry %d has an empty name", kind, i)
		case !utf8.ValidString(e.Name):
			verr.addf("%s entry %d name is not valid UTF-8", kind, i)
		case uint64(len(e.Name)) > math.MaxUint32:
			verr.addf("%s entry %d name is too long", kind, i)
		}
		if _, dup := seen[e.Name]; dup {
			verr.addf("duplicate %s name %q", kind, e.Name)
		}
		seen[e.Name] = struct{}{}
		if uint64(len(e.Data)) > math.MaxUint32 {
			verr.addf("%s %q is %d bytes, larger than a section can hold", kind, e.Name, len(e.Data))
		}
	}
}

// Asset returns the data of the named asset.
func (p *Package) Asset(name string) ([]byte, bool) {
	return lookup(p.Assets, NormalizeName(name))
}

// Locale returns the data of the locale entry for code.
func (p *Package) Locale(code string) ([]byte, bool) {
	return lookup(p.Localization, code)
}

func lookup(entries []Entry, name string) ([]byte, bool) {
	for _, e := range entries {
		if e.Name == name {
			return e.Data, true
		}
	}
	return nil, false
}

// Seal validates p and computes its digest, producing a container ready to
// be encoded.
func Seal(p *Package, opts ...DigestOption) (*Container, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Container{
		Version: FormatVersion,
		Package: *p,
		Digest:  NewDigest(p.Manifest, p.Executable, p.Assets, opts...),
	}, nil
}

// Verify recomputes the content hash and compares it with the stored digest.
func (c *Container) Verify() error {
	if c.Digest.Algorithm != DigestAlgorithm {
		return &IntegrityError{Algorithm: c.Digest.Algorithm, Expected: c.Digest.Hash}
	}
	actual := ContentHash(c.Manifest, c.Executable, c.Assets)
	if actual != c.Digest.Hash {
		return &IntegrityError{Algorithm: c.Digest.Algorithm, Expected: c.Digest.Hash, Actual: actual}
	}
	return nil
}
