// SPDX-License-Identifier: MPL-2.0

package khapp

import (
	"crypto/sha256"
	"encoding/hex"
)

type (
	// Summary describes a container for display. Field tags serve the json,
	// yaml and toml renderers of the CLI.
	Summary struct {
		Name          string         `json:"name" yaml:"name" toml:"name"`
		Version       string         `json:"version" yaml:"version" toml:"version"`
		Author        string         `json:"author" yaml:"author" toml:"author"`
		FormatVersion uint32         `json:"format_version" yaml:"format_version" toml:"format_version"`
		Executable    ExecutableInfo `json:"executable" yaml:"executable" toml:"executable"`
		Assets        []EntryInfo    `json:"assets" yaml:"assets" toml:"assets"`
		Localization  []EntryInfo    `json:"localization" yaml:"localization" toml:"localization"`
		Digest        DigestInfo     `json:"digest" yaml:"digest" toml:"digest"`
		Sections      SectionSizes   `json:"sections" yaml:"sections" toml:"sections"`
	}

	// ExecutableInfo describes the executable section.
	ExecutableInfo struct {
		Size        int  `json:"size" yaml:"size" toml:"size"`
		Tagged      bool `json:"tagged" yaml:"tagged" toml:"tagged"`
		SourceSize  int  `json:"source_size,omitempty" yaml:"source_size,omitempty" toml:"source_size,omitempty"`
		Placeholder bool `json:"placeholder" yaml:"placeholder" toml:"placeholder"`
	}

	// EntryInfo describes one asset or locale entry.
	EntryInfo struct {
		Name   string `json:"name" yaml:"name" toml:"name"`
		Size   int    `json:"size" yaml:"size" toml:"size"`
		SHA256 string `json:"sha256" yaml:"sha256" toml:"sha256"`
	}

	// DigestInfo mirrors the digest record.
	DigestInfo struct {
		Algorithm string `json:"algorithm" yaml:"algorithm" toml:"algorithm"`
		Hash      string `json:"hash" yaml:"hash" toml:"hash"`
		Timestamp int64  `json:"timestamp" yaml:"timestamp" toml:"timestamp"`
		Signer    string `json:"signer" yaml:"signer" toml:"signer"`
	}

	// SectionSizes lists the encoded payload size of every section, excluding
	// length prefixes, and the total container size.
	SectionSizes struct {
		Manifest     int   `json:"manifest" yaml:"manifest" toml:"manifest"`
		Executable   int   `json:"executable" yaml:"executable" toml:"executable"`
		Assets       int   `json:"assets" yaml:"assets" toml:"assets"`
		Localization int   `json:"localization" yaml:"localization" toml:"localization"`
		Metadata     int   `json:"metadata" yaml:"metadata" toml:"metadata"`
		Digest       int   `json:"digest" yaml:"digest" toml:"digest"`
		Total        int64 `json:"total" yaml:"total" toml:"total"`
	}
)

// Inspect summarizes c without modifying it.
func Inspect(c *Container) Summary {
	manifest := storedStyle.appendMap(nil, c.Manifest)
	metadata := recordStyle.appendMap(nil, c.Metadata)
	digest := recordStyle.appendMap(nil, c.Digest.Map())

	s := Summary{
		Name:          c.Manifest.GetString("name", ""),
		Version:       c.Manifest.GetString("version", ""),
		Author:        c.Manifest.GetString("author", ""),
		FormatVersion: c.Version,
		Executable: ExecutableInfo{
			Size:        len(c.Executable),
			Placeholder: IsPlaceholder(c.Executable),
		},
		Assets:       entryInfos(c.Assets),
		Localization: entryInfos(c.Localization),
		Digest: DigestInfo{
			Algorithm: c.Digest.Algorithm,
			Hash:      c.Digest.Hash,
			Timestamp: c.Digest.Timestamp,
			Signer:    c.Digest.Signer,
		},
		Sections: SectionSizes{
			Manifest:     len(manifest),
			Executable:   len(c.Executable),
			Assets:       tableSize(c.Assets),
			Localization: tableSize(c.Localization),
			Metadata:     len(metadata),
			Digest:       len(digest),
		},
	}
	if src, ok := SplitExecutable(c.Executable); ok {
		s.Executable.Tagged = true
		s.Executable.SourceSize = len(src)
	}

	sz := s.Sections
	// magic + version + one length prefix per single-payload section
	s.Sections.Total = int64(8 + 4*4 + sz.Manifest + sz.Executable + sz.Assets + sz.Localization + sz.Metadata + sz.Digest)
	return s
}

func entryInfos(entries []Entry) []EntryInfo {
	infos := make([]EntryInfo, len(entries))
	for i, e := range entries {
		sum := sha256.Sum256(e.Data)
		infos[i] = EntryInfo{Name: e.Name, Size: len(e.Data), SHA256: hex.EncodeToString(sum[:])}
	}
	return infos
}

// tableSize is the encoded size of an entry table including its count and
// per-entry length prefixes.
func tableSize(entries []Entry) int {
	n := 4
	for _, e := range entries {
		n += 8 + len(e.Name) + len(e.Data)
	}
	return n
}
