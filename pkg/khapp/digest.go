// SPDX-License-Identifier: MPL-2.0

package khapp

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"slices"
	"strings"
	"time"
)

const (
	// DigestAlgorithm identifies the hash recorded in every digest record.
	DigestAlgorithm = "SHA256"
	// DefaultSigner is the identity written into digest records.
	DefaultSigner = "KhatSDK"
)

type (
	// Digest is the integrity record stored in the last container section.
	// It proves the manifest, executable and assets have not changed since the
	// container was sealed; it says nothing about who sealed it.
	Digest struct {
		Algorithm string
		Hash      string
		// Timestamp is the build time in seconds since the Unix epoch.
		Timestamp int64
		Signer    string
	}

	// DigestOption configures NewDigest.
	DigestOption func(*digestConfig)

	digestConfig struct {
		timestamp time.Time
		signer    string
	}
)

// WithTimestamp fixes the digest timestamp. When unset the current time is
// used, which makes the digest section differ between otherwise identical
// builds; the hash itself never depends on it.
func WithTimestamp(t time.Time) DigestOption {
	return func(c *digestConfig) {
		c.timestamp = t
	}
}

// WithSigner overrides the signer identity.
func WithSigner(signer string) DigestOption {
	return func(c *digestConfig) {
		if signer != "" {
			c.signer = signer
		}
	}
}

// ContentHash returns the hex SHA-256 over the canonical manifest, the raw
// executable, and every asset name followed by its data in name order.
// Localization and metadata are not covered.
func ContentHash(manifest *Map, executable []byte, assets []Entry) string {
	h := sha256.New()
	h.Write(manifest.CanonicalJSON())
	h.Write(executable)

	sorted := slices.Clone(assets)
	slices.SortFunc(sorted, func(a, b Entry) int { return strings.Compare(a.Name, b.Name) })
	for _, a := range sorted {
		h.Write([]byte(a.Name))
		h.Write(a.Data)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// NewDigest computes the content hash and wraps it in a digest record.
func NewDigest(manifest *Map, executable []byte, assets []Entry, opts ...DigestOption) Digest {
	cfg := digestConfig{signer: DefaultSigner}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.timestamp.IsZero() {
		cfg.timestamp = time.Now()
	}
	return Digest{
		Algorithm: DigestAlgorithm,
		Hash:      ContentHash(manifest, executable, assets),
		Timestamp: cfg.timestamp.Unix(),
		Signer:    cfg.signer,
	}
}

// Map returns the record as stored in the container.
func (d Digest) Map() *Map {
	return NewMap().
		Set("algorithm", String(d.Algorithm)).
		Set("hash", String(d.Hash)).
		Set("timestamp", Int(d.Timestamp)).
		Set("signer", String(d.Signer))
}

// Time returns the build timestamp.
func (d Digest) Time() time.Time {
	return time.Unix(d.Timestamp, 0).UTC()
}

// DigestFromMap reads a digest record decoded from a container.
func DigestFromMap(m *Map) (Digest, error) {
	var d Digest
	var ok bool
	if d.Algorithm, ok = stringField(m, "algorithm"); !ok {
		return d, errors.New(`"algorithm" must be a string`)
	}
	if d.Hash, ok = stringField(m, "hash"); !ok {
		return d, errors.New(`"hash" must be a string`)
	}
	if d.Signer, ok = stringField(m, "signer"); !ok {
		return d, errors.New(`"signer" must be a string`)
	}
	v, _ := m.Get("timestamp")
	if d.Timestamp, ok = v.Int64(); !ok {
		return d, errors.New(`"timestamp" must be an integer`)
	}
	return d, nil
}

func stringField(m *Map, key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return "", false
	}
	return v.Str()
}
