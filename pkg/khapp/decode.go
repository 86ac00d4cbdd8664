// SPDX-License-Identifier: MPL-2.0

package khapp

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// maxInitialAlloc caps how much buffer is reserved up front for a section.
// Larger sections grow as bytes actually arrive, so a forged length cannot
// force a huge allocation.
const maxInitialAlloc = 1 << 20

type (
	// DecodeOption configures Decode.
	DecodeOption func(*decodeConfig)

	decodeConfig struct {
		verify bool
	}

	// sectionReader tracks the input offset for error reporting.
	sectionReader struct {
		r   io.Reader
		off int64
	}
)

// WithVerify makes Decode recompute the content hash and fail with an
// IntegrityError when it disagrees with the stored digest record.
func WithVerify() DecodeOption {
	return func(c *decodeConfig) {
		c.verify = true
	}
}

// Decode parses a container from r. Structural problems abort the whole
// decode: there is no partial result.
func Decode(r io.Reader, opts ...DecodeOption) (*Container, error) {
	var cfg decodeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	sr := &sectionReader{r: r}

	magic, err := sr.read("magic", 4)
	if err != nil {
		return nil, err
	}
	if string(magic) != Magic {
		fe := &FormatError{}
		copy(fe.Magic[:], magic)
		return nil, fe
	}

	version, err := sr.uint32("format version")
	if err != nil {
		return nil, err
	}
	if version != FormatVersion {
		return nil, &UnsupportedVersionError{Version: version}
	}

	c := &Container{Version: version}

	if c.Manifest, err = sr.mapSection("manifest"); err != nil {
		return nil, err
	}
	if c.Executable, err = sr.section("executable"); err != nil {
		return nil, err
	}
	if c.Assets, err = sr.table("assets"); err != nil {
		return nil, err
	}
	if c.Localization, err = sr.table("localization"); err != nil {
		return nil, err
	}
	if c.Metadata, err = sr.mapSection("metadata"); err != nil {
		return nil, err
	}
	digestMap, err := sr.mapSection("digest")
	if err != nil {
		return nil, err
	}
	if c.Digest, err = DigestFromMap(digestMap); err != nil {
		return nil, &EncodingError{Section: "digest", Err: err}
	}

	if err := sr.expectEOF(); err != nil {
		return nil, err
	}

	if cfg.verify {
		if err := c.Verify(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ReadFile opens and decodes the container at path.
func ReadFile(path string, opts ...DecodeOption) (*Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening container file: %w", err)
	}
	defer f.Close()
	return Decode(bufio.NewReader(f), opts...)
}

// read returns exactly n bytes or a TruncatedDataError.
func (sr *sectionReader) read(what string, n uint64) ([]byte, error) {
	start := sr.off
	var buf bytes.Buffer
	buf.Grow(int(min(n, maxInitialAlloc)))
	got, err := io.CopyN(&buf, sr.r, int64(n))
	sr.off += got
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &TruncatedDataError{Section: what, Offset: start, Want: n, Got: uint64(got)}
		}
		return nil, fmt.Errorf("reading %s at offset %d: %w", what, start, err)
	}
	return buf.Bytes(), nil
}

func (sr *sectionReader) uint32(what string) (uint32, error) {
	b, err := sr.read(what, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (sr *sectionReader) section(name string) ([]byte, error) {
	n, err := sr.uint32(name + " length")
	if err != nil {
		return nil, err
	}
	return sr.read(name, uint64(n))
}

func (sr *sectionReader) mapSection(name string) (*Map, error) {
	payload, err := sr.section(name)
	if err != nil {
		return nil, err
	}
	m, err := ParseMap(payload)
	if err != nil {
		return nil, &EncodingError{Section: name, Err: err}
	}
	return m, nil
}

func (sr *sectionReader) table(name string) ([]Entry, error) {
	count, err := sr.uint32(name + " count")
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, min(count, 1024))
	seen := make(map[string]struct{})
	for i := uint32(0); i < count; i++ {
		entryName, err := sr.section(fmt.Sprintf("%s[%d] name", name, i))
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(entryName) {
			return nil, &EncodingError{Section: fmt.Sprintf("%s[%d] name", name, i), Err: errors.New("invalid UTF-8")}
		}
		if _, dup := seen[string(entryName)]; dup {
			return nil, &EncodingError{Section: name, Err: fmt.Errorf("duplicate name %q", entryName)}
		}
		seen[string(entryName)] = struct{}{}

		data, err := sr.section(fmt.Sprintf("%s[%d] data", name, i))
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: string(entryName), Data: data})
	}
	return entries, nil
}

func (sr *sectionReader) expectEOF() error {
	var b [1]byte
	n, err := io.ReadFull(sr.r, b[:])
	if n > 0 {
		return &FormatError{Reason: fmt.Sprintf("unexpected data after digest section at offset %d", sr.off)}
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading past digest section: %w", err)
	}
	return nil
}
