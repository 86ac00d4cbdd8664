// SPDX-License-Identifier: MPL-2.0

package khapp

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// encodedSections holds the serialized text sections of a container so that
// every size check happens before the first byte is written.
type encodedSections struct {
	c        *Container
	manifest []byte
	metadata []byte
	digest   []byte
}

// sectionWriter writes length-prefixed sections and remembers the first
// error; later writes become no-ops.
type sectionWriter struct {
	w   io.Writer
	n   int64
	err error
}

// Encode writes c to w in the khapp layout. The container is validated first
// and nothing is written when validation fails. Any write error aborts the
// encode; the bytes already written must be discarded by the caller.
func Encode(w io.Writer, c *Container) error {
	s, err := prepare(c)
	if err != nil {
		return err
	}
	_, err = s.writeTo(w)
	return err
}

// WriteFile encodes c into a new file at path. Validation runs before the file
// is created, the file is closed on every path, and a partially written file
// is removed when encoding fails.
func WriteFile(path string, c *Container) (err error) {
	s, err := prepare(c)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating container file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing container file: %w", closeErr)
		}
		if err != nil {
			_ = os.Remove(path) // partial output is never valid
		}
	}()

	bw := bufio.NewWriter(f)
	if _, err = s.writeTo(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("flushing container file: %w", err)
	}
	return nil
}

func prepare(c *Container) (*encodedSections, error) {
	if c == nil {
		return nil, &ValidationError{Problems: []string{"container is nil"}}
	}
	if c.Version != 0 && c.Version != FormatVersion {
		return nil, &UnsupportedVersionError{Version: c.Version}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	s := &encodedSections{
		c:        c,
		manifest: storedStyle.appendMap(nil, c.Manifest),
		metadata: recordStyle.appendMap(nil, c.Metadata),
		digest:   recordStyle.appendMap(nil, c.Digest.Map()),
	}
	verr := &ValidationError{}
	for name, payload := range map[string][]byte{"manifest": s.manifest, "metadata": s.metadata, "digest": s.digest} {
		if uint64(len(payload)) > math.MaxUint32 {
			verr.addf("%s section is %d bytes, larger than a section can hold", name, len(payload))
		}
	}
	if !verr.empty() {
		return nil, verr
	}
	return s, nil
}

func (s *encodedSections) writeTo(w io.Writer) (int64, error) {
	sw := &sectionWriter{w: w}
	sw.raw("magic", []byte(Magic))
	sw.uint32("format version", FormatVersion)
	sw.section("manifest", s.manifest)
	sw.section("executable", s.c.Executable)
	sw.table("assets", s.c.Assets)
	sw.table("localization", s.c.Localization)
	sw.section("metadata", s.metadata)
	sw.section("digest", s.digest)
	return sw.n, sw.err
}

func (sw *sectionWriter) raw(what string, p []byte) {
	if sw.err != nil {
		return
	}
	n, err := sw.w.Write(p)
	sw.n += int64(n)
	if err != nil {
		sw.err = fmt.Errorf("writing %s: %w", what, err)
	}
}

func (sw *sectionWriter) uint32(what string, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	sw.raw(what, b[:])
}

func (sw *sectionWriter) section(name string, payload []byte) {
	sw.uint32(name+" length", uint32(len(payload)))
	sw.raw(name, payload)
}

func (sw *sectionWriter) table(name string, entries []Entry) {
	sw.uint32(name+" count", uint32(len(entries)))
	for i, e := range entries {
		sw.section(fmt.Sprintf("%s[%d] name", name, i), []byte(e.Name))
		sw.section(fmt.Sprintf("%s[%d] data", name, i), e.Data)
	}
}
