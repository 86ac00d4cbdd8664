// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrChecksumMismatch is returned by VerifyChecksumFile when the file changed.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// ChecksumPath returns the sidecar path for an archive: the last extension of
// path is replaced with ".khapp.sha256".
func ChecksumPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".khapp.sha256"
}

// Checksum returns the hex SHA-256 of the file at path.
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return checksumReader(f)
}

// WriteChecksumFile computes the checksum of path and writes its sidecar.
// It returns the checksum and the sidecar path.
func WriteChecksumFile(path string) (sum, sidecar string, err error) {
	sum, err = Checksum(path)
	if err != nil {
		return "", "", err
	}
	sidecar = ChecksumPath(path)
	if err := writeChecksum(sidecar, sum, filepath.Base(path)); err != nil {
		return "", "", err
	}
	return sum, sidecar, nil
}

// VerifyChecksumFile recomputes the checksum of path and compares it with
// the value recorded in its sidecar.
func VerifyChecksumFile(path string) error {
	sidecar := ChecksumPath(path)
	data, err := os.ReadFile(sidecar)
	if err != nil {
		return fmt.Errorf("failed to read checksum file: %w", err)
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return fmt.Errorf("%s: empty checksum file", sidecar)
	}
	want := strings.ToLower(fields[0])

	got, err := Checksum(path)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: %s: recorded %s, computed %s", ErrChecksumMismatch, filepath.Base(path), want, got)
	}
	return nil
}

func checksumReader(r io.ReadSeeker) (string, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind: %w", err)
	}
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to hash: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func writeChecksum(sidecar, sum, name string) error {
	line := fmt.Sprintf("%s  %s\n", sum, name)
	if err := os.WriteFile(sidecar, []byte(line), 0o644); err != nil {
		return fmt.Errorf("failed to write checksum file: %w", err)
	}
	return nil
}
