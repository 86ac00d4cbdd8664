// SPDX-License-Identifier: MPL-2.0

package khapp

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation is the sentinel wrapped by ValidationError.
	ErrValidation = errors.New("invalid package")
	// ErrFormat is the sentinel wrapped by FormatError.
	ErrFormat = errors.New("not a khapp container")
	// ErrUnsupportedVersion is the sentinel wrapped by UnsupportedVersionError.
	ErrUnsupportedVersion = errors.New("unsupported container version")
	// ErrTruncated is the sentinel wrapped by TruncatedDataError.
	ErrTruncated = errors.New("truncated container")
	// ErrEncoding is the sentinel wrapped by EncodingError.
	ErrEncoding = errors.New("malformed section payload")
	// ErrIntegrity is the sentinel wrapped by IntegrityError.
	ErrIntegrity = errors.New("integrity check failed")
)

type (
	// ValidationError reports package inputs that cannot be encoded. Nothing is
	// written when encoding fails with this error.
	ValidationError struct {
		// MissingFields lists required manifest keys that are absent.
		MissingFields []string
		// Problems lists any other input problems.
		Problems []string
	}

	// FormatError is returned when the input is not a khapp container, either
	// because the magic bytes differ or because data follows the last section.
	FormatError struct {
		Magic  [4]byte
		Reason string
	}

	// UnsupportedVersionError is returned for a container whose format version
	// this reader does not understand.
	UnsupportedVersionError struct {
		Version uint32
	}

	// TruncatedDataError is returned when a declared length runs past the end
	// of the input.
	TruncatedDataError struct {
		// Section names the section being read (e.g. "manifest", "assets[2].data").
		Section string
		// Offset is the byte offset at which the short read started.
		Offset int64
		// Want is the number of bytes the container declared.
		Want uint64
		// Got is the number of bytes that were actually available.
		Got uint64
	}

	// EncodingError is returned when a section payload is not valid UTF-8 or
	// not well-formed structured text.
	EncodingError struct {
		Section string
		Err     error
	}

	// IntegrityError is returned when a recomputed digest disagrees with the
	// digest record stored in the container.
	IntegrityError struct {
		Algorithm string
		Expected  string
		Actual    string
	}
)

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if len(e.MissingFields) > 0 {
		quoted := make([]string, len(e.MissingFields))
		for i, f := range e.MissingFields {
			quoted[i] = fmt.Sprintf("%q", f)
		}
		parts = append(parts, "manifest is missing required field(s) "+strings.Join(quoted, ", "))
	}
	parts = append(parts, e.Problems...)
	if len(parts) == 0 {
		return ErrValidation.Error()
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

// Unwrap returns ErrValidation for errors.Is compatibility.
func (e *ValidationError) Unwrap() error { return ErrValidation }

func (e *ValidationError) empty() bool {
	return len(e.MissingFields) == 0 && len(e.Problems) == 0
}

func (e *ValidationError) addf(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", ErrFormat, e.Reason)
	}
	return fmt.Sprintf("%s (magic %q, want %q)", ErrFormat, e.Magic[:], Magic)
}

// Unwrap returns ErrFormat for errors.Is compatibility.
func (e *FormatError) Unwrap() error { return ErrFormat }

// Error implements the error interface.
func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("container version %d is not supported (this reader supports version %d)", e.Version, FormatVersion)
}

// Unwrap returns ErrUnsupportedVersion for errors.Is compatibility.
func (e *UnsupportedVersionError) Unwrap() error { return ErrUnsupportedVersion }

// Error implements the error interface.
func (e *TruncatedDataError) Error() string {
	return fmt.Sprintf("%s: reading %s at offset %d: need %d bytes, only %d available",
		ErrTruncated, e.Section, e.Offset, e.Want, e.Got)
}

// Unwrap returns ErrTruncated for errors.Is compatibility.
func (e *TruncatedDataError) Unwrap() error { return ErrTruncated }

// Error implements the error interface.
func (e *EncodingError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrEncoding, e.Section, e.Err)
}

// Unwrap returns both the sentinel and the underlying cause.
func (e *EncodingError) Unwrap() []error { return []error{ErrEncoding, e.Err} }

// Error implements the error interface.
func (e *IntegrityError) Error() string {
	if e.Actual == "" {
		return fmt.Sprintf("%s: cannot recompute digest with algorithm %q", ErrIntegrity, e.Algorithm)
	}
	return fmt.Sprintf("%s: %s digest mismatch: stored %s, computed %s",
		ErrIntegrity, e.Algorithm, e.Expected, e.Actual)
}

// Unwrap returns ErrIntegrity for errors.Is compatibility.
func (e *IntegrityError) Unwrap() error { return ErrIntegrity }
