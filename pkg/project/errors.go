// SPDX-License-Identifier: MPL-2.0

package project

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSourceNotFound is returned when the project directory does not exist.
	ErrSourceNotFound = errors.New("source directory not found")
	// ErrManifestNotFound is returned when manifest.json is absent.
	ErrManifestNotFound = errors.New("manifest.json not found")
	// ErrInvalidStructure is the sentinel wrapped by StructureError.
	ErrInvalidStructure = errors.New("invalid project structure")
	// ErrProjectExists is returned by Create when the target already exists.
	ErrProjectExists = errors.New("project directory already exists")
	// ErrTemplateNotFound is returned when a templates directory is configured
	// but holds neither the requested template nor the basic one.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrComplianceFailed is returned when a strict compliance check fails.
	ErrComplianceFailed = errors.New("cultural compliance check failed")
)

type (
	// ManifestError reports a manifest.json that cannot be used. Err is a
	// JSON syntax error, a *khapp.ValidationError or a *cueutil.SchemaError.
	ManifestError struct {
		Path string
		Err  error
	}

	// StructureError lists required project entries that are missing.
	StructureError struct {
		Dir     string
		Missing []string
	}
)

func (e *ManifestError) Error() string {
	return fmt.Sprintf("invalid manifest %s: %v", e.Path, e.Err)
}

func (e *ManifestError) Unwrap() error { return e.Err }

func (e *StructureError) Error() string {
	return fmt.Sprintf("%s: required project entries missing: %s", e.Dir, strings.Join(e.Missing, ", "))
}

func (e *StructureError) Unwrap() error { return ErrInvalidStructure }
