// SPDX-License-Identifier: MPL-2.0

// Package khapp reads and writes .khapp application containers.
//
// A container is a single binary stream. All integers are little-endian
// uint32 and every payload is length-prefixed; there is no padding:
//
//	magic         "KHAP"
//	version       1
//	manifest      length + JSON (original key order)
//	executable    length + opaque bytes
//	assets        count, then per entry: name length + name + data length + data
//	localization  same shape as assets, keyed by locale code
//	metadata      length + JSON
//	digest        length + JSON {algorithm, hash, timestamp, signer}
//
// The digest is a SHA-256 over the key-sorted manifest, the executable bytes
// and every asset (name then data) in name order. Localization and metadata
// are informational and not covered. The digest shows the content is
// unchanged since it was sealed; it is not a signature and does not identify
// the builder.
//
// Typical usage:
//
//	c, err := khapp.Seal(pkg)
//	if err != nil {
//		return err
//	}
//	if err := khapp.WriteFile("app.khapp", c); err != nil {
//		return err
//	}
//
//	c, err = khapp.ReadFile("app.khapp", khapp.WithVerify())
package khapp
