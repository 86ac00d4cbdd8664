// SPDX-License-Identifier: MPL-2.0

// Package archive writes the zip distribution of a project: manifest.json and
// the src, resources and cultural trees, deflate-compressed, plus a sidecar
// SHA-256 checksum file in sha256sum format.
package archive
