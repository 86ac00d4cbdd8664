// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers shared by the khatdev test suites: a
// manually driven clock for reproducible build timestamps and fixture
// builders for project directories.
package testutil
