// SPDX-License-Identifier: MPL-2.0

// Package coreutils implements a handful of text utilities in Go so project
// test scripts behave the same on every host. The registry plugs into the
// mvdan.cc/sh interpreter as an exec handler; names it does not know fall
// through to the system PATH.
package coreutils
