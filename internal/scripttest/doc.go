// SPDX-License-Identifier: MPL-2.0

// Package scripttest runs a project's tests/test_*.sh scripts in-process with
// the mvdan.cc/sh POSIX interpreter.
package scripttest
