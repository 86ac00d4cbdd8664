// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of Markdown
// explanations for the failures a khatdev user can hit, rendered for the
// terminal with glamour.
package issue
