// SPDX-License-Identifier: MPL-2.0

// Package config handles khatdev configuration using Viper with CUE as the
// file format.
//
// Configuration is layered: built-in defaults, then config.cue from the
// platform config directory (or the working directory), then KHATDEV_*
// environment variables. Files are validated against the embedded
// config_schema.cue before they are merged.
package config
