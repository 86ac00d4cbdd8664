// SPDX-License-Identifier: MPL-2.0

// Package project turns a Khatulistiwa project directory into the inputs of a
// .khapp container and drives the build. It also scaffolds new projects and
// runs the cultural compliance checks.
//
// A project looks like:
//
//	SiBatik/
//	  manifest.json       application manifest (comments allowed)
//	  main.khat           entry point (or <name>.khat, app.khat)
//	  src/                sources
//	  resources/          collected as assets
//	  assets/             collected as assets
//	  cultural/           collected as assets
//	  locales/<code>.json extra localization entries
//	  tests/test_*.sh     project test scripts
package project
