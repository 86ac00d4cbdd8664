// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates user files against embedded CUE schemas.
//
// The same three steps serve the khatdev config file and the typed view of
// an application's manifest.json (JSON is valid CUE input):
//
//  1. Compile the embedded schema
//  2. Compile the user data and unify it with the schema root definition
//  3. Validate and decode into a Go struct
//
// # Usage
//
//	//go:embed manifest_schema.cue
//	var manifestSchema []byte
//
//	result, err := cueutil.ParseAndDecode[ManifestInfo](
//	    manifestSchema,
//	    data,
//	    "#Manifest",
//	    cueutil.WithFilename("manifest.json"),
//	)
//	if err != nil {
//	    return nil, err // carries the JSON path of every invalid field
//	}
//	return result.Value, nil
package cueutil
