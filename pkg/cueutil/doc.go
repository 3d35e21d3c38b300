// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates user documents against embedded CUE schemas.
//
// The settings file (CUE) goes through ParseAndDecode and toolchain files
// (JSON) through DecodeJSON; both unify the document with a schema
// definition and decode it into a Go value.
//
// # Usage
//
//	//go:embed toolchains_schema.cue
//	var schemaBytes []byte
//
//	result, err := cueutil.DecodeJSON[map[string]string](
//	    schemaBytes,
//	    fileBytes,
//	    "#Toolchains",
//	    cueutil.WithFilename("/etc/cish/toolchains.json"),
//	)
//	if err != nil {
//	    return nil, err  // Error includes the JSON path of the bad value
//	}
package cueutil
