// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates configuration documents against embedded CUE schemas.
//
// JSON is a subset of CUE, so a JSON document can be compiled as-is and unified
// with a schema definition:
//
//	//go:embed config_schema.cue
//	var schema []byte
//
//	if err := cueutil.Validate(schema, "#Config", data, cueutil.WithFilename(path)); err != nil {
//	    return err // includes the JSON path of the offending field
//	}
package cueutil
