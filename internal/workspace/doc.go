// SPDX-License-Identifier: MPL-2.0

// Package workspace moves a freshly generated client into the SDK repository.
//
// Staging a project takes the generator output directory and:
//
//  1. picks the generated base directory (generated_relative_base_directory
//     must match exactly one directory when set),
//  2. carries the hand-written wrapper files of the current output_dir over,
//  3. removes the files matching the delete patterns,
//  4. replaces output_dir with the result,
//  5. writes build.json into build_dir when one is configured.
package workspace
