// SPDX-License-Identifier: MPL-2.0

// Package inputs reads the documents a project can point at besides a plain
// Swagger file: AutoRest markdown files (YAML fenced blocks) and composite
// JSON files listing several Swagger documents.
//
// Document references are converted to paths relative to the REST repository
// root: an https URL keeps whatever follows "/master/", anything else is
// joined to the referencing file's directory.
package inputs
