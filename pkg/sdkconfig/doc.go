// SPDX-License-Identifier: MPL-2.0

// Package sdkconfig loads swagger_to_sdk configuration documents.
//
// Two schema generations exist, keyed by meta.version: "0.1.0" (legacy, one
// Swagger file per project and a meta-level language) and "0.2.0" (markdown,
// composite or explicit input-file inputs). Both are normalized into one
// Configuration at load time; nothing downstream looks at the version again.
//
// A document is first checked against an embedded CUE schema, then decoded
// and validated against the version rules. Every rule violation is a
// *ConfigError whose Kind identifies the failure.
package sdkconfig
