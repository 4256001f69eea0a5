// SPDX-License-Identifier: MPL-2.0

// Package generator runs the external code generator and the post-generation
// scripts for one task. Failures are reported as *GenerationError values so
// that a failing project never aborts the rest of a run.
package generator
