// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. The issue catalog adds longer Markdown guidance for the
// failures a run can end with, rendered for the terminal with glamour.
package issue
