// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers for tests that build REST and SDK
// checkouts on disk. Every helper fails the test immediately on error.
package testutil
