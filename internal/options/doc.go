// SPDX-License-Identifier: MPL-2.0

// Package options models generator option sets and the layered merge that
// produces one effective set per project: normalized defaults, meta options,
// project options and CLI overrides, later layers winning key by key.
package options
