// SPDX-License-Identifier: MPL-2.0

package options

import (
	"slices"
	"strings"
)

// OutputFolderKey is the option the orchestrator injects for every task.
const OutputFolderKey = "output-folder"

var (
	reservedKeys = []string{OutputFolderKey, "input", "output"}

	// LegacyReservedKeys are additionally reserved in 0.1.0 documents.
	LegacyReservedKeys = []string{"i", "o"}
)

// NormalizeKey strips the sdk-relative marker and leading dashes and lower-cases
// the rest, so "-Output", "--output" and "sdkrel:output" compare equal.
func NormalizeKey(key string) string {
	key = strings.TrimPrefix(key, RelativeToSDKMarker)
	return strings.ToLower(strings.TrimLeft(key, "-"))
}

// IsReserved reports whether key may only be set by the orchestrator itself.
// extra lists additional normalized names to treat as reserved.
func IsReserved(key string, extra ...string) bool {
	n := NormalizeKey(key)
	return slices.Contains(reservedKeys, n) || slices.Contains(extra, n)
}

// CheckReserved returns the first reserved key of set in lexical order.
func CheckReserved(set OptionSet, extra ...string) (string, bool) {
	for _, k := range set.Keys() {
		if IsReserved(k, extra...) {
			return k, true
		}
	}
	return "", false
}

// WithoutReserved returns a copy of set with every reserved key removed,
// including the legacy short forms.
func WithoutReserved(set OptionSet) OptionSet {
	out := make(OptionSet, len(set))
	for k, v := range set {
		if !IsReserved(k, LegacyReservedKeys...) {
			out[k] = v
		}
	}
	return out
}
