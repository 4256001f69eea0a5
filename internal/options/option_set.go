// SPDX-License-Identifier: MPL-2.0

package options

import (
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
)

// RelativeToSDKMarker prefixes keys whose value is a path relative to the SDK
// root. The marker is removed and the value made absolute during the merge.
const RelativeToSDKMarker = "sdkrel:"

type (
	// OptionSet maps generator option names to values.
	OptionSet map[string]Value

	// Merger folds option layers for one SDK checkout.
	Merger struct {
		// SDKRoot resolves RelativeToSDKMarker values.
		SDKRoot string
	}
)

// FromMap converts a decoded JSON/TOML object into an OptionSet.
func FromMap(raw map[string]any) (OptionSet, error) {
	set := make(OptionSet, len(raw))
	for key, rawValue := range raw {
		v, err := FromAny(key, rawValue)
		if err != nil {
			return nil, err
		}
		set[key] = v
	}
	return set, nil
}

// Clone returns a shallow copy; Values are immutable so this is a full copy.
func (s OptionSet) Clone() OptionSet {
	out := make(OptionSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Keys returns the option names in lexical order.
func (s OptionSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Lookup finds a key case-insensitively and returns the stored spelling.
func (s OptionSet) Lookup(key string) (string, Value, bool) {
	if v, ok := s[key]; ok {
		return key, v, true
	}
	for _, k := range s.Keys() {
		if strings.EqualFold(k, key) {
			return k, s[k], true
		}
	}
	return "", Value{}, false
}

// Merge returns base overlaid with override: every key of override wins, keys
// only present in base are kept. Neither input is modified.
func Merge(base, override OptionSet) OptionSet {
	out := make(OptionSet, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

// ResolveRelative returns a copy of set where every RelativeToSDKMarker key is
// replaced by its bare name and an absolute path joined on sdkRoot.
func ResolveRelative(set OptionSet, sdkRoot string) OptionSet {
	out := make(OptionSet, len(set))
	for k, v := range set {
		subkey, ok := strings.CutPrefix(k, RelativeToSDKMarker)
		if !ok {
			out[k] = v
			continue
		}
		resolved := filepath.Join(sdkRoot, v.String())
		if abs, err := filepath.Abs(resolved); err == nil {
			resolved = abs
		}
		slog.Debug("resolved sdk-relative option", "key", subkey, "value", resolved)
		out[subkey] = String(resolved)
	}
	return out
}

// Merge resolves sdk-relative keys in every layer and folds the layers from
// lowest to highest precedence.
func (m Merger) Merge(layers ...OptionSet) OptionSet {
	merged := OptionSet{}
	for _, layer := range layers {
		merged = Merge(merged, ResolveRelative(layer, m.SDKRoot))
	}
	return merged
}

// Args renders the set as generator flags, sorted by key: "--key=value", a bare
// "--key" for empty strings, one flag per list element. Keys are lower-cased and
// values containing spaces are single-quoted.
func (s OptionSet) Args() []string {
	args := make([]string, 0, len(s))
	for _, key := range s.Keys() {
		flag := "--" + strings.ToLower(key)
		for _, item := range s[key].Strings() {
			if item == "" {
				args = append(args, flag)
				continue
			}
			if strings.Contains(item, " ") {
				item = "'" + item + "'"
			}
			args = append(args, flag+"="+item)
		}
	}
	return args
}
