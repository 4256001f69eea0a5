// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Azure/swagger-to-sdk/internal/options"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidOption is returned for a malformed --option value.
var ErrInvalidOption = errors.New("invalid option override")

// ParseOptionFlags parses --option values. "key=value" sets a value; a bare
// "key" sets an empty value, rendered as a flag without argument. "true" and
// "false" become booleans and decimal integers become integers. A repeated
// key collects its values into a list.
func ParseOptionFlags(values []string) (options.OptionSet, error) {
	set := options.OptionSet{}
	for _, raw := range values {
		key, value, hasValue := strings.Cut(raw, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("%w: %q has no key", ErrInvalidOption, raw)
		}

		var v options.Value
		switch {
		case !hasValue:
			v = options.String("")
		case value == "true" || value == "false":
			v = options.Bool(value == "true")
		default:
			if i, err := strconv.ParseInt(value, 10, 64); err == nil {
				v = options.Int(i)
			} else {
				v = options.String(value)
			}
		}

		if prev, ok := set[key]; ok {
			v = options.List(append(prev.Strings(), v.Strings()...)...)
		}
		set[key] = v
	}
	return set, nil
}

// LoadOptionsFile reads generator option overrides from a TOML file of
// top-level key = value pairs.
func LoadOptionsFile(path string) (options.OptionSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read options file: %w", err)
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	set, err := options.FromMap(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Overrides returns the command line option layer: the options file first,
// then the --option values on top.
func (c *Config) Overrides(flags []string) (options.OptionSet, error) {
	fromFile := options.OptionSet{}
	if c.OptionsFile != "" {
		var err error
		if fromFile, err = LoadOptionsFile(c.OptionsFile); err != nil {
			return nil, err
		}
	}
	fromFlags, err := ParseOptionFlags(flags)
	if err != nil {
		return nil, err
	}
	return options.Merge(fromFile, fromFlags), nil
}
