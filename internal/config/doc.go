// SPDX-License-Identifier: MPL-2.0

// Package config holds the run-level settings of swaggertosdk, loaded with
// Viper. Precedence, lowest first: built-in defaults, an optional CUE settings
// file, SWAGGERTOSDK_* environment variables, explicit command line flags.
//
// The settings file is validated against the embedded settings_schema.cue
// before it reaches Viper. Generator option overrides given on the command
// line (--option key=value) or in a TOML file (--options-file) are parsed
// here too, into an options.OptionSet.
package config
