// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the swaggertosdk command line interface.
package cmd
