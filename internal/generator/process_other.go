// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package generator

import "os/exec"

// killProcessGroup is a no-op: only the generator process is killed on
// cancellation and WaitDelay bounds the wait for its children.
func killProcessGroup(*exec.Cmd) {}
