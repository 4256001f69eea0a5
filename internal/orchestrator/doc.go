// SPDX-License-Identifier: MPL-2.0

// Package orchestrator sequences a regeneration run: it loads the SDK
// configuration, selects the affected projects, runs the generator for each
// of them, stages the output into the SDK checkout and publishes the result.
//
// Configuration and selection errors are fatal and stop the run before any
// side effect. Everything after that is recorded per project in the
// report.Report returned by Run; one project failing never stops the others.
package orchestrator
