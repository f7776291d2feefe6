// Package preflight provides readiness checks for the filesystem paths and
// services ncmplay depends on.
//
// The CLI "ncmplay status" command runs them to display health, and
// "ncmplay convert" runs the directory checks before taking the output lock.
// Each check is gated by its config toggle; disabled features are skipped.
package preflight
