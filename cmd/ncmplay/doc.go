// Package main hosts the ncmplay CLI.
//
// The Cobra command tree converts NCM containers into the output directory,
// lists and filters the resulting library, inspects and resolves tags, and
// prints timed lyrics. Configuration loading and logger setup live in
// commandContext so subcommands only deal with presentation.
package main
