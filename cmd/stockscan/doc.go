// Package main hosts the stockscan CLI entrypoint and command graph.
//
// The Cobra command tree runs interactive scanning sessions, inspects and
// drains the offline queue, reschedules projects and scaffolds
// configuration. Configuration resolution and logger setup live in the
// shared command context so subcommands only deal with presentation.
//
// Keep this package lean: behavior belongs in the internal packages and is
// surfaced here through dedicated commands or flags.
package main
