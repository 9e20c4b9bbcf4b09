// Package main hosts the mkvaudur CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves configuration and flags, builds the
// logger, probes and transcoder, and hands a batch of source/reference pairs
// to the reconcile runner. Subcommands:
//   - display: print per-track duration differences
//   - export: write trimmed, padded or copied audio tracks
//   - history: list recorded track outcomes
//   - deps: report external tool and directory health
//   - config init|validate: configuration scaffolding
//
// Keep this package lean: behaviour lives in internal packages and is only
// surfaced here.
package main
