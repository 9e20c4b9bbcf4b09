// Package services defines shared utilities consumed by the reconciliation
// engine and its external tool wrappers.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs and the file being processed so log
//     lines can be correlated across one batch.
//   - Structured error markers plus the Wrap helper that keep the
//     run/file/track failure classification consistent between the probe,
//     the transcoder, and the batch runner.
//
// Use these helpers when wiring new tool integrations so operational
// behaviour (error classification, observability) stays uniform.
package services
