// Package mediainfo provides a typed wrapper around `mediainfo --Output=JSON`.
//
// mediainfo is used instead of ffprobe for track metadata because ffprobe can
// only report an audio track's duration when the container carries a DURATION
// tag; mediainfo computes it.
//
// Key types:
//   - Media: one container's ordered tracks plus its reference path
//   - Track: one stream's kind, type-order, duration, language, format and
//     compression mode
//
// Primary entry points:
//   - Prober.Inspect: executes mediainfo and returns parsed Media
//   - Parse: decodes a JSON payload, validating required fields once so the
//     reconciliation logic never sees half-populated tracks
package mediainfo
