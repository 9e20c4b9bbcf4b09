// Package ffprobe wraps the ffprobe binary for the two questions mkvaudur
// asks of it: the sample rate and channel layout of one audio stream (used
// to shape appended silence) and the duration of a written output (used by
// verification).
//
// Key types:
//   - Prober: holds the configured binary and runs queries
//   - AudioFormat: sample rate and channel layout of a stream
//   - Result: parsed -show_format -show_streams JSON
//
// Missing binaries surface as services.ErrProbeUnavailable; non-zero exits
// and unparsable output as services.ErrProbeFailed.
package ffprobe
