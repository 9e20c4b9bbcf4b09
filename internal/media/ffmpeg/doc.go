// Package ffmpeg runs the ffmpeg invocations that write corrected audio
// tracks: stream export, tail trimming, lossless padding, silence
// generation and concat-demuxer joins.
//
// Every invocation is logged at INFO as "executing command" before it runs.
// A missing binary is reported as services.ErrTranscoderUnavailable and a
// non-zero exit as services.ErrTranscodeFailed with ffmpeg's stderr attached.
package ffmpeg
