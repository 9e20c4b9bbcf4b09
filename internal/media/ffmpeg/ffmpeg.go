package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"mkvaudur/internal/deps"
	"mkvaudur/internal/fileutil"
	"mkvaudur/internal/logging"
	"mkvaudur/internal/services"
)

var commandContext = exec.CommandContext

// Transcoder wraps the ffmpeg binary.
type Transcoder struct {
	binary string
	logger *slog.Logger
}

// Option configures a Transcoder.
type Option func(*Transcoder)

// WithBinary overrides the ffmpeg executable.
func WithBinary(binary string) Option {
	return func(t *Transcoder) {
		if binary = strings.TrimSpace(binary); binary != "" {
			t.binary = binary
		}
	}
}

// WithLogger attaches a logger for command tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transcoder) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTranscoder constructs a transcoder, defaulting to "ffmpeg" on PATH.
func NewTranscoder(opts ...Option) *Transcoder {
	t := &Transcoder{binary: "ffmpeg", logger: logging.NewNop()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Binary returns the configured executable.
func (t *Transcoder) Binary() string {
	return t.binary
}

// ExportStream writes audio stream audioIndex of source to dest unchanged in
// length.
func (t *Transcoder) ExportStream(ctx context.Context, source string, audioIndex int, codecArgs []string, dest string) error {
	args := []string{"-y", "-i", source}
	args = append(args, streamArgs(audioIndex)...)
	args = append(args, codecArgs...)
	args = append(args, dest)
	return t.run(ctx, "export", args)
}

// Trim writes audio stream audioIndex of source to dest, limited to the first
// duration seconds of input.
func (t *Transcoder) Trim(ctx context.Context, source string, audioIndex int, duration float64, codecArgs []string, dest string) error {
	args := []string{"-y", "-t", FormatSeconds(duration), "-i", source}
	args = append(args, streamArgs(audioIndex)...)
	args = append(args, codecArgs...)
	args = append(args, dest)
	return t.run(ctx, "trim", args)
}

// Pad writes audio stream audioIndex of source to dest with padDuration
// seconds of silence appended through the apad filter.
func (t *Transcoder) Pad(ctx context.Context, source string, audioIndex int, padDuration float64, codecArgs []string, dest string) error {
	args := []string{"-y", "-i", source}
	args = append(args, streamArgs(audioIndex)...)
	args = append(args, "-af", "apad=pad_dur="+FormatSeconds(padDuration))
	args = append(args, codecArgs...)
	args = append(args, dest)
	return t.run(ctx, "pad", args)
}

// GenerateSilence writes duration seconds of digital silence with the given
// sample rate and channel layout to dest. The container and codec follow
// dest's extension.
func (t *Transcoder) GenerateSilence(ctx context.Context, sampleRate int, channelLayout string, duration float64, dest string) error {
	if sampleRate <= 0 {
		return fmt.Errorf("generate silence: invalid sample rate %d", sampleRate)
	}
	if strings.TrimSpace(channelLayout) == "" {
		return errors.New("generate silence: empty channel layout")
	}
	args := []string{
		"-f", "lavfi",
		"-i", fmt.Sprintf("anullsrc=sample_rate=%d:channel_layout=%s", sampleRate, channelLayout),
		"-t", FormatSeconds(duration),
		dest,
	}
	return t.run(ctx, "generate silence", args)
}

// Concat joins parts in order into dest with the concat demuxer and stream
// copy. The list file is written to listPath using canonical part paths.
func (t *Transcoder) Concat(ctx context.Context, listPath string, parts []string, dest string) error {
	if len(parts) == 0 {
		return errors.New("concat: no input files")
	}
	if err := WriteConcatList(listPath, parts); err != nil {
		return err
	}
	args := []string{"-y", "-f", "concat", "-safe", "0", "-i", listPath, "-c", "copy", dest}
	return t.run(ctx, "concat", args)
}

// WriteConcatList writes a concat demuxer list naming each part by its
// canonical path.
func WriteConcatList(listPath string, parts []string) error {
	var b strings.Builder
	for _, part := range parts {
		canonical, err := fileutil.Canonical(part)
		if err != nil {
			return fmt.Errorf("concat list: %w", err)
		}
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(canonical, "'", `'\''`))
		b.WriteString("'\n")
	}
	if err := os.WriteFile(listPath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("concat list: %w", err)
	}
	return nil
}

// FormatSeconds renders seconds in the shortest decimal form that round-trips,
// which ffmpeg accepts for -t and filter durations.
func FormatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}

func streamArgs(audioIndex int) []string {
	return []string{"-map", fmt.Sprintf("0:a:%d", audioIndex), "-map_chapters", "-1"}
}

func (t *Transcoder) run(ctx context.Context, op string, args []string) error {
	logger := logging.WithContext(ctx, t.logger)
	logger.Info("executing command",
		logging.String("command", t.binary+" "+strings.Join(args, " ")),
	)

	cmd := commandContext(ctx, t.binary, args...) //nolint:gosec
	_, err := cmd.Output()
	if err == nil {
		return nil
	}
	if deps.IsMissingBinary(err) {
		return services.Wrap(services.ErrTranscoderUnavailable, "ffmpeg", op,
			fmt.Sprintf("binary %q not found; is FFmpeg installed to PATH?", t.binary), err)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		logger.Debug("ffmpeg error output",
			logging.String("operation", op),
			logging.String("stderr", strings.TrimSpace(string(exitErr.Stderr))),
		)
	}
	return services.Wrap(services.ErrTranscodeFailed, "ffmpeg", op, "", err)
}
