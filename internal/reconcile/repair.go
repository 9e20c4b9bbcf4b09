package reconcile

import (
	"context"
	"fmt"
	"math"
	"path/filepath"

	"mkvaudur/internal/fileutil"
	"mkvaudur/internal/logging"
	"mkvaudur/internal/media/mediainfo"
	"mkvaudur/internal/services"
	"mkvaudur/internal/trackpath"
)

// CodecArgs returns the encoder arguments for writing track. Lossy tracks are
// stream-copied; lossless tracks use the output extension's default encoder.
// A missing compression mode is ErrInvalidMetadata and an unrecognized one is
// ErrInvalidTrackMetadata.
func CodecArgs(track mediainfo.Track) ([]string, error) {
	switch track.Compression {
	case mediainfo.CompressionLossy:
		return []string{"-c:a", "copy"}, nil
	case mediainfo.CompressionLossless:
		return nil, nil
	case mediainfo.CompressionUnspecified:
		return nil, services.Wrap(services.ErrInvalidMetadata, "reconcile", "codec args",
			fmt.Sprintf("audio track %d has no compression mode", track.TypeOrder), nil)
	default:
		return nil, services.Wrap(services.ErrInvalidTrackMetadata, "reconcile", "codec args",
			fmt.Sprintf("audio track %d has unsupported compression mode %q", track.TypeOrder, track.CompressionRaw), nil)
	}
}

// Repair writes the corrected track for plan and returns the output path.
func (e *Engine) Repair(ctx context.Context, report FileReport, plan TrackPlan) (string, error) {
	track := plan.Track
	codecArgs, err := CodecArgs(track)
	if err != nil {
		return "", err
	}
	output, err := e.paths.Path(report.Source, track)
	if err != nil {
		return "", err
	}
	audioIndex := track.TypeOrder - 1

	switch plan.Action.Kind {
	case ActionCopy:
		err = e.transcoder.ExportStream(ctx, report.Source, audioIndex, codecArgs, output)
	case ActionTrim:
		err = e.transcoder.Trim(ctx, report.Source, audioIndex, plan.Action.Duration, codecArgs, output)
	case ActionAppend:
		err = e.appendSilence(ctx, report.Source, track, plan.Action.Duration, codecArgs, output)
	default:
		return "", nil
	}
	if err != nil {
		return "", err
	}

	if e.opts.Verify && plan.Action.Kind != ActionCopy {
		e.verify(ctx, output, report.Reference)
	}
	return output, nil
}

// appendSilence pads a lossless track in one filter pass. Lossy tracks are
// exported untouched, joined with generated silence of the same format and
// stream-copied into output, all inside a scratch directory removed on return.
func (e *Engine) appendSilence(ctx context.Context, source string, track mediainfo.Track, silence float64, codecArgs []string, output string) error {
	audioIndex := track.TypeOrder - 1
	if track.Compression != mediainfo.CompressionLossy {
		return e.transcoder.Pad(ctx, source, audioIndex, silence, codecArgs, output)
	}

	return fileutil.WithTempDir(e.opts.TempDir, "mkvaudur-*", func(dir string) error {
		exported := filepath.Join(dir, trackpath.Filename(source, track))
		if err := e.transcoder.ExportStream(ctx, source, audioIndex, codecArgs, exported); err != nil {
			return err
		}

		spec := e.resolveSilenceSpec(ctx, source, track)
		silenceFile := filepath.Join(dir, trackpath.Stem(source, track)+".silence"+trackpath.Extension(track))
		if err := e.transcoder.GenerateSilence(ctx, spec.SampleRate, spec.ChannelLayout, silence, silenceFile); err != nil {
			return err
		}

		return e.transcoder.Concat(ctx, filepath.Join(dir, "concat.txt"), []string{exported, silenceFile}, output)
	})
}

// resolveSilenceSpec asks the stream prober for the track's sample rate and
// channel layout. Any failure falls back to the configured default with a
// warning.
func (e *Engine) resolveSilenceSpec(ctx context.Context, source string, track mediainfo.Track) SilenceSpec {
	fallback := e.opts.DefaultSilence
	logger := logging.WithContext(ctx, e.logger)
	warn := func(err error) {
		logging.WarnWithContext(logger, "audio format detection failed; using default silence format", "silence_format_fallback",
			logging.String("default_format", fmt.Sprintf("%d Hz %s", fallback.SampleRate, fallback.ChannelLayout)),
			logging.String(logging.FieldErrorHint, "check that ffprobe is installed and can read the file"),
			logging.String(logging.FieldImpact, "appended silence may not match the track; output could be malformed"),
			logging.Error(err),
		)
	}

	if e.streams == nil {
		warn(fmt.Errorf("no stream prober configured"))
		return fallback
	}
	format, err := e.streams.AudioFormat(ctx, source, track.TypeOrder-1)
	if err != nil {
		warn(err)
		return fallback
	}
	if format.SampleRate <= 0 || format.ChannelLayout == "" {
		warn(fmt.Errorf("incomplete format %d/%q", format.SampleRate, format.ChannelLayout))
		return fallback
	}
	logger.Debug("detected audio format",
		logging.Int("sample_rate", format.SampleRate),
		logging.String("channel_layout", format.ChannelLayout),
	)
	return SilenceSpec{SampleRate: format.SampleRate, ChannelLayout: format.ChannelLayout}
}

// verifyTolerance absorbs codec frame granularity when judging a written
// track; lossy frames are tens of milliseconds long.
const verifyTolerance = 0.05

// verify re-probes output and logs how far it still is from reference. It
// never fails the track.
func (e *Engine) verify(ctx context.Context, output string, reference float64) {
	logger := logging.WithContext(ctx, e.logger)
	if e.streams == nil {
		logging.WarnWithContext(logger, "output verification skipped", "verify_unavailable",
			logging.String("output", output),
			logging.String(logging.FieldImpact, "output was written but not verified"),
			logging.String(logging.FieldErrorHint, "install ffprobe or disable media.verify"),
		)
		return
	}
	result, err := e.streams.Inspect(ctx, output)
	if err != nil {
		logging.WarnWithContext(logger, "output verification skipped", "verify_failed",
			logging.String("output", output),
			logging.String(logging.FieldImpact, "output was written but not verified"),
			logging.Error(err),
		)
		return
	}
	if count := result.AudioStreamCount(); count != 1 {
		logging.WarnWithContext(logger, "unexpected audio stream count in output", "verify_stream_count",
			logging.String("output", output),
			logging.Int("audio_streams", count),
			logging.String(logging.FieldImpact, "output may not hold exactly the repaired track"),
			logging.String(logging.FieldErrorHint, "inspect the output with ffprobe"),
		)
	}
	residual := result.DurationSeconds() - reference
	attrs := []logging.Attr{
		logging.String("output", output),
		logging.Float64("duration", result.DurationSeconds()),
		logging.Float64("residual", residual),
	}
	if math.Abs(residual) > math.Max(e.opts.Filter.Threshold, verifyTolerance) {
		attrs = append(attrs,
			logging.String(logging.FieldImpact, "output still differs from the reference duration"),
			logging.String(logging.FieldErrorHint, "inspect the output with mediainfo"),
		)
		logging.WarnWithContext(logger, "output duration mismatch", "verify_mismatch", attrs...)
		return
	}
	logger.Info("output verified", logging.Args(attrs...)...)
}
