package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"mkvaudur/internal/logging"
	"mkvaudur/internal/media/ffprobe"
	"mkvaudur/internal/media/mediainfo"
	"mkvaudur/internal/services"
	"mkvaudur/internal/trackpath"
)

// MetadataProber reads the track layout of a container.
type MetadataProber interface {
	Inspect(ctx context.Context, path string) (mediainfo.Media, error)
}

// StreamProber answers per-stream format questions and inspects written
// outputs.
type StreamProber interface {
	AudioFormat(ctx context.Context, path string, audioIndex int) (ffprobe.AudioFormat, error)
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// Transcoder writes audio tracks.
type Transcoder interface {
	ExportStream(ctx context.Context, source string, audioIndex int, codecArgs []string, dest string) error
	Trim(ctx context.Context, source string, audioIndex int, duration float64, codecArgs []string, dest string) error
	Pad(ctx context.Context, source string, audioIndex int, padDuration float64, codecArgs []string, dest string) error
	GenerateSilence(ctx context.Context, sampleRate int, channelLayout string, duration float64, dest string) error
	Concat(ctx context.Context, listPath string, parts []string, dest string) error
}

// Options configures an Engine.
type Options struct {
	Filter TrackFilter
	// OutputDir receives exported tracks. Empty writes next to the source.
	OutputDir string
	// DefaultSilence is used when a track's format cannot be probed.
	DefaultSilence SilenceSpec
	// Verify re-probes written outputs and logs the remaining difference.
	Verify bool
	// TempDir is the parent for per-append scratch directories. Empty uses
	// the system default.
	TempDir string
}

// Engine analyzes containers and repairs their audio tracks.
type Engine struct {
	metadata   MetadataProber
	streams    StreamProber
	transcoder Transcoder
	paths      *trackpath.Builder
	opts       Options
	logger     *slog.Logger
}

// NewEngine wires an engine. streams may be nil, in which case silence uses
// the default format and verification is skipped.
func NewEngine(metadata MetadataProber, streams StreamProber, transcoder Transcoder, opts Options, logger *slog.Logger) *Engine {
	if opts.DefaultSilence.SampleRate <= 0 || opts.DefaultSilence.ChannelLayout == "" {
		opts.DefaultSilence = DefaultSilenceSpec()
	}
	return &Engine{
		metadata:   metadata,
		streams:    streams,
		transcoder: transcoder,
		paths:      trackpath.NewBuilder(opts.OutputDir),
		opts:       opts,
		logger:     logging.NewComponentLogger(logger, "reconcile"),
	}
}

// Filter returns the track filter in effect.
func (e *Engine) Filter() TrackFilter {
	return e.opts.Filter
}

// Analyze probes source and reference and decides an action for every audio
// track of source. The reference duration is the first video track of
// reference, which may be source itself.
func (e *Engine) Analyze(ctx context.Context, source, reference string) (FileReport, error) {
	media, err := e.metadata.Inspect(ctx, source)
	if err != nil {
		return FileReport{}, err
	}

	refMedia := media
	if reference != "" && reference != source {
		refMedia, err = e.metadata.Inspect(ctx, reference)
		if err != nil {
			return FileReport{}, err
		}
	}

	refDuration, err := ReferenceDuration(refMedia)
	if err != nil {
		return FileReport{}, err
	}

	deltas, err := AudioDeltas(media, refDuration)
	if err != nil {
		return FileReport{}, err
	}

	report := FileReport{
		Source:    source,
		Name:      filepath.Base(media.Ref),
		Reference: refDuration,
		Tracks:    Plan(deltas, refDuration, e.opts.Filter),
	}

	logger := logging.WithContext(ctx, e.logger)
	for _, plan := range report.Tracks {
		attrs := logging.DecisionAttrs("track_repair", plan.Action.Kind.String(), plan.Reason)
		attrs = append(attrs,
			logging.Int(logging.FieldTrack, plan.Track.TypeOrder),
			logging.Float64("difference", plan.Difference),
		)
		logger.Debug("track decision", logging.Args(attrs...)...)
	}
	return report, nil
}

// TrackResult is the outcome of repairing one planned track.
type TrackResult struct {
	Plan   TrackPlan
	Output string
	Err    error
}

// Apply carries out every non-skip action of report in track order. Track
// failures are collected and processing continues; a file-fatal error stops
// the remaining tracks and is returned alongside the results so far.
func (e *Engine) Apply(ctx context.Context, report FileReport) ([]TrackResult, error) {
	results := make([]TrackResult, 0, len(report.Tracks))
	for _, plan := range report.Reported() {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		trackCtx := services.WithTrack(ctx, plan.Track.TypeOrder)
		output, err := e.Repair(trackCtx, report, plan)
		results = append(results, TrackResult{Plan: plan, Output: output, Err: err})
		if err == nil {
			continue
		}
		if services.IsFileFatal(err) || errors.Is(err, context.Canceled) {
			return results, err
		}
		logging.WarnWithContext(logging.WithContext(trackCtx, e.logger), "track repair failed", "track_repair_failed",
			logging.String("action", plan.Action.Kind.String()),
			logging.Error(err),
		)
	}
	return results, nil
}
