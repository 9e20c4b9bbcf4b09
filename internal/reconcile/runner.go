package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"mkvaudur/internal/discovery"
	"mkvaudur/internal/history"
	"mkvaudur/internal/logging"
	"mkvaudur/internal/services"
)

// Mode selects what a Runner does with each analyzed file.
type Mode int

const (
	// ModeDisplay prints the report block for each file.
	ModeDisplay Mode = iota
	// ModeExport writes the repaired tracks.
	ModeExport
)

func (m Mode) String() string {
	if m == ModeExport {
		return "export"
	}
	return "display"
}

// Recorder persists track outcomes.
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) error
}

// Renderer writes the display block of one file.
type Renderer func(w io.Writer, report FileReport) error

// Summary counts the outcome of a batch.
type Summary struct {
	FilesProcessed int
	FilesFailed    int
	TracksRepaired int
	TracksCopied   int
	TracksFailed   int
}

// Failed reports whether any file or track failed.
func (s Summary) Failed() bool {
	return s.FilesFailed > 0 || s.TracksFailed > 0
}

// Runner drives an Engine over source/reference pairs in order.
type Runner struct {
	engine   *Engine
	mode     Mode
	out      io.Writer
	render   Renderer
	recorder Recorder
	logger   *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithOutput sets the writer for display blocks and progress lines.
func WithOutput(w io.Writer) RunnerOption {
	return func(r *Runner) {
		if w != nil {
			r.out = w
		}
	}
}

// WithRenderer replaces the plain-text display renderer.
func WithRenderer(render Renderer) RunnerOption {
	return func(r *Runner) {
		if render != nil {
			r.render = render
		}
	}
}

// WithRecorder records every attempted export.
func WithRecorder(recorder Recorder) RunnerOption {
	return func(r *Runner) {
		r.recorder = recorder
	}
}

// NewRunner constructs a batch runner.
func NewRunner(engine *Engine, mode Mode, logger *slog.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		engine: engine,
		mode:   mode,
		out:    io.Discard,
		render: WriteReport,
		logger: logging.NewComponentLogger(logger, "runner"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes pairs in order. Per-file and per-track failures are logged
// and counted; a run-fatal error stops the batch and is returned with the
// summary so far.
func (r *Runner) Run(ctx context.Context, pairs []discovery.Pair) (Summary, error) {
	var summary Summary
	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		fileCtx := services.WithFile(ctx, filepath.Base(pair.Source))
		if err := r.processFile(fileCtx, pair, &summary); err != nil {
			if services.IsFatal(err) {
				logging.WithContext(fileCtx, r.logger).Error("batch stopped",
					logging.Alert("run_fatal"),
					logging.Int("files_remaining", len(pairs)-summary.FilesProcessed-summary.FilesFailed),
					logging.Error(err),
				)
			}
			return summary, err
		}
	}

	r.logger.Info("batch complete",
		logging.String("mode", r.mode.String()),
		logging.Int("files_processed", summary.FilesProcessed),
		logging.Int("files_failed", summary.FilesFailed),
		logging.Int("tracks_repaired", summary.TracksRepaired),
		logging.Int("tracks_copied", summary.TracksCopied),
		logging.Int("tracks_failed", summary.TracksFailed),
	)
	return summary, nil
}

// processFile returns an error only when the whole run must stop.
func (r *Runner) processFile(ctx context.Context, pair discovery.Pair, summary *Summary) error {
	logger := logging.WithContext(ctx, r.logger)

	report, err := r.engine.Analyze(ctx, pair.Source, pair.Reference)
	if err != nil {
		return r.fileFailed(logger, summary, err)
	}

	if r.mode == ModeDisplay {
		if err := r.render(r.out, report); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		summary.FilesProcessed++
		return nil
	}

	if _, err := fmt.Fprintf(r.out, "Processing file: %s\n", report.Name); err != nil {
		return fmt.Errorf("write progress: %w", err)
	}
	results, applyErr := r.engine.Apply(ctx, report)
	for _, result := range results {
		r.count(summary, result)
		r.record(ctx, report, result)
	}
	if applyErr != nil {
		return r.fileFailed(logger, summary, applyErr)
	}
	summary.FilesProcessed++
	return nil
}

func (r *Runner) fileFailed(logger *slog.Logger, summary *Summary, err error) error {
	if services.IsFatal(err) || errors.Is(err, context.Canceled) {
		return err
	}
	summary.FilesFailed++
	logging.ErrorWithContext(logger, "file skipped", "file_failed",
		logging.String(logging.FieldImpact, "no further tracks of this file were written"),
		logging.Error(err),
	)
	return nil
}

func (r *Runner) count(summary *Summary, result TrackResult) {
	switch {
	case result.Err != nil:
		summary.TracksFailed++
	case result.Plan.Action.Kind == ActionCopy:
		summary.TracksCopied++
	default:
		summary.TracksRepaired++
	}
}

func (r *Runner) record(ctx context.Context, report FileReport, result TrackResult) {
	if r.recorder == nil {
		return
	}
	runID, _ := services.RunIDFromContext(ctx)
	entry := history.Entry{
		RunID:             runID,
		SourcePath:        report.Source,
		ReferenceDuration: report.Reference,
		TrackID:           result.Plan.Track.ID,
		TypeOrder:         result.Plan.Track.TypeOrder,
		Language:          result.Plan.Track.Language,
		Action:            result.Plan.Action.Kind.String(),
		Difference:        result.Plan.Difference,
		OutputPath:        result.Output,
		Status:            history.StatusOK,
	}
	if result.Err != nil {
		entry.Status = history.StatusFailed
		entry.ErrorMessage = result.Err.Error()
	}
	if err := r.recorder.Record(ctx, entry); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "history record failed", "history_write_failed",
			logging.String(logging.FieldImpact, "track outcome missing from history"),
			logging.String(logging.FieldErrorHint, "check the history database path and permissions"),
			logging.Error(err),
		)
	}
}
