package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"mkvaudur/internal/config"
	"mkvaudur/internal/deps"
	"mkvaudur/internal/discovery"
	"mkvaudur/internal/history"
	"mkvaudur/internal/logging"
	"mkvaudur/internal/media/ffmpeg"
	"mkvaudur/internal/media/ffprobe"
	"mkvaudur/internal/media/mediainfo"
	"mkvaudur/internal/preflight"
	"mkvaudur/internal/reconcile"
	"mkvaudur/internal/runlock"
	"mkvaudur/internal/services"
)

func newDisplayCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "display <path>",
		Short: "Show audio tracks whose duration differs from the video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, ctx, reconcile.ModeDisplay, args[0])
		},
	}
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Write trimmed or silence-padded audio tracks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, ctx, reconcile.ModeExport, args[0])
		},
	}
}

func runBatch(cmd *cobra.Command, ctx *commandContext, mode reconcile.Mode, target string) error {
	cfg, err := ctx.ensureConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger(cmd)
	if err != nil {
		return err
	}
	exporting := mode == reconcile.ModeExport

	statuses, err := preflight.RequireSystemDeps(cfg, exporting)
	if err != nil {
		return err
	}

	sources, err := discovery.Files(target, cfg.Media.Extension)
	if err != nil {
		return err
	}
	var references []string
	if ref := ctx.referencePath(); ref != "" {
		references, err = discovery.Files(ref, cfg.Media.Extension)
		if err != nil {
			return err
		}
	}
	pairs := discovery.Pairs(sources, references)

	runCtx := services.WithRunID(cmd.Context(), ctx.runIDValue())
	out := cmd.OutOrStdout()
	opts := []reconcile.RunnerOption{reconcile.WithOutput(out)}

	if exporting {
		lock, err := runlock.Acquire(cfg.LockPath())
		if err != nil {
			return err
		}
		defer func() { _ = lock.Release() }()

		if store := openHistory(cfg, logger); store != nil {
			defer store.Close()
			opts = append(opts, reconcile.WithRecorder(store))
		}
	} else if isTerminal(out) {
		opts = append(opts, reconcile.WithRenderer(renderReportTable))
	}

	var streams reconcile.StreamProber
	if exporting && toolAvailable(statuses, cfg.Tools.FFprobe) {
		streams = ffprobe.NewProber(cfg.Tools.FFprobe)
	}

	engine := reconcile.NewEngine(
		mediainfo.NewProber(cfg.Tools.MediaInfo),
		streams,
		ffmpeg.NewTranscoder(ffmpeg.WithBinary(cfg.Tools.FFmpeg), ffmpeg.WithLogger(logger)),
		reconcile.Options{
			Filter: reconcile.TrackFilter{
				Threshold:  cfg.Filter.Threshold,
				Language:   cfg.Filter.Language,
				ProcessAll: cfg.Filter.ProcessAll,
			},
			OutputDir: cfg.Paths.OutputDir,
			DefaultSilence: reconcile.SilenceSpec{
				SampleRate:    cfg.Silence.DefaultSampleRate,
				ChannelLayout: cfg.Silence.DefaultChannelLayout,
			},
			Verify: cfg.Media.Verify,
		},
		logger,
	)

	summary, err := reconcile.NewRunner(engine, mode, logger, opts...).Run(runCtx, pairs)
	if err != nil {
		return err
	}
	if exporting {
		fmt.Fprintf(out, "Repaired %d track(s), copied %d, failed %d\n",
			summary.TracksRepaired, summary.TracksCopied, summary.TracksFailed)
	}
	if summary.Failed() {
		return fmt.Errorf("%d file(s) and %d track(s) failed; see log output", summary.FilesFailed, summary.TracksFailed)
	}
	return nil
}

// openHistory returns nil when history is disabled or unavailable. A broken
// history database never blocks an export.
func openHistory(cfg *config.Config, logger *slog.Logger) *history.Store {
	if !cfg.History.Enabled {
		return nil
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
			logging.String(logging.FieldImpact, "track outcomes of this run are not recorded"),
			logging.String(logging.FieldErrorHint, "check history.path or set history.enabled = false"),
			logging.Error(err),
		)
		return nil
	}
	return store
}

func toolAvailable(statuses []deps.Status, command string) bool {
	for _, status := range statuses {
		if status.Command == command {
			return status.Available
		}
	}
	return false
}

func renderReportTable(w io.Writer, report reconcile.FileReport) error {
	if _, err := fmt.Fprintf(w, "%s | Video Duration: %s\n", report.Name, reconcile.FormatSeconds(report.Reference)); err != nil {
		return err
	}
	plans := report.Reported()
	if len(plans) == 0 {
		_, err := fmt.Fprintln(w)
		return err
	}
	rows := make([][]string, 0, len(plans))
	for _, plan := range plans {
		language := plan.Track.Language
		if language == "" {
			language = "und"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", plan.Track.ID),
			language,
			reconcile.FormatSeconds(plan.Track.Duration),
			reconcile.FormatSeconds(plan.Difference),
			plan.Action.Kind.String(),
		})
	}
	table := renderTable(
		[]string{"Track", "Language", "Duration", "Difference", "Action"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft},
	)
	_, err := fmt.Fprintf(w, "%s\n\n", table)
	return err
}
