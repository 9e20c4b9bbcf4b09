package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	flags := &runFlags{}
	var configFlag string

	ctx := newCommandContext(&configFlag, flags)

	rootCmd := &cobra.Command{
		Use:           "mkvaudur",
		Short:         "Align MKV audio track durations with the video track",
		Long:          "mkvaudur compares every audio track of an MKV file against the video duration and exports\ntrimmed or silence-padded copies. It requires mediainfo, ffmpeg and ffprobe on PATH.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig(cmd)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	pf.Float64VarP(&flags.threshold, "threshold", "t", 0, "Minimum duration difference in seconds (exclusive)")
	pf.StringVarP(&flags.language, "language", "l", "", "Only select tracks with this language code")
	pf.StringVarP(&flags.output, "output", "o", "", "Custom output directory")
	pf.BoolVarP(&flags.all, "all", "a", false, "Display/export all audio tracks; tracks within the threshold are copied unchanged")
	pf.StringVarP(&flags.reference, "reference", "r", "", "File or directory whose video duration is used as reference")
	pf.BoolVar(&flags.verify, "verify", false, "Re-probe written tracks with ffprobe and log the remaining difference")
	pf.CountVarP(&flags.verbose, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format: console or json")

	rootCmd.AddCommand(newDisplayCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newDepsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
