package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mkvaudur/internal/deps"
	"mkvaudur/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external tools and directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			statuses := preflight.CheckSystemDeps(cfg, true)
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				rows = append(rows, []string{status.Name, status.Command, dependencyState(status), status.Description})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Tool", "Command", "Status", "Purpose"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))

			checks := preflight.RunAll(cfg)
			dirRows := make([][]string, 0, len(checks))
			failed := 0
			for _, check := range checks {
				if !check.Passed {
					failed++
				}
				dirRows = append(dirRows, []string{check.Name, yesNo(check.Passed), check.Detail})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Directory", "OK", "Detail"},
				dirRows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))

			if missing := deps.MissingRequired(statuses); len(missing) > 0 || failed > 0 {
				return fmt.Errorf("%d required tool(s) missing, %d directory check(s) failed", len(missing), failed)
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}

func dependencyState(status deps.Status) string {
	switch {
	case status.Available:
		return "ok"
	case status.Optional:
		return "missing (optional)"
	default:
		return "missing"
	}
}
