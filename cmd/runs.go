package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/bioseqlab/kanno/internal/model"
	"github.com/bioseqlab/kanno/internal/store"
)

var (
	runsStatus string
	runsLimit  int
	runsJSON   bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		filter := store.RunFilter{
			Status: model.RunStatus(runsStatus),
			Limit:  runsLimit,
		}
		runs, err := st.ListRuns(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "list runs")
		}

		if runsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(runs)
		}

		fmt.Printf("%-36s  %-9s  %-8s  %s\n", "ID", "STATUS", "RESOLVED", "CREATED")
		for _, r := range runs {
			resolved := "-"
			if r.Result != nil {
				resolved = fmt.Sprintf("%d/%d", r.Result.Resolved, r.Result.Resolved+r.Result.Unresolved)
			}
			fmt.Printf("%-36s  %-9s  %-8s  %s\n",
				r.ID, r.Status, resolved, r.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

var runShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its stages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrapf(err, "get run %s", args[0])
		}
		stages, err := st.ListStages(ctx, run.ID)
		if err != nil {
			return eris.Wrap(err, "list stages")
		}

		out := struct {
			Run    *model.Run       `json:"run"`
			Stages []model.RunStage `json:"stages"`
		}{run, stages}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	runsCmd.Flags().StringVar(&runsStatus, "status", "", "filter by status (queued, running, complete, failed)")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to list")
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "emit JSON instead of a table")

	runsCmd.AddCommand(runShowCmd)
	rootCmd.AddCommand(runsCmd)
}
