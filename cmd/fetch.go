package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bioseqlab/kanno/internal/fetch"
)

var fetchDBDir string

var fetchCmd = &cobra.Command{
	Use:   "fetch <source>...",
	Short: "Download reference-database releases",
	Long: "Downloads reference releases over FTP into the database directory, " +
		"one subdirectory per source. Sources: " + strings.Join(fetch.Sources(), ", ") + ".",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if fetchDBDir == "" {
			fetchDBDir = cfg.Pipeline.DBDir
		}
		if fetchDBDir == "" {
			return fmt.Errorf("no database directory: set --dbdir or pipeline.dbdir")
		}

		f := fetch.New(fetch.Options{
			Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			RatePerSec: cfg.Fetch.RatePerSec,
		})

		for _, source := range args {
			if err := f.FetchSource(ctx, cfg.Fetch, source, fetchDBDir); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchDBDir, "dbdir", "", "database directory (defaults to pipeline.dbdir)")
	rootCmd.AddCommand(fetchCmd)
}
