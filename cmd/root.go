package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bioseqlab/kanno/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "kanno",
	Short: "Cascading protein annotation pipeline",
	Long:  "Annotates protein FASTA files by cascading them through KO profile tagging and similarity searches of increasing database breadth, keeping one cumulative annotation table per input.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
