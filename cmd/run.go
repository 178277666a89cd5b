package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bioseqlab/kanno/internal/kodb"
	"github.com/bioseqlab/kanno/internal/pipeline"
	"github.com/bioseqlab/kanno/internal/search"
)

var runInputs []string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Annotate one or more protein FASTA files",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate(); err != nil {
			return err
		}
		for _, in := range runInputs {
			if _, err := os.Stat(in); err != nil {
				return eris.Wrapf(err, "input %s", in)
			}
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		lookup, err := kodb.Open(cfg.Pipeline.DBDir)
		if err != nil {
			return eris.Wrap(err, "open annotation database")
		}
		defer lookup.Close()

		runner := &search.Runner{BinDir: cfg.Search.BinDir}
		p := pipeline.New(cfg, st, lookup, runner)

		result, err := p.Run(ctx, runInputs)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("annotation complete",
			zap.Int("entities", result.Entities),
			zap.Int("resolved", result.Resolved),
			zap.Int("unresolved", result.Unresolved),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	runCmd.Flags().StringArrayVarP(&runInputs, "input", "i", nil, "protein FASTA file (repeatable, required)")
	runCmd.Flags().StringVar(&cfgOverride.outDir, "outdir", "", "output directory")
	runCmd.Flags().StringVar(&cfgOverride.dbDir, "dbdir", "", "annotation database directory")
	runCmd.Flags().StringVar(&cfgOverride.method, "method", "", "search method: blast, diamond or sword")
	runCmd.Flags().Float64Var(&cfgOverride.identity, "identity", -1, "minimum percent identity")
	runCmd.Flags().Float64Var(&cfgOverride.bitscore, "bitscore", -1, "minimum bitscore")
	runCmd.Flags().Float64Var(&cfgOverride.evalue, "evalue", -1, "maximum e-value")
	runCmd.Flags().Float64Var(&cfgOverride.coverage, "coverage", -1, "minimum alignment coverage percent")
	runCmd.Flags().IntVar(&cfgOverride.workers, "workers", 0, "parallel entities per stage")
	runCmd.Flags().IntVar(&cfgOverride.threads, "threads", 0, "threads per search invocation")
	runCmd.Flags().BoolVar(&cfgOverride.light, "light", false, "run only the kofam and swissprot stages")
	runCmd.Flags().StringVar(&cfgOverride.binDir, "bin-dir", "", "directory holding the search tool binaries")
	_ = runCmd.MarkFlagRequired("input")

	runCmd.PreRun = func(cmd *cobra.Command, args []string) {
		applyOverrides(cmd)
	}
	rootCmd.AddCommand(runCmd)
}

// cfgOverride holds run-command flag values layered over the file/env
// configuration when explicitly set.
var cfgOverride struct {
	outDir, dbDir, method, binDir        string
	identity, bitscore, evalue, coverage float64
	workers, threads                     int
	light                                bool
}

func applyOverrides(cmd *cobra.Command) {
	set := cmd.Flags().Changed
	if set("outdir") {
		cfg.Pipeline.OutDir = cfgOverride.outDir
	}
	if set("dbdir") {
		cfg.Pipeline.DBDir = cfgOverride.dbDir
	}
	if set("method") {
		cfg.Search.Method = cfgOverride.method
	}
	if set("bin-dir") {
		cfg.Search.BinDir = cfgOverride.binDir
	}
	if set("identity") {
		cfg.Pipeline.Cutoffs.Identity = cfgOverride.identity
	}
	if set("bitscore") {
		cfg.Pipeline.Cutoffs.Bitscore = cfgOverride.bitscore
	}
	if set("evalue") {
		cfg.Pipeline.Cutoffs.EValue = cfgOverride.evalue
	}
	if set("coverage") {
		cfg.Pipeline.Cutoffs.Coverage = cfgOverride.coverage
	}
	if set("workers") {
		cfg.Pipeline.Workers = cfgOverride.workers
	}
	if set("threads") {
		cfg.Pipeline.Threads = cfgOverride.threads
	}
	if set("light") {
		cfg.Pipeline.Light = cfgOverride.light
	}
}
