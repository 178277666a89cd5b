// Package search wraps the external homology-search tools. It builds the
// per-entity command lines, runs them, and filters their tabular output
// down to hits passing the stage thresholds. Score computation lives in
// the tools; only invocation and filtering live here.
package search

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bioseqlab/kanno/internal/model"
)

// Tool binary names. BinDir overrides resolve against these.
const (
	binBlast   = "blastp"
	binDiamond = "diamond"
	binSword   = "sword"
	binKofam   = "exec_annotation"
)

// outFormat is the tabular column set requested from every search method,
// matched by the parser in parse.go.
var outFormat = []string{"qseqid", "sseqid", "pident", "length", "evalue", "bitscore", "qlen"}

// Runner invokes the external search tools. Safe for concurrent use
// across distinct entities.
type Runner struct {
	BinDir string
}

// resolve returns the binary path, honoring the BinDir override.
func (r *Runner) resolve(name string) string {
	if r.BinDir == "" {
		return name
	}
	return filepath.Join(r.BinDir, name)
}

// Result references one entity's filtered search artifact.
type Result struct {
	Entity   string      // input path the search ran against
	Hits     []model.Hit // hits passing the stage thresholds
	Artifact string      // filtered result file, kept for provenance
}

// Search runs one similarity search of queryPath against the stage's
// database, writes the threshold-filtered artifact next to the raw
// output, and returns the surviving hits.
func (r *Runner) Search(ctx context.Context, queryPath, tmpDir string, cfg model.StageConfig) (*Result, error) {
	raw := filepath.Join(tmpDir, filepath.Base(queryPath)+"."+cfg.Name+".tab")

	args, err := searchArgs(cfg.Method, queryPath, cfg.Database, raw, cfg.Threads)
	if err != nil {
		return nil, err
	}

	bin := r.resolve(toolFor(cfg.Method))
	zap.L().Debug("search: invoking tool",
		zap.String("bin", bin),
		zap.String("query", queryPath),
		zap.String("stage", cfg.Name),
	)

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, eris.Wrapf(err, "search: %s against %s for %s", cfg.Method, cfg.Name, queryPath)
	}

	hits, filtered, err := FilterTabular(raw, cfg.Thresholds)
	if err != nil {
		return nil, err
	}

	artifact := raw + ".filt"
	if err := writeFiltered(artifact, filtered); err != nil {
		return nil, err
	}

	return &Result{Entity: queryPath, Hits: hits, Artifact: artifact}, nil
}

// toolFor maps the method selector onto its binary name.
func toolFor(m model.SearchMethod) string {
	switch m {
	case model.MethodBlast:
		return binBlast
	case model.MethodDiamond:
		return binDiamond
	default:
		return binSword
	}
}

// searchArgs builds the tool-specific argument list. All three methods
// are asked for the same tabular column set.
func searchArgs(method model.SearchMethod, query, db, out string, threads int) ([]string, error) {
	fmt6 := "6"
	for _, col := range outFormat {
		fmt6 += " " + col
	}

	switch method {
	case model.MethodBlast:
		return []string{
			"-query", query,
			"-db", db,
			"-out", out,
			"-outfmt", fmt6,
			"-num_threads", strconv.Itoa(threads),
		}, nil
	case model.MethodDiamond:
		args := []string{
			"blastp",
			"--query", query,
			"--db", db,
			"--out", out,
			"--threads", strconv.Itoa(threads),
			"--outfmt", "6",
		}
		return append(args, outFormat...), nil
	case model.MethodSword:
		return []string{
			"-i", query,
			"-j", db,
			"-o", out,
			"-f", "bm9",
			"-t", strconv.Itoa(threads),
		}, nil
	default:
		return nil, eris.Errorf("search: invalid method %q", method)
	}
}
