package search

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bioseqlab/kanno/internal/model"
)

// TagKO runs the profile-based KO tagging tool against one entity. The
// tool applies its own per-profile score thresholds; lines marked with a
// leading '*' are confident assignments. Returns the (query id, KO)
// hits and the detail artifact path.
func (r *Runner) TagKO(ctx context.Context, queryPath, tmpDir, profileDB string, threads int) (*Result, error) {
	out := filepath.Join(tmpDir, filepath.Base(queryPath)+".kofam.tsv")

	bin := r.resolve(binKofam)
	args := []string{
		"--profile", filepath.Join(profileDB, "profiles"),
		"--ko-list", filepath.Join(profileDB, "ko_list"),
		"--cpu", strconv.Itoa(threads),
		"--format", "detail-tsv",
		"-o", out,
		queryPath,
	}

	zap.L().Debug("search: invoking tagger",
		zap.String("bin", bin),
		zap.String("query", queryPath),
	)

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, eris.Wrapf(err, "search: ko tagging for %s", queryPath)
	}

	hits, err := ParseKofam(out)
	if err != nil {
		return nil, err
	}
	return &Result{Entity: queryPath, Hits: hits, Artifact: out}, nil
}

// ParseKofam extracts confident assignments from a detail-tsv output
// file. Columns: marker, gene, KO, threshold, score, e-value, definition;
// only rows whose marker is '*' pass the tool's thresholds. One KO per
// gene is kept (the first, which the tool ranks best).
func ParseKofam(path string) ([]model.Hit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "search: open tagging result %s", path)
	}
	defer f.Close()

	var hits []model.Hit
	seen := make(map[string]struct{})

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 || strings.TrimSpace(fields[0]) != "*" {
			continue
		}
		gene := strings.TrimSpace(fields[1])
		ko := strings.TrimSpace(fields[2])
		if gene == "" || ko == "" {
			continue
		}
		if _, dup := seen[gene]; dup {
			continue
		}
		seen[gene] = struct{}{}
		hits = append(hits, model.Hit{QueryID: gene, MatchID: ko})
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrapf(err, "search: scan tagging result %s", path)
	}
	return hits, nil
}
