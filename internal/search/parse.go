package search

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/bioseqlab/kanno/internal/model"
)

// tabularRow is one parsed line of tool output in the requested column
// order: qseqid sseqid pident length evalue bitscore qlen.
type tabularRow struct {
	QueryID  string
	MatchID  string
	Identity float64
	Length   float64
	EValue   float64
	Bitscore float64
	QueryLen float64
	Raw      string
}

// parseRow parses one tab-separated output line. Comment lines and short
// rows yield ok=false.
func parseRow(line string) (tabularRow, bool) {
	if line == "" || strings.HasPrefix(line, "#") {
		return tabularRow{}, false
	}
	fields := strings.Fields(line)
	if len(fields) < 7 {
		return tabularRow{}, false
	}

	row := tabularRow{QueryID: fields[0], MatchID: fields[1], Raw: line}
	nums := []struct {
		dst *float64
		src string
	}{
		{&row.Identity, fields[2]},
		{&row.Length, fields[3]},
		{&row.EValue, fields[4]},
		{&row.Bitscore, fields[5]},
		{&row.QueryLen, fields[6]},
	}
	for _, n := range nums {
		v, err := strconv.ParseFloat(n.src, 64)
		if err != nil {
			return tabularRow{}, false
		}
		*n.dst = v
	}
	return row, true
}

// passes applies the stage thresholds. Coverage is alignment length over
// query length, in percent.
func (r tabularRow) passes(t model.Thresholds) bool {
	if r.Identity < t.Identity {
		return false
	}
	if r.Bitscore < t.Bitscore {
		return false
	}
	if r.EValue > t.EValue {
		return false
	}
	if r.QueryLen > 0 && r.Length/r.QueryLen*100 < t.Coverage {
		return false
	}
	return true
}

// FilterTabular reads a raw tabular result file and returns the hits
// passing the thresholds along with their raw lines. Only the best
// (first-seen) surviving hit per query id is kept; tools emit hits
// ranked best-first per query.
func FilterTabular(path string, t model.Thresholds) ([]model.Hit, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "search: open result %s", path)
	}
	defer f.Close()

	var hits []model.Hit
	var lines []string
	seen := make(map[string]struct{})

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		row, ok := parseRow(sc.Text())
		if !ok || !row.passes(t) {
			continue
		}
		if _, dup := seen[row.QueryID]; dup {
			continue
		}
		seen[row.QueryID] = struct{}{}
		hits = append(hits, model.Hit{QueryID: row.QueryID, MatchID: trimVersion(row.MatchID)})
		lines = append(lines, row.Raw)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, eris.Wrapf(err, "search: scan result %s", path)
	}
	return hits, lines, nil
}

// trimVersion strips a trailing ".N" accession version so ids match the
// annotation database keys.
func trimVersion(id string) string {
	if i := strings.LastIndex(id, "."); i > 0 {
		if _, err := strconv.Atoi(id[i+1:]); err == nil {
			return id[:i]
		}
	}
	return id
}

// writeFiltered writes the surviving raw lines as the stage's filtered
// artifact.
func writeFiltered(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "search: create artifact %s", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := w.WriteString(line); err != nil {
			return eris.Wrapf(err, "search: write artifact %s", path)
		}
		if err := w.WriteByte('\n'); err != nil {
			return eris.Wrapf(err, "search: write artifact %s", path)
		}
	}
	return eris.Wrapf(w.Flush(), "search: flush artifact %s", path)
}
