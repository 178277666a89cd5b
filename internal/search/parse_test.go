package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioseqlab/kanno/internal/model"
)

var testThresholds = model.Thresholds{
	Identity: 40,
	Bitscore: 50,
	EValue:   0.01,
	Coverage: 70,
}

func TestParseRow(t *testing.T) {
	row, ok := parseRow("g1\tP12345.2\t97.5\t240\t1e-50\t480\t250")
	require.True(t, ok)
	assert.Equal(t, "g1", row.QueryID)
	assert.Equal(t, "P12345.2", row.MatchID)
	assert.Equal(t, 97.5, row.Identity)
	assert.Equal(t, 240.0, row.Length)
	assert.Equal(t, 1e-50, row.EValue)
	assert.Equal(t, 480.0, row.Bitscore)
	assert.Equal(t, 250.0, row.QueryLen)

	_, ok = parseRow("")
	assert.False(t, ok)
	_, ok = parseRow("# comment")
	assert.False(t, ok)
	_, ok = parseRow("g1\tP12345\t97.5")
	assert.False(t, ok)
	_, ok = parseRow("g1\tP12345\tnot-a-number\t240\t1e-50\t480\t250")
	assert.False(t, ok)
}

func TestRowPasses(t *testing.T) {
	base := tabularRow{Identity: 50, Length: 200, EValue: 1e-10, Bitscore: 100, QueryLen: 250}
	assert.True(t, base.passes(testThresholds))

	low := base
	low.Identity = 39.9
	assert.False(t, low.passes(testThresholds))

	low = base
	low.Bitscore = 49
	assert.False(t, low.passes(testThresholds))

	low = base
	low.EValue = 0.5
	assert.False(t, low.passes(testThresholds))

	// 150/250 = 60% coverage, below the 70% floor.
	low = base
	low.Length = 150
	assert.False(t, low.passes(testThresholds))
}

func TestFilterTabular(t *testing.T) {
	raw := filepath.Join(t.TempDir(), "out.tab")
	content := "g1\tP11111.1\t80\t240\t1e-40\t300\t250\n" + // passes
		"g1\tP22222\t75\t240\t1e-35\t280\t250\n" + // duplicate query, dropped
		"g2\tP33333\t20\t240\t1e-40\t300\t250\n" + // identity too low
		"g3\tQ44444\t90\t100\t1e-40\t300\t250\n" + // coverage too low
		"g4\tQ55555\t90\t240\t1e-40\t300\t250\n"
	require.NoError(t, os.WriteFile(raw, []byte(content), 0o644))

	hits, lines, err := FilterTabular(raw, testThresholds)
	require.NoError(t, err)

	assert.Equal(t, []model.Hit{
		{QueryID: "g1", MatchID: "P11111"},
		{QueryID: "g4", MatchID: "Q55555"},
	}, hits)
	assert.Len(t, lines, 2)
}

func TestTrimVersion(t *testing.T) {
	assert.Equal(t, "WP_011234567", trimVersion("WP_011234567.1"))
	assert.Equal(t, "P12345", trimVersion("P12345"))
	// Non-numeric suffix is part of the id, not a version.
	assert.Equal(t, "sp|P12345|ADH1.YEAST", trimVersion("sp|P12345|ADH1.YEAST"))
}

func TestSearchArgs(t *testing.T) {
	args, err := searchArgs(model.MethodDiamond, "q.faa", "swissprot.dmnd", "out.tab", 4)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"blastp", "--query", "q.faa", "--db", "swissprot.dmnd",
		"--out", "out.tab", "--threads", "4", "--outfmt", "6",
		"qseqid", "sseqid", "pident", "length", "evalue", "bitscore", "qlen",
	}, args)

	args, err = searchArgs(model.MethodBlast, "q.faa", "swissprot", "out.tab", 2)
	require.NoError(t, err)
	assert.Contains(t, args, "-outfmt")
	assert.Contains(t, args, "6 qseqid sseqid pident length evalue bitscore qlen")

	args, err = searchArgs(model.MethodSword, "q.faa", "swissprot.fasta", "out.tab", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"-i", "q.faa", "-j", "swissprot.fasta", "-o", "out.tab", "-f", "bm9", "-t", "1"}, args)

	_, err = searchArgs(model.SearchMethod("bad"), "q", "db", "out", 1)
	assert.Error(t, err)
}
