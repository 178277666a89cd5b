package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioseqlab/kanno/internal/model"
)

func TestParseKofam(t *testing.T) {
	out := filepath.Join(t.TempDir(), "detail.tsv")
	content := "# gene name\tKO\tthrshld\tscore\tE-value\tKO definition\n" +
		"*\tg1\tK00001\t100.00\t150.2\t1e-50\talcohol dehydrogenase\n" +
		"\tg1\tK00002\t100.00\t80.1\t1e-10\tnot confident\n" +
		"*\tg1\tK00003\t90.00\t140.0\t1e-45\tsecond confident, dropped\n" +
		"*\tg2\tK03043\t200.00\t250.7\t1e-80\tRNA polymerase beta\n" +
		"\tg3\tK00004\t100.00\t10.0\t0.5\tbelow threshold\n"
	require.NoError(t, os.WriteFile(out, []byte(content), 0o644))

	hits, err := ParseKofam(out)
	require.NoError(t, err)

	assert.Equal(t, []model.Hit{
		{QueryID: "g1", MatchID: "K00001"},
		{QueryID: "g2", MatchID: "K03043"},
	}, hits)
}

func TestParseKofam_Empty(t *testing.T) {
	out := filepath.Join(t.TempDir(), "detail.tsv")
	require.NoError(t, os.WriteFile(out, []byte("# gene name\tKO\n"), 0o644))

	hits, err := ParseKofam(out)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestRunnerResolve(t *testing.T) {
	r := &Runner{}
	assert.Equal(t, "diamond", r.resolve(binDiamond))

	r.BinDir = "/opt/tools"
	assert.Equal(t, "/opt/tools/diamond", r.resolve(binDiamond))
}
