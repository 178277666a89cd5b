package fasta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `>g1 hypothetical protein
MKTAYIAKQR
QISFVKSHFS
>g2
MADEEKLPPG
>g3 description with	tab
MSTNPKPQRK
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.faa")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	return path
}

func TestID(t *testing.T) {
	assert.Equal(t, "g1", ID(">g1 hypothetical protein"))
	assert.Equal(t, "g2", ID(">g2"))
	assert.Equal(t, "g3", ID(">g3\tdescription"))
}

func TestIDs(t *testing.T) {
	ids, err := IDs(writeSample(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"g1", "g2", "g3"}, ids)

	n, err := Count(writeSample(t))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestIDs_MissingFile(t *testing.T) {
	_, err := IDs(filepath.Join(t.TempDir(), "absent.faa"))
	assert.Error(t, err)
}

func TestWriteSubset_Exclude(t *testing.T) {
	in := writeSample(t)
	out := filepath.Join(t.TempDir(), "carry.faa")

	n, err := WriteSubset(in, out, map[string]struct{}{"g2": {}}, true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ids, err := IDs(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"g1", "g3"}, ids)

	// Multi-line sequence bodies survive intact.
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "MKTAYIAKQR\nQISFVKSHFS\n")
	assert.NotContains(t, string(data), "MADEEKLPPG")
}

func TestWriteSubset_Keep(t *testing.T) {
	in := writeSample(t)
	out := filepath.Join(t.TempDir(), "keep.faa")

	n, err := WriteSubset(in, out, map[string]struct{}{"g2": {}}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ids, err := IDs(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"g2"}, ids)
}

func TestWriteSubset_ExcludeAll(t *testing.T) {
	in := writeSample(t)
	out := filepath.Join(t.TempDir(), "empty.faa")

	n, err := WriteSubset(in, out, map[string]struct{}{"g1": {}, "g2": {}, "g3": {}}, true)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	ids, err := IDs(out)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
