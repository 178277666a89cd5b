package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioseqlab/kanno/internal/config"
	"github.com/bioseqlab/kanno/internal/model"
)

func stageTestConfig() *config.Config {
	return &config.Config{
		Pipeline: config.PipelineConfig{
			DBDir:   "/db",
			Workers: 3,
			Threads: 2,
			Cutoffs: model.Thresholds{Identity: 40, Bitscore: 50, EValue: 0.01, Coverage: 70},
		},
		Search: config.SearchConfig{Method: "diamond"},
	}
}

func TestBuildStages_FullCascade(t *testing.T) {
	stages := BuildStages(stageTestConfig())
	require.Len(t, stages, 4)

	assert.Equal(t, StageKofam, stages[0].Name)
	assert.Equal(t, model.StageKindTagging, stages[0].Kind)
	assert.Equal(t, filepath.Join("/db", "kofam"), stages[0].Database)

	assert.Equal(t, StageSwissprot, stages[1].Name)
	assert.Equal(t, StageRefseq, stages[2].Name)
	assert.Equal(t, StageTrembl, stages[3].Name)
	for _, sc := range stages[1:] {
		assert.Equal(t, model.StageKindSearch, sc.Kind)
		assert.Equal(t, model.MethodDiamond, sc.Method)
		assert.Equal(t, 3, sc.Workers)
		assert.Equal(t, 2, sc.Threads)
	}
}

func TestBuildStages_Light(t *testing.T) {
	cfg := stageTestConfig()
	cfg.Pipeline.Light = true

	stages := BuildStages(cfg)
	require.Len(t, stages, 2)
	assert.Equal(t, StageKofam, stages[0].Name)
	assert.Equal(t, StageSwissprot, stages[1].Name)
}

func TestDatabasePath_PerMethod(t *testing.T) {
	assert.Equal(t, filepath.Join("/db", "swissprot.dmnd"),
		databasePath("/db", "swissprot", model.StageKindSearch, model.MethodDiamond))
	assert.Equal(t, filepath.Join("/db", "swissprot.fasta"),
		databasePath("/db", "swissprot", model.StageKindSearch, model.MethodSword))
	assert.Equal(t, filepath.Join("/db", "swissprot"),
		databasePath("/db", "swissprot", model.StageKindSearch, model.MethodBlast))
	assert.Equal(t, filepath.Join("/db", "kofam"),
		databasePath("/db", "refseq", model.StageKindTagging, model.MethodDiamond))
}
