package pipeline

import (
	"path/filepath"

	"github.com/bioseqlab/kanno/internal/config"
	"github.com/bioseqlab/kanno/internal/model"
)

// Stage names, in cascade order. The light configuration truncates the
// list after swissprot before the controller loop starts.
const (
	StageKofam     = "kofam"
	StageSwissprot = "swissprot"
	StageRefseq    = "refseq"
	StageTrembl    = "trembl"
)

// BuildStages returns the ordered stage list for a run. The first stage
// tags sequences against KO profiles; the rest are similarity searches
// of increasing database breadth.
func BuildStages(cfg *config.Config) []model.StageConfig {
	method := model.SearchMethod(cfg.Search.Method)
	common := model.StageConfig{
		Method:     method,
		Thresholds: cfg.Pipeline.Cutoffs,
		Workers:    cfg.Pipeline.Workers,
		Threads:    cfg.Pipeline.Threads,
	}

	mk := func(name string, kind model.StageKind) model.StageConfig {
		sc := common
		sc.Name = name
		sc.SourceTag = name
		sc.Kind = kind
		sc.Database = databasePath(cfg.Pipeline.DBDir, name, kind, method)
		return sc
	}

	stages := []model.StageConfig{
		mk(StageKofam, model.StageKindTagging),
		mk(StageSwissprot, model.StageKindSearch),
		mk(StageRefseq, model.StageKindSearch),
		mk(StageTrembl, model.StageKindSearch),
	}
	if cfg.Pipeline.Light {
		stages = stages[:2]
	}
	return stages
}

// databasePath resolves a stage's target database under the database
// directory. Each search method keeps its own index format.
func databasePath(dbdir, name string, kind model.StageKind, method model.SearchMethod) string {
	if kind == model.StageKindTagging {
		return filepath.Join(dbdir, "kofam")
	}
	switch method {
	case model.MethodDiamond:
		return filepath.Join(dbdir, name+".dmnd")
	case model.MethodSword:
		return filepath.Join(dbdir, name+".fasta")
	default: // blast formatted database prefix
		return filepath.Join(dbdir, name)
	}
}
