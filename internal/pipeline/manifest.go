package pipeline

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/bioseqlab/kanno/internal/model"
)

// manifest is the YAML run summary written into the output directory at
// the end of a successful run, for downstream summarization tooling.
type manifest struct {
	RunID    string               `yaml:"run_id"`
	Entities []manifestEntity     `yaml:"entities"`
	Stages   []model.StageSummary `yaml:"stages"`
}

type manifestEntity struct {
	Input        string `yaml:"input"`
	ShortName    string `yaml:"short_name"`
	Sink         string `yaml:"sink"`
	KOExtract    string `yaml:"ko_extract"`
	StageReached int    `yaml:"stage_reached"`
	Resolved     int    `yaml:"resolved"`
	Unresolved   int    `yaml:"unresolved"`
}

// ManifestFile is the manifest's file name under the output directory.
const ManifestFile = "run_manifest.yaml"

func writeManifest(outDir, runID string, states []*model.EntityState, result *model.RunResult) error {
	m := manifest{RunID: runID, Stages: result.Stages}
	for _, st := range states {
		m.Entities = append(m.Entities, manifestEntity{
			Input:        st.Entity.Path,
			ShortName:    st.ShortName,
			Sink:         st.SinkPath,
			KOExtract:    extractPath(st.SinkPath),
			StageReached: st.StageCursor,
			Resolved:     st.Resolved,
			Unresolved:   st.Unresolved,
		})
	}

	data, err := yaml.Marshal(&m)
	if err != nil {
		return eris.Wrap(err, "pipeline: marshal manifest")
	}
	path := filepath.Join(outDir, ManifestFile)
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "pipeline: write manifest %s", path)
}
