package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bioseqlab/kanno/internal/config"
	"github.com/bioseqlab/kanno/internal/fasta"
	"github.com/bioseqlab/kanno/internal/kodb"
	"github.com/bioseqlab/kanno/internal/model"
	"github.com/bioseqlab/kanno/internal/search"
	"github.com/bioseqlab/kanno/internal/store"
)

// Pipeline drives every entity through the annotation cascade. It owns
// the per-entity state exclusively; stages receive the state and hand it
// back, never alias it.
type Pipeline struct {
	cfg    *config.Config
	store  store.Store
	lookup kodb.Querier
	runner StageRunner
}

// New creates a Pipeline with all dependencies.
func New(cfg *config.Config, st store.Store, lookup kodb.Querier, runner StageRunner) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		store:  st,
		lookup: lookup,
		runner: runner,
	}
}

// Run annotates every input through the stage cascade and returns the
// run summary with the finalized sink and KO-extract paths.
func (p *Pipeline) Run(ctx context.Context, inputs []string) (*model.RunResult, error) {
	log := zap.L().With(zap.Int("inputs", len(inputs)))
	log.Info("pipeline: starting annotation run")

	stages := BuildStages(p.cfg)

	run, err := p.store.CreateRun(ctx, inputs)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}

	setStatus := func(status model.RunStatus) {
		if statusErr := p.store.UpdateRunStatus(ctx, run.ID, status); statusErr != nil {
			log.Warn("pipeline: failed to update status", zap.Error(statusErr))
		}
	}
	setStatus(model.RunStatusRunning)

	states, tmpDir, err := p.initStates(inputs, run.ID)
	if err != nil {
		setStatus(model.RunStatusFailed)
		return nil, err
	}

	result := &model.RunResult{Entities: len(states)}

	for i, sc := range stages {
		summary, stageErr := p.runStage(ctx, run.ID, i, sc, states, tmpDir)
		if stageErr != nil {
			setStatus(model.RunStatusFailed)
			return nil, stageErr
		}
		result.Stages = append(result.Stages, *summary)
	}

	// Termination: entities past the last stage are exhausted, their
	// carry-forward artifacts are about to be deleted with the temp dir.
	for _, st := range states {
		st.CarryForward = ""
	}

	// KO extracts, totals, temp cleanup, manifest.
	for _, st := range states {
		extract := extractPath(st.SinkPath)
		n, err := WriteKOExtract(st.SinkPath, extract)
		if err != nil {
			setStatus(model.RunStatusFailed)
			return nil, err
		}
		result.Sinks = append(result.Sinks, st.SinkPath)
		result.Extracts = append(result.Extracts, extract)
		result.Resolved += st.Resolved
		result.Unresolved += st.Unresolved
		log.Info("pipeline: entity finished",
			zap.String("entity", st.ShortName),
			zap.Int("stage_reached", st.StageCursor),
			zap.Int("resolved", st.Resolved),
			zap.Int("unresolved", st.Unresolved),
			zap.Int("ko_numbers", n),
		)
	}

	if err := os.RemoveAll(tmpDir); err != nil {
		log.Warn("pipeline: failed to remove temp dir", zap.String("dir", tmpDir), zap.Error(err))
	}

	if err := writeManifest(p.cfg.Pipeline.OutDir, run.ID, states, result); err != nil {
		log.Warn("pipeline: failed to write manifest", zap.Error(err))
	}

	if saveErr := p.store.UpdateRunResult(ctx, run.ID, result); saveErr != nil {
		log.Warn("pipeline: failed to save run result", zap.Error(saveErr))
	}

	log.Info("pipeline: run complete",
		zap.String("run_id", run.ID),
		zap.Int("resolved", result.Resolved),
		zap.Int("unresolved", result.Unresolved),
	)
	return result, nil
}

// initStates creates the per-entity state and the run's temporary
// working area. Every entity starts stage 0 with its original input as
// the carry-forward set.
func (p *Pipeline) initStates(inputs []string, runID string) ([]*model.EntityState, string, error) {
	outDir := p.cfg.Pipeline.OutDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, "", eris.Wrapf(err, "pipeline: create output dir %s", outDir)
	}
	tmpDir := filepath.Join(outDir, "tmp_"+runID[:8])
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, "", eris.Wrapf(err, "pipeline: create temp dir %s", tmpDir)
	}

	states := make([]*model.EntityState, 0, len(inputs))
	names := make(map[string]struct{})
	for _, in := range inputs {
		e := model.Entity{Path: in}
		short := e.ShortName()
		for n := 2; ; n++ {
			if _, taken := names[short]; !taken {
				break
			}
			short = e.ShortName() + "_" + strconv.Itoa(n)
		}
		names[short] = struct{}{}

		st := &model.EntityState{
			Entity:       e,
			ShortName:    short,
			SinkPath:     filepath.Join(outDir, short+".annot.tsv"),
			CarryForward: in,
		}
		// Create the sink up front so entities that never resolve a
		// record still end the run with a header-only sink and an empty
		// KO extract.
		if _, err := OpenSink(st.SinkPath); err != nil {
			return nil, "", err
		}
		states = append(states, st)
	}
	return states, tmpDir, nil
}

// runStage executes one stage end to end: select active entities, fan
// out the searches, then filter, merge and advance each entity. A full
// barrier separates stages; merging never overlaps a later search.
func (p *Pipeline) runStage(ctx context.Context, runID string, idx int, sc model.StageConfig, states []*model.EntityState, tmpDir string) (*model.StageSummary, error) {
	log := zap.L().With(zap.String("stage", sc.Name))
	start := time.Now()

	phase, phaseErr := p.store.CreateStage(ctx, runID, sc.Name)
	if phaseErr != nil {
		log.Warn("pipeline: failed to record stage", zap.Error(phaseErr))
	}
	complete := func(status model.StageStatus, summary *model.StageSummary) {
		if phase == nil {
			return
		}
		if err := p.store.CompleteStage(ctx, phase.ID, status, summary); err != nil {
			log.Warn("pipeline: failed to complete stage record", zap.Error(err))
		}
	}

	var active []*model.EntityState
	for _, st := range states {
		if st.Active() {
			active = append(active, st)
		}
	}

	summary := &model.StageSummary{Name: sc.Name, Submitted: len(active)}
	if len(active) == 0 {
		summary.Skipped = true
		log.Info("pipeline: stage skipped, no unresolved entities")
		complete(model.StageStatusSkipped, summary)
		return summary, nil
	}

	log.Info("pipeline: stage starting",
		zap.Int("entities", len(active)),
		zap.Int("workers", sc.Workers),
	)

	results, err := executeStage(ctx, p.runner, active, sc, tmpDir)
	if err != nil {
		complete(model.StageStatusFailed, summary)
		return nil, eris.Wrapf(err, "pipeline: stage %s", sc.Name)
	}

	for _, st := range active {
		before := st.Resolved
		if err := p.mergeEntity(ctx, idx, sc, st, results[st.Entity.Path], tmpDir); err != nil {
			complete(model.StageStatusFailed, summary)
			return nil, err
		}
		summary.Resolved += st.Resolved - before
		if st.Active() {
			summary.EntitiesUnresolved++
		}
	}

	summary.DurationMS = time.Since(start).Milliseconds()
	log.Info("pipeline: stage complete",
		zap.Int("entities_unresolved", summary.EntitiesUnresolved),
		zap.Int64("duration_ms", summary.DurationMS),
	)
	complete(model.StageStatusComplete, summary)
	return summary, nil
}

// mergeEntity routes one entity's stage output: partition into resolved
// and unresolved, append resolved records to the sink, and rebuild the
// carry-forward input for the next stage.
func (p *Pipeline) mergeEntity(ctx context.Context, idx int, sc model.StageConfig, st *model.EntityState, res *search.Result, tmpDir string) error {
	submitted, err := fasta.IDs(st.CarryForward)
	if err != nil {
		return err
	}

	if res != nil && res.Artifact != "" {
		st.Artifacts = append(st.Artifacts, res.Artifact)
	}

	var records []model.AnnotationRecord
	if res != nil && len(res.Hits) > 0 {
		records, err = p.annotate(ctx, sc, res.Hits)
		if err != nil {
			return err
		}
	}

	part := PartitionRecords(submitted, records)

	// Zero resolved records: no sink write, carry forward unchanged.
	if len(part.Resolved) == 0 {
		st.Unresolved = len(part.Unresolved)
		st.StageCursor = idx + 1
		return nil
	}

	sink, err := OpenSink(st.SinkPath)
	if err != nil {
		return err
	}
	appended, err := sink.Append(part.Resolved)
	if err != nil {
		return err
	}
	st.Resolved += appended
	st.Unresolved = len(part.Unresolved)
	st.StageCursor = idx + 1

	if len(part.Unresolved) == 0 {
		// Resolved early: never submitted to any later stage.
		st.CarryForward = ""
		return nil
	}

	next := filepath.Join(tmpDir, st.ShortName+"_stage"+strconv.Itoa(idx+1)+".faa")
	if _, err := fasta.WriteSubset(st.CarryForward, next, part.ResolvedIDs, true); err != nil {
		return err
	}
	st.CarryForward = next
	return nil
}

// annotate turns a stage's surviving hits into annotation records. The
// tagging stage carries its KO directly; search stages go through the
// lookup database.
func (p *Pipeline) annotate(ctx context.Context, sc model.StageConfig, hits []model.Hit) ([]model.AnnotationRecord, error) {
	if sc.Kind != model.StageKindTagging {
		records, err := p.lookup.Lookup(ctx, sc.SourceTag, hits)
		return records, eris.Wrapf(err, "pipeline: lookup %s", sc.SourceTag)
	}

	records := make([]model.AnnotationRecord, 0, len(hits))
	for _, h := range hits {
		product, err := p.lookup.KOProduct(ctx, h.MatchID)
		if err != nil {
			return nil, eris.Wrapf(err, "pipeline: ko product %s", h.MatchID)
		}
		records = append(records, model.AnnotationRecord{
			QueryID:   h.QueryID,
			ProteinID: h.MatchID,
			Product:   product,
			KO:        h.MatchID,
			KOProduct: product,
			Database:  sc.SourceTag,
		})
	}
	return records, nil
}

func extractPath(sinkPath string) string {
	base := sinkPath
	if filepath.Ext(base) == ".tsv" {
		base = base[:len(base)-len(".tsv")]
	}
	return base + ".ko.txt"
}
