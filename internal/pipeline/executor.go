package pipeline

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bioseqlab/kanno/internal/model"
	"github.com/bioseqlab/kanno/internal/search"
)

// StageRunner abstracts the external search tools for the executor.
// Implementations must be safe to invoke concurrently for distinct
// entities. *search.Runner is the production implementation.
type StageRunner interface {
	TagKO(ctx context.Context, queryPath, tmpDir, profileDB string, threads int) (*search.Result, error)
	Search(ctx context.Context, queryPath, tmpDir string, cfg model.StageConfig) (*search.Result, error)
}

var _ StageRunner = (*search.Runner)(nil)

// executeStage fans one stage out across the given entities with a
// bounded worker pool. The pool is created here and fully joined before
// return on every path, so stages never overlap.
//
// Failure policy: a failed search for one entity is logged and yields an
// empty result for that entity (it simply carries forward); sibling
// entities are unaffected. Only context cancellation aborts the stage.
func executeStage(ctx context.Context, runner StageRunner, entities []*model.EntityState, cfg model.StageConfig, tmpDir string) (map[string]*search.Result, error) {
	results := make(map[string]*search.Result, len(entities))
	var mu sync.Mutex
	var failures atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	for _, st := range entities {
		g.Go(func() error {
			log := zap.L().With(
				zap.String("entity", st.ShortName),
				zap.String("stage", cfg.Name),
			)

			var res *search.Result
			var err error
			if cfg.Kind == model.StageKindTagging {
				res, err = runner.TagKO(gctx, st.CarryForward, tmpDir, cfg.Database, cfg.Threads)
			} else {
				res, err = runner.Search(gctx, st.CarryForward, tmpDir, cfg)
			}
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failures.Add(1)
				log.Error("stage: search failed, treating entity as zero hits", zap.Error(err))
				res = &search.Result{Entity: st.CarryForward}
			}

			mu.Lock()
			results[st.Entity.Path] = res
			mu.Unlock()
			return nil
		})
	}

	// Join the whole pool before returning, even on error.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if n := failures.Load(); n > 0 {
		zap.L().Warn("stage: entities downgraded to zero hits",
			zap.String("stage", cfg.Name),
			zap.Int64("failed", n),
		)
	}
	return results, nil
}
