package fetch

import (
	"context"
	"path"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bioseqlab/kanno/internal/config"
)

// Source names accepted by Sources/URLsFor.
const (
	SourceSwissprot = "swissprot"
	SourceTrembl    = "trembl"
	SourceKofam     = "kofam"
)

// Sources lists the downloadable reference sources.
func Sources() []string {
	return []string{SourceSwissprot, SourceTrembl, SourceKofam}
}

// URLsFor returns the release URLs for a named source. The refseq
// release is not fetched here: its sharded layout is mirrored with
// dedicated tooling.
func URLsFor(cfg config.FetchConfig, source string) ([]string, error) {
	switch source {
	case SourceSwissprot:
		return []string{cfg.SwissprotURL}, nil
	case SourceTrembl:
		return []string{cfg.TremblURL}, nil
	case SourceKofam:
		return []string{cfg.KofamProfileURL, cfg.KofamListURL}, nil
	}
	return nil, eris.Errorf("fetch: unknown source %q", source)
}

// FetchSource downloads every release file of a named source into
// dbdir, one subdirectory per source.
func (f *Fetcher) FetchSource(ctx context.Context, cfg config.FetchConfig, source, dbdir string) error {
	urls, err := URLsFor(cfg, source)
	if err != nil {
		return err
	}

	for _, u := range urls {
		dest := filepath.Join(dbdir, source, path.Base(u))
		zap.L().Info("fetch: downloading",
			zap.String("source", source),
			zap.String("url", u),
			zap.String("dest", dest),
		)
		n, err := f.DownloadToFile(ctx, u, dest)
		if err != nil {
			return eris.Wrapf(err, "fetch: source %s", source)
		}
		zap.L().Info("fetch: downloaded",
			zap.String("dest", dest),
			zap.Int64("bytes", n),
		)
	}
	return nil
}
