package pipeline

import (
	"bufio"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/bioseqlab/kanno/internal/model"
)

// SinkWriter appends resolved records to one entity's annotation sink.
// The sink is append-only: existing content is never truncated or
// reordered. Each entity owns exactly one sink and one writer, so no
// two stages ever write the same sink concurrently.
//
// Re-merging an identical record set is a no-op: the writer remembers
// every (query id, source tag) pair already present in the sink and
// skips duplicates.
type SinkWriter struct {
	path string
	seen map[string]struct{}
}

func sinkKey(queryID, database string) string {
	return queryID + "\x00" + database
}

// OpenSink opens (creating if needed) the sink at path. On creation the
// ten-column header is written; on reopen the existing rows seed the
// duplicate filter.
func OpenSink(path string) (*SinkWriter, error) {
	w := &SinkWriter{path: path, seen: make(map[string]struct{})}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return w, w.writeHeader()
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sink: open %s", path)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	first := true
	for sc.Scan() {
		line := sc.Text()
		if first {
			first = false
			continue // header
		}
		rec := model.RecordFromFields(strings.Split(line, "\t"))
		if rec.QueryID != "" {
			w.seen[sinkKey(rec.QueryID, rec.Database)] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrapf(err, "sink: scan %s", path)
	}
	return w, nil
}

func (w *SinkWriter) writeHeader() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return eris.Wrapf(err, "sink: create %s", w.path)
	}
	defer f.Close()
	_, err = f.WriteString(strings.Join(model.SinkHeader, "\t") + "\n")
	return eris.Wrapf(err, "sink: write header %s", w.path)
}

// Append writes the given records to the sink in order, skipping any
// already present. Returns the number actually appended.
func (w *SinkWriter) Append(records []model.AnnotationRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, eris.Wrapf(err, "sink: append %s", w.path)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	appended := 0
	for _, r := range records {
		key := sinkKey(r.QueryID, r.Database)
		if _, dup := w.seen[key]; dup {
			continue
		}
		if _, err := bw.WriteString(strings.Join(r.Fields(), "\t") + "\n"); err != nil {
			return appended, eris.Wrapf(err, "sink: write %s", w.path)
		}
		w.seen[key] = struct{}{}
		appended++
	}
	if err := bw.Flush(); err != nil {
		return appended, eris.Wrapf(err, "sink: flush %s", w.path)
	}
	return appended, nil
}

// Path returns the sink file path.
func (w *SinkWriter) Path() string { return w.path }

// WriteKOExtract reads a finalized sink and writes its non-empty KO
// numbers, one per line in sink order, to extractPath.
func WriteKOExtract(sinkPath, extractPath string) (int, error) {
	f, err := os.Open(sinkPath)
	if err != nil {
		return 0, eris.Wrapf(err, "sink: open %s", sinkPath)
	}
	defer f.Close()

	out, err := os.Create(extractPath)
	if err != nil {
		return 0, eris.Wrapf(err, "sink: create extract %s", extractPath)
	}
	defer out.Close()

	bw := bufio.NewWriter(out)
	n := 0
	first := true

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		if first {
			first = false
			continue
		}
		rec := model.RecordFromFields(strings.Split(sc.Text(), "\t"))
		if rec.KO == "" {
			continue
		}
		if _, err := bw.WriteString(rec.KO + "\n"); err != nil {
			return n, eris.Wrapf(err, "sink: write extract %s", extractPath)
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return n, eris.Wrapf(err, "sink: scan %s", sinkPath)
	}
	return n, eris.Wrapf(bw.Flush(), "sink: flush extract %s", extractPath)
}
