package pipeline

import (
	"github.com/bioseqlab/kanno/internal/model"
)

// Partition is the result of routing one entity's stage output: the
// records that resolved and the query ids that must carry forward.
// Resolved and Unresolved always partition the submitted id set.
type Partition struct {
	Resolved    []model.AnnotationRecord
	ResolvedIDs map[string]struct{}
	Unresolved  map[string]struct{}
}

// PartitionRecords splits the submitted query ids into resolved and
// unresolved using the looked-up records. A query id resolves iff some
// record for it carries a KO number; records without a KO are written
// nowhere and leave their query unresolved. An empty record set (the
// zero-hit case) marks every submitted id unresolved.
func PartitionRecords(submitted []string, records []model.AnnotationRecord) Partition {
	p := Partition{
		ResolvedIDs: make(map[string]struct{}),
		Unresolved:  make(map[string]struct{}, len(submitted)),
	}

	for _, r := range records {
		if !r.Resolved() {
			continue
		}
		if _, dup := p.ResolvedIDs[r.QueryID]; dup {
			continue
		}
		p.ResolvedIDs[r.QueryID] = struct{}{}
		p.Resolved = append(p.Resolved, r)
	}

	for _, id := range submitted {
		if _, ok := p.ResolvedIDs[id]; !ok {
			p.Unresolved[id] = struct{}{}
		}
	}
	return p
}
