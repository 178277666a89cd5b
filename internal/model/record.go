package model

import "strings"

// AnnotationRecord is one row in an entity's annotation sink. Field order
// is fixed; records are written as ten tab-separated columns.
type AnnotationRecord struct {
	QueryID     string `json:"query_id"`
	ProteinID   string `json:"protein_id"`
	Product     string `json:"product"`
	KO          string `json:"ko_number"`
	KOProduct   string `json:"ko_product"`
	Taxonomy    string `json:"taxonomy"`
	Function    string `json:"function"`
	Compartment string `json:"compartment"`
	Process     string `json:"process"`
	Database    string `json:"database"`
}

// SinkHeader is the header row written once when a sink is created.
var SinkHeader = []string{
	"query_id", "protein_id", "product", "ko_number", "ko_product",
	"taxonomy", "function", "compartment", "process", "database",
}

// Resolved reports whether the record carries a usable annotation.
// A record is resolved iff its KO number is non-empty.
func (r AnnotationRecord) Resolved() bool {
	return r.KO != ""
}

// Fields returns the record's columns in sink order.
func (r AnnotationRecord) Fields() []string {
	return []string{
		r.QueryID, r.ProteinID, r.Product, r.KO, r.KOProduct,
		r.Taxonomy, r.Function, r.Compartment, r.Process, r.Database,
	}
}

// RecordFromFields rebuilds a record from a sink row. Short rows fill the
// leading columns only.
func RecordFromFields(fields []string) AnnotationRecord {
	var r AnnotationRecord
	dst := []*string{
		&r.QueryID, &r.ProteinID, &r.Product, &r.KO, &r.KOProduct,
		&r.Taxonomy, &r.Function, &r.Compartment, &r.Process, &r.Database,
	}
	for i, f := range fields {
		if i >= len(dst) {
			break
		}
		*dst[i] = strings.TrimSpace(f)
	}
	return r
}

// Hit is one (query id, matched subject id) pair surviving a stage's
// thresholds, handed to the lookup client.
type Hit struct {
	QueryID string `json:"query_id"`
	MatchID string `json:"match_id"`
}
