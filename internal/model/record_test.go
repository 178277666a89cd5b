package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnnotationRecord_Resolved(t *testing.T) {
	assert.True(t, AnnotationRecord{QueryID: "g1", KO: "K00001"}.Resolved())
	assert.False(t, AnnotationRecord{QueryID: "g1", ProteinID: "P12345"}.Resolved())
}

func TestAnnotationRecord_FieldsRoundTrip(t *testing.T) {
	r := AnnotationRecord{
		QueryID:   "g1",
		ProteinID: "P12345",
		Product:   "alcohol dehydrogenase",
		KO:        "K00001",
		KOProduct: "alcohol dehydrogenase [EC:1.1.1.1]",
		Taxonomy:  "Bacteria",
		Database:  "swissprot",
	}

	fields := r.Fields()
	assert.Len(t, fields, len(SinkHeader))
	assert.Equal(t, r, RecordFromFields(fields))
}

func TestRecordFromFields_ShortRow(t *testing.T) {
	r := RecordFromFields([]string{"g1", "P12345"})
	assert.Equal(t, "g1", r.QueryID)
	assert.Equal(t, "P12345", r.ProteinID)
	assert.Empty(t, r.KO)
	assert.False(t, r.Resolved())
}
