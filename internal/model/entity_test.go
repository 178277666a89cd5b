package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntity_ShortName(t *testing.T) {
	assert.Equal(t, "genomeA", Entity{Path: "/data/genomeA.faa"}.ShortName())
	assert.Equal(t, "sample", Entity{Path: "proteins/sample.fasta"}.ShortName())
	assert.Equal(t, "bin.12", Entity{Path: "bin.12.fa"}.ShortName())
	assert.Equal(t, "UPPER", Entity{Path: "UPPER.FAA"}.ShortName())
	assert.Equal(t, "noext", Entity{Path: "/data/noext"}.ShortName())
}

func TestEntityState_Active(t *testing.T) {
	st := &EntityState{CarryForward: "/tmp/a_stage1.faa"}
	assert.True(t, st.Active())

	st.CarryForward = ""
	assert.False(t, st.Active())
}

func TestSearchMethod_Valid(t *testing.T) {
	assert.True(t, MethodBlast.Valid())
	assert.True(t, MethodDiamond.Valid())
	assert.True(t, MethodSword.Valid())
	assert.False(t, SearchMethod("hmmer").Valid())
	assert.False(t, SearchMethod("").Valid())
}
