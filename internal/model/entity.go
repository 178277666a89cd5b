package model

import (
	"path/filepath"
	"strings"
)

// Entity is one input protein-sequence collection tracked through the
// pipeline. Its identity is the original input path and never changes.
type Entity struct {
	Path string `json:"path"`
}

// ShortName derives a human-readable identifier from the input path:
// the base name with its FASTA extension stripped.
func (e Entity) ShortName() string {
	base := filepath.Base(e.Path)
	for _, ext := range []string{".faa", ".fasta", ".fa", ".pep"} {
		if strings.HasSuffix(strings.ToLower(base), ext) {
			return base[:len(base)-len(ext)]
		}
	}
	return base
}

// EntityState tracks one entity's progress through the stage list. It is
// owned exclusively by the pipeline controller and mutated only between
// stages.
type EntityState struct {
	Entity    Entity `json:"entity"`
	ShortName string `json:"short_name"`

	// SinkPath is the entity's single cumulative annotation file,
	// created once and appended to at every stage.
	SinkPath string `json:"sink_path"`

	// StageCursor is the index of the stage the entity has reached.
	// It never decreases.
	StageCursor int `json:"stage_cursor"`

	// CarryForward is the filtered sequence subset still needing
	// annotation. Empty once the entity is fully resolved or has
	// exhausted all stages.
	CarryForward string `json:"carry_forward,omitempty"`

	// Artifacts lists the intermediate search-result files produced at
	// each stage, kept for provenance only.
	Artifacts []string `json:"artifacts,omitempty"`

	// Resolved and Unresolved count records across the run so far.
	Resolved   int `json:"resolved"`
	Unresolved int `json:"unresolved"`
}

// Active reports whether the entity still has records to resolve and
// must be submitted to the next stage.
func (s *EntityState) Active() bool {
	return s.CarryForward != ""
}

// SearchMethod selects the external similarity-search tool.
type SearchMethod string

const (
	MethodBlast   SearchMethod = "blast"
	MethodDiamond SearchMethod = "diamond"
	MethodSword   SearchMethod = "sword"
)

// Valid reports whether the method is one of the three supported tools.
func (m SearchMethod) Valid() bool {
	switch m {
	case MethodBlast, MethodDiamond, MethodSword:
		return true
	}
	return false
}

// StageKind distinguishes the profile-tagging stage from the similarity
// search stages.
type StageKind string

const (
	StageKindTagging StageKind = "tagging"
	StageKindSearch  StageKind = "search"
)

// Thresholds holds the numeric filters applied to similarity-search hits.
type Thresholds struct {
	Identity float64 `json:"identity" mapstructure:"identity"`
	Bitscore float64 `json:"bitscore" mapstructure:"bitscore"`
	EValue   float64 `json:"evalue" mapstructure:"evalue"`
	Coverage float64 `json:"coverage" mapstructure:"coverage"`
}

// StageConfig is the static per-stage configuration shared by all entities
// within a stage.
type StageConfig struct {
	Name       string       `json:"name"`
	SourceTag  string       `json:"source_tag"`
	Kind       StageKind    `json:"kind"`
	Database   string       `json:"database"`
	Method     SearchMethod `json:"method"`
	Thresholds Thresholds   `json:"thresholds"`
	Workers    int          `json:"workers"`
	Threads    int          `json:"threads"`
}
