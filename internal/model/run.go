package model

import "time"

// RunStatus tracks a pipeline run through its lifecycle.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// StageStatus tracks one recorded stage of a run.
type StageStatus string

const (
	StageStatusRunning  StageStatus = "running"
	StageStatusComplete StageStatus = "complete"
	StageStatusSkipped  StageStatus = "skipped"
	StageStatusFailed   StageStatus = "failed"
)

// Run is one recorded pipeline invocation over a set of input entities.
type Run struct {
	ID        string     `json:"id"`
	Inputs    []string   `json:"inputs"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunResult summarizes a finished run.
type RunResult struct {
	Entities   int            `json:"entities"`
	Resolved   int            `json:"resolved"`
	Unresolved int            `json:"unresolved"`
	Sinks      []string       `json:"sinks"`
	Extracts   []string       `json:"extracts"`
	Stages     []StageSummary `json:"stages"`
}

// StageSummary is the per-stage slice of a RunResult. Submitted and
// EntitiesUnresolved count entities; Resolved counts records appended
// during the stage (RunResult totals count records).
type StageSummary struct {
	Name               string `json:"name"`
	Submitted          int    `json:"submitted"`
	Resolved           int    `json:"resolved"`
	EntitiesUnresolved int    `json:"entities_unresolved"`
	DurationMS         int64  `json:"duration_ms"`
	Skipped            bool   `json:"skipped,omitempty"`
}

// RunStage is one persisted stage record belonging to a run.
type RunStage struct {
	ID        string        `json:"id"`
	RunID     string        `json:"run_id"`
	Name      string        `json:"name"`
	Status    StageStatus   `json:"status"`
	Summary   *StageSummary `json:"summary,omitempty"`
	StartedAt time.Time     `json:"started_at"`
}
