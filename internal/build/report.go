package build

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Outcome is the typed enumeration of final build result states.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Report captures high-level facts about one pipeline run.
type Report struct {
	SchemaVersion  int
	BuildID        string
	Revision       string
	Start          time.Time
	End            time.Time
	Files          int // tree size when the pipeline started
	FilesWritten   int
	Stages         []StageName
	StageDurations map[StageName]time.Duration
	Error          error
	FailedStage    StageName
	Outcome        Outcome
}

// NewReport starts a report with a fresh build id.
func NewReport() *Report {
	return &Report{
		SchemaVersion:  1,
		BuildID:        uuid.NewString(),
		Start:          time.Now(),
		StageDurations: make(map[StageName]time.Duration),
	}
}

// Finish stamps the end time and derives the outcome from the recorded error.
func (r *Report) Finish() {
	r.End = time.Now()
	switch se := r.stageError(); {
	case r.Error == nil:
		r.Outcome = OutcomeSuccess
	case se != nil && se.Kind == StageErrorCanceled:
		r.Outcome = OutcomeCanceled
	default:
		r.Outcome = OutcomeFailed
	}
}

func (r *Report) stageError() *StageError {
	se, _ := r.Error.(*StageError)
	return se
}

// Duration is the wall time between start and end.
func (r *Report) Duration() time.Duration {
	if r.End.IsZero() {
		return time.Since(r.Start)
	}
	return r.End.Sub(r.Start)
}

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("build=%s files=%d written=%d stages=%d duration=%s outcome=%s",
		r.BuildID, r.Files, r.FilesWritten, len(r.StageDurations), r.Duration().Truncate(time.Millisecond), r.Outcome)
}

type reportJSON struct {
	SchemaVersion  int              `json:"schema_version"`
	BuildID        string           `json:"build_id"`
	Revision       string           `json:"revision,omitempty"`
	Start          time.Time        `json:"start"`
	End            time.Time        `json:"end"`
	Files          int              `json:"files"`
	FilesWritten   int              `json:"files_written"`
	StageDurations map[string]int64 `json:"stage_durations_ms"`
	Error          string           `json:"error,omitempty"`
	FailedStage    string           `json:"failed_stage,omitempty"`
	Outcome        string           `json:"outcome"`
}

// MarshalJSON flattens errors and durations for machine consumers.
func (r *Report) MarshalJSON() ([]byte, error) {
	out := reportJSON{
		SchemaVersion:  r.SchemaVersion,
		BuildID:        r.BuildID,
		Revision:       r.Revision,
		Start:          r.Start,
		End:            r.End,
		Files:          r.Files,
		FilesWritten:   r.FilesWritten,
		StageDurations: make(map[string]int64, len(r.StageDurations)),
		FailedStage:    string(r.FailedStage),
		Outcome:        string(r.Outcome),
	}
	for k, v := range r.StageDurations {
		out.StageDurations[string(k)] = v.Milliseconds()
	}
	if r.Error != nil {
		out.Error = r.Error.Error()
	}
	return json.Marshal(out)
}

// Persist writes the report as indented JSON to path, atomically via a temp file.
func (r *Report) Persist(path string) error {
	if r.End.IsZero() {
		r.Finish()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure dir for report: %w", err)
	}
	jb, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(jb, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp report json: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("atomic rename report: %w", err)
	}
	return nil
}
