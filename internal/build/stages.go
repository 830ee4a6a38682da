package build

import (
	"fmt"
)

// Stage transforms the build context in place.
type Stage interface {
	Transform(bc *Context) error
}

// StageFunc adapts a function to the Stage interface.
type StageFunc func(bc *Context) error

// Transform calls f(bc).
func (f StageFunc) Transform(bc *Context) error { return f(bc) }

// StageName is a strongly-typed identifier for a pipeline stage.
type StageName string

// Canonical stage names of the default pipeline.
const (
	StageRevision    StageName = "revision"
	StageStylesheets StageName = "stylesheets"
	StageData        StageName = "data"
	StagePermalinks  StageName = "permalinks"
	StageFingerprint StageName = "fingerprint"
	StageCollections StageName = "collections"
	StageMarkdown    StageName = "markdown"
	StageFeed        StageName = "feed"
	StageLayouts     StageName = "layouts"
	StageIgnore      StageName = "ignore"
)

// InjectStageName names the stage running the injection rule called rule.
func InjectStageName(rule string) StageName { return StageName("inject_" + rule) }

// EmbedStageName names the stage running the embed pass called name.
func EmbedStageName(name string) StageName { return StageName("embed_" + name) }

// StageErrorKind classifies the outcome of a stage.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation between stages.
)

// StageError is a stage failure carrying the stage name and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// NewFatalStageError creates a new fatal stage error.
func NewFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func NewCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// StageDef pairs a stage name with its implementation.
type StageDef struct {
	Name  StageName
	Stage Stage
}

// Pipeline is a fluent builder for ordered stage definitions.
type Pipeline struct{ Defs []StageDef }

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline { return &Pipeline{Defs: make([]StageDef, 0, 16)} }

// Add appends a stage unconditionally.
func (p *Pipeline) Add(name StageName, st Stage) *Pipeline {
	p.Defs = append(p.Defs, StageDef{Name: name, Stage: st})
	return p
}

// AddIf appends a stage only if cond is true.
func (p *Pipeline) AddIf(cond bool, name StageName, st Stage) *Pipeline {
	if cond {
		p.Add(name, st)
	}
	return p
}

// Build returns a copy of the stage definitions slice.
func (p *Pipeline) Build() []StageDef {
	out := make([]StageDef, len(p.Defs))
	copy(out, p.Defs)
	return out
}

// Names lists the stage names in order.
func (p *Pipeline) Names() []StageName {
	names := make([]StageName, len(p.Defs))
	for i, d := range p.Defs {
		names[i] = d.Name
	}
	return names
}
