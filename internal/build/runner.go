package build

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

// Run executes stages in order over bc, recording timing and stopping on the
// first error. Cancellation is only observed between stages; a stage always
// runs to completion once started.
//
// The returned report is always non-nil and finished. The error, when
// non-nil, is a *StageError.
func Run(ctx context.Context, bc *Context, defs []StageDef, recorder metrics.Recorder) (*Report, error) {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	report := NewReport()
	report.Files = bc.Files.Len()
	recorder.SetTreeFiles(report.Files)

	log := bc.Logger.With(logfields.BuildID(report.BuildID))
	log.Info("Build started", logfields.Files(report.Files), slog.Int("stages", len(defs)))

	err := runStages(ctx, bc, defs, report, recorder, log)

	report.Revision = bc.Site.Revision
	report.Error = err
	report.Finish()
	recorder.ObserveBuildDuration(report.Duration())

	switch report.Outcome {
	case OutcomeSuccess:
		recorder.IncBuildOutcome(metrics.BuildOutcomeSuccess)
		log.Info("Build complete", logfields.Files(bc.Files.Len()), logfields.DurationMS(ms(report.Duration())))
	case OutcomeCanceled:
		recorder.IncBuildOutcome(metrics.BuildOutcomeCanceled)
		log.Warn("Build canceled", logfields.Stage(string(report.FailedStage)))
	default:
		recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
		log.Error("Build failed", logfields.Stage(string(report.FailedStage)), logfields.Error(err))
	}
	return report, err
}

func runStages(ctx context.Context, bc *Context, defs []StageDef, report *Report, recorder metrics.Recorder, log *slog.Logger) error {
	for _, st := range defs {
		select {
		case <-ctx.Done():
			se := NewCanceledStageError(st.Name, ctx.Err())
			report.FailedStage = st.Name
			recorder.IncStageResult(string(st.Name), metrics.ResultCanceled)
			return se
		default:
		}

		t0 := time.Now()
		err := st.Stage.Transform(bc)
		dur := time.Since(t0)

		report.Stages = append(report.Stages, st.Name)
		report.StageDurations[st.Name] += dur
		recorder.ObserveStageDuration(string(st.Name), dur)

		if err != nil {
			report.FailedStage = st.Name
			recorder.IncStageResult(string(st.Name), metrics.ResultFatal)
			return NewFatalStageError(st.Name, err)
		}
		recorder.IncStageResult(string(st.Name), metrics.ResultSuccess)
		log.Debug("Stage complete", logfields.Stage(string(st.Name)), logfields.DurationMS(ms(dur)), logfields.Files(bc.Files.Len()))
	}
	return nil
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
