package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyPath       = "path"
	KeyTarget     = "target"
	KeyAttribute  = "attribute"
	KeyPattern    = "pattern"
	KeyFiles      = "files"
	KeyDurationMS = "duration_ms"
	KeyOutcome    = "outcome"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Target(p string) slog.Attr        { return slog.String(KeyTarget, p) }
func Attribute(name string) slog.Attr  { return slog.String(KeyAttribute, name) }
func Pattern(p string) slog.Attr       { return slog.String(KeyPattern, p) }
func Files(n int) slog.Attr            { return slog.Int(KeyFiles, n) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Outcome(o string) slog.Attr       { return slog.String(KeyOutcome, o) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
