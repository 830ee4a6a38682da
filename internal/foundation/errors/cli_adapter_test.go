package errors

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

type customError struct{ msg string }

func (e *customError) Error() string { return e.msg }

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation error", err: ValidationError("bad slug").Build(), expected: 2},
		{name: "config error", err: ConfigError("option \"from\" is required").Build(), expected: 7},
		{name: "reference error", err: ReferenceError("missing embed").Build(), expected: 11},
		{name: "filesystem error", err: FileSystemError("write failed").Build(), expected: 11},
		{name: "runtime error", err: RuntimeError("watcher failed").Build(), expected: 12},
		{name: "unclassified error", err: &customError{msg: "unknown error"}, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_Report(t *testing.T) {
	var logs, out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	adapter := NewCLIErrorAdapter(false, logger)
	adapter.out = &out

	err := ReferenceError("missing embed").
		WithContext("target", "a/index.html").
		WithContext("embed", "a/gone.html").
		Build()

	code := adapter.Report(err)

	if code != 11 {
		t.Errorf("expected exit code 11, got %d", code)
	}
	if !strings.Contains(out.String(), "a/gone.html") {
		t.Errorf("expected unresolved path in output, got %q", out.String())
	}
	if !strings.Contains(logs.String(), "category=reference") {
		t.Errorf("expected category in log, got %q", logs.String())
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	err := ConfigError("invalid pattern").Build()

	if got := NewCLIErrorAdapter(false, nil).FormatError(err); got != "Error: invalid pattern" {
		t.Errorf("unexpected format %q", got)
	}
	if got := NewCLIErrorAdapter(true, nil).FormatError(err); got != "Error [config]: invalid pattern" {
		t.Errorf("unexpected verbose format %q", got)
	}
}
