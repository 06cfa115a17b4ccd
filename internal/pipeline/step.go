// Package pipeline runs ordered steps against one shared, typed state value.
//
// A Pipeline is built once with its state and a list of step factories, then run
// once. Steps execute strictly in order on the caller's goroutine. A step halts the
// run early by returning a *StopError; any other error propagates out of Run
// unchanged. Side effects of steps that already ran are never rolled back.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNotImplemented is returned by a step that has no body. It always propagates.
var ErrNotImplemented = errors.New("pipeline: step not implemented")

// Step is one unit of work. It reads and writes the pipeline state through s.
type Step[S any] interface {
	Name() string
	Run(ctx context.Context, s *S) error
}

// Factory builds a fresh step for a single run.
type Factory[S any] func() Step[S]

// StepFunc adapts a named function to Step. A nil Fn fails with ErrNotImplemented.
type StepFunc[S any] struct {
	StepName string
	Fn       func(ctx context.Context, s *S) error
}

// Name returns the step name used in logs and spans.
func (f StepFunc[S]) Name() string { return f.StepName }

// Run calls Fn.
func (f StepFunc[S]) Run(ctx context.Context, s *S) error {
	if f.Fn == nil {
		return fmt.Errorf("%s: %w", f.StepName, ErrNotImplemented)
	}
	return f.Fn(ctx, s)
}

// Func returns a Factory that yields a StepFunc with the given name and body.
func Func[S any](name string, fn func(ctx context.Context, s *S) error) Factory[S] {
	return func() Step[S] { return StepFunc[S]{StepName: name, Fn: fn} }
}

type loggerKey struct{}

// WithLogger returns a context carrying l for Logf and the steps of a run.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// Logger returns the logger in ctx, or slog.Default when none was set.
func Logger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

// Logf writes one decorated info line. Inside a run the line carries the
// pipeline, run ID and step name.
func Logf(ctx context.Context, format string, args ...any) {
	Logger(ctx).InfoContext(ctx, ">>>>>>>>>> "+fmt.Sprintf(format, args...)+" <<<<<<<<<<")
}
