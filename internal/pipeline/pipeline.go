package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrAlreadyRun is returned when Run is called on a pipeline that has already run.
var ErrAlreadyRun = errors.New("pipeline: already run")

const tracerName = "content-commerce/backend/internal/pipeline"

var banner = strings.Repeat("#", 50)

// Status is the lifecycle state of a pipeline run.
type Status int

const (
	NotStarted Status = iota
	Running
	StoppedEarly
	Completed
	// Failed means a step returned an error other than a StopError.
	Failed
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Running:
		return "running"
	case StoppedEarly:
		return "stopped_early"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Summary describes a finished run. It is handed to the Observer.
type Summary struct {
	Name       string
	ID         uuid.UUID
	Status     Status
	StopReason string
	StepsRun   int
	Elapsed    time.Duration
	Err        error
}

// Observer is notified once per finished run.
type Observer interface {
	PipelineFinished(ctx context.Context, s Summary)
}

// Option configures a Pipeline.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	observer Observer
}

// WithRunLogger sets the logger for the run. Defaults to the logger in the Run
// context.
func WithRunLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver registers o to receive the run summary.
func WithObserver(o Observer) Option {
	return func(o2 *options) { o2.observer = o }
}

// Pipeline executes its step factories in order against State.
type Pipeline[S any] struct {
	ID        uuid.UUID
	Name      string
	StartedAt time.Time
	State     *S

	steps []Factory[S]
	opts  options

	mu         sync.Mutex
	status     Status
	stopReason string
	elapsed    time.Duration
}

// New builds a pipeline. No step is created or executed until Run.
func New[S any](name string, state *S, steps []Factory[S], opts ...Option) *Pipeline[S] {
	p := &Pipeline[S]{
		ID:        uuid.New(),
		Name:      name,
		StartedAt: time.Now().UTC(),
		State:     state,
		steps:     append([]Factory[S](nil), steps...),
	}
	for _, o := range opts {
		o(&p.opts)
	}
	return p
}

// Run executes every step in order. It returns nil when all steps complete or a
// step stops the run; any other step error is returned as is.
func (p *Pipeline[S]) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.status != NotStarted {
		p.mu.Unlock()
		return ErrAlreadyRun
	}
	p.status = Running
	p.mu.Unlock()

	logger := p.opts.logger
	if logger == nil {
		logger = Logger(ctx)
	}
	logger = logger.With("pipeline", p.Name, "pipeline_id", p.ID.String())

	ctx, span := otel.Tracer(tracerName).Start(ctx, "pipeline "+p.Name,
		trace.WithAttributes(
			attribute.String("pipeline.name", p.Name),
			attribute.String("pipeline.id", p.ID.String()),
		))
	defer span.End()

	logger.InfoContext(ctx, banner)
	logger.InfoContext(ctx, "pipeline started")

	var (
		runErr   error
		stepsRun int
		final    = Completed
	)
	for _, factory := range p.steps {
		step := factory()
		stepsRun++
		err := p.runStep(ctx, logger, step)
		if err == nil {
			continue
		}
		if se, ok := IsStop(err); ok {
			final = StoppedEarly
			p.setStopReason(se.Reason)
			logger.ErrorContext(ctx, "pipeline stopped", "step", step.Name(), "reason", se.Reason)
			span.SetAttributes(attribute.String("pipeline.stop_reason", se.Reason))
			break
		}
		final = Failed
		runErr = err
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		break
	}

	elapsed := time.Since(p.StartedAt)
	p.mu.Lock()
	p.status = final
	p.elapsed = elapsed
	p.mu.Unlock()

	logger.InfoContext(ctx, "pipeline finished", "status", final.String(), "runtime", elapsed.String())
	logger.InfoContext(ctx, banner)

	if p.opts.observer != nil {
		p.opts.observer.PipelineFinished(ctx, Summary{
			Name:       p.Name,
			ID:         p.ID,
			Status:     final,
			StopReason: p.StopReason(),
			StepsRun:   stepsRun,
			Elapsed:    elapsed,
			Err:        runErr,
		})
	}
	return runErr
}

func (p *Pipeline[S]) runStep(ctx context.Context, logger *slog.Logger, step Step[S]) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "step "+step.Name(),
		trace.WithAttributes(attribute.String("pipeline.step", step.Name())))
	defer span.End()
	ctx = WithLogger(ctx, logger.With("step", step.Name()))
	err := step.Run(ctx, p.State)
	if err != nil {
		if _, ok := IsStop(err); !ok {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}
	return err
}

func (p *Pipeline[S]) setStopReason(r string) {
	p.mu.Lock()
	p.stopReason = r
	p.mu.Unlock()
}

// Status returns the current lifecycle state.
func (p *Pipeline[S]) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Stopped reports whether a step stopped the run early.
func (p *Pipeline[S]) Stopped() bool { return p.Status() == StoppedEarly }

// StopReason returns the reason of the StopError that ended the run, if any.
func (p *Pipeline[S]) StopReason() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopReason
}

// Elapsed returns the runtime measured from construction to the end of Run.
func (p *Pipeline[S]) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elapsed
}
