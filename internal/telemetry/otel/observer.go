package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"content-commerce/backend/internal/pipeline"
)

const instrumentationName = "content-commerce/backend/internal/pipeline"

// RecordEmitter is the part of an OTel logger the observer needs.
type RecordEmitter interface {
	Emit(ctx context.Context, rec otellog.Record)
}

// PipelineObserver reports finished pipeline runs as OTel log records and metrics:
// a run counter and a duration histogram, both labelled by pipeline and status.
type PipelineObserver struct {
	logger   RecordEmitter
	runs     metric.Int64Counter
	duration metric.Float64Histogram
	now      func() time.Time
}

// NewPipelineObserver returns an observer that logs through provider and records
// metrics on meter. Either may be nil to skip that signal.
func NewPipelineObserver(provider *sdklog.LoggerProvider, meter metric.Meter) (*PipelineObserver, error) {
	var logger RecordEmitter
	if provider != nil {
		logger = provider.Logger(instrumentationName)
	}
	return NewPipelineObserverWithLogger(logger, meter)
}

// NewPipelineObserverWithLogger is NewPipelineObserver with an explicit record emitter.
func NewPipelineObserverWithLogger(logger RecordEmitter, meter metric.Meter) (*PipelineObserver, error) {
	o := &PipelineObserver{logger: logger, now: time.Now}
	if meter == nil {
		return o, nil
	}
	var err error
	o.runs, err = meter.Int64Counter("pipeline.runs",
		metric.WithDescription("Finished pipeline runs."))
	if err != nil {
		return nil, err
	}
	o.duration, err = meter.Float64Histogram("pipeline.duration",
		metric.WithDescription("Pipeline run time."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return o, nil
}

// PipelineFinished implements pipeline.Observer.
func (o *PipelineObserver) PipelineFinished(ctx context.Context, s pipeline.Summary) {
	attrs := metric.WithAttributes(
		attribute.String("pipeline.name", s.Name),
		attribute.String("pipeline.status", s.Status.String()),
	)
	if o.runs != nil {
		o.runs.Add(ctx, 1, attrs)
	}
	if o.duration != nil {
		o.duration.Record(ctx, s.Elapsed.Seconds(), attrs)
	}
	if o.logger == nil {
		return
	}

	rec := otellog.Record{}
	rec.SetTimestamp(o.now().UTC())
	rec.SetBody(otellog.StringValue("pipeline finished"))
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetSeverityText("INFO")
	switch s.Status {
	case pipeline.StoppedEarly:
		rec.SetSeverity(otellog.SeverityWarn)
		rec.SetSeverityText("WARN")
	case pipeline.Failed:
		rec.SetSeverity(otellog.SeverityError)
		rec.SetSeverityText("ERROR")
	}
	rec.AddAttributes(
		otellog.String("pipeline.name", s.Name),
		otellog.String("pipeline.id", s.ID.String()),
		otellog.String("pipeline.status", s.Status.String()),
		otellog.Int("pipeline.steps_run", s.StepsRun),
		otellog.Float64("pipeline.elapsed_seconds", s.Elapsed.Seconds()),
	)
	if s.StopReason != "" {
		rec.AddAttributes(otellog.String("pipeline.stop_reason", s.StopReason))
	}
	if s.Err != nil {
		rec.AddAttributes(otellog.String("error", s.Err.Error()))
	}
	o.logger.Emit(ctx, rec)
}
