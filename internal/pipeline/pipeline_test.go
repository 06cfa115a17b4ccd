package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testState struct {
	calls []string
}

type recorder struct {
	built []string
}

func (r *recorder) step(name string, err error) Factory[testState] {
	return func() Step[testState] {
		r.built = append(r.built, name)
		return StepFunc[testState]{StepName: name, Fn: func(_ context.Context, s *testState) error {
			s.calls = append(s.calls, name)
			return err
		}}
	}
}

type captureObserver struct {
	summaries []Summary
}

func (c *captureObserver) PipelineFinished(_ context.Context, s Summary) {
	c.summaries = append(c.summaries, s)
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestNew_DoesNotRunSteps(t *testing.T) {
	rec := &recorder{}
	state := &testState{}
	p := New("noop", state, []Factory[testState]{rec.step("a", nil), rec.step("b", nil)})

	assert.Empty(t, rec.built)
	assert.Empty(t, state.calls)
	assert.Equal(t, NotStarted, p.Status())
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.False(t, p.StartedAt.IsZero())
}

func TestRun_AllStepsInOrder(t *testing.T) {
	rec := &recorder{}
	state := &testState{}
	obs := &captureObserver{}
	p := New("ordered", state, []Factory[testState]{
		rec.step("a", nil), rec.step("b", nil), rec.step("c", nil),
	}, WithObserver(obs))

	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, []string{"a", "b", "c"}, state.calls)
	assert.Equal(t, []string{"a", "b", "c"}, rec.built)
	assert.Equal(t, Completed, p.Status())
	assert.Empty(t, p.StopReason())
	require.Len(t, obs.summaries, 1)
	assert.Equal(t, 3, obs.summaries[0].StepsRun)
	assert.Equal(t, Completed, obs.summaries[0].Status)
}

func TestRun_StopSkipsRemainingSteps(t *testing.T) {
	rec := &recorder{}
	state := &testState{}
	logger, buf := bufferLogger()
	p := New("stopping", state, []Factory[testState]{
		rec.step("a", nil), rec.step("b", Stop("reason X")), rec.step("c", nil),
	}, WithRunLogger(logger))

	err := p.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, state.calls)
	assert.Equal(t, []string{"a", "b"}, rec.built, "step after the stop must never be built")
	assert.Equal(t, StoppedEarly, p.Status())
	assert.True(t, p.Stopped())
	assert.Equal(t, "reason X", p.StopReason())
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "reason X")
	assert.Contains(t, buf.String(), "pipeline finished")
}

func TestRun_WrappedStopIsRecognized(t *testing.T) {
	state := &testState{}
	p := New("wrapped", state, []Factory[testState]{
		Func("wrap", func(context.Context, *testState) error {
			return errors.Join(errors.New("context"), Stopf("user %d missing", 7))
		}),
	})
	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, "user 7 missing", p.StopReason())
}

func TestRun_OtherErrorPropagatesUnchanged(t *testing.T) {
	boom := errors.New("boom")
	rec := &recorder{}
	state := &testState{}
	obs := &captureObserver{}
	p := New("failing", state, []Factory[testState]{
		rec.step("a", boom), rec.step("b", nil),
	}, WithObserver(obs))

	err := p.Run(context.Background())

	assert.Same(t, boom, err)
	assert.Equal(t, []string{"a"}, rec.built)
	assert.Equal(t, Failed, p.Status())
	require.Len(t, obs.summaries, 1)
	assert.Same(t, boom, obs.summaries[0].Err)
}

func TestRun_NotImplementedPropagates(t *testing.T) {
	p := New("abstract", &testState{}, []Factory[testState]{
		func() Step[testState] { return StepFunc[testState]{StepName: "empty"} },
	})
	err := p.Run(context.Background())
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestRun_NotRestartable(t *testing.T) {
	rec := &recorder{}
	state := &testState{}
	p := New("once", state, []Factory[testState]{rec.step("a", nil)})

	require.NoError(t, p.Run(context.Background()))
	assert.ErrorIs(t, p.Run(context.Background()), ErrAlreadyRun)
	assert.Equal(t, []string{"a"}, state.calls)
}

func TestRun_StepListIsCopied(t *testing.T) {
	rec := &recorder{}
	state := &testState{}
	steps := []Factory[testState]{rec.step("a", nil)}
	p := New("copied", state, steps)
	steps[0] = rec.step("replaced", nil)

	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, []string{"a"}, state.calls)
}

func TestLogf_TagsStepName(t *testing.T) {
	logger, buf := bufferLogger()
	p := New("logging", &testState{}, []Factory[testState]{
		Func("say-hello", func(ctx context.Context, _ *testState) error {
			Logf(ctx, "hello %s", "world")
			return nil
		}),
	}, WithRunLogger(logger))

	require.NoError(t, p.Run(context.Background()))
	out := buf.String()
	assert.Contains(t, out, ">>>>>>>>>> hello world <<<<<<<<<<")
	assert.Contains(t, out, "step=say-hello")
	assert.Contains(t, out, "pipeline=logging")
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "stopped_early", StoppedEarly.String())
	assert.Equal(t, "unknown", Status(42).String())
}
