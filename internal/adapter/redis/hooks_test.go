package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/mikeohgml-jpg/coaching-portal/internal/adapter/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedChange struct {
	component string
	state     string
	value     float64
}

type fakeRecorder struct {
	changes []recordedChange
}

func (r *fakeRecorder) BreakerChanged(component, state string, value float64) {
	r.changes = append(r.changes, recordedChange{component, state, value})
}

func TestCircuitBreakerHook_OpensAfterFailures(t *testing.T) {
	rec := &fakeRecorder{}
	hook := NewCircuitBreakerHook(rec)
	ctx := context.Background()

	calls := 0
	boom := errors.New("connection refused")
	process := hook.ProcessHook(func(context.Context, goredis.Cmder) error {
		calls++
		return boom
	})

	for range 5 {
		err := process(ctx, goredis.NewCmd(ctx, "evalsha", "x", 1, "k"))
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, circuitbreaker.OpenState, hook.State())

	err := process(ctx, goredis.NewCmd(ctx, "evalsha", "x", 1, "k"))
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
	assert.Equal(t, 5, calls)

	require.NotEmpty(t, rec.changes)
	last := rec.changes[len(rec.changes)-1]
	assert.Equal(t, "redis", last.component)
	assert.Equal(t, circuitbreaker.OpenState.String(), last.state)
	assert.Equal(t, 2.0, last.value)
}

func TestCircuitBreakerHook_NilReplyIsHealthy(t *testing.T) {
	hook := NewCircuitBreakerHook(nil)
	ctx := context.Background()

	process := hook.ProcessHook(func(context.Context, goredis.Cmder) error {
		return goredis.Nil
	})
	for range 10 {
		err := process(ctx, goredis.NewStringCmd(ctx, "get", "missing"))
		assert.ErrorIs(t, err, goredis.Nil)
	}
	assert.Equal(t, circuitbreaker.ClosedState, hook.State())
}

func TestCircuitBreakerHook_PipelineFailsFastWhenOpen(t *testing.T) {
	hook := NewCircuitBreakerHook(nil)
	ctx := context.Background()

	pipeline := hook.ProcessPipelineHook(func(context.Context, []goredis.Cmder) error {
		return errors.New("timeout")
	})
	for range 5 {
		_ = pipeline(ctx, nil)
	}

	assert.ErrorIs(t, pipeline(ctx, nil), circuitbreaker.ErrOpen)
}

func TestMetricsHook_RecordsCommands(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewStoreMetrics(reg)
	hook := NewMetricsHook(m)
	ctx := context.Background()

	ok := hook.ProcessHook(func(context.Context, goredis.Cmder) error { return nil })
	missing := hook.ProcessHook(func(context.Context, goredis.Cmder) error { return goredis.Nil })
	failing := hook.ProcessHook(func(context.Context, goredis.Cmder) error { return errors.New("boom") })

	require.NoError(t, ok(ctx, goredis.NewStatusCmd(ctx, "ping")))
	require.ErrorIs(t, missing(ctx, goredis.NewStringCmd(ctx, "get", "k")), goredis.Nil)
	require.Error(t, failing(ctx, goredis.NewStatusCmd(ctx, "ping")))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OpsTotal.WithLabelValues("redis", "ping", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OpsTotal.WithLabelValues("redis", "get", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OpsTotal.WithLabelValues("redis", "ping", "error")))
}

func TestMetricsHook_NilMetrics(t *testing.T) {
	hook := NewMetricsHook(nil)
	ctx := context.Background()

	process := hook.ProcessHook(func(context.Context, goredis.Cmder) error { return nil })
	assert.NotPanics(t, func() {
		_ = process(ctx, goredis.NewStatusCmd(ctx, "ping"))
	})
}
