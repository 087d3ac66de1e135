package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/mikeohgml-jpg/coaching-portal/internal/adapter/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestQueryOperation(t *testing.T) {
	tests := []struct {
		sql  string
		want string
	}{
		{"SELECT cells FROM ledger_rows", "SELECT"},
		{"\n\t\tinsert into ledger_rows VALUES ($1)", "INSERT"},
		{"", "unknown"},
		{"   ", "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, queryOperation(tt.sql), "sql %q", tt.sql)
	}
}

func TestMetricsTracer_RecordsQueries(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewStoreMetrics(reg)
	tracer := NewMetricsTracer(m)

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "DELETE FROM ledger_rows"})
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{})

	ctx = tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "DELETE FROM ledger_rows"})
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{Err: errors.New("deadlock")})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OpsTotal.WithLabelValues("postgres", "DELETE", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OpsTotal.WithLabelValues("postgres", "DELETE", "error")))
}

func TestMetricsTracer_EndWithoutStart(t *testing.T) {
	tracer := NewMetricsTracer(nil)
	assert.NotPanics(t, func() {
		tracer.TraceQueryEnd(context.Background(), nil, pgx.TraceQueryEndData{})
	})
}
