package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/geocoder89/roster/internal/actorctx"
	"github.com/geocoder89/roster/internal/domain/user"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestClassifyDBErr(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&pgconn.PgError{Code: "23505"}, "unique_violation"},
		{&pgconn.PgError{Code: "23503"}, "foreign_key_violation"},
		{&pgconn.PgError{Code: "40P01"}, "deadlock"},
		{&pgconn.PgError{Code: "42P01"}, "pg_42P01"},
		{context.DeadlineExceeded, "timeout"},
		{errors.New("connection refused"), "connection"},
		{errors.New("boom"), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyDBErr(tt.err), tt.err.Error())
	}
}

func TestObserveDB(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	require.NoError(t, p.ObserveDB("users.get", func() error { return nil }))
	assert.ErrorIs(t, p.ObserveDB("users.get", func() error { return pgx.ErrNoRows }), pgx.ErrNoRows)
	assert.Equal(t, float64(0), testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("users.get", "unknown")))

	_ = p.ObserveDB("users.create", func() error { return &pgconn.PgError{Code: "23505"} })
	assert.Equal(t, float64(1), testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("users.create", "unique_violation")))

	var nilProm *Prom
	assert.NoError(t, nilProm.ObserveDB("noop", func() error { return nil }))
	nilProm.ObserveAuth("ok")
}

func TestLoggerAddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod")

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	log.InfoContext(ctx, "hello")
	log.DebugContext(ctx, "hidden")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, span.SpanContext().TraceID().String(), rec["trace_id"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestLoggerAddsActorID(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "dev")

	ctx := actorctx.WithUser(context.Background(), user.User{ID: 7, Name: "admin"})
	log.DebugContext(ctx, "resolved")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.EqualValues(t, 7, rec["actor_id"])
	assert.NotContains(t, rec, "trace_id")

	buf.Reset()
	log.Info("anonymous")
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.NotContains(t, buf.String(), "actor_id")
}
