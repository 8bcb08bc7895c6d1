package tracing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/macrograph/internal/logging"
	"github.com/aretw0/macrograph/internal/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSetup_Disabled(t *testing.T) {
	shutdown, err := tracing.Setup(context.Background(), tracing.Config{}, logging.NewNop())
	require.NoError(t, err)
	assert.NoError(t, tracing.Shutdown(shutdown, logging.NewNop()))
}

func TestNewProvider_RecordsSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := tracing.NewProvider(sdktrace.WithSpanProcessor(rec))

	_, span := tp.Tracer("test").Start(context.Background(), "macro.run")
	span.End()

	require.Len(t, rec.Ended(), 1)
	assert.Equal(t, "macro.run", rec.Ended()[0].Name())
	assert.NoError(t, tracing.Shutdown(tp.Shutdown, logging.NewNop()))
}

func TestShutdown_Error(t *testing.T) {
	boom := errors.New("boom")
	err := tracing.Shutdown(func(context.Context) error { return boom }, logging.NewNop())
	assert.ErrorIs(t, err, boom)
}
