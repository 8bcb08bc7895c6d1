package observability_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/macrograph/pkg/adapters/memory"
	"github.com/aretw0/macrograph/pkg/domain"
	"github.com/aretw0/macrograph/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics()
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnNodeExecute(ctx, &domain.NodeEvent{Kind: "Start"})
	hooks.OnNodeExecute(ctx, &domain.NodeEvent{Kind: "Start"})
	hooks.OnNodeExecute(ctx, &domain.NodeEvent{Kind: "SetPosition"})
	hooks.OnExecutionEnd(ctx, &domain.ExecutionEvent{Macro: "lift", Duration: 10 * time.Millisecond})
	hooks.OnExecutionEnd(ctx, &domain.ExecutionEvent{Macro: "lift", Err: errors.New("boom")})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.NodeExecutions.WithLabelValues("Start")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NodeExecutions.WithLabelValues("SetPosition")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Executions.WithLabelValues("lift", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Executions.WithLabelValues("lift", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ExecutionDuration))
}

func TestMetrics_InstrumentHost(t *testing.T) {
	m := observability.NewMetrics()
	scene := memory.NewScene(memory.NewObject(memory.ShapeBox))
	host := m.InstrumentHost(scene)

	require.NoError(t, host.SetObjectPosition(0, domain.Float3{1, 2, 3}))
	assert.Error(t, host.SetObjectPosition(5, domain.Float3{}))
	idx, err := host.AddSphere()
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HostCalls.WithLabelValues("SetObjectPosition", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HostCalls.WithLabelValues("SetObjectPosition", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HostCalls.WithLabelValues("AddSphere", "ok")))

	pos, err := scene.GetObjectPosition(0)
	require.NoError(t, err)
	assert.Equal(t, domain.Float3{1, 2, 3}, pos)
}

func TestMetrics_Handler(t *testing.T) {
	m := observability.NewMetrics()
	m.Hooks().OnNodeExecute(context.Background(), &domain.NodeEvent{Kind: "Float3"})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `macrograph_node_executions_total{kind="Float3"} 1`)
}
