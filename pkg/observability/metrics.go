package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/macrograph/pkg/domain"
	"github.com/aretw0/macrograph/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the engine.
type Metrics struct {
	registry *prometheus.Registry

	Executions        *prometheus.CounterVec
	ExecutionDuration *prometheus.HistogramVec
	NodeExecutions    *prometheus.CounterVec
	HostCalls         *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Executions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrograph_executions_total",
				Help: "Total number of macro executions",
			},
			[]string{"macro", "status"},
		),
		ExecutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "macrograph_execution_duration_seconds",
				Help:    "Duration of macro executions",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"macro"},
		),
		NodeExecutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrograph_node_executions_total",
				Help: "Total number of node evaluations",
			},
			[]string{"kind"},
		),
		HostCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrograph_host_calls_total",
				Help: "Total number of scene host calls",
			},
			[]string{"method", "status"},
		),
	}
	m.registry.MustRegister(m.Executions, m.ExecutionDuration, m.NodeExecutions, m.HostCalls)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that record executions and node evaluations.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnExecutionEnd: func(_ context.Context, e *domain.ExecutionEvent) {
			m.Executions.WithLabelValues(e.Macro, status(e.Err)).Inc()
			m.ExecutionDuration.WithLabelValues(e.Macro).Observe(e.Duration.Seconds())
		},
		OnNodeExecute: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeExecutions.WithLabelValues(e.Kind).Inc()
		},
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// InstrumentHost wraps host so that every call is counted by method and outcome.
func (m *Metrics) InstrumentHost(host ports.Host) ports.Host {
	return &instrumentedHost{next: host, calls: m.HostCalls}
}

type instrumentedHost struct {
	next  ports.Host
	calls *prometheus.CounterVec
}

func (h *instrumentedHost) record(method string, err error) {
	h.calls.WithLabelValues(method, status(err)).Inc()
}

func (h *instrumentedHost) SetObjectPosition(index int, position domain.Float3) error {
	err := h.next.SetObjectPosition(index, position)
	h.record("SetObjectPosition", err)
	return err
}

func (h *instrumentedHost) SetObjectRotation(index int, rotation domain.Float4) error {
	err := h.next.SetObjectRotation(index, rotation)
	h.record("SetObjectRotation", err)
	return err
}

func (h *instrumentedHost) SetObjectScale(index int, scale domain.Float3) error {
	err := h.next.SetObjectScale(index, scale)
	h.record("SetObjectScale", err)
	return err
}

func (h *instrumentedHost) GetObjectPosition(index int) (domain.Float3, error) {
	v, err := h.next.GetObjectPosition(index)
	h.record("GetObjectPosition", err)
	return v, err
}

func (h *instrumentedHost) GetObjectRotation(index int) (domain.Float4, error) {
	v, err := h.next.GetObjectRotation(index)
	h.record("GetObjectRotation", err)
	return v, err
}

func (h *instrumentedHost) GetObjectScale(index int) (domain.Float3, error) {
	v, err := h.next.GetObjectScale(index)
	h.record("GetObjectScale", err)
	return v, err
}

func (h *instrumentedHost) GetObjectBoundingBox(index int) (domain.BoundingBox, error) {
	v, err := h.next.GetObjectBoundingBox(index)
	h.record("GetObjectBoundingBox", err)
	return v, err
}

func (h *instrumentedHost) AddBox() (int, error) {
	idx, err := h.next.AddBox()
	h.record("AddBox", err)
	return idx, err
}

func (h *instrumentedHost) AddSphere() (int, error) {
	idx, err := h.next.AddSphere()
	h.record("AddSphere", err)
	return idx, err
}
