package runtime

import (
	"context"
	"log/slog"

	"github.com/aretw0/macrograph/internal/logging"
	"github.com/aretw0/macrograph/pkg/domain"
	"github.com/aretw0/macrograph/pkg/ports"
)

// Engine evaluates one macro invocation against a Host.
// It is built once per invocation and is not safe for concurrent use.
type Engine struct {
	graph domain.Graph
	host  ports.Host
	nodes []*node

	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	executionID string
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the logger used for node tracing and failures.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability callbacks. Only OnNodeExecute is fired by the runtime.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithExecutionID tags node events with the id of the surrounding invocation.
func WithExecutionID(id string) Option {
	return func(e *Engine) {
		e.executionID = id
	}
}

// Build binds args to the declared inputs of graph and checks index integrity.
// The caller's graph is not modified. No node runs and the host is not touched.
func Build(graph domain.Graph, args map[string]any, host ports.Host, opts ...Option) (*Engine, error) {
	inputs, err := bindInputs(graph.Inputs, args)
	if err != nil {
		return nil, err
	}

	bound := domain.Graph{Inputs: inputs, Nodes: graph.Nodes}
	if err := bound.CheckIntegrity(); err != nil {
		return nil, err
	}

	e := &Engine{
		graph:  bound,
		host:   host,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Inputs returns the declared inputs with their bound values.
func (e *Engine) Inputs() []domain.MacroInput {
	out := make([]domain.MacroInput, len(e.graph.Inputs))
	copy(out, e.graph.Inputs)
	return out
}

// Execute instantiates every node, then runs the first Start node and the flow chained from it.
// Partial host side effects are not rolled back when a later node fails.
func (e *Engine) Execute(ctx context.Context) error {
	nodes, err := instantiate(e.graph.Nodes)
	if err != nil {
		e.logger.Warn("macro construction failed", "error", err)
		return err
	}
	e.nodes = nodes

	start := -1
	for i, n := range e.nodes {
		if n.kind == domain.KindStart {
			start = i
			break
		}
	}
	if start < 0 {
		return domain.ErrStartNotFound
	}

	if err := e.execute(ctx, e.nodes[start]); err != nil {
		e.logger.Warn("macro execution failed", "error", err)
		return err
	}
	return nil
}

func instantiate(descs []domain.NodeDescriptor) ([]*node, error) {
	nodes := make([]*node, len(descs))
	for i, d := range descs {
		kind, ok := domain.ParseKind(d.Kind)
		if !ok {
			return nil, &domain.NodeConstructionError{Node: i, Kind: d.Kind, Err: domain.ErrUnknownKind}
		}
		nodes[i] = newNode(i, kind, d)
	}
	return nodes, nil
}

// execute resolves the sockets of n, runs its computation and follows its outFlow.
func (e *Engine) execute(ctx context.Context, n *node) error {
	inputs, err := e.resolveInputs(ctx, n)
	if err != nil {
		return err
	}
	n.inputs = inputs
	defer func() { n.inputs = nil }()

	e.emitNodeExecute(ctx, n)
	if err := e.compute(n); err != nil {
		return err
	}

	if n.desc.OutFlow != nil {
		return e.triggerFlow(ctx, *n.desc.OutFlow)
	}
	return nil
}

// triggerFlow hands control to the next action. Recursion is the control stack.
func (e *Engine) triggerFlow(ctx context.Context, idx int) error {
	target := e.nodes[idx]
	if !target.kind.IsAction() {
		return &domain.NotAnActionError{Node: idx, Kind: target.kind.String()}
	}
	return e.execute(ctx, target)
}

func (e *Engine) emitNodeExecute(ctx context.Context, n *node) {
	e.logger.Debug("node execute", "node", n.index, "kind", n.kind.String())
	if e.hooks.OnNodeExecute == nil {
		return
	}
	e.hooks.OnNodeExecute(ctx, &domain.NodeEvent{
		EventBase: domain.EventBase{
			Timestamp:   now(),
			Type:        domain.EventNodeExecute,
			ExecutionID: e.executionID,
		},
		Node:   n.index,
		Kind:   n.kind.String(),
		Action: n.kind.IsAction(),
	})
}
