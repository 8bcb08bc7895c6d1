package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventExecutionStart EventType = "execution_start"
	EventExecutionEnd   EventType = "execution_end"
	EventNodeExecute    EventType = "node_execute"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp   time.Time `json:"timestamp"`
	Type        EventType `json:"type"`
	ExecutionID string    `json:"execution_id"`
}

// ExecutionEvent marks the start or end of one macro invocation.
type ExecutionEvent struct {
	EventBase
	Macro    string        `json:"macro"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// NodeEvent is emitted right before a runtime node computes, after its inputs are resolved.
type NodeEvent struct {
	EventBase
	Node   int    `json:"node"`
	Kind   string `json:"kind"`
	Action bool   `json:"action"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnExecutionStart func(context.Context, *ExecutionEvent)
	OnExecutionEnd   func(context.Context, *ExecutionEvent)
	OnNodeExecute    func(context.Context, *NodeEvent)
}

// Merge returns hooks that call h first and then other, for each callback set in either.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnExecutionStart: chainExec(h.OnExecutionStart, other.OnExecutionStart),
		OnExecutionEnd:   chainExec(h.OnExecutionEnd, other.OnExecutionEnd),
		OnNodeExecute:    chainNode(h.OnNodeExecute, other.OnNodeExecute),
	}
}

func chainExec(a, b func(context.Context, *ExecutionEvent)) func(context.Context, *ExecutionEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *ExecutionEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainNode(a, b func(context.Context, *NodeEvent)) func(context.Context, *NodeEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *NodeEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
