package runtime

import (
	"time"

	"github.com/aretw0/macrograph/pkg/domain"
)

var now = time.Now

// node is the per-invocation materialization of a NodeDescriptor.
type node struct {
	index int
	kind  domain.NodeKind
	desc  domain.NodeDescriptor

	// outputs memoizes computed values for the lifetime of one Execute call.
	outputs map[string]any
	// inputs is only populated while the node computes.
	inputs map[string]any
	err    error
}

func newNode(index int, kind domain.NodeKind, desc domain.NodeDescriptor) *node {
	return &node{
		index:   index,
		kind:    kind,
		desc:    desc,
		outputs: make(map[string]any),
	}
}

// output returns a previously computed value. Presence, not value, decides memoization.
func (n *node) output(id string) (any, bool) {
	v, ok := n.outputs[id]
	return v, ok
}

func (n *node) set(id string, v any) {
	n.outputs[id] = v
}

// The typed accessors below read an input for the current computation.
// The first input that cannot be interpreted is recorded in n.err and later reads are no-ops.

func (n *node) int(id string) int {
	if n.err != nil {
		return 0
	}
	v := n.inputs[id]
	i, ok := asInt(v)
	if !ok {
		n.mismatch(id, "int", v)
	}
	return i
}

func (n *node) float(id string) float64 {
	if n.err != nil {
		return 0
	}
	v := n.inputs[id]
	f, ok := asFloat(v)
	if !ok {
		n.mismatch(id, "float", v)
	}
	return f
}

func (n *node) float3(id string) domain.Float3 {
	if n.err != nil {
		return domain.Float3{}
	}
	v := n.inputs[id]
	f, ok := asFloat3(v)
	if !ok {
		n.mismatch(id, "float3", v)
	}
	return f
}

func (n *node) float4(id string) domain.Float4 {
	if n.err != nil {
		return domain.Float4{}
	}
	v := n.inputs[id]
	f, ok := asFloat4(v)
	if !ok {
		n.mismatch(id, "float4", v)
	}
	return f
}

func (n *node) mismatch(id, want string, got any) {
	n.err = &domain.TypeMismatchError{Node: n.index, Kind: n.kind.String(), Input: id, Want: want, Got: got}
}
