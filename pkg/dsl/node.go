package dsl

import (
	"fmt"

	"github.com/aretw0/macrograph/pkg/domain"
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	id      string
	kind    string
	next    string
	sockets []pendingSocket
	builder *Builder
}

type pendingSocket struct {
	id string
	// Exactly one of the following is set.
	literal *string
	input   string
	node    string
	output  string
}

// Kind sets the wire tag of the node (e.g. "SetPosition").
func (n *NodeBuilder) Kind(tag string) *NodeBuilder {
	n.kind = tag
	return n
}

// Go sets the action that runs after this one.
func (n *NodeBuilder) Go(target string) *NodeBuilder {
	n.next = target
	return n
}

// Literal binds socket to a constant, written as it would appear in a document.
func (n *NodeBuilder) Literal(socket, value string) *NodeBuilder {
	n.sockets = append(n.sockets, pendingSocket{id: socket, literal: &value})
	return n
}

// FromInput binds socket to a macro parameter.
func (n *NodeBuilder) FromInput(socket, parameter string) *NodeBuilder {
	n.sockets = append(n.sockets, pendingSocket{id: socket, input: parameter})
	return n
}

// From binds socket to an output of another node.
func (n *NodeBuilder) From(socket, node, output string) *NodeBuilder {
	n.sockets = append(n.sockets, pendingSocket{id: socket, node: node, output: output})
	return n
}

func (n *NodeBuilder) build(index, params map[string]int) (domain.NodeDescriptor, error) {
	kind, ok := domain.ParseKind(n.kind)
	if !ok {
		return domain.NodeDescriptor{}, fmt.Errorf("%w: %q", domain.ErrUnknownKind, n.kind)
	}
	spec, _ := kind.Spec()

	desc := domain.NodeDescriptor{Kind: n.kind}
	if n.next != "" {
		target, ok := index[n.next]
		if !ok {
			return domain.NodeDescriptor{}, fmt.Errorf("flow to unknown node %q", n.next)
		}
		desc.OutFlow = domain.Flow(target)
	}

	for _, s := range n.sockets {
		t, ok := portType(spec.Inputs, s.id)
		if !ok {
			return domain.NodeDescriptor{}, fmt.Errorf("%s has no input %q", n.kind, s.id)
		}
		switch {
		case s.literal != nil:
			desc.Inputs = append(desc.Inputs, domain.LiteralSocket(s.id, t, *s.literal))
		case s.input != "":
			idx, ok := params[s.input]
			if !ok {
				return domain.NodeDescriptor{}, fmt.Errorf("socket %q: unknown input %q", s.id, s.input)
			}
			desc.Inputs = append(desc.Inputs, domain.InputSocket(s.id, t, idx))
		default:
			idx, ok := index[s.node]
			if !ok {
				return domain.NodeDescriptor{}, fmt.Errorf("socket %q: unknown node %q", s.id, s.node)
			}
			desc.Inputs = append(desc.Inputs, domain.RefSocket(s.id, t, idx, s.output))
		}
	}
	return desc, nil
}

func portType(ports []domain.Port, id string) (domain.ValueType, bool) {
	for _, p := range ports {
		if p.ID == id {
			return p.Type, true
		}
	}
	return "", false
}
