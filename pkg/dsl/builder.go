package dsl

import (
	"fmt"

	"github.com/aretw0/macrograph/pkg/domain"
)

// Builder manages the graph construction.
type Builder struct {
	name    string
	inputs  []domain.MacroInput
	order   []string
	nodes   map[string]*NodeBuilder
	phrases []string
	actions []string
}

// New creates a new builder for the macro called name.
func New(name string) *Builder {
	return &Builder{
		name:  name,
		nodes: make(map[string]*NodeBuilder),
	}
}

// Input declares a macro parameter. Parameters are indexed in declaration order.
func (b *Builder) Input(parameter string, t domain.ValueType) *Builder {
	b.inputs = append(b.inputs, domain.MacroInput{Parameter: parameter, Type: t})
	return b
}

// Phrase adds an activation phrase and the argument object it maps to.
func (b *Builder) Phrase(phrase, args string) *Builder {
	b.phrases = append(b.phrases, phrase)
	b.actions = append(b.actions, args)
	return b
}

// Add creates a new node in the graph.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{id: id, builder: b}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Build resolves names to indexes and returns the macro.
func (b *Builder) Build() (*domain.Macro, error) {
	index := make(map[string]int, len(b.order))
	for i, id := range b.order {
		index[id] = i
	}
	params := make(map[string]int, len(b.inputs))
	for i, in := range b.inputs {
		if _, dup := params[in.Parameter]; dup {
			return nil, fmt.Errorf("input %q declared twice", in.Parameter)
		}
		params[in.Parameter] = i
	}

	g := domain.Graph{Inputs: b.inputs, Nodes: make([]domain.NodeDescriptor, 0, len(b.order))}
	for _, id := range b.order {
		desc, err := b.nodes[id].build(index, params)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", id, err)
		}
		g.Nodes = append(g.Nodes, desc)
	}

	return &domain.Macro{
		Name:              b.name,
		ActivationPhrases: b.phrases,
		Actions:           b.actions,
		Graph:             g,
	}, nil
}

// MustBuild is like Build but panics on error. Intended for tests and fixtures.
func (b *Builder) MustBuild() *domain.Macro {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}
