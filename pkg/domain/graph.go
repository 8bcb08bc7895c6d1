package domain

import (
	"fmt"
	"strings"
	"time"
)

// NodeDescriptor is the serialized, position-independent description of one node.
type NodeDescriptor struct {
	// Kind is the wire tag (e.g. "SetPosition"). It is kept as a string so that unknown
	// tags survive decoding and are reported when the engine materializes the node.
	Kind   string
	Inputs []ValueSocket
	// OutFlow is the index of the next action node, nil for the end of flow.
	OutFlow *int
}

// MacroInput is a declared macro parameter, referenced by InputRef sockets by position.
type MacroInput struct {
	Parameter string
	Type      ValueType
	// Value is bound at build time.
	Value any
}

// Graph is the arena of nodes and the declared inputs of one macro.
// Node references are plain indices into Nodes: reordering nodes invalidates them.
type Graph struct {
	Inputs []MacroInput
	Nodes  []NodeDescriptor
}

// Flow returns a pointer to idx, for building OutFlow links.
func Flow(idx int) *int { return &idx }

// CheckIntegrity verifies that every outFlow, NodeRef and InputRef index is in range.
// It returns the first violation found as a *GraphIntegrityError.
func (g Graph) CheckIntegrity() error {
	n := len(g.Nodes)
	for i, node := range g.Nodes {
		if node.OutFlow != nil && (*node.OutFlow < 0 || *node.OutFlow >= n) {
			return &GraphIntegrityError{Node: i, Field: "outFlow", Index: *node.OutFlow, Len: n}
		}
		for _, s := range node.Inputs {
			switch b := s.Binding.(type) {
			case NodeRef:
				if b.Node < 0 || b.Node >= n {
					return &GraphIntegrityError{Node: i, Field: "referencedNodeId", Index: b.Node, Len: n}
				}
			case InputRef:
				if b.Index < 0 || b.Index >= len(g.Inputs) {
					return &GraphIntegrityError{Node: i, Field: "inputIndex", Index: b.Index, Len: len(g.Inputs)}
				}
			}
		}
	}
	return nil
}

// Macro is a named, persisted graph invocable from explicit calls or text commands.
type Macro struct {
	Name string
	// ActivationPhrases are sample user requests that should trigger the macro.
	ActivationPhrases []string
	// Actions holds, for each activation phrase, the argument object (JSON) it maps to.
	Actions   []string
	Graph     Graph
	CreatedAt time.Time
}

// ValidateMacroName rejects names that cannot be used as a file or document id:
// empty names, "." and "..", and names containing a path separator or NUL.
func ValidateMacroName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidMacroName, name)
	}
	return nil
}

// Clone returns a deep copy of the graph. Bound input values are copied shallowly.
func (g Graph) Clone() Graph {
	out := Graph{
		Inputs: append([]MacroInput(nil), g.Inputs...),
		Nodes:  make([]NodeDescriptor, len(g.Nodes)),
	}
	for i, n := range g.Nodes {
		n.Inputs = append([]ValueSocket(nil), n.Inputs...)
		if n.OutFlow != nil {
			n.OutFlow = Flow(*n.OutFlow)
		}
		out.Nodes[i] = n
	}
	if g.Nodes == nil {
		out.Nodes = nil
	}
	return out
}

// Clone returns a deep copy of the macro.
func (m *Macro) Clone() *Macro {
	c := *m
	c.ActivationPhrases = append([]string(nil), m.ActivationPhrases...)
	c.Actions = append([]string(nil), m.Actions...)
	c.Graph = m.Graph.Clone()
	return &c
}
