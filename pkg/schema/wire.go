package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/macrograph/pkg/domain"
)

type wireGraph struct {
	Inputs []wireInput `json:"inputs"`
	Nodes  []wireNode  `json:"nodes"`
}

type wireInput struct {
	Parameter     string `json:"parameter"`
	ParameterType string `json:"parameterType"`
}

type wireNode struct {
	Type        string       `json:"type"`
	InputValues []wireSocket `json:"inputValues"`
	OutFlow     *int         `json:"outFlow,omitempty"`
}

type wireSocket struct {
	ID                string          `json:"id"`
	Type              string          `json:"type"`
	Value             json.RawMessage `json:"value,omitempty"`
	InputIndex        *int            `json:"inputIndex,omitempty"`
	ReferencedNodeID  *int            `json:"referencedNodeId,omitempty"`
	ReferencedValueID string          `json:"referencedValueId,omitempty"`
}

// ParseGraph decodes a graph document.
// When a socket carries several binding fields the first of value, inputIndex and
// referencedNodeId wins. Numeric literals are kept as their JSON text.
func ParseGraph(data []byte) (domain.Graph, error) {
	var w wireGraph
	if err := json.Unmarshal(data, &w); err != nil {
		return domain.Graph{}, fmt.Errorf("decode graph: %w", err)
	}
	return w.toDomain()
}

// MarshalGraph encodes a graph document with the same field names ParseGraph reads.
// Bound input values are not part of the document.
func MarshalGraph(g domain.Graph) ([]byte, error) {
	return json.Marshal(fromDomain(g))
}

func (w wireGraph) toDomain() (domain.Graph, error) {
	var g domain.Graph
	for i, in := range w.Inputs {
		t, err := domain.ParseValueType(in.ParameterType)
		if err != nil {
			return domain.Graph{}, fmt.Errorf("inputs[%d]: %w", i, err)
		}
		g.Inputs = append(g.Inputs, domain.MacroInput{Parameter: in.Parameter, Type: t})
	}

	for i, n := range w.Nodes {
		desc := domain.NodeDescriptor{Kind: n.Type, OutFlow: n.OutFlow}
		for j, s := range n.InputValues {
			socket, err := s.toDomain()
			if err != nil {
				return domain.Graph{}, fmt.Errorf("nodes[%d].inputValues[%d]: %w", i, j, err)
			}
			desc.Inputs = append(desc.Inputs, socket)
		}
		g.Nodes = append(g.Nodes, desc)
	}
	return g, nil
}

func (s wireSocket) toDomain() (domain.ValueSocket, error) {
	t, err := domain.ParseValueType(s.Type)
	if err != nil {
		return domain.ValueSocket{}, err
	}
	socket := domain.ValueSocket{ID: s.ID, Type: t}

	switch {
	case len(s.Value) > 0 && !bytes.Equal(s.Value, []byte("null")):
		lit, err := literalText(s.Value)
		if err != nil {
			return domain.ValueSocket{}, err
		}
		socket.Binding = domain.Literal{Value: lit}
	case s.InputIndex != nil:
		socket.Binding = domain.InputRef{Index: *s.InputIndex}
	case s.ReferencedNodeID != nil:
		socket.Binding = domain.NodeRef{Node: *s.ReferencedNodeID, Output: s.ReferencedValueID}
	}
	return socket, nil
}

// literalText returns the string content of a JSON string, or the raw text of any other scalar.
func literalText(raw json.RawMessage) (string, error) {
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("decode literal: %w", err)
		}
		return s, nil
	}
	if raw[0] == '{' || raw[0] == '[' {
		return "", fmt.Errorf("literal value must be a scalar, got %s", raw)
	}
	return string(raw), nil
}

func fromDomain(g domain.Graph) wireGraph {
	w := wireGraph{
		Inputs: make([]wireInput, 0, len(g.Inputs)),
		Nodes:  make([]wireNode, 0, len(g.Nodes)),
	}
	for _, in := range g.Inputs {
		w.Inputs = append(w.Inputs, wireInput{Parameter: in.Parameter, ParameterType: string(in.Type)})
	}
	for _, n := range g.Nodes {
		node := wireNode{Type: n.Kind, OutFlow: n.OutFlow, InputValues: make([]wireSocket, 0, len(n.Inputs))}
		for _, s := range n.Inputs {
			node.InputValues = append(node.InputValues, fromSocket(s))
		}
		w.Nodes = append(w.Nodes, node)
	}
	return w
}

func fromSocket(s domain.ValueSocket) wireSocket {
	w := wireSocket{ID: s.ID, Type: string(s.Type)}
	switch b := s.Binding.(type) {
	case domain.Literal:
		raw, _ := json.Marshal(b.Value)
		w.Value = raw
	case domain.InputRef:
		idx := b.Index
		w.InputIndex = &idx
	case domain.NodeRef:
		node := b.Node
		w.ReferencedNodeID = &node
		w.ReferencedValueID = b.Output
	}
	return w
}

// MacroDocument is the catalog record of a macro.
// Actions[i] is the example argument object for ActivationPhrases[i].
type MacroDocument struct {
	Name              string          `json:"name"`
	ActivationPhrases []string        `json:"activationPhrases"`
	Actions           []string        `json:"actions"`
	CreatedAt         time.Time       `json:"createdAt"`
	Graph             json.RawMessage `json:"graph"`
}

// ParseMacro decodes a macro document.
func ParseMacro(data []byte) (*domain.Macro, error) {
	var doc MacroDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode macro: %w", err)
	}
	return doc.ToDomain()
}

// ToDomain converts the document into a domain macro.
func (d MacroDocument) ToDomain() (*domain.Macro, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("macro name is required")
	}
	m := &domain.Macro{
		Name:              d.Name,
		ActivationPhrases: d.ActivationPhrases,
		Actions:           d.Actions,
		CreatedAt:         d.CreatedAt,
	}
	if len(d.Graph) > 0 {
		g, err := ParseGraph(d.Graph)
		if err != nil {
			return nil, fmt.Errorf("macro %s: %w", d.Name, err)
		}
		m.Graph = g
	}
	return m, nil
}

// NewMacroDocument converts a domain macro into its document form.
func NewMacroDocument(m *domain.Macro) (MacroDocument, error) {
	graph, err := MarshalGraph(m.Graph)
	if err != nil {
		return MacroDocument{}, err
	}
	return MacroDocument{
		Name:              m.Name,
		ActivationPhrases: m.ActivationPhrases,
		Actions:           m.Actions,
		CreatedAt:         m.CreatedAt,
		Graph:             graph,
	}, nil
}

// MarshalMacro encodes a macro document.
func MarshalMacro(m *domain.Macro) ([]byte, error) {
	doc, err := NewMacroDocument(m)
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}
