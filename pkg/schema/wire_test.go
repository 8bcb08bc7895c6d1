package schema_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/macrograph/internal/runtime"
	"github.com/aretw0/macrograph/pkg/adapters/memory"
	"github.com/aretw0/macrograph/pkg/domain"
	"github.com/aretw0/macrograph/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const moveGraph = `{
  "inputs": [{"parameter": "obj", "parameterType": "int"}],
  "nodes": [
    {"type": "Start", "inputValues": [], "outFlow": 1},
    {"type": "SetPosition", "inputValues": [
      {"id": "objectIndex", "type": "int", "inputIndex": 0},
      {"id": "position", "type": "float3", "referencedNodeId": 2, "referencedValueId": "value"}
    ]},
    {"type": "Float3", "inputValues": [
      {"id": "x", "type": "float", "value": "1"},
      {"id": "y", "type": "float", "value": 2},
      {"id": "z", "type": "float", "value": "3.5"}
    ]}
  ]
}`

func TestParseGraph(t *testing.T) {
	g, err := schema.ParseGraph([]byte(moveGraph))
	require.NoError(t, err)

	require.Len(t, g.Inputs, 1)
	assert.Equal(t, domain.MacroInput{Parameter: "obj", Type: domain.ValueTypeInt}, g.Inputs[0])

	require.Len(t, g.Nodes, 3)
	assert.Equal(t, "Start", g.Nodes[0].Kind)
	assert.Nil(t, g.Nodes[0].Inputs)
	require.NotNil(t, g.Nodes[0].OutFlow)
	assert.Equal(t, 1, *g.Nodes[0].OutFlow)
	assert.Nil(t, g.Nodes[1].OutFlow)

	assert.Equal(t, domain.InputRef{Index: 0}, g.Nodes[1].Inputs[0].Binding)
	assert.Equal(t, domain.NodeRef{Node: 2, Output: "value"}, g.Nodes[1].Inputs[1].Binding)
	assert.Equal(t, domain.Literal{Value: "1"}, g.Nodes[2].Inputs[0].Binding)
	assert.Equal(t, domain.Literal{Value: "2"}, g.Nodes[2].Inputs[1].Binding, "numbers keep their JSON text")
}

func TestParseGraph_BindingPriority(t *testing.T) {
	doc := `{"inputs": [{"parameter": "p", "parameterType": "int"}], "nodes": [{"type": "Int", "inputValues": [
	  {"id": "a", "type": "int", "value": "4", "inputIndex": 0, "referencedNodeId": 0, "referencedValueId": "value"},
	  {"id": "b", "type": "int", "inputIndex": 0, "referencedNodeId": 0, "referencedValueId": "value"},
	  {"id": "c", "type": "int", "value": null, "referencedNodeId": 0, "referencedValueId": "value"},
	  {"id": "d", "type": "int"}
	]}]}`

	g, err := schema.ParseGraph([]byte(doc))
	require.NoError(t, err)

	in := g.Nodes[0].Inputs
	assert.Equal(t, domain.Literal{Value: "4"}, in[0].Binding)
	assert.Equal(t, domain.InputRef{Index: 0}, in[1].Binding)
	assert.Equal(t, domain.NodeRef{Node: 0, Output: "value"}, in[2].Binding)
	assert.Nil(t, in[3].Binding)
}

func TestParseGraph_Errors(t *testing.T) {
	tests := map[string]string{
		"malformed json":     `{"nodes": [`,
		"unknown input type": `{"inputs": [{"parameter": "p", "parameterType": "double"}], "nodes": []}`,
		"unknown socket":     `{"inputs": [], "nodes": [{"type": "Int", "inputValues": [{"id": "value", "type": "string", "value": "1"}]}]}`,
		"object literal":     `{"inputs": [], "nodes": [{"type": "Int", "inputValues": [{"id": "value", "type": "int", "value": {"a": 1}}]}]}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := schema.ParseGraph([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestParseGraph_UnknownKindSurvives(t *testing.T) {
	g, err := schema.ParseGraph([]byte(`{"inputs": [], "nodes": [{"type": "Teleport", "inputValues": []}]}`))
	require.NoError(t, err)
	assert.Equal(t, "Teleport", g.Nodes[0].Kind)
}

func TestMarshalGraph_RoundTripExecutesIdentically(t *testing.T) {
	original, err := schema.ParseGraph([]byte(moveGraph))
	require.NoError(t, err)

	data, err := schema.MarshalGraph(original)
	require.NoError(t, err)
	decoded, err := schema.ParseGraph(data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)

	execute := func(g domain.Graph) []memory.Call {
		scene := memory.NewScene(memory.NewObject(memory.ShapeBox), memory.NewObject(memory.ShapeBox))
		engine, err := runtime.Build(g, map[string]any{"obj": 1.0}, scene)
		require.NoError(t, err)
		require.NoError(t, engine.Execute(context.Background()))
		return scene.Calls()
	}

	first := execute(original)
	assert.Equal(t, []memory.Call{{Method: "SetObjectPosition", Object: 1, Args: []float64{1, 2, 3.5}}}, first)
	assert.Equal(t, first, execute(decoded))
}

func TestMacroDocument(t *testing.T) {
	g, err := schema.ParseGraph([]byte(moveGraph))
	require.NoError(t, err)
	macro := &domain.Macro{
		Name:              "move",
		ActivationPhrases: []string{"move the second object"},
		Actions:           []string{`{"obj": 1}`},
		CreatedAt:         time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC),
		Graph:             g,
	}

	data, err := schema.MarshalMacro(macro)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"activationPhrases":["move the second object"]`)

	decoded, err := schema.ParseMacro(data)
	require.NoError(t, err)
	assert.Equal(t, macro, decoded)

	_, err = schema.ParseMacro([]byte(`{"graph": {"inputs": [], "nodes": []}}`))
	assert.Error(t, err, "name is required")
}
