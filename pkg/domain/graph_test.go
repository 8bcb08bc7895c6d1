package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/macrograph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_CheckIntegrity(t *testing.T) {
	valid := domain.Graph{
		Inputs: []domain.MacroInput{{Parameter: "obj", Type: domain.ValueTypeInt}},
		Nodes: []domain.NodeDescriptor{
			{Kind: "Start", OutFlow: domain.Flow(1)},
			{Kind: "SetPosition", Inputs: []domain.ValueSocket{
				domain.InputSocket("objectIndex", domain.ValueTypeInt, 0),
				domain.RefSocket("position", domain.ValueTypeFloat3, 2, "value"),
			}},
			{Kind: "GetPosition"},
		},
	}
	assert.NoError(t, valid.CheckIntegrity())

	tests := []struct {
		name  string
		graph domain.Graph
		field string
	}{
		{
			name:  "outFlow past the end",
			graph: domain.Graph{Nodes: []domain.NodeDescriptor{{Kind: "Start", OutFlow: domain.Flow(3)}}},
			field: "outFlow",
		},
		{
			name: "node reference past the end",
			graph: domain.Graph{Nodes: []domain.NodeDescriptor{{Kind: "SetScale", Inputs: []domain.ValueSocket{
				domain.RefSocket("scale", domain.ValueTypeFloat3, 9, "value"),
			}}}},
			field: "referencedNodeId",
		},
		{
			name: "input reference without inputs",
			graph: domain.Graph{Nodes: []domain.NodeDescriptor{{Kind: "Int", Inputs: []domain.ValueSocket{
				domain.InputSocket("value", domain.ValueTypeInt, 0),
			}}}},
			field: "inputIndex",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.graph.CheckIntegrity()
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrGraphIntegrity))

			var gie *domain.GraphIntegrityError
			require.ErrorAs(t, err, &gie)
			assert.Equal(t, tt.field, gie.Field)
		})
	}
}

func TestLifecycleHooks_Merge(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{OnNodeExecute: func(_ context.Context, e *domain.NodeEvent) { calls = append(calls, "a") }}
	b := domain.LifecycleHooks{OnNodeExecute: func(_ context.Context, e *domain.NodeEvent) { calls = append(calls, "b") }}

	merged := a.Merge(b)
	merged.OnNodeExecute(context.Background(), &domain.NodeEvent{})
	assert.Equal(t, []string{"a", "b"}, calls)
	assert.Nil(t, merged.OnExecutionEnd)
}

func TestValidateMacroName(t *testing.T) {
	for _, name := range []string{"lift", "move the box", "stack.v2", "..hidden"} {
		assert.NoError(t, domain.ValidateMacroName(name), "name %q", name)
	}
	for _, name := range []string{"", ".", "..", "../x", "a/b", `a\b`, "a\x00b"} {
		assert.ErrorIs(t, domain.ValidateMacroName(name), domain.ErrInvalidMacroName, "name %q", name)
	}
}
