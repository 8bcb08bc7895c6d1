package schema_test

import (
	"testing"

	"github.com/aretw0/macrograph/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_ValidGraph(t *testing.T) {
	v, err := schema.NewValidator()
	require.NoError(t, err)

	assert.NoError(t, v.ValidateGraph([]byte(moveGraph)))
}

func TestValidator_Violations(t *testing.T) {
	v, err := schema.NewValidator()
	require.NoError(t, err)

	tests := []struct {
		name     string
		doc      string
		location string
	}{
		{
			name:     "two bindings",
			doc:      `{"inputs": [], "nodes": [{"type": "Int", "inputValues": [{"id": "value", "type": "int", "value": "1", "inputIndex": 0}]}]}`,
			location: "/nodes/0/inputValues/0",
		},
		{
			name:     "no binding",
			doc:      `{"inputs": [], "nodes": [{"type": "Int", "inputValues": [{"id": "value", "type": "int"}]}]}`,
			location: "/nodes/0/inputValues/0",
		},
		{
			name:     "reference without output",
			doc:      `{"inputs": [], "nodes": [{"type": "Int", "inputValues": [{"id": "value", "type": "int", "referencedNodeId": 0}]}]}`,
			location: "/nodes/0/inputValues/0",
		},
		{
			name:     "bad parameter type",
			doc:      `{"inputs": [{"parameter": "p", "parameterType": "vec3"}], "nodes": []}`,
			location: "/inputs/0/parameterType",
		},
		{
			name:     "negative outFlow",
			doc:      `{"inputs": [], "nodes": [{"type": "Start", "inputValues": [], "outFlow": -1}]}`,
			location: "/nodes/0/outFlow",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateGraph([]byte(tt.doc))
			require.Error(t, err)

			errs := schema.ValidationErrors(err)
			require.NotEmpty(t, errs)

			var locations []string
			for _, e := range errs {
				var verr *schema.ValidationError
				require.ErrorAs(t, e, &verr)
				locations = append(locations, verr.Location)
			}
			assert.Contains(t, locations, tt.location)
		})
	}
}

func TestValidator_Macro(t *testing.T) {
	v, err := schema.NewValidator()
	require.NoError(t, err)

	valid := `{"name": "move", "activationPhrases": ["move it"], "actions": ["{}"], "createdAt": "2024-05-01T08:30:00Z", "graph": ` + moveGraph + `}`
	assert.NoError(t, v.ValidateMacro([]byte(valid)))

	invalid := `{"name": "", "createdAt": "yesterday", "graph": {"inputs": [], "nodes": [{"type": "Start"}]}}`
	err = v.ValidateMacro([]byte(invalid))
	require.Error(t, err)
	assert.GreaterOrEqual(t, len(schema.ValidationErrors(err)), 3)
}

func TestValidator_MalformedJSON(t *testing.T) {
	v, err := schema.NewValidator()
	require.NoError(t, err)

	err = v.ValidateGraph([]byte(`{"nodes": `))
	require.Error(t, err)
	assert.Nil(t, schema.ValidationErrors(err))
}
