package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/macrograph"
	"github.com/aretw0/macrograph/pkg/adapters/memory"
	"github.com/aretw0/macrograph/pkg/domain"
	"github.com/aretw0/macrograph/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *memory.Scene) {
	t.Helper()
	scene := memory.NewScene(memory.NewObject(memory.ShapeBox))
	eng, err := macrograph.New(scene, macrograph.WithStore(memory.NewStore(ports.ContractMacro("lift"))))
	require.NoError(t, err)
	return NewServer(eng, nil), scene
}

func buildRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func TestListAndDescribe(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleListMacros(ctx, buildRequest("list_macros", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `["lift"]`, resultText(t, res))

	res, err = s.handleDescribeMacro(ctx, buildRequest("describe_macro", map[string]any{"name": "lift"}))
	require.NoError(t, err)
	text := resultText(t, res)
	assert.Contains(t, text, "# lift")
	assert.Contains(t, text, "```mermaid\ngraph TD")

	res, err = s.handleDescribeMacro(ctx, buildRequest("describe_macro", map[string]any{"name": "ghost"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleDescribeMacro(ctx, buildRequest("describe_macro", nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestRunMacro(t *testing.T) {
	s, scene := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleRunMacro(ctx, buildRequest("run_macro", map[string]any{
		"name": "lift",
		"args": map[string]any{"obj": float64(0)},
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var out macrograph.Result
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, "lift", out.Macro)

	obj, _ := scene.Object(0)
	assert.Equal(t, domain.Float3{0, 1.5, 0}, obj.Position)

	res, err = s.handleRunMacro(ctx, buildRequest("run_macro", map[string]any{"name": "lift"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "input obj not found")
}

func TestDispatchAndInterpret(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleDispatch(ctx, buildRequest("dispatch_command", map[string]any{
		"response": `{"actions":[{"lift":{"obj":"0"}},{"ghost":{}}]}`,
	}))
	require.NoError(t, err)
	var views []OutcomeView
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &views))
	require.Len(t, views, 2)
	assert.Empty(t, views[0].Error)
	assert.NotEmpty(t, views[1].Error)

	res, err = s.handleDispatch(ctx, buildRequest("dispatch_command", map[string]any{"response": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleInterpret(ctx, buildRequest("interpret_request", map[string]any{"text": "move the first object up"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), `"macro":"lift"`)
}

func TestHandleMessage(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	send := func(method string, params map[string]any) map[string]any {
		raw, err := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": 1, "method": method, "params": params})
		require.NoError(t, err)
		resp := s.MCPServer().HandleMessage(ctx, raw)
		require.NotNil(t, resp)
		data, err := json.Marshal(resp)
		require.NoError(t, err)
		var out map[string]any
		require.NoError(t, json.Unmarshal(data, &out))
		return out
	}

	send("initialize", map[string]any{
		"protocolVersion": "2025-03-26",
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": "test", "version": "1.0.0"},
	})

	tools := send("tools/list", map[string]any{})
	result := tools["result"].(map[string]any)
	var names []string
	for _, tool := range result["tools"].([]any) {
		names = append(names, tool.(map[string]any)["name"].(string))
	}
	assert.ElementsMatch(t, []string{"list_macros", "describe_macro", "run_macro", "dispatch_command", "interpret_request"}, names)

	read := send("resources/read", map[string]any{"uri": KindsURI})
	contents := read["result"].(map[string]any)["contents"].([]any)
	require.Len(t, contents, 1)
	assert.Contains(t, contents[0].(map[string]any)["text"], `"type":"SetPosition"`)
}
