package macrograph_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aretw0/macrograph"
	"github.com/aretw0/macrograph/pkg/adapters/memory"
	"github.com/aretw0/macrograph/pkg/command"
	"github.com/aretw0/macrograph/pkg/domain"
	"github.com/aretw0/macrograph/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newEngine(t *testing.T, opts ...macrograph.Option) (*macrograph.Engine, *memory.Scene) {
	t.Helper()
	scene := memory.NewScene(memory.NewObject(memory.ShapeBox), memory.NewObject(memory.ShapeSphere))
	store := memory.NewStore(ports.ContractMacro("lift"))
	eng, err := macrograph.New(scene, append([]macrograph.Option{macrograph.WithStore(store)}, opts...)...)
	require.NoError(t, err)
	return eng, scene
}

func TestNew_RequiresHost(t *testing.T) {
	_, err := macrograph.New(nil)
	assert.Error(t, err)
}

func TestEngine_Run(t *testing.T) {
	eng, scene := newEngine(t)

	res, err := eng.Run(context.Background(), "lift", map[string]any{"obj": "1"})
	require.NoError(t, err)

	assert.Equal(t, "lift", res.Macro)
	assert.NotEmpty(t, res.ExecutionID)
	assert.Equal(t, []int{0, 2, 1}, res.Executed, "getter evaluates before the action that reads it")
	assert.Equal(t, 1, res.LastNode())

	obj, ok := scene.Object(1)
	require.True(t, ok)
	assert.Equal(t, domain.Float3{0, 1.5, 0}, obj.Position)
}

func TestEngine_RunErrors(t *testing.T) {
	eng, scene := newEngine(t)
	ctx := context.Background()

	_, err := eng.Run(ctx, "ghost", nil)
	assert.ErrorIs(t, err, domain.ErrMacroNotFound)

	_, err = eng.Run(ctx, "lift", nil)
	assert.ErrorIs(t, err, domain.ErrMissingInput)

	res, err := eng.Run(ctx, "lift", map[string]any{"obj": 7})
	assert.ErrorIs(t, err, domain.ErrObjectNotFound)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.LastNode())
	assert.Len(t, scene.Calls(), 1)
}

func TestEngine_RunGraph(t *testing.T) {
	eng, scene := newEngine(t)

	g := domain.Graph{Nodes: []domain.NodeDescriptor{
		{Kind: "Start", OutFlow: domain.Flow(1)},
		{Kind: "SetScale", Inputs: []domain.ValueSocket{
			domain.RefSocket("objectIndex", domain.ValueTypeInt, 2, "objectIndex"),
			domain.RefSocket("scale", domain.ValueTypeFloat3, 3, "value"),
		}},
		{Kind: "AddBox"},
		{Kind: "Float3", Inputs: []domain.ValueSocket{
			domain.LiteralSocket("x", domain.ValueTypeFloat, "2"),
			domain.LiteralSocket("y", domain.ValueTypeFloat, "2"),
			domain.LiteralSocket("z", domain.ValueTypeFloat, "2"),
		}},
	}}

	res, err := eng.RunGraph(context.Background(), g, nil)
	require.NoError(t, err)
	assert.Equal(t, macrograph.InlineMacro, res.Macro)

	objects := scene.Objects()
	require.Len(t, objects, 3)
	assert.Equal(t, memory.ShapeBox, objects[2].Shape)
	assert.Equal(t, domain.Float3{2, 2, 2}, objects[2].Scale)
}

func TestEngine_Hooks(t *testing.T) {
	var mu sync.Mutex
	var events []string
	record := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, s)
	}

	hooks := domain.LifecycleHooks{
		OnExecutionStart: func(_ context.Context, e *domain.ExecutionEvent) { record("start:" + e.Macro) },
		OnNodeExecute:    func(_ context.Context, e *domain.NodeEvent) { record("node:" + e.Kind) },
		OnExecutionEnd: func(_ context.Context, e *domain.ExecutionEvent) {
			if e.Err != nil {
				record("fail:" + e.Macro)
				return
			}
			record("end:" + e.Macro)
		},
	}
	eng, _ := newEngine(t, macrograph.WithLifecycleHooks(hooks))

	_, err := eng.Run(context.Background(), "lift", map[string]any{"obj": 0})
	require.NoError(t, err)
	_, err = eng.Run(context.Background(), "lift", map[string]any{"obj": 9})
	require.Error(t, err)

	assert.Equal(t, []string{
		"start:lift", "node:Start", "node:Float3", "node:SetPosition", "end:lift",
		"start:lift", "node:Start", "node:Float3", "node:SetPosition", "fail:lift",
	}, events)
}

func TestEngine_Tracing(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	eng, _ := newEngine(t, macrograph.WithTracerProvider(tp))

	_, err := eng.Run(context.Background(), "lift", map[string]any{"obj": 0})
	require.NoError(t, err)
	_, err = eng.Run(context.Background(), "lift", map[string]any{"obj": 9})
	require.Error(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "macrograph.run", spans[0].Name())
	assert.Equal(t, "Ok", spans[0].Status().Code.String())
	assert.Equal(t, "Error", spans[1].Status().Code.String())
	assert.Len(t, spans[1].Events(), 1, "error recorded on the span")
}

func TestEngine_Dispatch(t *testing.T) {
	eng, scene := newEngine(t)

	outcomes, err := eng.Dispatch(context.Background(),
		`Sure: {"actions":[{"lift":{"obj":"0"}},{"ghost":{}},{"lift":{"obj":"1"}}]}`)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.NoError(t, outcomes[0].Err)
	assert.ErrorIs(t, outcomes[1].Err, domain.ErrMacroNotFound)
	assert.NoError(t, outcomes[2].Err)

	for i := 0; i < 2; i++ {
		obj, _ := scene.Object(i)
		assert.Equal(t, domain.Float3{0, 1.5, 0}, obj.Position)
	}
}

func TestEngine_DispatchSceneCommands(t *testing.T) {
	eng, scene := newEngine(t)

	outcomes, err := eng.Dispatch(context.Background(),
		`{"actions":[{"translateX":{"amount":"1"}},{"select":{"index":"1"}},{"lift":{"obj":"0"}},{"translateX":{"amount":"2"}},{"delete":{}}]}`)
	require.NoError(t, err)
	require.Len(t, outcomes, 5)

	assert.ErrorIs(t, outcomes[0].Err, command.ErrNoSelection)
	assert.NoError(t, outcomes[1].Err)
	assert.NoError(t, outcomes[2].Err)
	assert.NoError(t, outcomes[3].Err)
	assert.ErrorIs(t, outcomes[4].Err, command.ErrUnsupportedCommand)

	lifted, _ := scene.Object(0)
	assert.Equal(t, domain.Float3{0, 1.5, 0}, lifted.Position)
	moved, _ := scene.Object(1)
	assert.Equal(t, domain.Float3{2, 0, 0}, moved.Position)
}

func TestEngine_Interpret(t *testing.T) {
	eng, scene := newEngine(t)

	outcomes, err := eng.Interpret(context.Background(), "Move the first object UP")
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.NoError(t, outcomes[0].Err)

	obj, _ := scene.Object(0)
	assert.Equal(t, domain.Float3{0, 1.5, 0}, obj.Position)

	_, err = eng.Interpret(context.Background(), "paint it red")
	assert.Error(t, err)
}

type staticInterpreter string

func (s staticInterpreter) Interpret(context.Context, string) (string, error) {
	if s == "" {
		return "", errors.New("model unavailable")
	}
	return string(s), nil
}

func TestEngine_CustomInterpreter(t *testing.T) {
	eng, _ := newEngine(t, macrograph.WithInterpreter(staticInterpreter(`{"actions":[{"lift":{"obj":"1"}}]}`)))
	outcomes, err := eng.Interpret(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "lift", outcomes[0].Action.Macro)

	eng, _ = newEngine(t, macrograph.WithInterpreter(staticInterpreter("")))
	_, err = eng.Interpret(context.Background(), "anything")
	assert.ErrorContains(t, err, "model unavailable")
}
