package command_test

import (
	"context"
	"math"
	"testing"

	"github.com/aretw0/macrograph/pkg/adapters/memory"
	"github.com/aretw0/macrograph/pkg/command"
	"github.com/aretw0/macrograph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoBoxes() *memory.Scene {
	return memory.NewScene(memory.NewObject(memory.ShapeBox), memory.NewObject(memory.ShapeBox))
}

func TestSceneCommands_TransformSelected(t *testing.T) {
	scene := twoBoxes()
	rec := &recorder{}
	d := command.NewDispatcher(rec, command.WithPacing(0), command.WithSceneCommands(command.NewSceneCommands(scene)))

	outcomes, err := d.Dispatch(context.Background(), `{"actions":[`+
		`{"select":{"index":"1"}},`+
		`{"setTranslateX":{"amount":"4"}},`+
		`{"translateX":{"amount":"1.5"}},`+
		`{"translateY":{"amount":20}},`+
		`{"scaleZ":{"amount":"0.5"}},`+
		`{"scaleZ":{"amount":"3"}}]}`)
	require.NoError(t, err)
	for _, o := range outcomes {
		assert.NoError(t, o.Err, o.Action.Macro)
	}
	assert.Empty(t, rec.calls, "built-in commands never reach the macro runner")

	obj, ok := scene.Object(1)
	require.True(t, ok)
	assert.Equal(t, domain.Float3{5.5, 20, 0}, obj.Position)
	assert.Equal(t, domain.Float3{1, 1, 1.5}, obj.Scale)

	untouched, _ := scene.Object(0)
	assert.Equal(t, domain.Float3{}, untouched.Position)
}

func TestSceneCommands_Rotate(t *testing.T) {
	scene := twoBoxes()
	sc := command.NewSceneCommands(scene)
	ctx := context.Background()

	require.NoError(t, sc.Apply(ctx, "select", map[string]any{"index": "0"}))
	require.NoError(t, sc.Apply(ctx, "rotateX", map[string]any{"amount": "90"}))
	require.NoError(t, sc.Apply(ctx, "rotateX", map[string]any{"amount": "90"}))

	obj, _ := scene.Object(0)
	// Two quarter turns about x give a half turn: [x, y, z, w] = [1, 0, 0, 0].
	assert.InDelta(t, 1, obj.Rotation[0], 1e-9)
	assert.InDelta(t, 0, obj.Rotation[1], 1e-9)
	assert.InDelta(t, 0, obj.Rotation[2], 1e-9)
	assert.InDelta(t, 0, obj.Rotation[3], 1e-9)

	require.NoError(t, sc.Apply(ctx, "rotateZ", map[string]any{"amount": "-180"}))
	obj, _ = scene.Object(0)
	// Half turn about x then a half turn back about z leaves a half turn about y.
	assert.InDelta(t, 0, obj.Rotation[0], 1e-9)
	assert.InDelta(t, 1, math.Abs(obj.Rotation[1]), 1e-9)
	assert.InDelta(t, 0, obj.Rotation[2], 1e-9)
	assert.InDelta(t, 0, obj.Rotation[3], 1e-9)
}

func TestSceneCommands_Errors(t *testing.T) {
	scene := twoBoxes()
	sc := command.NewSceneCommands(scene)
	ctx := context.Background()

	assert.ErrorIs(t, sc.Apply(ctx, "translateX", map[string]any{"amount": "1"}), command.ErrNoSelection)

	assert.ErrorIs(t, sc.Apply(ctx, "select", map[string]any{"index": "7"}), domain.ErrObjectNotFound)
	_, selected := sc.Selected()
	assert.False(t, selected, "a bad index keeps the previous selection")

	assert.ErrorIs(t, sc.Apply(ctx, "select", map[string]any{}), command.ErrInvalidArgument)

	require.NoError(t, sc.Apply(ctx, "select", map[string]any{"index": "1"}))
	index, selected := sc.Selected()
	assert.True(t, selected)
	assert.Equal(t, 1, index)

	assert.ErrorIs(t, sc.Apply(ctx, "scaleX", map[string]any{"amount": "big"}), command.ErrInvalidArgument)
	assert.ErrorIs(t, sc.Apply(ctx, "delete", map[string]any{}), command.ErrUnsupportedCommand)
	assert.Error(t, sc.Apply(ctx, "teleport", nil))
}

func TestSceneCommands_Lock(t *testing.T) {
	var locked int
	sc := command.NewSceneCommands(twoBoxes(), command.WithSceneLock(
		func(ctx context.Context, fn func(context.Context) error) error {
			locked++
			return fn(ctx)
		}))

	require.NoError(t, sc.Apply(context.Background(), "select", map[string]any{"index": "0"}))
	assert.Equal(t, 1, locked)
}

func TestDispatcher_MacrosWithoutSceneCommands(t *testing.T) {
	rec := &recorder{}
	d := command.NewDispatcher(rec, command.WithPacing(0))

	_, err := d.Dispatch(context.Background(), `{"actions":[{"translateX":{"amount":"1"}}]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"translateX"}, rec.calls)
}
