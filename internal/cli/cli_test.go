package cli

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/macrograph/internal/testutils"
	"github.com/aretw0/macrograph/pkg/domain"
	"github.com/aretw0/macrograph/pkg/ports"
	"github.com/aretw0/macrograph/pkg/schema"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp(t *testing.T) {
	ctx := context.Background()

	t.Run("Memory backend runs a saved macro", func(t *testing.T) {
		app, err := NewApp(ctx, Options{Backend: "memory", Objects: 2})
		require.NoError(t, err)
		defer app.Close()

		assert.Len(t, app.Scene.Objects(), 2)
		require.NoError(t, app.Engine.Store().Save(ctx, ports.ContractMacro("lift")))

		_, err = app.Engine.Run(ctx, "lift", map[string]any{"obj": 1})
		require.NoError(t, err)

		obj, _ := app.Scene.Object(1)
		assert.Equal(t, domain.Float3{0, 1.5, 0}, obj.Position)

		require.NotNil(t, app.Metrics)
		assert.Equal(t, 1.0, testutil.ToFloat64(app.Metrics.Executions.WithLabelValues("lift", "ok")))
	})

	t.Run("File backend persists under the store path", func(t *testing.T) {
		dir := t.TempDir()
		app, err := NewApp(ctx, Options{Backend: "file", StorePath: dir})
		require.NoError(t, err)
		defer app.Close()

		assert.Len(t, app.Scene.Objects(), DefaultObjects)
		require.NoError(t, app.Engine.Store().Save(ctx, ports.ContractMacro("lift")))
		names, err := app.Engine.Store().List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"lift"}, names)
	})

	t.Run("Unknown backend", func(t *testing.T) {
		_, err := NewApp(ctx, Options{Backend: "tape"})
		assert.ErrorContains(t, err, "unknown store backend")
	})

	t.Run("Missing config file", func(t *testing.T) {
		_, err := NewApp(ctx, Options{ConfigPath: filepath.Join(t.TempDir(), "nope.yaml")})
		assert.Error(t, err)
	})
}

func TestDecodeMacro(t *testing.T) {
	doc, err := schema.MarshalMacro(ports.ContractMacro("lift"))
	require.NoError(t, err)

	t.Run("Macro document", func(t *testing.T) {
		m, err := DecodeMacro(doc, "ignored.json")
		require.NoError(t, err)
		assert.Equal(t, "lift", m.Name)
		assert.Len(t, m.Graph.Nodes, 3)
	})

	t.Run("Bare graph", func(t *testing.T) {
		var probe map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(doc, &probe))

		m, err := DecodeMacro(probe["graph"], "lift.json")
		require.NoError(t, err)
		assert.Equal(t, "lift.json", m.Name)
		assert.Len(t, m.Graph.Inputs, 1)
	})

	t.Run("Schema violation", func(t *testing.T) {
		_, err := DecodeMacro([]byte(`{"inputs":[],"nodes":[{"type":"Start"}]}`), "bad.json")
		require.Error(t, err)
		assert.NotEmpty(t, schema.ValidationErrors(err))
	})

	t.Run("Not JSON", func(t *testing.T) {
		_, err := DecodeMacro([]byte(`nodes:`), "bad.yaml")
		assert.Error(t, err)
	})

	t.Run("From file", func(t *testing.T) {
		path := testutils.WriteMacroFile(t, ports.ContractMacro("lift"))
		m, err := ReadMacroFile(path)
		require.NoError(t, err)
		assert.Equal(t, "lift", m.Name)
	})
}

func TestParseArgs(t *testing.T) {
	args, err := ParseArgs(`{"obj": 2, "y": "1.5"}`)
	require.NoError(t, err)
	assert.Equal(t, json.Number("2"), args["obj"])
	assert.Equal(t, "1.5", args["y"])

	args, err = ParseArgs("")
	require.NoError(t, err)
	assert.Nil(t, args)

	_, err = ParseArgs(`[1]`)
	assert.Error(t, err)
}

func TestNewApp_RejectsInvalidMacrosOnSave(t *testing.T) {
	ctx := context.Background()
	app, err := NewApp(ctx, Options{Backend: "memory"})
	require.NoError(t, err)
	defer app.Close()

	err = app.Engine.Store().Save(ctx, &domain.Macro{Name: "broken", Graph: domain.Graph{
		Nodes: []domain.NodeDescriptor{{Kind: "SetScale"}},
	}})
	assert.ErrorContains(t, err, "no Start node")
}

func TestNewApp_EncryptedStore(t *testing.T) {
	ctx := context.Background()
	t.Setenv("MACROGRAPH_STORE_ENCRYPTION_KEY", "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	dir := t.TempDir()

	app, err := NewApp(ctx, Options{Backend: "file", StorePath: dir})
	require.NoError(t, err)
	defer app.Close()

	require.NoError(t, app.Engine.Store().Save(ctx, ports.ContractMacro("lift")))
	raw, err := os.ReadFile(filepath.Join(dir, "lift.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "enc:v1:")
	assert.NotContains(t, string(raw), "SetPosition")

	_, err = app.Engine.Run(ctx, "lift", map[string]any{"obj": 0})
	require.NoError(t, err)
}

func TestNewApp_Hooks(t *testing.T) {
	ctx := context.Background()
	var kinds []string
	app, err := NewApp(ctx, Options{Backend: "memory", Hooks: func(*slog.Logger) domain.LifecycleHooks {
		return domain.LifecycleHooks{
			OnNodeExecute: func(_ context.Context, e *domain.NodeEvent) { kinds = append(kinds, e.Kind) },
		}
	}})
	require.NoError(t, err)
	defer app.Close()

	require.NoError(t, app.Engine.Store().Save(ctx, ports.ContractMacro("lift")))
	_, err = app.Engine.Run(ctx, "lift", map[string]any{"obj": 0})
	require.NoError(t, err)
	assert.Equal(t, []string{"Start", "Float3", "SetPosition"}, kinds)
}
