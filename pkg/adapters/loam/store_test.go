package loam_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/macrograph/pkg/adapters/loam"
	"github.com/aretw0/macrograph/pkg/domain"
	"github.com/aretw0/macrograph/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoamStore_Contract(t *testing.T) {
	store, err := loam.New(t.TempDir())
	require.NoError(t, err)

	ports.RunMacroStoreContract(t, store)
}

func TestLoamStore_HandAuthoredDocument(t *testing.T) {
	dir := t.TempDir()
	content := "---\n" +
		"name: grow\n" +
		"activation_phrases:\n" +
		"  - make the box bigger\n" +
		"actions:\n" +
		"  - '{\"factor\": \"2\"}'\n" +
		"---\n" +
		"Scales the first object uniformly.\n\n" +
		"```json\n" +
		`{"inputs": [{"parameter": "factor", "parameterType": "float"}], "nodes": [` +
		`{"type": "Start", "inputValues": [], "outFlow": 1},` +
		`{"type": "SetScale", "inputValues": [{"id": "objectIndex", "type": "int", "value": "0"}, {"id": "scale", "type": "float3", "referencedNodeId": 2, "referencedValueId": "value"}]},` +
		`{"type": "Float3", "inputValues": [{"id": "x", "type": "float", "inputIndex": 0}, {"id": "y", "type": "float", "inputIndex": 0}, {"id": "z", "type": "float", "inputIndex": 0}]}` +
		"]}\n```\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "grow.md"), []byte(content), 0644))

	store, err := loam.New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"grow"}, names)

	macro, err := store.Load(ctx, "grow")
	require.NoError(t, err)
	assert.Equal(t, []string{"make the box bigger"}, macro.ActivationPhrases)
	assert.Equal(t, []string{`{"factor": "2"}`}, macro.Actions)
	require.Len(t, macro.Graph.Nodes, 3)
	assert.Equal(t, domain.InputRef{Index: 0}, macro.Graph.Nodes[2].Inputs[1].Binding)
	assert.True(t, macro.CreatedAt.IsZero())
}

func TestLoamStore_LoadMissing(t *testing.T) {
	store, err := loam.New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrMacroNotFound)
}

func TestLoamStore_RejectsNamesOutsideDirectory(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "macros")
	require.NoError(t, os.MkdirAll(dir, 0755))
	victim := filepath.Join(root, "victim.md")
	require.NoError(t, os.WriteFile(victim, []byte("keep"), 0644))

	store, err := loam.New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	for _, name := range []string{"../victim", "..", "a/b", `a\b`, ""} {
		assert.ErrorIs(t, store.Delete(ctx, name), domain.ErrInvalidMacroName, "delete %q", name)
		_, err := store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrInvalidMacroName, "load %q", name)
		assert.ErrorIs(t, store.Save(ctx, ports.ContractMacro(name)), domain.ErrInvalidMacroName, "save %q", name)
	}

	_, err = os.Stat(victim)
	assert.NoError(t, err, "file outside the store must survive")
}
