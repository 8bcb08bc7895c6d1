package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/macrograph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ContractMacro returns a small but complete macro used by the store contract.
// It exercises every socket binding mode and an outFlow link.
func ContractMacro(name string) *domain.Macro {
	return &domain.Macro{
		Name:              name,
		ActivationPhrases: []string{"move the first object up"},
		Actions:           []string{`{"obj": "0"}`},
		CreatedAt:         time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC),
		Graph: domain.Graph{
			Inputs: []domain.MacroInput{{Parameter: "obj", Type: domain.ValueTypeInt}},
			Nodes: []domain.NodeDescriptor{
				{Kind: "Start", OutFlow: domain.Flow(1)},
				{Kind: "SetPosition", Inputs: []domain.ValueSocket{
					domain.InputSocket("objectIndex", domain.ValueTypeInt, 0),
					domain.RefSocket("position", domain.ValueTypeFloat3, 2, "value"),
				}},
				{Kind: "Float3", Inputs: []domain.ValueSocket{
					domain.LiteralSocket("x", domain.ValueTypeFloat, "0"),
					domain.LiteralSocket("y", domain.ValueTypeFloat, "1.5"),
					domain.LiteralSocket("z", domain.ValueTypeFloat, "0"),
				}},
			},
		},
	}
}

// RunMacroStoreContract runs a suite of tests to verify that a MacroStore implementation
// adheres to the defined interface contract.
func RunMacroStoreContract(t *testing.T, store MacroStore) {
	ctx := context.Background()
	name := "contract-macro-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		macro := ContractMacro(name)

		err := store.Save(ctx, macro)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, macro.Name, loaded.Name)
		assert.Equal(t, macro.ActivationPhrases, loaded.ActivationPhrases)
		assert.Equal(t, macro.Actions, loaded.Actions)
		assert.Equal(t, macro.Graph, loaded.Graph)
		assert.WithinDuration(t, macro.CreatedAt, loaded.CreatedAt, time.Second)
	})

	t.Run("Save Replaces", func(t *testing.T) {
		macro := ContractMacro(name)
		macro.ActivationPhrases = []string{"lift it"}
		require.NoError(t, store.Save(ctx, macro))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, []string{"lift it"}, loaded.ActivationPhrases)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrMacroNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, ContractMacro(name)))

		err := store.Delete(ctx, name)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrMacroNotFound, "Load after Delete should return ErrMacroNotFound")

		assert.NoError(t, store.Delete(ctx, name), "Deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := name + "-a"
		id2 := name + "-b"
		require.NoError(t, store.Save(ctx, ContractMacro(id2)))
		require.NoError(t, store.Save(ctx, ContractMacro(id1)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, id1)
		assert.Contains(t, names, id2)
		assert.IsNonDecreasing(t, names)
	})
}
