package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/macrograph/pkg/adapters/memory"
	"github.com/aretw0/macrograph/pkg/domain"
	"github.com/aretw0/macrograph/pkg/schema"
	"github.com/stretchr/testify/require"
)

// WriteMacroFile writes macro as a JSON macro document named <name>.json in a temporary directory.
// It returns the absolute path of the file and fails the test immediately on error.
func WriteMacroFile(t *testing.T, macro *domain.Macro) string {
	t.Helper()

	data, err := schema.MarshalMacro(macro)
	require.NoError(t, err, "Failed to marshal macro")

	path, err := filepath.Abs(filepath.Join(t.TempDir(), macro.Name+".json"))
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	require.NoError(t, os.WriteFile(path, data, 0644), "Failed to write macro file")
	return path
}

// NewBoxScene returns a scene holding n boxes at the origin.
func NewBoxScene(n int) *memory.Scene {
	objects := make([]memory.Object, n)
	for i := range objects {
		objects[i] = memory.NewObject(memory.ShapeBox)
	}
	return memory.NewScene(objects...)
}
