package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/macrograph/pkg/domain"
	"github.com/aretw0/macrograph/pkg/schema"
)

// Store implements ports.MacroStore using the local filesystem.
// Each macro is a macro document named <name>.json in BasePath.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".macrograph/macros".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".macrograph", "macros")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(name string) (string, error) {
	if err := domain.ValidateMacroName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.BasePath, name+".json"), nil
}

// Save writes the macro document atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, macro *domain.Macro) error {
	destPath, err := s.path(macro.Name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure macro directory: %w", err)
	}

	doc, err := schema.NewMacroDocument(macro)
	if err != nil {
		return fmt.Errorf("failed to marshal macro: %w", err)
	}
	data, err := marshalIndent(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal macro: %w", err)
	}

	// Same directory as the destination so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+macro.Name+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Windows os.Rename fails if the destination exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing macro file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to macro file: %w", err)
	}
	return nil
}

// Load reads a macro document.
func (s *Store) Load(ctx context.Context, name string) (*domain.Macro, error) {
	filePath, err := s.path(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrMacroNotFound
		}
		return nil, fmt.Errorf("failed to read macro file: %w", err)
	}

	macro, err := schema.ParseMacro(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal macro %s: %w", name, err)
	}
	return macro, nil
}

// Delete removes the macro file. Deleting a missing macro is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	filePath, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete macro file: %w", err)
	}
	return nil
}

// List returns the stored macro names in ascending order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list macros: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, "tmp-") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(names)
	return names, nil
}
