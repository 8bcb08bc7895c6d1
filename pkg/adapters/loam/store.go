package loam

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/loam"
	"github.com/aretw0/macrograph/pkg/domain"
	"github.com/aretw0/macrograph/pkg/schema"
)

const docExt = ".md"

// Store adapts a Loam repository of Markdown macro documents to ports.MacroStore.
// Frontmatter carries the catalog metadata and the body carries the graph JSON, so
// macros can be reviewed and edited as plain files.
type Store struct {
	dir  string
	Repo *loam.TypedRepository[MacroMetadata]
}

// New opens (or initializes) the Loam repository at dir.
func New(dir string, opts ...loam.Option) (*Store, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Writes must land in dir itself, not in a versioned sandbox.
	opts = append([]loam.Option{loam.WithVersioning(false), loam.WithForceTemp(false)}, opts...)
	repo, err := loam.Init(absPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}

	return &Store{
		dir:  absPath,
		Repo: loam.NewTypedRepository[MacroMetadata](repo),
	}, nil
}

// Save writes the macro as <name>.md.
func (s *Store) Save(ctx context.Context, macro *domain.Macro) error {
	if err := domain.ValidateMacroName(macro.Name); err != nil {
		return err
	}

	graph, err := schema.MarshalGraph(macro.Graph)
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}

	meta := MacroMetadata{
		Name:              macro.Name,
		ActivationPhrases: macro.ActivationPhrases,
		Actions:           macro.Actions,
	}
	if !macro.CreatedAt.IsZero() {
		meta.CreatedAt = macro.CreatedAt.UTC().Format(time.RFC3339Nano)
	}

	err = s.Repo.Save(ctx, &loam.DocumentModel[MacroMetadata]{
		ID:      macro.Name + docExt,
		Content: "```json\n" + string(graph) + "\n```\n",
		Data:    meta,
	})
	if err != nil {
		return fmt.Errorf("loam save failed for %s: %w", macro.Name, err)
	}
	return nil
}

// Load reads <name>.md and decodes its graph body.
func (s *Store) Load(ctx context.Context, name string) (*domain.Macro, error) {
	if err := domain.ValidateMacroName(name); err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(s.dir, name+docExt)); err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrMacroNotFound
		}
		return nil, fmt.Errorf("failed to stat macro %s: %w", name, err)
	}

	doc, err := s.Repo.Get(ctx, name+docExt)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", name, err)
	}

	macro := &domain.Macro{
		Name:              name,
		ActivationPhrases: doc.Data.ActivationPhrases,
		Actions:           doc.Data.Actions,
	}
	if doc.Data.CreatedAt != "" {
		created, err := time.Parse(time.RFC3339Nano, doc.Data.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("macro %s: invalid created_at: %w", name, err)
		}
		macro.CreatedAt = created
	}

	body := graphBody(doc.Content)
	if body != "" {
		g, err := schema.ParseGraph([]byte(body))
		if err != nil {
			return nil, fmt.Errorf("macro %s: %w", name, err)
		}
		macro.Graph = g
	}
	return macro, nil
}

// graphBody extracts the JSON object from a document body, ignoring surrounding prose or fences.
func graphBody(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return ""
	}
	return content[start : end+1]
}

// Delete removes <name>.md. Deleting a missing macro is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := domain.ValidateMacroName(name); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.dir, name+docExt))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete macro %s: %w", name, err)
	}
	return nil
}

// List returns the macro names in ascending order.
// A name defined by two documents is reported as a collision.
func (s *Store) List(ctx context.Context) ([]string, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	names := make([]string, 0, len(docs))
	for _, doc := range docs {
		if filepath.Ext(doc.ID) != docExt && filepath.Ext(doc.ID) != "" {
			continue
		}
		name := trimExtension(doc.ID)
		if existing, ok := seen[name]; ok {
			return nil, fmt.Errorf("collision detected: macro '%s' is defined in both '%s' and '%s'", name, existing, doc.ID)
		}
		seen[name] = doc.ID
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func trimExtension(id string) string {
	return filepath.ToSlash(strings.TrimSuffix(id, filepath.Ext(id)))
}
