package ports

import (
	"context"

	"github.com/aretw0/macrograph/pkg/domain"
)

// MacroStore defines the interface for persisting the macro catalog.
type MacroStore interface {
	// Save creates or replaces the macro with the same name.
	Save(ctx context.Context, macro *domain.Macro) error

	// Load retrieves a macro by name.
	// Returns domain.ErrMacroNotFound if it does not exist.
	Load(ctx context.Context, name string) (*domain.Macro, error)

	// Delete removes a macro. Deleting a missing macro is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all stored macros in lexical order.
	List(ctx context.Context) ([]string, error)
}
