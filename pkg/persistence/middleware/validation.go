package middleware

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/macrograph/internal/logging"
	"github.com/aretw0/macrograph/internal/validator"
	"github.com/aretw0/macrograph/pkg/domain"
	"github.com/aretw0/macrograph/pkg/ports"
)

type validationMiddleware struct {
	next   ports.MacroStore
	strict bool
	logger *slog.Logger
}

// NewValidationMiddleware creates a middleware that lints graphs before they are saved.
// Graphs with errors are rejected; in strict mode warnings are rejected too,
// otherwise they are logged.
func NewValidationMiddleware(strict bool, logger *slog.Logger) Middleware {
	if logger == nil {
		logger = logging.NewNop()
	}
	return func(next ports.MacroStore) ports.MacroStore {
		return &validationMiddleware{next: next, strict: strict, logger: logger}
	}
}

func (m *validationMiddleware) Save(ctx context.Context, macro *domain.Macro) error {
	report := validator.ValidateGraph(macro.Graph)
	if err := report.Err(); err != nil {
		return fmt.Errorf("macro %s rejected: %w", macro.Name, err)
	}
	if warnings := report.Warnings(); len(warnings) > 0 {
		if m.strict {
			return fmt.Errorf("macro %s rejected: %d warnings, first: %s", macro.Name, len(warnings), warnings[0])
		}
		for _, w := range warnings {
			m.logger.Warn("saving macro with lint warning", "macro", macro.Name, "issue", w.String())
		}
	}
	return m.next.Save(ctx, macro)
}

func (m *validationMiddleware) Load(ctx context.Context, name string) (*domain.Macro, error) {
	return m.next.Load(ctx, name)
}

func (m *validationMiddleware) Delete(ctx context.Context, name string) error {
	return m.next.Delete(ctx, name)
}

func (m *validationMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
