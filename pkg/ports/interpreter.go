package ports

import "context"

// Interpreter turns a free-text user request into a command response, typically the
// completion of a language model primed with the catalog's activation phrases.
// The response is parsed by the command package.
type Interpreter interface {
	Interpret(ctx context.Context, text string) (string, error)
}
