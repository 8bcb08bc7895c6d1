package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/macrograph/pkg/ports"
)

// ErrNoMatch is returned when no activation phrase matches a request.
var ErrNoMatch = errors.New("no macro matches the request")

// PhraseInterpreter answers requests that repeat a stored activation phrase.
// Matching ignores case and runs of whitespace. The response has the same shape a
// language model is prompted to produce.
type PhraseInterpreter struct {
	store ports.MacroStore
}

var _ ports.Interpreter = (*PhraseInterpreter)(nil)

// NewPhraseInterpreter creates an interpreter over the macros of store.
func NewPhraseInterpreter(store ports.MacroStore) *PhraseInterpreter {
	return &PhraseInterpreter{store: store}
}

// Interpret returns an actions response for the first macro, in name order, with a matching phrase.
func (p *PhraseInterpreter) Interpret(ctx context.Context, text string) (string, error) {
	want := normalize(text)

	names, err := p.store.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list macros: %w", err)
	}
	for _, name := range names {
		macro, err := p.store.Load(ctx, name)
		if err != nil {
			return "", fmt.Errorf("load macro %s: %w", name, err)
		}
		for i, phrase := range macro.ActivationPhrases {
			if normalize(phrase) != want {
				continue
			}
			args := "{}"
			if i < len(macro.Actions) && strings.TrimSpace(macro.Actions[i]) != "" {
				args = macro.Actions[i]
			}
			return Response(name, args), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrNoMatch, text)
}

// Response formats a single-action response for macro with the given argument JSON.
func Response(macro, args string) string {
	key, _ := json.Marshal(macro)
	return `{"actions":[{` + string(key) + `:` + args + `}]}`
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
