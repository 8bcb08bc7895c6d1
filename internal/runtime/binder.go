package runtime

import "github.com/aretw0/macrograph/pkg/domain"

// bindInputs returns a copy of inputs carrying the supplied argument values.
// Every declared parameter must be a key of args; extra keys are ignored.
func bindInputs(inputs []domain.MacroInput, args map[string]any) ([]domain.MacroInput, error) {
	bound := make([]domain.MacroInput, len(inputs))
	for i, in := range inputs {
		v, ok := args[in.Parameter]
		if !ok {
			return nil, &domain.MissingInputError{Parameter: in.Parameter}
		}
		in.Value = v
		bound[i] = in
	}
	return bound, nil
}
