package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoActions is returned when a response carries no JSON object.
var ErrNoActions = errors.New("response contains no actions object")

// Action is one macro invocation requested by a response.
type Action struct {
	Macro string         `json:"macro"`
	Args  map[string]any `json:"args"`
	// Ignored lists extra keys of the action object. Only the first key names the macro.
	Ignored []string `json:"ignored,omitempty"`
}

// Parse extracts the actions of a response. Text before the first '{' is ignored,
// as is anything after the first complete JSON value.
// Numbers in arguments decode as json.Number.
func Parse(response string) ([]Action, error) {
	start := strings.Index(response, "{")
	if start < 0 {
		return nil, ErrNoActions
	}

	dec := json.NewDecoder(strings.NewReader(response[start:]))
	dec.UseNumber()
	var envelope struct {
		Actions []json.RawMessage `json:"actions"`
	}
	if err := dec.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	actions := make([]Action, 0, len(envelope.Actions))
	for i, raw := range envelope.Actions {
		a, err := parseAction(raw)
		if err != nil {
			return nil, fmt.Errorf("actions[%d]: %w", i, err)
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// parseAction reads the keys of one action object in document order.
func parseAction(raw json.RawMessage) (Action, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return Action{}, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return Action{}, fmt.Errorf("action must be an object")
	}

	var a Action
	first := true
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Action{}, err
		}
		key := tok.(string)

		var value any
		if err := dec.Decode(&value); err != nil {
			return Action{}, fmt.Errorf("action %q: %w", key, err)
		}

		if !first {
			a.Ignored = append(a.Ignored, key)
			continue
		}
		first = false
		a.Macro = key
		switch args := value.(type) {
		case map[string]any:
			a.Args = args
		case nil:
			a.Args = map[string]any{}
		default:
			return Action{}, fmt.Errorf("arguments of %q must be an object", key)
		}
	}
	return a, nil
}
