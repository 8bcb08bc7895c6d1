package runtime

import (
	"context"

	"github.com/aretw0/macrograph/pkg/domain"
)

func (e *Engine) resolveInputs(ctx context.Context, n *node) (map[string]any, error) {
	values := make(map[string]any, len(n.desc.Inputs))
	for _, s := range n.desc.Inputs {
		v, err := e.resolveSocket(ctx, s)
		if err != nil {
			return nil, err
		}
		values[s.ID] = v
	}
	return values, nil
}

// resolveSocket produces the value of one socket, pulling referenced getters on demand.
func (e *Engine) resolveSocket(ctx context.Context, s domain.ValueSocket) (any, error) {
	switch b := s.Binding.(type) {
	case domain.Literal:
		return parseValue(b.Value, s.Type)
	case domain.InputRef:
		return parseValue(e.graph.Inputs[b.Index].Value, s.Type)
	case domain.NodeRef:
		target := e.nodes[b.Node]
		if !target.kind.IsGetter() {
			return nil, &domain.NotAGetterError{Node: b.Node, Kind: target.kind.String()}
		}
		v, ok := target.output(b.Output)
		if !ok {
			if err := e.execute(ctx, target); err != nil {
				return nil, err
			}
			v, _ = target.output(b.Output)
		}
		return parseValue(v, s.Type)
	}
	return nil, nil
}
