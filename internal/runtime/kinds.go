package runtime

import (
	"fmt"

	"github.com/aretw0/macrograph/pkg/domain"
)

// compute performs the kind-specific work of n using its resolved inputs.
func (e *Engine) compute(n *node) error {
	n.err = nil
	switch n.kind {
	case domain.KindStart:
		return nil

	case domain.KindInt, domain.KindFloat:
		n.set("value", n.inputs["value"])
		return nil

	case domain.KindFloat3, domain.KindConstructFloat3:
		x, y, z := n.float("x"), n.float("y"), n.float("z")
		if n.err != nil {
			return n.err
		}
		n.set("value", domain.Float3{x, y, z})
		return nil

	case domain.KindFloat4:
		x, y, z, w := n.float("x"), n.float("y"), n.float("z"), n.float("w")
		if n.err != nil {
			return n.err
		}
		n.set("value", domain.Float4{x, y, z, w})
		return nil

	case domain.KindDestructFloat3:
		v := n.float3("value")
		if n.err != nil {
			return n.err
		}
		n.set("x", v[0])
		n.set("y", v[1])
		n.set("z", v[2])
		return nil

	case domain.KindAddInt, domain.KindSubInt:
		a, b := n.int("a"), n.int("b")
		if n.err != nil {
			return n.err
		}
		if n.kind == domain.KindSubInt {
			b = -b
		}
		n.set("value", a+b)
		return nil

	case domain.KindAddFloat3, domain.KindSubFloat3, domain.KindMultiplyFloat3, domain.KindDivideFloat3:
		a, b := n.float3("a"), n.float3("b")
		if n.err != nil {
			return n.err
		}
		n.set("value", elementwise(n.kind, a, b))
		return nil

	case domain.KindGetPosition, domain.KindGetScale:
		idx := n.int("objectIndex")
		if n.err != nil {
			return n.err
		}
		read := e.host.GetObjectPosition
		if n.kind == domain.KindGetScale {
			read = e.host.GetObjectScale
		}
		v, err := read(idx)
		if err != nil {
			return e.hostError(n, err)
		}
		n.set("value", v)
		return nil

	case domain.KindGetRotation:
		idx := n.int("objectIndex")
		if n.err != nil {
			return n.err
		}
		v, err := e.host.GetObjectRotation(idx)
		if err != nil {
			return e.hostError(n, err)
		}
		n.set("value", v)
		return nil

	case domain.KindGetBoundingBox:
		idx := n.int("objectIndex")
		if n.err != nil {
			return n.err
		}
		box, err := e.host.GetObjectBoundingBox(idx)
		if err != nil {
			return e.hostError(n, err)
		}
		n.set("max", box.Max)
		n.set("min", box.Min)
		return nil

	case domain.KindAddBox, domain.KindAddSphere:
		add := e.host.AddBox
		if n.kind == domain.KindAddSphere {
			add = e.host.AddSphere
		}
		idx, err := add()
		if err != nil {
			return e.hostError(n, err)
		}
		n.set("objectIndex", idx)
		return nil

	case domain.KindSetPosition, domain.KindSetScale:
		port := "position"
		write := e.host.SetObjectPosition
		if n.kind == domain.KindSetScale {
			port = "scale"
			write = e.host.SetObjectScale
		}
		idx, v := n.int("objectIndex"), n.float3(port)
		if n.err != nil {
			return n.err
		}
		if err := write(idx, v); err != nil {
			return e.hostError(n, err)
		}
		return nil

	case domain.KindSetRotation:
		idx, q := n.int("objectIndex"), n.float4("rotation")
		if n.err != nil {
			return n.err
		}
		if err := e.host.SetObjectRotation(idx, q); err != nil {
			return e.hostError(n, err)
		}
		return nil
	}

	return &domain.NodeConstructionError{Node: n.index, Kind: n.desc.Kind, Err: domain.ErrUnknownKind}
}

// elementwise applies the arithmetic of kind per component. Division by zero follows IEEE 754.
func elementwise(kind domain.NodeKind, a, b domain.Float3) domain.Float3 {
	var out domain.Float3
	for i := range out {
		switch kind {
		case domain.KindAddFloat3:
			out[i] = a[i] + b[i]
		case domain.KindSubFloat3:
			out[i] = a[i] - b[i]
		case domain.KindMultiplyFloat3:
			out[i] = a[i] * b[i]
		case domain.KindDivideFloat3:
			out[i] = a[i] / b[i]
		}
	}
	return out
}

func (e *Engine) hostError(n *node, err error) error {
	return fmt.Errorf("node %d (%s): host: %w", n.index, n.kind, err)
}
