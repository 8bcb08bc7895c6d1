package domain

// NodeKind enumerates the closed set of node behaviors.
type NodeKind int

const (
	KindInvalid NodeKind = iota

	// Actions
	KindStart
	KindSetPosition
	KindSetRotation
	KindSetScale

	// Getters
	KindInt
	KindFloat
	KindFloat3
	KindFloat4
	KindAddInt
	KindSubInt
	KindAddFloat3
	KindSubFloat3
	KindMultiplyFloat3
	KindDivideFloat3
	KindConstructFloat3
	KindDestructFloat3
	KindGetPosition
	KindGetRotation
	KindGetScale
	KindGetBoundingBox
	KindAddBox
	KindAddSphere
)

var kindTags = map[NodeKind]string{
	KindStart:           "Start",
	KindSetPosition:     "SetPosition",
	KindSetRotation:     "SetRotation",
	KindSetScale:        "SetScale",
	KindInt:             "Int",
	KindFloat:           "Float",
	KindFloat3:          "Float3",
	KindFloat4:          "Float4",
	KindAddInt:          "AddInt",
	KindSubInt:          "SubInt",
	KindAddFloat3:       "AddFloat3",
	KindSubFloat3:       "SubFloat3",
	KindMultiplyFloat3:  "MultiplyFloat3",
	KindDivideFloat3:    "DivideFloat3",
	KindConstructFloat3: "ConstructFloat3",
	KindDestructFloat3:  "DestructFloat3",
	KindGetPosition:     "GetPosition",
	KindGetRotation:     "GetRotation",
	KindGetScale:        "GetScale",
	KindGetBoundingBox:  "GetBoundingBox",
	KindAddBox:          "AddBox",
	KindAddSphere:       "AddSphere",
}

var tagKinds = func() map[string]NodeKind {
	m := make(map[string]NodeKind, len(kindTags))
	for k, tag := range kindTags {
		m[tag] = k
	}
	return m
}()

// String returns the wire tag of the kind.
func (k NodeKind) String() string {
	if tag, ok := kindTags[k]; ok {
		return tag
	}
	return "invalid"
}

// ParseKind maps a wire tag to its NodeKind. Tags are case-sensitive.
func ParseKind(tag string) (NodeKind, bool) {
	k, ok := tagKinds[tag]
	return k, ok
}

// IsAction reports whether the kind may be the target of an outFlow link or the entry point.
func (k NodeKind) IsAction() bool {
	switch k {
	case KindStart, KindSetPosition, KindSetRotation, KindSetScale:
		return true
	}
	return false
}

// IsGetter reports whether the kind may be the target of a NodeRef.
func (k NodeKind) IsGetter() bool {
	_, ok := kindTags[k]
	return ok && !k.IsAction()
}

// Kinds returns every valid kind in declaration order.
func Kinds() []NodeKind {
	out := make([]NodeKind, 0, len(kindTags))
	for k := KindStart; k <= KindAddSphere; k++ {
		out = append(out, k)
	}
	return out
}

// Port is a named, typed input or output slot of a kind.
type Port struct {
	ID   string    `json:"id"`
	Type ValueType `json:"type"`
}

// KindSpec is the editor palette entry of a kind: the ports an authored node carries.
type KindSpec struct {
	Kind    NodeKind `json:"-"`
	Tag     string   `json:"type"`
	Action  bool     `json:"action"`
	Inputs  []Port   `json:"inputs"`
	Outputs []Port   `json:"outputs"`
}

func port(id string, t ValueType) Port { return Port{ID: id, Type: t} }

var kindSpecs = map[NodeKind]KindSpec{
	KindStart:           {},
	KindSetPosition:     {Inputs: []Port{port("objectIndex", ValueTypeInt), port("position", ValueTypeFloat3)}},
	KindSetRotation:     {Inputs: []Port{port("objectIndex", ValueTypeInt), port("rotation", ValueTypeFloat4)}},
	KindSetScale:        {Inputs: []Port{port("objectIndex", ValueTypeInt), port("scale", ValueTypeFloat3)}},
	KindInt:             {Inputs: []Port{port("value", ValueTypeInt)}, Outputs: []Port{port("value", ValueTypeInt)}},
	KindFloat:           {Inputs: []Port{port("value", ValueTypeFloat)}, Outputs: []Port{port("value", ValueTypeFloat)}},
	KindFloat3:          {Inputs: []Port{port("x", ValueTypeFloat), port("y", ValueTypeFloat), port("z", ValueTypeFloat)}, Outputs: []Port{port("value", ValueTypeFloat3)}},
	KindFloat4:          {Inputs: []Port{port("x", ValueTypeFloat), port("y", ValueTypeFloat), port("z", ValueTypeFloat), port("w", ValueTypeFloat)}, Outputs: []Port{port("value", ValueTypeFloat4)}},
	KindAddInt:          {Inputs: []Port{port("a", ValueTypeInt), port("b", ValueTypeInt)}, Outputs: []Port{port("value", ValueTypeInt)}},
	KindSubInt:          {Inputs: []Port{port("a", ValueTypeInt), port("b", ValueTypeInt)}, Outputs: []Port{port("value", ValueTypeInt)}},
	KindAddFloat3:       {Inputs: []Port{port("a", ValueTypeFloat3), port("b", ValueTypeFloat3)}, Outputs: []Port{port("value", ValueTypeFloat3)}},
	KindSubFloat3:       {Inputs: []Port{port("a", ValueTypeFloat3), port("b", ValueTypeFloat3)}, Outputs: []Port{port("value", ValueTypeFloat3)}},
	KindMultiplyFloat3:  {Inputs: []Port{port("a", ValueTypeFloat3), port("b", ValueTypeFloat3)}, Outputs: []Port{port("value", ValueTypeFloat3)}},
	KindDivideFloat3:    {Inputs: []Port{port("a", ValueTypeFloat3), port("b", ValueTypeFloat3)}, Outputs: []Port{port("value", ValueTypeFloat3)}},
	KindConstructFloat3: {Inputs: []Port{port("x", ValueTypeFloat), port("y", ValueTypeFloat), port("z", ValueTypeFloat)}, Outputs: []Port{port("value", ValueTypeFloat3)}},
	KindDestructFloat3:  {Inputs: []Port{port("value", ValueTypeFloat3)}, Outputs: []Port{port("x", ValueTypeFloat), port("y", ValueTypeFloat), port("z", ValueTypeFloat)}},
	KindGetPosition:     {Inputs: []Port{port("objectIndex", ValueTypeInt)}, Outputs: []Port{port("value", ValueTypeFloat3)}},
	KindGetRotation:     {Inputs: []Port{port("objectIndex", ValueTypeInt)}, Outputs: []Port{port("value", ValueTypeFloat4)}},
	KindGetScale:        {Inputs: []Port{port("objectIndex", ValueTypeInt)}, Outputs: []Port{port("value", ValueTypeFloat3)}},
	KindGetBoundingBox:  {Inputs: []Port{port("objectIndex", ValueTypeInt)}, Outputs: []Port{port("max", ValueTypeFloat3), port("min", ValueTypeFloat3)}},
	KindAddBox:          {Outputs: []Port{port("objectIndex", ValueTypeInt)}},
	KindAddSphere:       {Outputs: []Port{port("objectIndex", ValueTypeInt)}},
}

// Spec returns the palette entry of the kind. The second result is false for KindInvalid.
func (k NodeKind) Spec() (KindSpec, bool) {
	s, ok := kindSpecs[k]
	if !ok {
		return KindSpec{}, false
	}
	s.Kind = k
	s.Tag = k.String()
	s.Action = k.IsAction()
	return s, true
}

// Output returns the declared output port with the given id.
func (s KindSpec) Output(id string) (Port, bool) {
	for _, p := range s.Outputs {
		if p.ID == id {
			return p, true
		}
	}
	return Port{}, false
}

// KindSpecs returns the palette of every valid kind in declaration order.
func KindSpecs() []KindSpec {
	kinds := Kinds()
	out := make([]KindSpec, 0, len(kinds))
	for _, k := range kinds {
		s, _ := k.Spec()
		out = append(out, s)
	}
	return out
}
