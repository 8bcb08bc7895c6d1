package domain

// ValueSocket describes where one input value of a node comes from.
type ValueSocket struct {
	// ID is the logical parameter name on the consuming node (e.g. "objectIndex").
	ID string
	// Type is the type the consuming node expects.
	Type ValueType
	// Binding is one of Literal, InputRef or NodeRef.
	// A nil Binding resolves to an undefined (nil) value.
	Binding Binding
}

// Binding is the sealed sum type of the three socket binding modes.
type Binding interface {
	binding()
}

// Literal is an inline, string-encoded constant edited by the user.
type Literal struct {
	Value string
}

// InputRef points at a declared macro input by position.
type InputRef struct {
	Index int
}

// NodeRef points at a named output of another node in the same graph.
type NodeRef struct {
	Node   int
	Output string
}

func (Literal) binding()  {}
func (InputRef) binding() {}
func (NodeRef) binding()  {}

// LiteralSocket is a convenience constructor for literal sockets.
func LiteralSocket(id string, t ValueType, value string) ValueSocket {
	return ValueSocket{ID: id, Type: t, Binding: Literal{Value: value}}
}

// InputSocket is a convenience constructor for InputRef sockets.
func InputSocket(id string, t ValueType, index int) ValueSocket {
	return ValueSocket{ID: id, Type: t, Binding: InputRef{Index: index}}
}

// RefSocket is a convenience constructor for NodeRef sockets.
func RefSocket(id string, t ValueType, node int, output string) ValueSocket {
	return ValueSocket{ID: id, Type: t, Binding: NodeRef{Node: node, Output: output}}
}
