package domain

import (
	"errors"
	"fmt"
)

// ErrMissingInput is returned by Build when a declared macro parameter has no supplied value.
var ErrMissingInput = errors.New("missing macro input")

// ErrNodeConstruction is returned when a runtime node cannot be instantiated.
var ErrNodeConstruction = errors.New("node construction failed")

// ErrUnknownKind is the cause wrapped by NodeConstructionError for unregistered kind tags.
var ErrUnknownKind = errors.New("unknown node kind")

// ErrStartNotFound is returned by Execute when the graph has no Start node.
var ErrStartNotFound = errors.New("start node not found")

// ErrNotAnAction is returned when flow traversal reaches a node outside the action kinds.
var ErrNotAnAction = errors.New("node is not an action")

// ErrNotAGetter is returned when a NodeRef targets a node outside the getter kinds.
var ErrNotAGetter = errors.New("node is not a getter")

// ErrGraphIntegrity is returned when a node or input index points outside the graph.
var ErrGraphIntegrity = errors.New("graph integrity violation")

// ErrInvalidValue is returned when a value cannot be parsed as its declared type.
var ErrInvalidValue = errors.New("invalid value")

// ErrTypeMismatch is returned when a node receives a value it cannot compute with.
var ErrTypeMismatch = errors.New("type mismatch")

// ErrMacroNotFound is returned when a macro name cannot be found in the store.
var ErrMacroNotFound = errors.New("macro not found")

// ErrInvalidMacroName is returned by stores for names that cannot identify a document.
var ErrInvalidMacroName = errors.New("invalid macro name")

// ErrObjectNotFound is returned by hosts when an object index does not exist in the scene.
var ErrObjectNotFound = errors.New("object not found")

// MissingInputError names the declared parameter absent from the argument map.
type MissingInputError struct {
	Parameter string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("input %s not found", e.Parameter)
}

func (e *MissingInputError) Is(target error) bool { return target == ErrMissingInput }

// NodeConstructionError names the node whose kind could not be materialized.
type NodeConstructionError struct {
	Node int
	Kind string
	Err  error
}

func (e *NodeConstructionError) Error() string {
	return fmt.Sprintf("node %d (%s): construction failed: %v", e.Node, e.Kind, e.Err)
}

func (e *NodeConstructionError) Unwrap() error { return e.Err }

func (e *NodeConstructionError) Is(target error) bool { return target == ErrNodeConstruction }

// NotAnActionError is raised when an outFlow link targets a non-action node.
type NotAnActionError struct {
	Node int
	Kind string
}

func (e *NotAnActionError) Error() string {
	return fmt.Sprintf("node %d (%s) is not an action", e.Node, e.Kind)
}

func (e *NotAnActionError) Is(target error) bool { return target == ErrNotAnAction }

// NotAGetterError is raised when a NodeRef targets a non-getter node.
type NotAGetterError struct {
	Node int
	Kind string
}

func (e *NotAGetterError) Error() string {
	return fmt.Sprintf("node %d (%s) is not a getter", e.Node, e.Kind)
}

func (e *NotAGetterError) Is(target error) bool { return target == ErrNotAGetter }

// GraphIntegrityError reports an index that falls outside the node or input list.
type GraphIntegrityError struct {
	Node  int    // owning node
	Field string // "outFlow", "referencedNodeId" or "inputIndex"
	Index int
	Len   int
}

func (e *GraphIntegrityError) Error() string {
	return fmt.Sprintf("node %d: %s %d out of range [0,%d)", e.Node, e.Field, e.Index, e.Len)
}

func (e *GraphIntegrityError) Is(target error) bool { return target == ErrGraphIntegrity }

// InvalidValueError reports a value with no numeric prefix for an int or float socket.
type InvalidValueError struct {
	Value any
	Type  ValueType
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("cannot parse %#v as %s", e.Value, e.Type)
}

func (e *InvalidValueError) Is(target error) bool { return target == ErrInvalidValue }

// TypeMismatchError reports a resolved input a node kind cannot compute with.
type TypeMismatchError struct {
	Node  int
	Kind  string
	Input string
	Want  string
	Got   any
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("node %d (%s): input %q: expected %s, got %T", e.Node, e.Kind, e.Input, e.Want, e.Got)
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }
