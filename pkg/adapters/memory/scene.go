package memory

import (
	"fmt"
	"sync"

	"github.com/aretw0/macrograph/pkg/domain"
)

// Shape names the primitive an object was created from.
type Shape string

const (
	ShapeBox    Shape = "box"
	ShapeSphere Shape = "sphere"
)

// Object is one entry of the scene object table.
type Object struct {
	Shape    Shape
	Position domain.Float3
	// Rotation is stored as written by the host boundary: [x, y, z, w].
	Rotation domain.Float4
	Scale    domain.Float3
}

// NewObject returns an object at the origin with identity rotation and unit scale.
func NewObject(shape Shape) Object {
	return Object{
		Shape:    shape,
		Rotation: domain.Float4{0, 0, 0, 1},
		Scale:    domain.Float3{1, 1, 1},
	}
}

// Call records one host invocation.
type Call struct {
	Method string
	Object int
	Args   []float64
}

func (c Call) String() string {
	if len(c.Args) == 0 {
		return fmt.Sprintf("%s(%d)", c.Method, c.Object)
	}
	return fmt.Sprintf("%s(%d, %v)", c.Method, c.Object, c.Args)
}

// Scene implements ports.Host over an in-memory object table.
// Every primitive is a unit shape centered on its position; bounding boxes ignore rotation.
// Safe for concurrent use.
type Scene struct {
	mu      sync.Mutex
	objects []Object
	calls   []Call
}

// NewScene creates a scene holding objects, addressed by their position in the list.
func NewScene(objects ...Object) *Scene {
	return &Scene{objects: append([]Object(nil), objects...)}
}

// Objects returns a snapshot of the object table.
func (s *Scene) Objects() []Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Object(nil), s.objects...)
}

// Object returns a snapshot of object i.
func (s *Scene) Object(i int) (Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.objects) {
		return Object{}, false
	}
	return s.objects[i], true
}

// Calls returns the host invocations recorded so far, oldest first.
func (s *Scene) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// ResetCalls clears the call log.
func (s *Scene) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// object must be called with s.mu held.
func (s *Scene) object(i int) (*Object, error) {
	if i < 0 || i >= len(s.objects) {
		return nil, fmt.Errorf("object %d: %w", i, domain.ErrObjectNotFound)
	}
	return &s.objects[i], nil
}

func (s *Scene) record(method string, i int, args ...float64) {
	s.calls = append(s.calls, Call{Method: method, Object: i, Args: args})
}

func (s *Scene) SetObjectPosition(i int, v domain.Float3) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("SetObjectPosition", i, v[:]...)
	obj, err := s.object(i)
	if err != nil {
		return err
	}
	obj.Position = v
	return nil
}

func (s *Scene) SetObjectRotation(i int, q domain.Float4) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("SetObjectRotation", i, q[:]...)
	obj, err := s.object(i)
	if err != nil {
		return err
	}
	obj.Rotation = q
	return nil
}

func (s *Scene) SetObjectScale(i int, v domain.Float3) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("SetObjectScale", i, v[:]...)
	obj, err := s.object(i)
	if err != nil {
		return err
	}
	obj.Scale = v
	return nil
}

func (s *Scene) GetObjectPosition(i int) (domain.Float3, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("GetObjectPosition", i)
	obj, err := s.object(i)
	if err != nil {
		return domain.Float3{}, err
	}
	return obj.Position, nil
}

// GetObjectRotation returns the quaternion in [w, x, y, z] order.
func (s *Scene) GetObjectRotation(i int) (domain.Float4, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("GetObjectRotation", i)
	obj, err := s.object(i)
	if err != nil {
		return domain.Float4{}, err
	}
	q := obj.Rotation
	return domain.Float4{q[3], q[0], q[1], q[2]}, nil
}

func (s *Scene) GetObjectScale(i int) (domain.Float3, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("GetObjectScale", i)
	obj, err := s.object(i)
	if err != nil {
		return domain.Float3{}, err
	}
	return obj.Scale, nil
}

func (s *Scene) GetObjectBoundingBox(i int) (domain.BoundingBox, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("GetObjectBoundingBox", i)
	obj, err := s.object(i)
	if err != nil {
		return domain.BoundingBox{}, err
	}
	var box domain.BoundingBox
	for k := range box.Max {
		half := obj.Scale[k] / 2
		if half < 0 {
			half = -half
		}
		box.Max[k] = obj.Position[k] + half
		box.Min[k] = obj.Position[k] - half
	}
	return box, nil
}

func (s *Scene) AddBox() (int, error) {
	return s.add(ShapeBox, "AddBox")
}

func (s *Scene) AddSphere() (int, error) {
	return s.add(ShapeSphere, "AddSphere")
}

func (s *Scene) add(shape Shape, method string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = append(s.objects, NewObject(shape))
	idx := len(s.objects) - 1
	s.record(method, idx)
	return idx, nil
}
