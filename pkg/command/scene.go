package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/aretw0/macrograph/internal/runtime"
	"github.com/aretw0/macrograph/pkg/domain"
	"github.com/aretw0/macrograph/pkg/ports"
)

var (
	// ErrNoSelection is returned by an editing command when no object is selected.
	ErrNoSelection = errors.New("no object selected")
	// ErrUnsupportedCommand is returned for built-in commands the Host cannot perform.
	ErrUnsupportedCommand = errors.New("command not supported by the host")
	// ErrInvalidArgument is returned when a built-in command argument is missing or not a number.
	ErrInvalidArgument = errors.New("invalid command argument")
)

type axis int

const (
	axisX axis = iota
	axisY
	axisZ
)

type sceneOp int

const (
	opSelect sceneOp = iota
	opSetTranslate
	opTranslate
	opRotate
	opScale
	opDelete
)

type builtin struct {
	op   sceneOp
	axis axis
}

var builtins = map[string]builtin{
	"select":        {op: opSelect},
	"setTranslateX": {op: opSetTranslate, axis: axisX},
	"setTranslateY": {op: opSetTranslate, axis: axisY},
	"setTranslateZ": {op: opSetTranslate, axis: axisZ},
	"translateX":    {op: opTranslate, axis: axisX},
	"translateY":    {op: opTranslate, axis: axisY},
	"translateZ":    {op: opTranslate, axis: axisZ},
	"rotateX":       {op: opRotate, axis: axisX},
	"rotateY":       {op: opRotate, axis: axisY},
	"rotateZ":       {op: opRotate, axis: axisZ},
	"scaleX":        {op: opScale, axis: axisX},
	"scaleY":        {op: opScale, axis: axisY},
	"scaleZ":        {op: opScale, axis: axisZ},
	"delete":        {op: opDelete},
}

// IsSceneCommand reports whether name is a built-in editing command.
// Built-in names take precedence over macros of the same name.
func IsSceneCommand(name string) bool {
	_, ok := builtins[name]
	return ok
}

// LockFunc runs fn while holding the scene. session.Manager.WithLock bound to a
// scene key has this shape.
type LockFunc func(ctx context.Context, fn func(ctx context.Context) error) error

// SceneCommands applies the built-in editing commands to the selected object of a Host.
// "select" takes {"index": n}; the other commands take {"amount": x}. Rotations are in
// degrees about the object's local axis. It is safe for concurrent use.
type SceneCommands struct {
	host ports.Host
	lock LockFunc

	mu       sync.Mutex
	selected int
}

// SceneOption configures SceneCommands.
type SceneOption func(*SceneCommands)

// WithSceneLock serializes each command with other work on the same scene.
func WithSceneLock(lock LockFunc) SceneOption {
	return func(s *SceneCommands) {
		s.lock = lock
	}
}

// NewSceneCommands creates the built-in commands for host with nothing selected.
func NewSceneCommands(host ports.Host, opts ...SceneOption) *SceneCommands {
	s := &SceneCommands{host: host, selected: -1}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Selected returns the selected object index.
func (s *SceneCommands) Selected() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.selected >= 0
}

// Apply runs the built-in command name with args.
func (s *SceneCommands) Apply(ctx context.Context, name string, args map[string]any) error {
	b, ok := builtins[name]
	if !ok {
		return fmt.Errorf("%q is not a scene command", name)
	}
	if s.lock == nil {
		return s.apply(b, args)
	}
	return s.lock(ctx, func(context.Context) error {
		return s.apply(b, args)
	})
}

func (s *SceneCommands) apply(b builtin, args map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.op == opSelect {
		index, err := intArg(args, "index")
		if err != nil {
			return err
		}
		// An index the host does not know leaves the selection unchanged.
		if _, err := s.host.GetObjectPosition(index); err != nil {
			return err
		}
		s.selected = index
		return nil
	}

	if s.selected < 0 {
		return ErrNoSelection
	}
	if b.op == opDelete {
		return fmt.Errorf("delete: %w", ErrUnsupportedCommand)
	}

	amount, err := floatArg(args, "amount")
	if err != nil {
		return err
	}

	switch b.op {
	case opSetTranslate, opTranslate:
		pos, err := s.host.GetObjectPosition(s.selected)
		if err != nil {
			return err
		}
		if b.op == opTranslate {
			pos[b.axis] += amount
		} else {
			pos[b.axis] = amount
		}
		return s.host.SetObjectPosition(s.selected, pos)

	case opScale:
		scale, err := s.host.GetObjectScale(s.selected)
		if err != nil {
			return err
		}
		scale[b.axis] *= amount
		return s.host.SetObjectScale(s.selected, scale)

	case opRotate:
		wxyz, err := s.host.GetObjectRotation(s.selected)
		if err != nil {
			return err
		}
		q := mulQuat(wxyz, axisQuat(b.axis, amount*math.Pi/180))
		return s.host.SetObjectRotation(s.selected, domain.Float4{q[1], q[2], q[3], q[0]})
	}
	return nil
}

// axisQuat returns the rotation by angle radians about a unit axis, as [w, x, y, z].
func axisQuat(a axis, angle float64) domain.Float4 {
	q := domain.Float4{math.Cos(angle / 2)}
	q[1+a] = math.Sin(angle / 2)
	return q
}

// mulQuat returns the Hamilton product p*q of two [w, x, y, z] quaternions.
func mulQuat(p, q domain.Float4) domain.Float4 {
	return domain.Float4{
		p[0]*q[0] - p[1]*q[1] - p[2]*q[2] - p[3]*q[3],
		p[0]*q[1] + p[1]*q[0] + p[2]*q[3] - p[3]*q[2],
		p[0]*q[2] - p[1]*q[3] + p[2]*q[0] + p[3]*q[1],
		p[0]*q[3] + p[1]*q[2] - p[2]*q[1] + p[3]*q[0],
	}
}

func floatArg(args map[string]any, key string) (float64, error) {
	var (
		f  float64
		ok bool
	)
	switch v := args[key].(type) {
	case float64:
		f, ok = v, true
	case json.Number:
		f, ok = runtime.ParseFloatPrefix(string(v))
	case string:
		f, ok = runtime.ParseFloatPrefix(v)
	}
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s = %v", ErrInvalidArgument, key, args[key])
	}
	return f, nil
}

func intArg(args map[string]any, key string) (int, error) {
	var (
		i  int
		ok bool
	)
	switch v := args[key].(type) {
	case float64:
		i, ok = int(v), v == math.Trunc(v)
	case json.Number:
		i, ok = runtime.ParseIntPrefix(string(v))
	case string:
		i, ok = runtime.ParseIntPrefix(v)
	}
	if !ok {
		return 0, fmt.Errorf("%w: %s = %v", ErrInvalidArgument, key, args[key])
	}
	return i, nil
}
