package command

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/macrograph/internal/logging"
)

// DefaultPacing is the pause between consecutive actions of one response.
const DefaultPacing = 500 * time.Millisecond

// ErrUnnamedAction is reported for an empty action object.
var ErrUnnamedAction = errors.New("action has no macro name")

// MacroRunner executes a named macro.
type MacroRunner interface {
	Run(ctx context.Context, name string, args map[string]any) error
}

// RunnerFunc adapts a function to MacroRunner.
type RunnerFunc func(ctx context.Context, name string, args map[string]any) error

func (f RunnerFunc) Run(ctx context.Context, name string, args map[string]any) error {
	return f(ctx, name, args)
}

// Outcome is the result of one dispatched action.
type Outcome struct {
	Action Action
	Err    error
}

// Dispatcher runs the actions of a response in order.
type Dispatcher struct {
	runner MacroRunner
	scene  *SceneCommands
	pacing time.Duration
	logger *slog.Logger
}

// Option configures the Dispatcher.
type Option func(*Dispatcher)

// WithPacing sets the pause between actions. Zero disables it.
func WithPacing(d time.Duration) Option {
	return func(disp *Dispatcher) {
		disp.pacing = d
	}
}

// WithSceneCommands routes the built-in editing commands to sc before macro lookup.
func WithSceneCommands(sc *SceneCommands) Option {
	return func(disp *Dispatcher) {
		disp.scene = sc
	}
}

// WithLogger configures a logger for the Dispatcher.
func WithLogger(logger *slog.Logger) Option {
	return func(disp *Dispatcher) {
		disp.logger = logger
	}
}

// NewDispatcher creates a Dispatcher running macros through runner.
func NewDispatcher(runner MacroRunner, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		runner: runner,
		pacing: DefaultPacing,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch parses response and runs every action. A failing action is logged and
// reported in its Outcome; later actions still run. The returned error is non-nil
// only when the response cannot be parsed or ctx ends between actions.
func (d *Dispatcher) Dispatch(ctx context.Context, response string) ([]Outcome, error) {
	actions, err := Parse(response)
	if err != nil {
		return nil, err
	}
	return d.Run(ctx, actions)
}

// Run executes already parsed actions with the same semantics as Dispatch.
func (d *Dispatcher) Run(ctx context.Context, actions []Action) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(actions))
	for i, a := range actions {
		if i > 0 && d.pacing > 0 {
			select {
			case <-ctx.Done():
				return outcomes, ctx.Err()
			case <-time.After(d.pacing):
			}
		}

		if len(a.Ignored) > 0 {
			d.logger.Warn("expected a single action key", "macro", a.Macro, "ignored", a.Ignored)
		}

		var err error
		switch {
		case a.Macro == "":
			err = ErrUnnamedAction
		case d.scene != nil && IsSceneCommand(a.Macro):
			err = d.scene.Apply(ctx, a.Macro, a.Args)
			if err == nil {
				d.logger.Info("scene command applied", "command", a.Macro)
			}
		default:
			err = d.runner.Run(ctx, a.Macro, a.Args)
		}
		if err != nil {
			d.logger.Error("action failed", "macro", a.Macro, "error", err)
		}
		outcomes = append(outcomes, Outcome{Action: a, Err: err})
	}
	return outcomes, nil
}
