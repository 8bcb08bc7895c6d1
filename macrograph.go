package macrograph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/macrograph/internal/logging"
	"github.com/aretw0/macrograph/internal/runtime"
	"github.com/aretw0/macrograph/pkg/adapters/memory"
	"github.com/aretw0/macrograph/pkg/command"
	"github.com/aretw0/macrograph/pkg/domain"
	"github.com/aretw0/macrograph/pkg/ports"
	"github.com/aretw0/macrograph/pkg/session"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InlineMacro names executions of graphs that do not come from the catalog.
const InlineMacro = "<inline>"

// DefaultScene is the session key used when no scene name is configured.
const DefaultScene = "default"

// Engine is the high-level entry point for the macrograph library.
// It resolves macros from a catalog, runs them against a Host and turns
// free-text commands into macro invocations.
type Engine struct {
	store       ports.MacroStore
	host        ports.Host
	interpreter ports.Interpreter
	commands    *command.SceneCommands
	sessions    *session.Manager
	scene       string
	pacing      time.Duration
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	tracer      trace.Tracer
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore sets the macro catalog. The default is an empty in-memory store.
func WithStore(store ports.MacroStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithInterpreter sets the component turning user requests into command responses.
// The default matches stored activation phrases.
func WithInterpreter(interp ports.Interpreter) Option {
	return func(e *Engine) {
		e.interpreter = interp
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTracerProvider sets the provider of the span recorded around each run.
// The default is the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) {
		e.tracer = tp.Tracer("github.com/aretw0/macrograph")
	}
}

// WithSessionManager shares a scene lock manager, typically one carrying a distributed locker.
func WithSessionManager(m *session.Manager) Option {
	return func(e *Engine) {
		e.sessions = m
	}
}

// WithScene names the scene the host controls. Runs on the same scene are serialized.
func WithScene(name string) Option {
	return func(e *Engine) {
		e.scene = name
	}
}

// WithPacing sets the pause between the actions of one command response.
func WithPacing(d time.Duration) Option {
	return func(e *Engine) {
		e.pacing = d
	}
}

// New creates an Engine driving host.
func New(host ports.Host, opts ...Option) (*Engine, error) {
	if host == nil {
		return nil, fmt.Errorf("host is required")
	}
	eng := &Engine{
		host:  host,
		scene: DefaultScene,
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.store == nil {
		eng.store = memory.NewStore()
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.tracer == nil {
		eng.tracer = otel.Tracer("github.com/aretw0/macrograph")
	}
	if eng.sessions == nil {
		eng.sessions = session.NewManager(session.WithLogger(eng.logger))
	}
	if eng.interpreter == nil {
		eng.interpreter = command.NewPhraseInterpreter(eng.store)
	}
	eng.logger = eng.logger.With("scene", eng.scene)
	eng.commands = command.NewSceneCommands(host, command.WithSceneLock(
		func(ctx context.Context, fn func(context.Context) error) error {
			return eng.sessions.WithLock(ctx, eng.scene, fn)
		}))
	return eng, nil
}

// Result describes one completed or failed macro execution.
type Result struct {
	ExecutionID string        `json:"execution_id"`
	Macro       string        `json:"macro"`
	Executed    []int         `json:"executed"`
	Duration    time.Duration `json:"duration"`
}

// LastNode returns the index of the last evaluated node, or -1 if none ran.
func (r *Result) LastNode() int {
	if len(r.Executed) == 0 {
		return -1
	}
	return r.Executed[len(r.Executed)-1]
}

// Run loads the named macro from the catalog and executes it with args.
// The Result is returned even when execution fails part way.
func (e *Engine) Run(ctx context.Context, name string, args map[string]any) (*Result, error) {
	macro, err := e.store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, name, macro.Graph, args)
}

// RunGraph executes a graph that is not part of the catalog.
func (e *Engine) RunGraph(ctx context.Context, graph domain.Graph, args map[string]any) (*Result, error) {
	return e.run(ctx, InlineMacro, graph, args)
}

func (e *Engine) run(ctx context.Context, name string, graph domain.Graph, args map[string]any) (*Result, error) {
	res := &Result{ExecutionID: uuid.NewString(), Macro: name}

	ctx, span := e.tracer.Start(ctx, "macrograph.run", trace.WithAttributes(
		attribute.String("macrograph.macro", name),
		attribute.String("macrograph.execution_id", res.ExecutionID),
		attribute.String("macrograph.scene", e.scene),
	))
	defer span.End()

	err := e.sessions.WithLock(ctx, e.scene, func(ctx context.Context) error {
		return e.execute(ctx, res, graph, args)
	})

	span.SetAttributes(attribute.Int("macrograph.nodes_executed", len(res.Executed)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return res, err
	}
	span.SetStatus(codes.Ok, "")
	return res, nil
}

func (e *Engine) execute(ctx context.Context, res *Result, graph domain.Graph, args map[string]any) error {
	logger := e.logger.With("execution_id", res.ExecutionID, "macro", res.Macro)
	start := time.Now()

	if e.hooks.OnExecutionStart != nil {
		e.hooks.OnExecutionStart(ctx, &domain.ExecutionEvent{
			EventBase: domain.EventBase{Timestamp: start, Type: domain.EventExecutionStart, ExecutionID: res.ExecutionID},
			Macro:     res.Macro,
		})
	}
	logger.Info("execution start")

	recorder := domain.LifecycleHooks{
		OnNodeExecute: func(_ context.Context, ev *domain.NodeEvent) {
			res.Executed = append(res.Executed, ev.Node)
		},
	}

	eng, err := runtime.Build(graph, args, e.host,
		runtime.WithLogger(logger),
		runtime.WithExecutionID(res.ExecutionID),
		runtime.WithLifecycleHooks(recorder.Merge(e.hooks)),
	)
	if err == nil {
		err = eng.Execute(ctx)
	}
	res.Duration = time.Since(start)

	if e.hooks.OnExecutionEnd != nil {
		e.hooks.OnExecutionEnd(ctx, &domain.ExecutionEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventExecutionEnd, ExecutionID: res.ExecutionID},
			Macro:     res.Macro,
			Duration:  res.Duration,
			Err:       err,
		})
	}
	if err != nil {
		logger.Warn("execution failed", "duration", res.Duration, "error", err)
		return err
	}
	logger.Info("execution end", "duration", res.Duration, "nodes", len(res.Executed))
	return nil
}

// Dispatch runs every action of a command response. Built-in editing commands
// (select, translateX, rotateY, ...) act on the selected object; any other action
// name runs the catalog macro of that name. Failing actions are reported in their Outcome and do not stop later ones.
func (e *Engine) Dispatch(ctx context.Context, response string) ([]command.Outcome, error) {
	return e.dispatcher().Dispatch(ctx, response)
}

// Interpret turns a free-text request into a command response and dispatches it.
func (e *Engine) Interpret(ctx context.Context, text string) ([]command.Outcome, error) {
	response, err := e.interpreter.Interpret(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("interpret: %w", err)
	}
	e.logger.Debug("interpreted request", "text", text, "response", response)
	return e.Dispatch(ctx, response)
}

func (e *Engine) dispatcher() *command.Dispatcher {
	runner := command.RunnerFunc(func(ctx context.Context, name string, args map[string]any) error {
		_, err := e.Run(ctx, name, args)
		return err
	})
	return command.NewDispatcher(runner,
		command.WithPacing(e.pacing),
		command.WithSceneCommands(e.commands),
		command.WithLogger(e.logger),
	)
}

// Store returns the macro catalog used by the engine.
func (e *Engine) Store() ports.MacroStore {
	return e.store
}

// Host returns the scene host driven by the engine.
func (e *Engine) Host() ports.Host {
	return e.host
}
