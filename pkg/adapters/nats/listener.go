// Package nats receives commands over NATS request/reply and dispatches them to macros.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aretw0/macrograph/internal/logging"
	"github.com/aretw0/macrograph/pkg/command"
	"github.com/nats-io/nats.go"
)

// DefaultQueue is the queue group shared by listener replicas.
const DefaultQueue = "macrograph"

// Conn is the subset of *nats.Conn used by the Listener.
type Conn interface {
	QueueSubscribe(subj, queue string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// Engine runs command responses and free-text requests.
type Engine interface {
	Dispatch(ctx context.Context, response string) ([]command.Outcome, error)
	Interpret(ctx context.Context, text string) ([]command.Outcome, error)
}

// Request is the JSON envelope of a command message. Exactly one field is expected;
// a payload that is not an envelope is dispatched as a raw command response.
type Request struct {
	Response string `json:"response,omitempty"`
	Text     string `json:"text,omitempty"`
}

// Reply is sent back on the reply subject of a request.
type Reply struct {
	Outcomes []OutcomeView `json:"outcomes"`
	Error    string        `json:"error,omitempty"`
}

// OutcomeView is the JSON form of a dispatched action.
type OutcomeView struct {
	Macro string `json:"macro"`
	Error string `json:"error,omitempty"`
}

// Listener subscribes to a subject and runs every received command.
type Listener struct {
	conn    Conn
	engine  Engine
	subject string
	queue   string
	logger  *slog.Logger
}

// Option configures the Listener.
type Option func(*Listener)

// WithQueue sets the queue group. Replicas in one group share the messages.
func WithQueue(queue string) Option {
	return func(l *Listener) {
		l.queue = queue
	}
}

// WithLogger configures a logger for the Listener.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Listener) {
		l.logger = logger
	}
}

// NewListener creates a Listener for subject.
func NewListener(conn Conn, engine Engine, subject string, opts ...Option) *Listener {
	l := &Listener{
		conn:    conn,
		engine:  engine,
		subject: subject,
		queue:   DefaultQueue,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Listen handles messages until ctx is done.
func (l *Listener) Listen(ctx context.Context) error {
	sub, err := l.conn.QueueSubscribe(l.subject, l.queue, func(msg *nats.Msg) {
		l.onMessage(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", l.subject, err)
	}
	l.logger.Info("listening for commands", "subject", l.subject, "queue", l.queue)

	<-ctx.Done()
	if err := sub.Unsubscribe(); err != nil {
		l.logger.Debug("unsubscribe failed", "subject", l.subject, "error", err)
	}
	return nil
}

func (l *Listener) onMessage(ctx context.Context, msg *nats.Msg) {
	reply := l.Handle(ctx, msg.Data)
	if msg.Reply == "" {
		return
	}
	data, err := json.Marshal(reply)
	if err != nil {
		l.logger.Error("reply encode failed", "error", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		l.logger.Warn("reply failed", "subject", msg.Reply, "error", err)
	}
}

// Handle runs one message payload and builds its reply.
func (l *Listener) Handle(ctx context.Context, payload []byte) Reply {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil || (req.Response == "" && req.Text == "") {
		req = Request{Response: string(payload)}
	}

	var (
		outcomes []command.Outcome
		err      error
	)
	if req.Text != "" {
		outcomes, err = l.engine.Interpret(ctx, req.Text)
	} else {
		outcomes, err = l.engine.Dispatch(ctx, req.Response)
	}

	reply := Reply{Outcomes: make([]OutcomeView, len(outcomes))}
	for i, o := range outcomes {
		reply.Outcomes[i] = OutcomeView{Macro: o.Action.Macro}
		if o.Err != nil {
			reply.Outcomes[i].Error = o.Err.Error()
		}
	}
	if err != nil {
		l.logger.Warn("command failed", "error", err)
		reply.Error = err.Error()
	}
	return reply
}
