package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/macrograph/pkg/domain"
	"github.com/aretw0/macrograph/pkg/schema"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// PrintSystemMessage prints a standardized system message to stdout.
func PrintSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnExecutionStart: func(ctx context.Context, e *domain.ExecutionEvent) {
			logger.Debug("Execution Start", "macro", e.Macro, "execution_id", e.ExecutionID)
		},
		OnExecutionEnd: func(ctx context.Context, e *domain.ExecutionEvent) {
			if e.Err != nil {
				logger.Debug("Execution End (Error)", "macro", e.Macro, "duration", e.Duration, "err", e.Err)
			} else {
				logger.Debug("Execution End (Success)", "macro", e.Macro, "duration", e.Duration)
			}
		},
		OnNodeExecute: func(ctx context.Context, e *domain.NodeEvent) {
			logger.Debug("Node Execute", "node", e.Node, "kind", e.Kind, "action", e.Action)
		},
	}
}

// ReadMacroFile loads a macro document, or a bare graph document which is
// wrapped into a macro named after the file. Both are checked against the JSON Schemas.
func ReadMacroFile(path string) (*domain.Macro, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeMacro(data, path)
}

// DecodeMacro is ReadMacroFile over an in-memory document.
func DecodeMacro(data []byte, fallbackName string) (*domain.Macro, error) {
	v, err := schema.NewValidator()
	if err != nil {
		return nil, err
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode %s: %w", fallbackName, err)
	}

	if _, isMacro := probe["graph"]; isMacro {
		if err := v.ValidateMacro(data); err != nil {
			return nil, err
		}
		return schema.ParseMacro(data)
	}

	if err := v.ValidateGraph(data); err != nil {
		return nil, err
	}
	g, err := schema.ParseGraph(data)
	if err != nil {
		return nil, err
	}
	return &domain.Macro{Name: fallbackName, Graph: g}, nil
}

// ParseArgs decodes a JSON object of macro arguments. Empty text yields no arguments.
// Numbers keep their JSON text.
func ParseArgs(text string) (map[string]any, error) {
	if text == "" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	var args map[string]any
	if err := dec.Decode(&args); err != nil {
		return nil, fmt.Errorf("error parsing --args JSON: %w", err)
	}
	return args, nil
}
