package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/macrograph/pkg/domain"
)

// AllMacros is the topic receiving the events of every macro.
const AllMacros = "*"

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // Topic -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

func (sm *StreamManager) Subscribe(topic string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[topic]; !ok {
		sm.subscribers[topic] = make(map[chan<- string]struct{})
	}
	sm.subscribers[topic][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[topic]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, topic)
			}
		}
	}
}

func (sm *StreamManager) Broadcast(topic string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if subs, ok := sm.subscribers[topic]; ok {
		for ch := range subs {
			select {
			case ch <- msg:
			default:
				// Drop message if channel is full (slow client)
				sm.logger.Warn("SSE: Client buffer full, dropping message", "topic", topic)
			}
		}
	}
}

// EventView is the SSE payload of a lifecycle event.
type EventView struct {
	Type        domain.EventType `json:"type"`
	ExecutionID string           `json:"execution_id"`
	Macro       string           `json:"macro,omitempty"`
	Node        *int             `json:"node,omitempty"`
	Kind        string           `json:"kind,omitempty"`
	DurationMS  float64          `json:"duration_ms,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// Hooks returns lifecycle hooks that publish execution events to subscribers.
// Node events are published on the topic of the macro whose execution is running.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	var mu sync.Mutex
	running := make(map[string]string) // execution id -> macro

	return domain.LifecycleHooks{
		OnExecutionStart: func(_ context.Context, e *domain.ExecutionEvent) {
			mu.Lock()
			running[e.ExecutionID] = e.Macro
			mu.Unlock()
			sm.publish(e.Macro, EventView{Type: e.Type, ExecutionID: e.ExecutionID, Macro: e.Macro})
		},
		OnNodeExecute: func(_ context.Context, e *domain.NodeEvent) {
			mu.Lock()
			macro := running[e.ExecutionID]
			mu.Unlock()
			node := e.Node
			sm.publish(macro, EventView{Type: e.Type, ExecutionID: e.ExecutionID, Macro: macro, Node: &node, Kind: e.Kind})
		},
		OnExecutionEnd: func(_ context.Context, e *domain.ExecutionEvent) {
			mu.Lock()
			delete(running, e.ExecutionID)
			mu.Unlock()
			v := EventView{
				Type:        e.Type,
				ExecutionID: e.ExecutionID,
				Macro:       e.Macro,
				DurationMS:  float64(e.Duration.Microseconds()) / 1000,
			}
			if e.Err != nil {
				v.Error = e.Err.Error()
			}
			sm.publish(e.Macro, v)
		},
	}
}

func (sm *StreamManager) publish(macro string, v EventView) {
	data, err := json.Marshal(v)
	if err != nil {
		sm.logger.Error("SSE: event encode failed", "error", err)
		return
	}
	sm.Broadcast(AllMacros, string(data))
	if macro != "" {
		sm.Broadcast(macro, string(data))
	}
}

// SubscribeEvents handles the GET /events request (SSE).
// The optional macro query parameter restricts the stream to one macro.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	topic := r.URL.Query().Get("macro")
	if topic == "" {
		topic = AllMacros
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(topic)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
