package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/macrograph"
	"github.com/aretw0/macrograph/internal/logging"
	"github.com/aretw0/macrograph/internal/presentation/graph"
	"github.com/aretw0/macrograph/internal/validator"
	"github.com/aretw0/macrograph/pkg/command"
	"github.com/aretw0/macrograph/pkg/domain"
	"github.com/aretw0/macrograph/pkg/ports"
	"github.com/aretw0/macrograph/pkg/schema"
	"github.com/go-chi/chi/v5"
)

// Engine defines the macro execution surface served over HTTP.
type Engine interface {
	Run(ctx context.Context, name string, args map[string]any) (*macrograph.Result, error)
	Dispatch(ctx context.Context, response string) ([]command.Outcome, error)
	Interpret(ctx context.Context, text string) ([]command.Outcome, error)
	Store() ports.MacroStore
}

// Server holds the handlers of the REST API.
type Server struct {
	Engine  Engine
	Streams *StreamManager

	schemas *schema.Validator
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures the handler built by NewHandler.
type Option func(*options)

type options struct {
	streams     *StreamManager
	logger      *slog.Logger
	metricsPath string
	metrics     http.Handler
}

// WithStreams shares the StreamManager whose hooks are registered on the engine.
func WithStreams(sm *StreamManager) Option {
	return func(o *options) {
		o.streams = sm
	}
}

// WithLogger sets the logger for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics mounts a metrics handler at path.
func WithMetrics(path string, h http.Handler) Option {
	return func(o *options) {
		o.metricsPath = path
		o.metrics = h
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) (http.Handler, error) {
	o := options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.streams == nil {
		o.streams = NewStreamManager(o.logger)
	}

	schemas, err := schema.NewValidator()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Engine:  engine,
		Streams: o.streams,
		schemas: schemas,
		logger:  o.logger,
		now:     time.Now,
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/kinds", s.GetKinds)
	r.Get("/events", s.SubscribeEvents)
	r.Route("/macros", func(r chi.Router) {
		r.Get("/", s.ListMacros)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.GetMacro)
			r.Put("/", s.PutMacro)
			r.Delete("/", s.DeleteMacro)
			r.Get("/graph", s.GetMacroGraph)
			r.Post("/run", s.RunMacro)
		})
	})
	r.Post("/commands", s.PostCommand)
	r.Post("/interpret", s.PostInterpret)
	if o.metrics != nil {
		r.Handle(o.metricsPath, o.metrics)
	}

	return enableCORS(r), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "macrograph-http",
		"version": strings.TrimSpace(macrograph.Version),
	})
}

// GetKinds handles the GET /kinds request: the palette of node kinds and their ports.
func (s *Server) GetKinds(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, domain.KindSpecs())
}

// ListMacros handles the GET /macros request.
func (s *Server) ListMacros(w http.ResponseWriter, r *http.Request) {
	names, err := s.Engine.Store().List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, http.StatusOK, names)
}

// GetMacro handles the GET /macros/{name} request.
func (s *Server) GetMacro(w http.ResponseWriter, r *http.Request) {
	macro, err := s.Engine.Store().Load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	doc, err := schema.NewMacroDocument(macro)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

// PutResponse reports a stored macro and the linter warnings it was accepted with.
type PutResponse struct {
	Name     string             `json:"name"`
	Warnings []validator.Issue `json:"warnings"`
}

// PutMacro handles the PUT /macros/{name} request.
// The document is checked against the JSON Schema, then linted; lint errors reject it.
func (s *Server) PutMacro(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request body"})
		return
	}

	if err := s.schemas.ValidateMacro(body); err != nil {
		resp := errorBody{Error: "macro document does not match the schema"}
		for _, v := range schema.ValidationErrors(err) {
			resp.Details = append(resp.Details, v.Error())
		}
		if resp.Details == nil {
			resp.Details = []string{err.Error()}
		}
		s.writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	macro, err := schema.ParseMacro(body)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	if macro.Name != name {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("document name %q does not match path %q", macro.Name, name)})
		return
	}

	report := validator.ValidateGraph(macro.Graph)
	if report.HasErrors() {
		s.writeJSON(w, http.StatusUnprocessableEntity, report)
		return
	}

	if macro.CreatedAt.IsZero() {
		macro.CreatedAt = s.now().UTC()
	}
	if err := s.Engine.Store().Save(r.Context(), macro); err != nil {
		s.writeError(w, err)
		return
	}

	warnings := report.Warnings()
	if warnings == nil {
		warnings = []validator.Issue{}
	}
	s.writeJSON(w, http.StatusOK, PutResponse{Name: name, Warnings: warnings})
}

// DeleteMacro handles the DELETE /macros/{name} request.
func (s *Server) DeleteMacro(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Store().Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetMacroGraph handles the GET /macros/{name}/graph request with a Mermaid flowchart.
func (s *Server) GetMacroGraph(w http.ResponseWriter, r *http.Request) {
	macro, err := s.Engine.Store().Load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, graph.GenerateMermaid(macro.Graph, nil))
}

// RunRequest is the body of POST /macros/{name}/run.
type RunRequest struct {
	Args map[string]any `json:"args"`
}

// RunResponse carries the execution record, and the error of a failed run.
type RunResponse struct {
	Result *macrograph.Result `json:"result,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// RunMacro handles the POST /macros/{name}/run request.
func (s *Server) RunMacro(w http.ResponseWriter, r *http.Request) {
	var body RunRequest
	if err := decodeOptional(r.Body, &body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request body"})
		return
	}

	res, err := s.Engine.Run(r.Context(), chi.URLParam(r, "name"), body.Args)
	if err != nil {
		s.logger.Warn("run failed", "macro", chi.URLParam(r, "name"), "error", err)
		s.writeJSON(w, statusFor(err), RunResponse{Result: res, Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, RunResponse{Result: res})
}

// CommandRequest is the body of POST /commands.
type CommandRequest struct {
	Response string `json:"response"`
}

// InterpretRequest is the body of POST /interpret.
type InterpretRequest struct {
	Text string `json:"text"`
}

// OutcomeView is the JSON form of a dispatched action.
type OutcomeView struct {
	Macro   string         `json:"macro"`
	Args    map[string]any `json:"args"`
	Ignored []string       `json:"ignored,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func outcomeViews(outcomes []command.Outcome) []OutcomeView {
	views := make([]OutcomeView, len(outcomes))
	for i, o := range outcomes {
		views[i] = OutcomeView{Macro: o.Action.Macro, Args: o.Action.Args, Ignored: o.Action.Ignored}
		if o.Err != nil {
			views[i].Error = o.Err.Error()
		}
	}
	return views
}

// PostCommand handles the POST /commands request: dispatch of a command response.
func (s *Server) PostCommand(w http.ResponseWriter, r *http.Request) {
	var body CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request body"})
		return
	}
	outcomes, err := s.Engine.Dispatch(r.Context(), body.Response)
	if err != nil {
		s.writeJSON(w, statusFor(err), errorBody{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, outcomeViews(outcomes))
}

// PostInterpret handles the POST /interpret request: a free-text request.
func (s *Server) PostInterpret(w http.ResponseWriter, r *http.Request) {
	var body InterpretRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request body"})
		return
	}
	outcomes, err := s.Engine.Interpret(r.Context(), body.Text)
	if err != nil {
		s.writeJSON(w, statusFor(err), errorBody{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, outcomeViews(outcomes))
}

// -- Helpers --

type errorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// decodeOptional decodes a JSON body, treating an empty body as the zero value.
// Numbers decode as json.Number so integer arguments keep their text.
func decodeOptional(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMacroNotFound), errors.Is(err, command.ErrNoMatch):
		return http.StatusNotFound
	case errors.Is(err, command.ErrNoActions), errors.Is(err, domain.ErrInvalidMacroName):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrMissingInput),
		errors.Is(err, domain.ErrInvalidValue),
		errors.Is(err, domain.ErrTypeMismatch),
		errors.Is(err, domain.ErrGraphIntegrity),
		errors.Is(err, domain.ErrNodeConstruction),
		errors.Is(err, domain.ErrStartNotFound),
		errors.Is(err, domain.ErrNotAnAction),
		errors.Is(err, domain.ErrNotAGetter),
		errors.Is(err, domain.ErrObjectNotFound):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, errorBody{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
