package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aretw0/macrograph"
	"github.com/aretw0/macrograph/internal/logging"
	"github.com/aretw0/macrograph/internal/presentation/graph"
	"github.com/aretw0/macrograph/internal/presentation/tui"
	"github.com/aretw0/macrograph/pkg/command"
	"github.com/aretw0/macrograph/pkg/domain"
	"github.com/aretw0/macrograph/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// KindsURI is the resource listing the node kinds and their ports.
const KindsURI = "macrograph://kinds"

// Engine defines the interface required by the MCP server to interact with macrograph.
type Engine interface {
	Run(ctx context.Context, name string, args map[string]any) (*macrograph.Result, error)
	Dispatch(ctx context.Context, response string) ([]command.Outcome, error)
	Interpret(ctx context.Context, text string) ([]command.Outcome, error)
	Store() ports.MacroStore
}

// Server wraps the macrograph Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		engine: engine,
		logger: logger,
		mcpServer: server.NewMCPServer("macrograph-mcp", strings.TrimSpace(macrograph.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
			server.WithRecovery(),
			server.WithInstructions("macrograph runs named scene-editing macros. Use list_macros and describe_macro to discover them, run_macro to invoke one with arguments, and dispatch_command to run an actions response."),
		),
	}
	s.mcpServer.AddTools(s.tools()...)
	s.registerResources()
	return s
}

// MCPServer returns the underlying MCPServer for testing or custom transports.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout and blocks until ctx is canceled or stdin closes.
func (s *Server) ServeStdio(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// ServeSSE starts the server on addr using SSE.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		// Create a timeout context for the graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: mcp.NewTool("list_macros",
			mcp.WithDescription("List the names of the stored macros."),
		), Handler: s.handleListMacros},
		{Tool: mcp.NewTool("describe_macro",
			mcp.WithDescription("Describe a macro: inputs, activation phrases with example arguments, nodes and a Mermaid diagram."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Macro name")),
		), Handler: s.handleDescribeMacro},
		{Tool: mcp.NewTool("run_macro",
			mcp.WithDescription("Run a macro against the scene."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Macro name")),
			mcp.WithObject("args", mcp.Description("Arguments keyed by macro input parameter")),
		), Handler: s.handleRunMacro},
		{Tool: mcp.NewTool("dispatch_command",
			mcp.WithDescription(`Run every action of a response shaped like {"actions":[{"<macro>":{<args>}}]}.`),
			mcp.WithString("response", mcp.Required(), mcp.Description("Command response text")),
		), Handler: s.handleDispatch},
		{Tool: mcp.NewTool("interpret_request",
			mcp.WithDescription("Turn a free-text request into macro invocations and run them."),
			mcp.WithString("text", mcp.Required(), mcp.Description("User request")),
		), Handler: s.handleInterpret},
	}
}

func (s *Server) handleListMacros(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.engine.Store().List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	if names == nil {
		names = []string{}
	}
	return marshalResult(names)
}

func (s *Server) handleDescribeMacro(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name is required"), nil
	}
	macro, err := s.engine.Store().Load(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	text := tui.DescribeMacro(macro) + "\n```mermaid\n" + graph.GenerateMermaid(macro.Graph, nil) + "```\n"
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleRunMacro(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name is required"), nil
	}
	args := mcp.ParseStringMap(req, "args", nil)

	res, err := s.engine.Run(ctx, name, args)
	if err != nil {
		s.logger.Warn("MCP run_macro failed", "macro", name, "error", err)
		if errors.Is(err, domain.ErrMacroNotFound) || res == nil {
			return mcp.NewToolResultError(fmt.Sprintf("run failed: %v", err)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("run failed after nodes %v: %v", res.Executed, err)), nil
	}
	return marshalResult(res)
}

func (s *Server) handleDispatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	response, err := req.RequireString("response")
	if err != nil {
		return mcp.NewToolResultError("response is required"), nil
	}
	outcomes, err := s.engine.Dispatch(ctx, response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("dispatch failed: %v", err)), nil
	}
	return marshalResult(outcomeViews(outcomes))
}

func (s *Server) handleInterpret(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text is required"), nil
	}
	outcomes, err := s.engine.Interpret(ctx, text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("interpret failed: %v", err)), nil
	}
	return marshalResult(outcomeViews(outcomes))
}

// OutcomeView is the JSON form of a dispatched action.
type OutcomeView struct {
	Macro string         `json:"macro"`
	Args  map[string]any `json:"args"`
	Error string         `json:"error,omitempty"`
}

func outcomeViews(outcomes []command.Outcome) []OutcomeView {
	views := make([]OutcomeView, len(outcomes))
	for i, o := range outcomes {
		views[i] = OutcomeView{Macro: o.Action.Macro, Args: o.Action.Args}
		if o.Err != nil {
			views[i].Error = o.Err.Error()
		}
	}
	return views
}

func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(KindsURI, "Node Kinds",
		mcp.WithResourceDescription("Palette of node kinds with their input and output ports"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(domain.KindSpecs())
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      KindsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
