package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/knots"
	"github.com/aretw0/knots/internal/logging"
	"github.com/aretw0/knots/pkg/domain"
	"github.com/aretw0/knots/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	graphURI    = "knots://story/graph"
	analysisURI = "knots://story/analysis"
)

// StepResponse aligns with the HTTP adapter so both transports return the same shape.
type StepResponse struct {
	SessionID string                             `json:"session_id" jsonschema_description:"The session the step belongs to"`
	Step      domain.StepResult[domain.Payload] `json:"step" jsonschema_description:"Text, tags, visible choices and effects of the current node"`
}

// SessionArgs identifies a session and carries the caller's condition state.
type SessionArgs struct {
	SessionID string `json:"session_id"`
	State     string `json:"state,omitempty"`
}

// ChooseArgs are the arguments of the choose tool.
type ChooseArgs struct {
	SessionID string `json:"session_id"`
	ChoiceID  string `json:"choice_id"`
	State     string `json:"state,omitempty"`
}

// DivertArgs are the arguments of the divert tool.
type DivertArgs struct {
	SessionID string `json:"session_id"`
	Target    string `json:"target"`
	State     string `json:"state,omitempty"`
}

// Server wraps a knots Engine and exposes it as an MCP Server.
type Server struct {
	engine    ports.Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
	newID     func() string
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger for transport events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("knots-mcp", knots.Version),
		logger:    logging.NewNop(),
		newID:     knots.NewSessionID,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP server over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	stateDesc := mcp.Description("JSON object handed to condition hooks and the expression evaluator (optional)")

	s.mcpServer.AddTool(mcp.NewTool("analyze_story",
		mcp.WithDescription("Report unreachable nodes, dead ends and inescapable loops of the loaded story."),
	), s.handleAnalyze)

	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a session at the story entry, or resume it if the id already exists."),
		mcp.WithString("session_id", mcp.Description("Session id; generated when omitted")),
		mcp.WithString("state", stateDesc),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("current",
		mcp.WithDescription("Render the current node of a session without moving."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		mcp.WithString("state", stateDesc),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleCurrent))

	s.mcpServer.AddTool(mcp.NewTool("choose",
		mcp.WithDescription("Take one of the visible choices of the session's current node."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		mcp.WithString("choice_id", mcp.Required(), mcp.Description("Id of the choice to take")),
		mcp.WithString("state", stateDesc),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleChoose))

	s.mcpServer.AddTool(mcp.NewTool("divert",
		mcp.WithDescription("Jump unconditionally to a node, given as 'knot/node' or 'node'."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		mcp.WithString("target", mcp.Required(), mcp.Description("Divert target")),
		mcp.WithString("state", stateDesc),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleDivert))

	s.mcpServer.AddTool(mcp.NewTool("end_session",
		mcp.WithDescription("Delete a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
	), s.handleEnd)
}

func (s *Server) handleAnalyze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(s.engine.Analyze())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analyze failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleEnd(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.engine.End(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("end failed: %v", err)), nil
	}
	return mcp.NewToolResultText("session ended"), nil
}

// Handler methods for structured tools

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (StepResponse, error) {
	state, err := parseState(args.State)
	if err != nil {
		return StepResponse{}, err
	}
	if args.SessionID == "" {
		args.SessionID = s.newID()
	}

	step, err := s.engine.Start(ctx, args.SessionID, state)
	if err != nil {
		return StepResponse{}, fmt.Errorf("start failed: %w", err)
	}
	return StepResponse{SessionID: args.SessionID, Step: step}, nil
}

func (s *Server) handleCurrent(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (StepResponse, error) {
	state, err := parseState(args.State)
	if err != nil {
		return StepResponse{}, err
	}

	step, err := s.engine.Current(ctx, args.SessionID, state)
	if err != nil {
		return StepResponse{}, fmt.Errorf("current failed: %w", err)
	}
	return StepResponse{SessionID: args.SessionID, Step: step}, nil
}

func (s *Server) handleChoose(ctx context.Context, request mcp.CallToolRequest, args ChooseArgs) (StepResponse, error) {
	state, err := parseState(args.State)
	if err != nil {
		return StepResponse{}, err
	}

	step, err := s.engine.Choose(ctx, args.SessionID, args.ChoiceID, state)
	if err != nil {
		s.logger.Debug("MCP choose rejected", "session_id", args.SessionID, "choice_id", args.ChoiceID, "err", err)
		return StepResponse{}, fmt.Errorf("choose failed: %w", err)
	}
	return StepResponse{SessionID: args.SessionID, Step: step}, nil
}

func (s *Server) handleDivert(ctx context.Context, request mcp.CallToolRequest, args DivertArgs) (StepResponse, error) {
	state, err := parseState(args.State)
	if err != nil {
		return StepResponse{}, err
	}

	target := domain.ParseTarget(args.Target)
	if target.Node == "" {
		return StepResponse{}, fmt.Errorf("target is required")
	}

	step, err := s.engine.Divert(ctx, args.SessionID, target, state)
	if err != nil {
		return StepResponse{}, fmt.Errorf("divert failed: %w", err)
	}
	return StepResponse{SessionID: args.SessionID, Step: step}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(graphURI, "Story Diagram",
		mcp.WithResourceDescription("Mermaid flowchart of the story with the analysis overlay"),
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		diagram, err := s.engine.Diagram(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("failed to render diagram: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      graphURI,
				MIMEType: "text/plain",
				Text:     diagram,
			},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(analysisURI, "Story Analysis",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.engine.Analyze())
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      analysisURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

// parseState decodes the optional JSON state argument.
func parseState(raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	var state map[string]any
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("state must be a JSON object: %w", err)
	}
	return state, nil
}
