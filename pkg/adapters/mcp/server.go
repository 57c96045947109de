package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/rulesmith/internal/logging"
	"github.com/aretw0/rulesmith/internal/presentation/graph"
	"github.com/aretw0/rulesmith/internal/validator"
	"github.com/aretw0/rulesmith/pkg/query"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const configURI = "rulesmith://config"

// RuleResponse is the structured result of the generate_rule tool.
type RuleResponse struct {
	Rule     string `json:"rule" jsonschema_description:"The generated rule in query syntax"`
	Accepted bool   `json:"accepted" jsonschema_description:"Whether the rule passes the final validity filter"`
	Reason   string `json:"reason,omitempty" jsonschema_description:"Why the rule was not accepted"`
	Mermaid  string `json:"mermaid" jsonschema_description:"Mermaid flowchart of the rule tree"`
}

// GenerateFunc produces one rule, applying the given configuration overrides.
type GenerateFunc func(ctx context.Context, overrides map[string]any) (query.Surface, error)

// Server exposes rule generation as an MCP server.
type Server struct {
	generate  GenerateFunc
	config    any
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithConfig publishes cfg as the rulesmith://config resource.
func WithConfig(cfg any) Option {
	return func(s *Server) {
		s.config = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(generate GenerateFunc, version string, opts ...Option) *Server {
	s := &Server{
		generate:  generate,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("rulesmith-mcp", version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	if s.config != nil {
		s.registerResources()
	}
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on the given port until ctx is canceled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	generateTool := mcp.NewTool("generate_rule",
		mcp.WithDescription("Generate one random token-level surface rule that matches the indexed corpus."),
		mcp.WithString("overrides", mcp.Description("JSON object of configuration overrides, e.g. {\"max_span_length\": 3} (optional)")),
		mcp.WithOutputSchema[RuleResponse](),
	)
	s.mcpServer.AddTool(generateTool, mcp.NewStructuredToolHandler(s.handleGenerate))
}

func (s *Server) handleGenerate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RuleResponse, error) {
	var overrides map[string]any
	if raw, ok := args["overrides"].(string); ok && raw != "" {
		clean, err := validator.SanitizeInput(raw)
		if err != nil {
			s.logger.Warn("MCP generate: input rejected", "err", err, "size", len(raw))
			return RuleResponse{}, fmt.Errorf("input rejected: %w", err)
		}
		if err := json.Unmarshal([]byte(clean), &overrides); err != nil {
			return RuleResponse{}, fmt.Errorf("overrides must be a JSON object: %w", err)
		}
	}

	rule, err := s.generate(ctx, overrides)
	if err != nil {
		s.logger.Warn("MCP generate failed", "err", err)
		return RuleResponse{}, fmt.Errorf("generate failed: %w", err)
	}

	resp := RuleResponse{
		Rule:    rule.String(),
		Mermaid: graph.GenerateMermaid(rule),
	}
	if err := validator.Accept(rule); err != nil {
		resp.Reason = err.Error()
	} else {
		resp.Accepted = true
	}
	return resp, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(configURI, "Generator Configuration",
		mcp.WithMIMEType("application/json"),
	), s.readConfig)
}

func (s *Server) readConfig(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(s.config)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      configURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
