// Package mcpserver serves MCP tool calls over HTTP using JSON-RPC
// 2.0. The server is transport-only: authentication happens in the
// middleware layer in front of it, and tool semantics live in the
// registered handlers.
package mcpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/jonwraymond/weathermcp/observe"
)

// protocolVersion is the MCP protocol revision this server speaks.
const protocolVersion = "2024-11-05"

// DefaultPath is the endpoint the MCP transport is mounted on.
const DefaultPath = "/mcp"

// ErrDuplicateTool indicates a tool name was registered twice.
var ErrDuplicateTool = errors.New("mcpserver: duplicate tool name")

// Config holds server identity settings.
type Config struct {
	// ServiceName is reported in the initialize response.
	ServiceName string
	// Version is reported in the initialize response.
	Version string
	// Path is the HTTP path the handler is mounted on. Defaults to
	// DefaultPath.
	Path string
}

// Server dispatches JSON-RPC requests to registered tools.
type Server struct {
	cfg     Config
	logger  observe.Logger
	metrics *observe.ToolMetrics

	mu    sync.RWMutex
	tools map[string]Tool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l observe.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l.With(observe.String("component", "mcpserver"))
		}
	}
}

// WithMetrics records per-tool call metrics.
func WithMetrics(m *observe.ToolMetrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New creates an MCP server with no tools registered.
func New(cfg Config, opts ...Option) *Server {
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	s := &Server{
		cfg:    cfg,
		logger: observe.NopLogger(),
		tools:  make(map[string]Tool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the HTTP path the handler expects to be mounted on.
func (s *Server) Path() string { return s.cfg.Path }

// Register adds a tool. Names must be unique.
func (s *Server) Register(t Tool) error {
	if t.Name == "" {
		return errors.New("mcpserver: tool name is required")
	}
	if t.Handler == nil {
		return fmt.Errorf("mcpserver: tool %q has no handler", t.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tools[t.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateTool, t.Name)
	}
	s.tools[t.Name] = t
	return nil
}

// Handler returns the HTTP handler for the MCP endpoint.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.serveHTTP)
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeResponse(w, r, newError(nil, codeParseError, "parse error"))
		return
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		s.writeResponse(w, r, newError(req.ID, codeInvalidRequest, "invalid request"))
		return
	}

	s.logger.Debug(r.Context(), "rpc request", observe.String("method", req.Method))

	var resp rpcResponse
	switch req.Method {
	case "initialize":
		resp = s.handleInitialize(req)
	case "ping":
		resp = newResponse(req.ID, struct{}{})
	case "tools/list":
		resp = s.handleToolsList(req)
	case "tools/call":
		resp = s.handleToolsCall(r, req)
	default:
		resp = newError(req.ID, codeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method))
	}
	s.writeResponse(w, r, resp)
}

func (s *Server) handleInitialize(req rpcRequest) rpcResponse {
	return newResponse(req.ID, map[string]any{
		"protocolVersion": protocolVersion,
		"serverInfo": map[string]any{
			"name":    s.cfg.ServiceName,
			"version": s.cfg.Version,
		},
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
	})
}

func (s *Server) handleToolsList(req rpcRequest) rpcResponse {
	s.mu.RLock()
	descriptors := make([]toolDescriptor, 0, len(s.tools))
	for _, t := range s.tools {
		descriptors = append(descriptors, toolDescriptor{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}
	s.mu.RUnlock()

	sort.Slice(descriptors, func(i, j int) bool { return descriptors[i].Name < descriptors[j].Name })
	return newResponse(req.ID, map[string]any{"tools": descriptors})
}

func (s *Server) handleToolsCall(r *http.Request, req rpcRequest) rpcResponse {
	var params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		return newError(req.ID, codeInvalidParams, "invalid params: tool name is required")
	}

	s.mu.RLock()
	tool, ok := s.tools[params.Name]
	s.mu.RUnlock()
	if !ok {
		return newError(req.ID, codeInvalidParams, fmt.Sprintf("unknown tool: %s", params.Name))
	}

	ctx := r.Context()
	start := time.Now()
	result, err := tool.Handler(ctx, params.Arguments)
	s.metrics.RecordCall(ctx, tool.Name, time.Since(start), err)

	if err != nil {
		s.logger.Warn(ctx, "tool call failed",
			observe.String("tool", tool.Name), observe.Err(err))
		return newResponse(req.ID, textResult(err.Error(), true))
	}

	text, err := renderResult(result)
	if err != nil {
		s.logger.Error(ctx, "tool result not serializable",
			observe.String("tool", tool.Name), observe.Err(err))
		return newError(req.ID, codeInternalError, "internal error")
	}
	return newResponse(req.ID, textResult(text, false))
}

// renderResult turns a handler's return value into text content.
// Strings pass through unchanged; everything else is JSON-encoded.
func renderResult(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *Server) writeResponse(w http.ResponseWriter, r *http.Request, resp rpcResponse) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error(r.Context(), "writing rpc response", observe.Err(err))
	}
}
