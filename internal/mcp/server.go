// ABOUTME: JSON-RPC 2.0 dispatcher exposing registered tools over HTTP POST.
// ABOUTME: Stateless per request: parse, validate, route by method, respond.

package mcp

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

	"github.com/google/uuid"

	"github.com/saib0ndi/Coding-AI-Assistant/internal/store"
	"github.com/saib0ndi/Coding-AI-Assistant/internal/tools"
)

// MaxRequestBodySize is the maximum allowed size for request bodies (1MB).
const MaxRequestBodySize = 1 << 20

// maxErrorMessageLen bounds the failure text embedded in a tool error
// response so a misbehaving tool cannot bloat the envelope.
const maxErrorMessageLen = 4096

// JSON-RPC 2.0 types

// JSONRPCRequest represents a JSON-RPC 2.0 request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC 2.0 response.
type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// JSONRPCError represents a JSON-RPC 2.0 error object.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Standard JSON-RPC error codes, plus the server-defined code for tool
// execution failures (-32000 is the start of the reserved server range).
const (
	JSONRPCParseError     = -32700
	JSONRPCInvalidRequest = -32600
	JSONRPCMethodNotFound = -32601
	JSONRPCInvalidParams  = -32602
	JSONRPCToolError      = -32000
)

// httpStatusFor maps a JSON-RPC error code to the HTTP status carried by
// the response: protocol and argument errors are client errors, unknown
// methods and tools are not-found, tool failures are server errors.
func httpStatusFor(code int) int {
	switch code {
	case JSONRPCParseError, JSONRPCInvalidRequest, JSONRPCInvalidParams:
		return http.StatusBadRequest
	case JSONRPCMethodNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ListToolsResult is the result envelope for tools/list.
type ListToolsResult struct {
	Tools []tools.ListItem `json:"tools"`
}

// CallParams are the params accepted by tools/call, tools/describe, and
// tools/spec. Arguments is only meaningful for tools/call.
type CallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Config holds configuration for the dispatcher.
type Config struct {
	Registry *tools.Registry
	Store    store.Store // optional; nil disables invocation auditing
	Logger   *slog.Logger
}

// Server dispatches JSON-RPC requests to registered tools. Each request is
// handled independently; no state persists across requests beyond the
// read-only registry and the audit store.
type Server struct {
	registry *tools.Registry
	store    store.Store
	logger   *slog.Logger
}

// NewServer creates a new dispatcher with the given configuration.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Registry == nil {
		return nil, errors.New("registry is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		registry: cfg.Registry,
		store:    cfg.Store,
		logger:   logger,
	}, nil
}

// ServeHTTP handles one JSON-RPC request. Only POST is accepted; the
// transport is plain HTTP request/response with exactly one JSON object
// per call.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	s.handlePost(w, r)
}

// handlePost processes a JSON-RPC message sent via HTTP POST.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		s.sendJSONRPCError(w, nil, JSONRPCParseError, "Parse error", nil)
		return
	}
	if int64(len(body)) > MaxRequestBodySize {
		s.sendJSONRPCError(w, nil, JSONRPCInvalidRequest, "Invalid Request: request body too large", nil)
		return
	}

	var req JSONRPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.sendJSONRPCError(w, nil, JSONRPCParseError, "Parse error", nil)
		return
	}

	if req.JSONRPC != "2.0" || req.Method == "" {
		s.sendJSONRPCError(w, req.ID, JSONRPCInvalidRequest, "Invalid Request", nil)
		return
	}

	s.logger.Debug("rpc request", "method", req.Method)

	switch req.Method {
	case "tools/list":
		s.handleToolsList(w, req)
	case "tools/describe", "tools/spec":
		s.handleToolsDescribe(w, req)
	case "tools/call":
		s.handleToolsCall(w, r, req)
	default:
		s.sendJSONRPCError(w, req.ID, JSONRPCMethodNotFound, "Method not found: "+req.Method, nil)
	}
}

// handleToolsList handles tools/list requests.
func (s *Server) handleToolsList(w http.ResponseWriter, req JSONRPCRequest) {
	items := s.registry.List()

	s.logger.Debug("tools/list", "count", len(items))

	s.sendJSONRPCResult(w, req.ID, ListToolsResult{Tools: items})
}

// handleToolsDescribe handles tools/describe and its tools/spec alias.
// The result is the tool's full descriptor including declared parameters.
func (s *Server) handleToolsDescribe(w http.ResponseWriter, req JSONRPCRequest) {
	params, err := decodeParams(req)
	if err != nil {
		s.sendJSONRPCError(w, req.ID, JSONRPCInvalidParams, "Invalid params", nil)
		return
	}

	desc, err := s.registry.Describe(params.Name)
	if err != nil {
		s.sendJSONRPCError(w, req.ID, JSONRPCMethodNotFound, "Tool not found: "+params.Name, nil)
		return
	}

	s.sendJSONRPCResult(w, req.ID, desc)
}

// handleToolsCall handles tools/call requests: resolve the tool, reconcile
// the supplied arguments against its declared parameters, invoke, audit,
// and wrap the return value as the result.
func (s *Server) handleToolsCall(w http.ResponseWriter, r *http.Request, req JSONRPCRequest) {
	params, err := decodeParams(req)
	if err != nil {
		s.sendJSONRPCError(w, req.ID, JSONRPCInvalidParams, "Invalid params", nil)
		return
	}

	desc, err := s.registry.Describe(params.Name)
	if err != nil {
		s.sendJSONRPCError(w, req.ID, JSONRPCMethodNotFound, "Tool not found: "+params.Name, nil)
		return
	}
	fn, err := s.registry.Get(params.Name)
	if err != nil {
		s.sendJSONRPCError(w, req.ID, JSONRPCMethodNotFound, "Tool not found: "+params.Name, nil)
		return
	}

	var supplied any
	if len(params.Arguments) > 0 && string(params.Arguments) != "null" {
		if err := json.Unmarshal(params.Arguments, &supplied); err != nil {
			s.sendJSONRPCError(w, req.ID, JSONRPCInvalidParams, "Invalid params", nil)
			return
		}
	} else {
		supplied = map[string]any{}
	}

	requestID := uuid.New().String()
	start := time.Now()

	s.logger.Debug("tools/call",
		"tool", params.Name,
		"request_id", requestID,
	)

	args, ok := tools.Reconcile(desc.ParamNames(), supplied).(map[string]any)
	if !ok {
		err := fmt.Errorf("%w: arguments must be an object", tools.ErrInvalidArgs)
		s.recordInvocation(r.Context(), requestID, desc.Name, store.OutcomeInvalidArgs, start, err)
		s.sendJSONRPCError(w, req.ID, JSONRPCInvalidParams, invalidParamsMessage(desc, err), nil)
		return
	}

	result, callErr := invokeTool(r.Context(), fn, args)
	switch {
	case callErr == nil:
		s.recordInvocation(r.Context(), requestID, desc.Name, store.OutcomeOK, start, nil)
		s.sendJSONRPCResult(w, req.ID, result)
	case errors.Is(callErr, tools.ErrInvalidArgs):
		s.recordInvocation(r.Context(), requestID, desc.Name, store.OutcomeInvalidArgs, start, callErr)
		s.sendJSONRPCError(w, req.ID, JSONRPCInvalidParams, invalidParamsMessage(desc, callErr), nil)
	default:
		s.logger.Warn("tool execution failed",
			"tool", desc.Name,
			"request_id", requestID,
			"error", callErr,
		)
		s.recordInvocation(r.Context(), requestID, desc.Name, store.OutcomeError, start, callErr)
		s.sendJSONRPCError(w, req.ID, JSONRPCToolError, toolErrorMessage(callErr), nil)
	}
}

// decodeParams decodes the request params into CallParams. Absent params
// decode to the zero value.
func decodeParams(req JSONRPCRequest) (CallParams, error) {
	var params CallParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return CallParams{}, err
		}
	}
	return params, nil
}

// invokeTool runs fn, converting a panic into an ordinary tool failure so
// a misbehaving tool cannot take down the request handler.
func invokeTool(ctx context.Context, fn tools.Invocable, args map[string]any) (result any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("tool panicked: %v", rec)
		}
	}()
	return fn(ctx, args)
}

// invalidParamsMessage embeds the declared parameter names so a caller can
// correct the argument bag without a separate tools/describe round trip.
func invalidParamsMessage(desc tools.Descriptor, err error) string {
	return fmt.Sprintf("Invalid params: %v (%s accepts: %s)",
		err, desc.Name, strings.Join(desc.ParamNames(), ", "))
}

// toolErrorMessage carries the failure text, bounded so the envelope stays
// a reasonable size.
func toolErrorMessage(err error) string {
	text := err.Error()
	if len(text) > maxErrorMessageLen {
		text = text[:maxErrorMessageLen]
	}
	return "Tool error: " + text
}

// recordInvocation writes one audit row for a completed tools/call. A nil
// store disables auditing; persistence failures are logged, never surfaced
// to the caller.
func (s *Server) recordInvocation(ctx context.Context, id, tool string, outcome store.Outcome, start time.Time, callErr error) {
	if s.store == nil {
		return
	}

	rec := &store.InvocationRecord{
		ID:         id,
		Tool:       tool,
		Outcome:    outcome,
		DurationMS: time.Since(start).Milliseconds(),
		Timestamp:  start.UTC(),
	}
	if callErr != nil {
		rec.Error = callErr.Error()
	}

	if err := s.store.RecordInvocation(ctx, rec); err != nil {
		s.logger.Warn("failed to record invocation", "tool", tool, "error", err)
	}
}

// sendJSONRPCResult sends a successful JSON-RPC response.
func (s *Server) sendJSONRPCResult(w http.ResponseWriter, id json.RawMessage, result any) {
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("failed to encode JSON-RPC response", "error", err)
	}
}

// sendJSONRPCError sends a JSON-RPC error response. The HTTP status is
// derived from the error code; the id is echoed verbatim (null when the
// request never yielded one).
func (s *Server) sendJSONRPCError(w http.ResponseWriter, id json.RawMessage, code int, message string, data any) {
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &JSONRPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusFor(code))
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("failed to encode JSON-RPC error response", "error", err)
	}
}
