// ABOUTME: Tests for the JSON-RPC dispatcher covering routing and error mapping.
// ABOUTME: Validates argument reconciliation, id echoing, and audit recording.

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/saib0ndi/Coding-AI-Assistant/internal/store"
	"github.com/saib0ndi/Coding-AI-Assistant/internal/tools"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingStore captures audit writes for assertions.
type recordingStore struct {
	mu      sync.Mutex
	records []store.InvocationRecord
	err     error
}

func (m *recordingStore) RecordInvocation(_ context.Context, rec *store.InvocationRecord) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *rec)
	return nil
}

func (m *recordingStore) GetInvocation(_ context.Context, id string) (*store.InvocationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == id {
			rec := m.records[i]
			return &rec, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *recordingStore) ListInvocations(_ context.Context, _ store.InvocationFilter) ([]store.InvocationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]store.InvocationRecord(nil), m.records...), nil
}

func (m *recordingStore) Close() error { return nil }

// setupTestRegistry creates a registry with a spread of test tools.
func setupTestRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	reg := tools.NewRegistry(testLogger())

	echo := func(_ context.Context, args map[string]any) (any, error) {
		text, ok := args["text"].(string)
		if !ok {
			return nil, fmt.Errorf("%w: missing required parameter: text", tools.ErrInvalidArgs)
		}
		return map[string]any{"echoed": text}, nil
	}
	mustRegister(t, reg, "echo", echo,
		[]tools.Param{{Name: "text", Type: "string", Required: true}},
		"Echo the supplied text")

	read := func(_ context.Context, args map[string]any) (any, error) {
		name, ok := args["file"].(string)
		if !ok {
			return nil, fmt.Errorf("%w: missing required parameter: file", tools.ErrInvalidArgs)
		}
		return map[string]any{"file": name}, nil
	}
	mustRegister(t, reg, "read", read,
		[]tools.Param{{Name: "file", Type: "string", Required: true}},
		"Report the file argument back")

	run := func(_ context.Context, args map[string]any) (any, error) {
		command, ok := args["command"].(string)
		if !ok {
			return nil, fmt.Errorf("%w: missing required parameter: command", tools.ErrInvalidArgs)
		}
		return map[string]any{"command": command}, nil
	}
	mustRegister(t, reg, "run", run,
		[]tools.Param{{Name: "command", Type: "string", Required: true}},
		"Report the command argument back")

	ping := func(_ context.Context, _ map[string]any) (any, error) {
		return map[string]any{"pong": true}, nil
	}
	mustRegister(t, reg, "ping", ping, nil, "Always succeeds")

	flaky := func(_ context.Context, _ map[string]any) (any, error) {
		return nil, errors.New("backend exploded")
	}
	mustRegister(t, reg, "flaky", flaky, nil, "Always fails")

	boom := func(_ context.Context, _ map[string]any) (any, error) {
		panic("tool bug")
	}
	mustRegister(t, reg, "boom", boom, nil, "Always panics")

	return reg
}

func mustRegister(t *testing.T, reg *tools.Registry, name string, fn tools.Invocable, params []tools.Param, description string) {
	t.Helper()
	if err := reg.Register(name, fn, params, description); err != nil {
		t.Fatalf("Register(%s) error = %v", name, err)
	}
}

func newTestServer(t *testing.T, st store.Store) *Server {
	t.Helper()
	srv, err := NewServer(Config{
		Registry: setupTestRegistry(t),
		Store:    st,
		Logger:   testLogger(),
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return srv
}

func postRPC(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	return rr
}

func decodeRPC(t *testing.T, rr *httptest.ResponseRecorder) JSONRPCResponse {
	t.Helper()
	var resp JSONRPCResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestNewServer_RequiresRegistry(t *testing.T) {
	_, err := NewServer(Config{Logger: testLogger()})
	if err == nil {
		t.Fatal("NewServer() without registry should fail")
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		req := httptest.NewRequest(method, "/mcp", nil)
		rr := httptest.NewRecorder()
		srv.ServeHTTP(rr, req)

		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rr.Code)
		}
		if allow := rr.Header().Get("Allow"); allow != http.MethodPost {
			t.Errorf("%s: Allow header = %q, want %q", method, allow, http.MethodPost)
		}
	}
}

func TestServer_ParseError(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"truncated json", `{"jsonrpc": "2.0"`},
		{"not json", "hello there"},
		{"array body", `[1, 2, 3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postRPC(t, srv, tt.body)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
			}
			if !strings.Contains(rr.Body.String(), `"id":null`) {
				t.Errorf("expected null id, got body %s", rr.Body.String())
			}

			var parsed JSONRPCResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &parsed); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if parsed.Error == nil {
				t.Fatal("expected error response")
			}
			if parsed.Error.Code != JSONRPCParseError {
				t.Errorf("error code = %d, want %d", parsed.Error.Code, JSONRPCParseError)
			}
			if parsed.Error.Message != "Parse error" {
				t.Errorf("error message = %q, want %q", parsed.Error.Message, "Parse error")
			}
		})
	}
}

func TestServer_InvalidRequest(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"wrong version", `{"jsonrpc": "1.0", "method": "tools/list", "id": 7}`},
		{"missing version", `{"method": "tools/list", "id": 7}`},
		{"missing method", `{"jsonrpc": "2.0", "id": 7}`},
		{"empty method", `{"jsonrpc": "2.0", "method": "", "id": 7}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postRPC(t, srv, tt.body)
			resp := decodeRPC(t, rr)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
			}
			if resp.Error == nil {
				t.Fatal("expected error response")
			}
			if resp.Error.Code != JSONRPCInvalidRequest {
				t.Errorf("error code = %d, want %d", resp.Error.Code, JSONRPCInvalidRequest)
			}
			if resp.Error.Message != "Invalid Request" {
				t.Errorf("error message = %q, want %q", resp.Error.Message, "Invalid Request")
			}
			if string(resp.ID) != "7" {
				t.Errorf("id = %s, want 7", resp.ID)
			}
		})
	}
}

func TestServer_BodyTooLarge(t *testing.T) {
	srv := newTestServer(t, nil)

	body := `{"jsonrpc": "2.0", "method": "tools/list", "pad": "` +
		strings.Repeat("x", MaxRequestBodySize) + `"}`
	rr := postRPC(t, srv, body)
	resp := decodeRPC(t, rr)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if resp.Error == nil || resp.Error.Code != JSONRPCInvalidRequest {
		t.Errorf("expected error code %d, got %+v", JSONRPCInvalidRequest, resp.Error)
	}
}

func TestServer_UnknownMethod(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := postRPC(t, srv, `{"jsonrpc": "2.0", "method": "resources/list", "id": 1}`)
	resp := decodeRPC(t, rr)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
	if resp.Error == nil {
		t.Fatal("expected error response")
	}
	if resp.Error.Code != JSONRPCMethodNotFound {
		t.Errorf("error code = %d, want %d", resp.Error.Code, JSONRPCMethodNotFound)
	}
	if resp.Error.Message != "Method not found: resources/list" {
		t.Errorf("error message = %q", resp.Error.Message)
	}
}

func TestServer_IDEchoedVerbatim(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name string
		id   string
	}{
		{"number", `42`},
		{"string", `"req-abc-123"`},
		{"null", `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postRPC(t, srv, `{"jsonrpc": "2.0", "method": "tools/list", "id": `+tt.id+`}`)
			resp := decodeRPC(t, rr)

			if string(resp.ID) != tt.id {
				t.Errorf("id = %s, want %s", resp.ID, tt.id)
			}
		})
	}

	t.Run("absent id marshals as null", func(t *testing.T) {
		rr := postRPC(t, srv, `{"jsonrpc": "2.0", "method": "tools/list"}`)
		if !strings.Contains(rr.Body.String(), `"id":null`) {
			t.Errorf("expected null id, got body %s", rr.Body.String())
		}
	})
}

func TestServer_SingleJSONObjectPerRequest(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := postRPC(t, srv, `{"jsonrpc": "2.0", "method": "tools/list", "id": 1}`)

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	dec := json.NewDecoder(rr.Body)
	var resp JSONRPCResponse
	if err := dec.Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if dec.More() {
		t.Error("response body contains more than one JSON object")
	}
}

func TestServer_ToolsList(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := postRPC(t, srv, `{"jsonrpc": "2.0", "method": "tools/list", "id": 1}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp struct {
		Result ListToolsResult `json:"result"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	want := []string{"boom", "echo", "flaky", "ping", "read", "run"}
	if len(resp.Result.Tools) != len(want) {
		t.Fatalf("expected %d tools, got %d", len(want), len(resp.Result.Tools))
	}
	for i, item := range resp.Result.Tools {
		if item.Name != want[i] {
			t.Errorf("tools[%d].name = %q, want %q", i, item.Name, want[i])
		}
	}
	if resp.Result.Tools[1].Description != "Echo the supplied text" {
		t.Errorf("echo description = %q", resp.Result.Tools[1].Description)
	}
}

func TestServer_ToolsList_EmptyRegistry(t *testing.T) {
	srv, err := NewServer(Config{
		Registry: tools.NewRegistry(testLogger()),
		Logger:   testLogger(),
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	rr := postRPC(t, srv, `{"jsonrpc": "2.0", "method": "tools/list", "id": 1}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"tools":[]`) {
		t.Errorf("expected empty tools array, got body %s", rr.Body.String())
	}
}

func TestServer_ToolsDescribe(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, method := range []string{"tools/describe", "tools/spec"} {
		t.Run(method, func(t *testing.T) {
			rr := postRPC(t, srv, `{"jsonrpc": "2.0", "method": "`+method+`", "params": {"name": "echo"}, "id": 1}`)

			if rr.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
			}

			var resp struct {
				Result tools.Descriptor `json:"result"`
			}
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if resp.Result.Name != "echo" {
				t.Errorf("name = %q, want echo", resp.Result.Name)
			}
			if resp.Result.Description != "Echo the supplied text" {
				t.Errorf("description = %q", resp.Result.Description)
			}
			if len(resp.Result.Params) != 1 || resp.Result.Params[0].Name != "text" {
				t.Errorf("parameters = %+v, want single text param", resp.Result.Params)
			}
		})
	}
}

func TestServer_ToolsDescribe_NotFound(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{
			"unknown tool",
			`{"jsonrpc": "2.0", "method": "tools/describe", "params": {"name": "nope"}, "id": 1}`,
			"Tool not found: nope",
		},
		{
			"missing name",
			`{"jsonrpc": "2.0", "method": "tools/describe", "params": {}, "id": 1}`,
			"Tool not found: ",
		},
		{
			"missing params",
			`{"jsonrpc": "2.0", "method": "tools/describe", "id": 1}`,
			"Tool not found: ",
		},
		{
			"alias behaves identically",
			`{"jsonrpc": "2.0", "method": "tools/spec", "params": {"name": "nope"}, "id": 1}`,
			"Tool not found: nope",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postRPC(t, srv, tt.body)
			resp := decodeRPC(t, rr)

			if rr.Code != http.StatusNotFound {
				t.Errorf("expected status %d, got %d", http.StatusNotFound, rr.Code)
			}
			if resp.Error == nil {
				t.Fatal("expected error response")
			}
			if resp.Error.Code != JSONRPCMethodNotFound {
				t.Errorf("error code = %d, want %d", resp.Error.Code, JSONRPCMethodNotFound)
			}
			if resp.Error.Message != tt.wantMsg {
				t.Errorf("error message = %q, want %q", resp.Error.Message, tt.wantMsg)
			}
		})
	}
}

func TestServer_ToolsCall(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := postRPC(t, srv, `{"jsonrpc": "2.0", "method": "tools/call", "params": {"name": "echo", "arguments": {"text": "hi"}}, "id": 3}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp struct {
		ID     json.RawMessage `json:"id"`
		Result map[string]any  `json:"result"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if string(resp.ID) != "3" {
		t.Errorf("id = %s, want 3", resp.ID)
	}
	if resp.Result["echoed"] != "hi" {
		t.Errorf("result = %+v, want echoed hi", resp.Result)
	}
}

func TestServer_ToolsCall_DefaultArguments(t *testing.T) {
	srv := newTestServer(t, nil)

	// ping declares no parameters, so an absent arguments object works
	for _, body := range []string{
		`{"jsonrpc": "2.0", "method": "tools/call", "params": {"name": "ping"}, "id": 1}`,
		`{"jsonrpc": "2.0", "method": "tools/call", "params": {"name": "ping", "arguments": null}, "id": 1}`,
	} {
		rr := postRPC(t, srv, body)
		if rr.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d for body %s", http.StatusOK, rr.Code, body)
		}
		if !strings.Contains(rr.Body.String(), `"pong":true`) {
			t.Errorf("expected pong result, got body %s", rr.Body.String())
		}
	}
}

func TestServer_ToolsCall_ReconcilesArguments(t *testing.T) {
	srv := newTestServer(t, nil)

	t.Run("path renamed to sole declared parameter", func(t *testing.T) {
		rr := postRPC(t, srv, `{"jsonrpc": "2.0", "method": "tools/call", "params": {"name": "read", "arguments": {"path": "notes.txt"}}, "id": 1}`)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
		}
		if !strings.Contains(rr.Body.String(), `"file":"notes.txt"`) {
			t.Errorf("expected file argument, got body %s", rr.Body.String())
		}
	})

	t.Run("cmd renamed to command", func(t *testing.T) {
		rr := postRPC(t, srv, `{"jsonrpc": "2.0", "method": "tools/call", "params": {"name": "run", "arguments": {"cmd": "ls"}}, "id": 1}`)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
		}
		if !strings.Contains(rr.Body.String(), `"command":"ls"`) {
			t.Errorf("expected command argument, got body %s", rr.Body.String())
		}
	})
}

func TestServer_ToolsCall_NotFound(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{
			"unknown tool",
			`{"jsonrpc": "2.0", "method": "tools/call", "params": {"name": "nope", "arguments": {}}, "id": 1}`,
			"Tool not found: nope",
		},
		{
			"missing name",
			`{"jsonrpc": "2.0", "method": "tools/call", "params": {"arguments": {}}, "id": 1}`,
			"Tool not found: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postRPC(t, srv, tt.body)
			resp := decodeRPC(t, rr)

			if rr.Code != http.StatusNotFound {
				t.Errorf("expected status %d, got %d", http.StatusNotFound, rr.Code)
			}
			if resp.Error == nil || resp.Error.Code != JSONRPCMethodNotFound {
				t.Fatalf("expected error code %d, got %+v", JSONRPCMethodNotFound, resp.Error)
			}
			if resp.Error.Message != tt.wantMsg {
				t.Errorf("error message = %q, want %q", resp.Error.Message, tt.wantMsg)
			}
		})
	}
}

func TestServer_ToolsCall_InvalidArgs(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := postRPC(t, srv, `{"jsonrpc": "2.0", "method": "tools/call", "params": {"name": "echo", "arguments": {}}, "id": 1}`)
	resp := decodeRPC(t, rr)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if resp.Error == nil {
		t.Fatal("expected error response")
	}
	if resp.Error.Code != JSONRPCInvalidParams {
		t.Errorf("error code = %d, want %d", resp.Error.Code, JSONRPCInvalidParams)
	}
	if !strings.Contains(resp.Error.Message, "Invalid params") {
		t.Errorf("error message = %q, want Invalid params prefix", resp.Error.Message)
	}
	// message must carry the declared parameter names so the caller can
	// self-correct
	if !strings.Contains(resp.Error.Message, "text") {
		t.Errorf("error message = %q, want parameter name text", resp.Error.Message)
	}
}

func TestServer_ToolsCall_NonObjectArguments(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := postRPC(t, srv, `{"jsonrpc": "2.0", "method": "tools/call", "params": {"name": "echo", "arguments": [1, 2]}, "id": 1}`)
	resp := decodeRPC(t, rr)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if resp.Error == nil || resp.Error.Code != JSONRPCInvalidParams {
		t.Fatalf("expected error code %d, got %+v", JSONRPCInvalidParams, resp.Error)
	}
	if !strings.Contains(resp.Error.Message, "text") {
		t.Errorf("error message = %q, want parameter name text", resp.Error.Message)
	}
}

func TestServer_ToolsCall_ToolError(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := postRPC(t, srv, `{"jsonrpc": "2.0", "method": "tools/call", "params": {"name": "flaky"}, "id": 1}`)
	resp := decodeRPC(t, rr)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
	if resp.Error == nil {
		t.Fatal("expected error response")
	}
	if resp.Error.Code != JSONRPCToolError {
		t.Errorf("error code = %d, want %d", resp.Error.Code, JSONRPCToolError)
	}
	if resp.Error.Message != "Tool error: backend exploded" {
		t.Errorf("error message = %q", resp.Error.Message)
	}
}

func TestServer_ToolsCall_PanicConvertedToToolError(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := postRPC(t, srv, `{"jsonrpc": "2.0", "method": "tools/call", "params": {"name": "boom"}, "id": 1}`)
	resp := decodeRPC(t, rr)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
	if resp.Error == nil || resp.Error.Code != JSONRPCToolError {
		t.Fatalf("expected error code %d, got %+v", JSONRPCToolError, resp.Error)
	}
	if !strings.Contains(resp.Error.Message, "tool panicked: tool bug") {
		t.Errorf("error message = %q", resp.Error.Message)
	}
}

func TestServer_ToolsCall_ErrorMessageTruncated(t *testing.T) {
	reg := tools.NewRegistry(testLogger())
	long := strings.Repeat("x", maxErrorMessageLen+500)
	mustRegister(t, reg, "verbose",
		func(_ context.Context, _ map[string]any) (any, error) {
			return nil, errors.New(long)
		}, nil, "Fails with a huge message")

	srv, err := NewServer(Config{Registry: reg, Logger: testLogger()})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	rr := postRPC(t, srv, `{"jsonrpc": "2.0", "method": "tools/call", "params": {"name": "verbose"}, "id": 1}`)
	resp := decodeRPC(t, rr)

	if resp.Error == nil {
		t.Fatal("expected error response")
	}
	want := len("Tool error: ") + maxErrorMessageLen
	if len(resp.Error.Message) != want {
		t.Errorf("message length = %d, want %d", len(resp.Error.Message), want)
	}
}

func TestServer_AuditRecords(t *testing.T) {
	t.Run("success recorded as ok", func(t *testing.T) {
		st := &recordingStore{}
		srv := newTestServer(t, st)

		postRPC(t, srv, `{"jsonrpc": "2.0", "method": "tools/call", "params": {"name": "echo", "arguments": {"text": "hi"}}, "id": 1}`)

		if len(st.records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(st.records))
		}
		rec := st.records[0]
		if rec.Tool != "echo" {
			t.Errorf("tool = %q, want echo", rec.Tool)
		}
		if rec.Outcome != store.OutcomeOK {
			t.Errorf("outcome = %q, want %q", rec.Outcome, store.OutcomeOK)
		}
		if rec.ID == "" {
			t.Error("record ID should be set")
		}
		if rec.Timestamp.IsZero() {
			t.Error("record timestamp should be set")
		}
		if rec.Error != "" {
			t.Errorf("error detail = %q, want empty", rec.Error)
		}
	})

	t.Run("argument failure recorded as invalid_args", func(t *testing.T) {
		st := &recordingStore{}
		srv := newTestServer(t, st)

		postRPC(t, srv, `{"jsonrpc": "2.0", "method": "tools/call", "params": {"name": "echo", "arguments": {}}, "id": 1}`)

		if len(st.records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(st.records))
		}
		if st.records[0].Outcome != store.OutcomeInvalidArgs {
			t.Errorf("outcome = %q, want %q", st.records[0].Outcome, store.OutcomeInvalidArgs)
		}
		if st.records[0].Error == "" {
			t.Error("error detail should be set")
		}
	})

	t.Run("tool failure recorded as error", func(t *testing.T) {
		st := &recordingStore{}
		srv := newTestServer(t, st)

		postRPC(t, srv, `{"jsonrpc": "2.0", "method": "tools/call", "params": {"name": "flaky"}, "id": 1}`)

		if len(st.records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(st.records))
		}
		if st.records[0].Outcome != store.OutcomeError {
			t.Errorf("outcome = %q, want %q", st.records[0].Outcome, store.OutcomeError)
		}
		if st.records[0].Error != "backend exploded" {
			t.Errorf("error detail = %q", st.records[0].Error)
		}
	})

	t.Run("unknown tool not recorded", func(t *testing.T) {
		st := &recordingStore{}
		srv := newTestServer(t, st)

		postRPC(t, srv, `{"jsonrpc": "2.0", "method": "tools/call", "params": {"name": "nope"}, "id": 1}`)

		if len(st.records) != 0 {
			t.Errorf("expected 0 records, got %d", len(st.records))
		}
	})

	t.Run("store failure does not affect the response", func(t *testing.T) {
		st := &recordingStore{err: errors.New("disk full")}
		srv := newTestServer(t, st)

		rr := postRPC(t, srv, `{"jsonrpc": "2.0", "method": "tools/call", "params": {"name": "echo", "arguments": {"text": "hi"}}, "id": 1}`)

		if rr.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rr.Code)
		}
	})

	t.Run("nil store disables auditing", func(t *testing.T) {
		srv := newTestServer(t, nil)

		rr := postRPC(t, srv, `{"jsonrpc": "2.0", "method": "tools/call", "params": {"name": "echo", "arguments": {"text": "hi"}}, "id": 1}`)

		if rr.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rr.Code)
		}
	})
}
