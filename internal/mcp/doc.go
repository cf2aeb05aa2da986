// Package mcp implements the JSON-RPC 2.0 dispatcher for tool access.
//
// # Overview
//
// The dispatcher exposes the tool registry to external AI clients (like
// Claude Desktop, other LLMs, or custom applications) over plain HTTP.
// Each POST carries one JSON-RPC 2.0 envelope and receives exactly one
// JSON object back; there are no sessions and no streaming.
//
// # Protocol
//
// Requests are processed as a fixed sequence: parse the body, validate
// the envelope (jsonrpc "2.0", non-empty method), route by method name,
// respond. The request id is echoed verbatim in every response; an
// absent id marshals as null.
//
// Supported methods:
//
//   - tools/list - sorted (name, description) pairs for every tool
//   - tools/describe - full descriptor for params.name (alias: tools/spec)
//   - tools/call - reconcile arguments, invoke, return the tool's value
//
// # Tool Discovery
//
// Clients call tools/list to discover available tools:
//
//	{
//	  "jsonrpc": "2.0",
//	  "method": "tools/list",
//	  "id": 1
//	}
//
// # Tool Execution
//
// Clients call tools/call to execute a tool:
//
//	{
//	  "jsonrpc": "2.0",
//	  "method": "tools/call",
//	  "params": {
//	    "name": "fs_read",
//	    "arguments": {"path": "README.md"}
//	  },
//	  "id": 2
//	}
//
// Supplied arguments pass through tools.Reconcile before invocation, so
// near-miss argument names ("path" for a tool's sole parameter, "cmd"
// vs "command") are mapped onto the declared parameters.
//
// # Error Mapping
//
// JSON-RPC error codes carry a matching HTTP status:
//
//   - -32700 Parse error (400) - body is not a valid envelope
//   - -32600 Invalid Request (400) - wrong version or missing method
//   - -32601 (404) - unknown method or unknown tool name
//   - -32602 Invalid params (400) - argument shape rejected; the message
//     includes the tool's declared parameter names
//   - -32000 Tool error (500) - the tool ran and failed; the message
//     carries the failure text, bounded to 4 KiB
//
// # Auditing
//
// When a Store is configured, every tools/call writes one invocation
// record (tool, outcome, duration, failure detail). Auditing is
// best-effort: a failed write is logged and the response is unaffected.
//
// # Usage
//
// Create the dispatcher and mount it on a router:
//
//	server, err := mcp.NewServer(mcp.Config{
//	    Registry: registry,
//	    Store:    auditStore,
//	    Logger:   logger,
//	})
//	r.Handle("/mcp", server)
//	r.Handle("/mcp/rpc", server)
package mcp
