// Package tools provides the tool registry and argument reconciliation
// used by the JSON-RPC dispatcher.
//
// # Registry
//
// Tools are registered once at startup and looked up on every RPC call:
//
//	reg := tools.NewRegistry(logger)
//	err := reg.Register("fs_read", readFn, params, "Read a file")
//	items := reg.List()          // sorted (name, description) pairs
//	desc, err := reg.Describe("fs_read")
//	fn, err := reg.Get("fs_read")
//
// Registering an existing name silently replaces the previous entry
// (last write wins); the replacement is logged at Warn. The registry is
// read-only once traffic begins and is safe for concurrent reads.
//
// # Reconciliation
//
// Reconcile bridges small naming mismatches between what a caller sends
// and what a tool declares, so near-miss argument bags still land:
//
//	args := tools.Reconcile([]string{"dir", "glob", "limit"},
//		map[string]any{"path": "/tmp", "glob": "*.txt"})
//	// args is map[string]any{"dir": "/tmp", "glob": "*.txt"}
//
// The rule set is fixed and ordered; see Reconcile for the exact
// preconditions. Reconciliation never errors; a bag it cannot adjust
// is passed through for the tool to reject.
//
// # Error classification
//
// Tools report argument-shape failures by wrapping ErrInvalidArgs; all
// other failures are execution errors. The dispatcher uses errors.Is on
// this distinction to pick the JSON-RPC error code.
package tools
