// Package builtins provides the built-in tool modules served over MCP.
//
// # Overview
//
// Built-in tools give a coding assistant a minimal working surface on the
// host: read and write files, list directories, run a narrow set of shell
// commands, and drive a project's test suite.
//
// # Tool Modules
//
// The package provides 4 modules with 6 tools:
//
// fs module:
//
//   - fs_read: Read a file as UTF-8 text, truncated at max_bytes
//   - fs_list: List files under a directory matched by a glob pattern
//
// fs_write module:
//
//   - fs_write: Write text to a file, creating parent directories
//
// shell module:
//
//   - shell_run: Run an allow-listed command and capture combined output
//
// test module:
//
//   - test_detect: Suggest the test command for a project directory
//   - test_run: Run a test command through the shell
//
// # Registration
//
// Modules(policy) enumerates the modules; RegisterAll registers each one
// into a tools.Registry. A module that fails to register (error or panic)
// is logged and skipped so one broken module cannot take down the rest:
//
//	reg := tools.NewRegistry(logger)
//	builtins.RegisterAll(reg, builtins.Modules(policy), logger)
//
// # Result Envelopes
//
// Every tool returns a JSON object with an "ok" field. Expected domain
// failures (missing file, disallowed command, non-zero exit) come back as
// {"ok": false, ...} results rather than invocation errors; invocation
// errors are reserved for malformed arguments and infrastructure faults.
//
// # Shell Policy
//
// shell_run consults a Policy for its command allow-list. The policy has
// safe defaults, can be loaded from a TOML file, and optionally hot
// reloads when that file changes.
package builtins
