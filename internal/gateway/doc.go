// Package gateway orchestrates the aiassist-mcp server components.
//
// # Overview
//
// The gateway package is the central coordinator of the server. It owns
// and wires all major components: the invocation audit store, the tool
// registry populated with the builtin modules, the shell policy, the
// JSON-RPC dispatcher, and the HTTP server that fronts them.
//
// # Request Path
//
// Every request flows through a fixed middleware pipeline before it can
// reach a route:
//
//  1. chi RequestID / RealIP / Recoverer
//  2. access gate - /mcp* paths require a bearer token when one is
//     configured; rejected requests stop here with a generic 401
//  3. CORS - allow-list from configuration, default permissive
//  4. routing
//
// # HTTP Surface
//
//   - POST /mcp - JSON-RPC dispatcher
//   - POST /mcp/rpc - same dispatcher, alternate path
//   - GET /health - liveness probe with service identity
//   - GET / - informational listing of available paths
//
// # Lifecycle
//
// Start the gateway:
//
//	gw, err := gateway.New(cfg, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	err = gw.Run(ctx)
//
// Run blocks until the context is canceled or the server fails, then
// performs a graceful shutdown with a five second deadline. When a shell
// policy file is configured, Run also starts the policy hot-reload
// watcher for the lifetime of the context.
//
// # Key Files
//
//   - gateway.go: Gateway struct, initialization, Run/Shutdown
//   - cors.go: CORS middleware
package gateway
