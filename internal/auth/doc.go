// Package auth guards the tool-invocation endpoints with bearer credentials.
//
// # Verifiers
//
// Two credential schemes are supported behind the TokenVerifier interface:
//
//   - Static token: the bearer value is compared in constant time against
//     the single configured secret. This is the default mode and matches
//     what most MCP clients send.
//
//   - JWT: the bearer value is an HS256-signed token. Verify returns the
//     token's subject claim so rejections and grants can be attributed to
//     a caller in logs.
//
// # The Gate
//
// Middleware wraps an http.Handler and enforces verification on every
// request whose path starts with the configured prefix (the protocol
// surface). All other paths pass through. When no token is configured the
// verifier is nil and the gate admits everything (open mode).
//
//	mux := auth.Middleware("/mcp", verifier, logger)(router)
//
// Rejections are deliberately uniform: the same 401 status and the same
// JSON body regardless of whether the header was missing, malformed, or
// simply wrong. The distinguishing reason is written only to the log.
package auth
