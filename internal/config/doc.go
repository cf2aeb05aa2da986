// Package config handles configuration loading for aiassist-mcp.
//
// # Overview
//
// Configuration comes from a YAML file, from environment variables, or
// from a mix of both. A config file is never required: Load("") falls
// back to FromEnv, which builds the full configuration from environment
// variables alone. Both paths apply the same defaults and validation.
//
// # Configuration File
//
// Load(path) reads the file at the given path. There is no search list;
// the caller (normally the --config flag) decides where the file lives.
//
//	server:
//	  addr: ":9999"
//	  cors_origins:
//	    - "https://app.example.com"
//	auth:
//	  mode: "static"                  # static or jwt
//	  token: "${AIASSIST_MCP_TOKEN}"  # empty disables the gate
//	database:
//	  path: "/var/lib/aiassist/audit.db"
//	shell:
//	  policy_file: "/etc/aiassist/shell-policy.toml"
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  token: "${AIASSIST_MCP_TOKEN}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to empty strings, so an
// unset token reference yields open mode rather than a load error.
//
// # Environment-Only Mode
//
// FromEnv reads:
//
//	PORT                   listener port (default 9999)
//	AIASSIST_MCP_TOKEN     expected bearer token (empty = open mode)
//	AIASSIST_MCP_CORS      comma-separated CORS origins (default *)
//	AIASSIST_DB_PATH       audit database path (empty = disabled)
//	AIASSIST_SHELL_POLICY  shell policy file path
//	AIASSIST_LOG_LEVEL     debug, info, warn, error
//	AIASSIST_LOG_FORMAT    json, text
//
// # Defaults
//
// Values omitted by both the file and the environment are filled in:
//
//   - server.addr: ":" + PORT, or ":9999" when PORT is unset
//   - server.cors_origins: ["*"]
//   - auth.mode: "static"
//
// The audit database and shell policy have no defaults; leaving them
// empty disables audit recording and uses the built-in command
// allow-list respectively.
//
// # Validation
//
// Load and FromEnv validate:
//
//   - auth.mode is "static" or "jwt"
//   - auth.token is set when auth.mode is "jwt"
//   - server.cors_origins contains no empty entries
//
// # Usage
//
// Load from a specific path:
//
//	cfg, err := config.Load("/etc/aiassist/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Load from the environment only:
//
//	cfg, err := config.Load("")
package config
