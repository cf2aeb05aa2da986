// ABOUTME: Configuration loading and parsing for aiassist-mcp.
// ABOUTME: Supports YAML files with env variable expansion, plus an env-only mode.

package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults applied when neither file nor environment provides a value.
const (
	DefaultPort = "9999"
)

// Config represents the complete aiassist-mcp configuration.
// The zero value is not usable; construct via Load or FromEnv.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Auth     AuthConfig     `yaml:"auth"`
	Database DatabaseConfig `yaml:"database"`
	Shell    ShellConfig    `yaml:"shell"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds the HTTP listener configuration.
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// AuthConfig holds the access-gate configuration.
// Mode "static" compares the bearer credential to Token directly;
// mode "jwt" treats Token as the HS256 signing secret.
// An empty Token disables the gate entirely (open mode).
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// DatabaseConfig holds the invocation audit store configuration.
// An empty Path disables audit recording.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ShellConfig holds the shell tool policy configuration.
type ShellConfig struct {
	PolicyFile string `yaml:"policy_file"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a
// parsed Config. Environment variables in the format ${VAR_NAME} are
// expanded before parsing. An empty path falls back to FromEnv so that
// a config file is never required.
func Load(path string) (*Config, error) {
	if path == "" {
		return FromEnv()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config purely from environment variables:
//
//	PORT                  listener port (default 9999)
//	AIASSIST_MCP_TOKEN    expected bearer token (empty = open mode)
//	AIASSIST_MCP_CORS     comma-separated CORS origins (default *)
//	AIASSIST_DB_PATH      audit database path (empty = disabled)
//	AIASSIST_SHELL_POLICY shell policy file path
//	AIASSIST_LOG_LEVEL    debug|info|warn|error
//	AIASSIST_LOG_FORMAT   json|text
func FromEnv() (*Config, error) {
	cfg := Config{
		Server: ServerConfig{
			CORSOrigins: splitCSV(os.Getenv("AIASSIST_MCP_CORS")),
		},
		Auth: AuthConfig{
			Token: os.Getenv("AIASSIST_MCP_TOKEN"),
		},
		Database: DatabaseConfig{
			Path: os.Getenv("AIASSIST_DB_PATH"),
		},
		Shell: ShellConfig{
			PolicyFile: os.Getenv("AIASSIST_SHELL_POLICY"),
		},
		Logging: LoggingConfig{
			Level:  os.Getenv("AIASSIST_LOG_LEVEL"),
			Format: os.Getenv("AIASSIST_LOG_FORMAT"),
		},
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// applyDefaults fills in values omitted by the file or environment.
func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		port := os.Getenv("PORT")
		if port == "" {
			port = DefaultPort
		}
		c.Server.Addr = ":" + port
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Auth.Mode == "" {
		c.Auth.Mode = "static"
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables become empty strings.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and
// valid. Returns an error describing the first failure encountered.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}

	switch c.Auth.Mode {
	case "static", "jwt":
	default:
		return fmt.Errorf("auth.mode must be \"static\" or \"jwt\", got %q", c.Auth.Mode)
	}

	if c.Auth.Mode == "jwt" && c.Auth.Token == "" {
		return fmt.Errorf("auth.token is required when auth.mode is \"jwt\"")
	}

	for _, origin := range c.Server.CORSOrigins {
		if origin == "" {
			return fmt.Errorf("server.cors_origins must not contain empty entries")
		}
	}

	return nil
}

// splitCSV splits a comma-separated list, trimming whitespace and
// dropping empty entries. Returns nil for an empty input.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
