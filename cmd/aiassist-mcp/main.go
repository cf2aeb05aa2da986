// ABOUTME: Entry point for the aiassist-mcp tool server
// ABOUTME: Serves filesystem, shell, and test tools over JSON-RPC

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/saib0ndi/Coding-AI-Assistant/internal/config"
	"github.com/saib0ndi/Coding-AI-Assistant/internal/gateway"
)

const banner = `
       _               _     _
  __ _(_) __ _ ___ ___(_)___| |_
 / _' | |/ _' / __/ __| / __| __|
| (_| | | (_| \__ \__ \ \__ \ |_
 \__,_|_|\__,_|___/___/_|___/\__|
`

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		configPath string
		addr       string
		logLevel   string
		logFormat  string
	)

	rootCmd := &cobra.Command{
		Use:   "aiassist-mcp",
		Short: "JSON-RPC tool server for coding assistants",
		Long: `aiassist-mcp exposes filesystem, shell, and test-runner tools to MCP
clients over JSON-RPC 2.0.

Configuration comes from a YAML file (--config) or from environment
variables (PORT, AIASSIST_MCP_TOKEN, AIASSIST_MCP_CORS, AIASSIST_DB_PATH,
AIASSIST_SHELL_POLICY) when no file is given.`,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the tool server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(ctx, configPath, addr, logLevel, logFormat)
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	serveCmd.Flags().StringVar(&logFormat, "log-format", "", "log format: text or json")

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check the health of a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHealth(ctx, configPath, addr)
		},
	}
	healthCmd.Flags().StringVar(&addr, "addr", "", "server address (overrides config)")

	toolsCmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools a running server exposes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTools(ctx, configPath, addr)
		},
	}
	toolsCmd.Flags().StringVar(&addr, "addr", "", "server address (overrides config)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("aiassist-mcp %s\n", gateway.Version)
		},
	}

	rootCmd.AddCommand(serveCmd, healthCmd, toolsCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context, configPath, addr, logLevel, logFormat string) error {
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", gateway.Version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("HTTP:   %s\n", cfg.Server.Addr)
	green.Print("    ▶ ")
	if cfg.Auth.Token == "" {
		fmt.Printf("Auth:   ")
		yellow.Println("open (no token configured)")
	} else {
		fmt.Printf("Auth:   %s\n", cfg.Auth.Mode)
	}
	if cfg.Database.Path != "" {
		green.Print("    ▶ ")
		fmt.Printf("Audit:  %s\n", cfg.Database.Path)
	}
	if cfg.Shell.PolicyFile != "" {
		green.Print("    ▶ ")
		fmt.Printf("Policy: %s\n", cfg.Shell.PolicyFile)
	}
	fmt.Println()

	logger.Info("starting aiassist-mcp",
		"addr", cfg.Server.Addr,
		"auth_mode", cfg.Auth.Mode,
	)

	gw, err := gateway.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	return gw.Run(ctx)
}

func runHealth(ctx context.Context, configPath, addr string) error {
	base, err := serverURL(configPath, addr)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/health", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

func runTools(ctx context.Context, configPath, addr string) error {
	base, err := serverURL(configPath, addr)
	if err != nil {
		return err
	}

	body := strings.NewReader(`{"jsonrpc": "2.0", "method": "tools/list", "id": 1}`)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/mcp", body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := os.Getenv("AIASSIST_MCP_TOKEN"); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("listing tools: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("unauthorized: set AIASSIST_MCP_TOKEN to the server's token")
	}

	var rpc struct {
		Result struct {
			Tools []struct {
				Name        string `json:"name"`
				Description string `json:"description"`
			} `json:"tools"`
		} `json:"result"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rpc); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if rpc.Error != nil {
		return fmt.Errorf("server error %d: %s", rpc.Error.Code, rpc.Error.Message)
	}

	cyan := color.New(color.FgCyan)
	for _, tool := range rpc.Result.Tools {
		cyan.Printf("  %-12s", tool.Name)
		fmt.Printf("  %s\n", tool.Description)
	}
	return nil
}

// serverURL resolves the base URL of a running server from the --addr
// flag or the configured listen address.
func serverURL(configPath, addr string) (string, error) {
	if addr == "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return "", fmt.Errorf("loading config: %w", err)
		}
		addr = cfg.Server.Addr
	}
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr, nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = &colorHandler{level: level}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	buf.WriteString(r.Message)

	// Handler-level attrs from With come before record attrs.
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}
