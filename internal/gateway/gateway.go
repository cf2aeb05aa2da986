// ABOUTME: Gateway orchestrator wiring store, registry, builtins, and dispatcher
// ABOUTME: Owns the HTTP server lifecycle including graceful shutdown

package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/saib0ndi/Coding-AI-Assistant/internal/auth"
	"github.com/saib0ndi/Coding-AI-Assistant/internal/builtins"
	"github.com/saib0ndi/Coding-AI-Assistant/internal/config"
	"github.com/saib0ndi/Coding-AI-Assistant/internal/mcp"
	"github.com/saib0ndi/Coding-AI-Assistant/internal/store"
	"github.com/saib0ndi/Coding-AI-Assistant/internal/tools"
)

const serviceName = "aiassist-mcp"

// Version is the reported service version, overridden at build time.
var Version = "dev"

// Gateway orchestrates the aiassist-mcp server components: the audit
// store, the tool registry populated with builtin modules, the JSON-RPC
// dispatcher, and the HTTP server that fronts them.
type Gateway struct {
	config     *config.Config
	registry   *tools.Registry
	store      store.Store
	policy     *builtins.Policy
	mcpServer  *mcp.Server
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a new Gateway instance with the given configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}

	gw := &Gateway{
		config: cfg,
		logger: logger.With("component", "gateway"),
	}

	// An empty database path disables invocation auditing entirely.
	if cfg.Database.Path != "" {
		s, err := store.NewSQLiteStore(cfg.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("initializing store: %w", err)
		}
		gw.store = s
	}

	gw.policy = builtins.NewPolicy(logger)
	if cfg.Shell.PolicyFile != "" {
		if err := gw.policy.LoadFile(cfg.Shell.PolicyFile); err != nil {
			return nil, fmt.Errorf("loading shell policy: %w", err)
		}
	}

	gw.registry = tools.NewRegistry(logger.With("component", "registry"))
	builtins.RegisterAll(gw.registry, builtins.Modules(gw.policy), logger)

	mcpServer, err := mcp.NewServer(mcp.Config{
		Registry: gw.registry,
		Store:    gw.store,
		Logger:   logger.With("component", "mcp"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating dispatcher: %w", err)
	}
	gw.mcpServer = mcpServer

	verifier := buildVerifier(cfg, logger)

	gw.httpServer = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           gw.buildRouter(verifier),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return gw, nil
}

// buildVerifier selects the token verifier from the auth configuration.
// Static mode with an empty token disables the gate entirely.
func buildVerifier(cfg *config.Config, logger *slog.Logger) auth.TokenVerifier {
	if cfg.Auth.Mode == "jwt" {
		return auth.NewJWTVerifier([]byte(cfg.Auth.Token))
	}
	if cfg.Auth.Token == "" {
		logger.Warn("auth disabled - no token configured, RPC endpoints are open")
		return nil
	}
	return auth.NewStaticVerifier(cfg.Auth.Token)
}

// buildRouter assembles the request pipeline: recovery and request-id
// middleware, then the access gate, then CORS, then the routes. The gate
// runs before CORS so unauthorized requests never reach anything else.
func (g *Gateway) buildRouter(verifier auth.TokenVerifier) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(auth.Middleware("/mcp", verifier, g.logger))
	r.Use(corsMiddleware(g.config.Server.CORSOrigins))

	r.Get("/", g.handleRoot)
	r.Get("/health", g.handleHealth)

	// both paths are equivalent dispatcher entry points
	r.Handle("/mcp", g.mcpServer)
	r.Handle("/mcp/rpc", g.mcpServer)

	return r
}

// Run starts the gateway server and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (g *Gateway) Run(ctx context.Context) error {
	if g.config.Shell.PolicyFile != "" {
		if err := g.policy.Watch(ctx, g.config.Shell.PolicyFile); err != nil {
			g.logger.Warn("shell policy watcher failed to start", "error", err)
		}
	}

	ln, err := net.Listen("tcp", g.config.Server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", g.config.Server.Addr, err)
	}

	errCh := g.startServer(ln)
	serverErr := g.waitForShutdownSignal(ctx, errCh)

	shutdownErr := g.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// startServer starts the HTTP server in a goroutine, returning its error
// channel.
func (g *Gateway) startServer(ln net.Listener) chan error {
	errCh := make(chan error, 1)

	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	return errCh
}

// waitForShutdownSignal waits for context cancellation or a server error.
func (g *Gateway) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		g.logger.Error("server error", "error", err)
		return err
	}
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is
// already canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Shutdown(ctx)
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown gracefully stops the HTTP server and releases resources.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", g.httpServer.Shutdown(ctx))
	if g.store != nil {
		errs = appendCloseError(errs, "store close", g.store.Close())
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// handleHealth returns the static service identity for liveness probes.
func (g *Gateway) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": serviceName,
		"status":  "ok",
		"version": Version,
	})
}

// handleRoot lists the available endpoints.
func (g *Gateway) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"service": serviceName,
		"paths": []string{
			"POST /mcp",
			"POST /mcp/rpc",
			"GET /health",
		},
	})
}
