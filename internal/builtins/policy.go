// ABOUTME: Shell command policy: allow-list and timeout cap for shell_run
// ABOUTME: Loads from TOML and hot-reloads on file change, keeping last good

package builtins

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
)

// DefaultAllowed is the built-in shell command allow-list.
var DefaultAllowed = []string{"pwd", "whoami", "uname", "echo", "ls"}

// defaultMaxTimeout caps caller-supplied shell timeouts.
const defaultMaxTimeout = 10 * time.Minute

// reloadDebounce coalesces bursts of file events into one reload.
const reloadDebounce = 500 * time.Millisecond

// Policy is the RWMutex-guarded shell policy snapshot. Zero value is not
// usable; construct with NewPolicy.
type Policy struct {
	mu         sync.RWMutex
	allowed    []string
	maxTimeout time.Duration

	logger   *slog.Logger
	debounce time.Duration
}

// policyFile is the TOML shape of a policy file. Absent keys keep the
// current values.
type policyFile struct {
	Allowed           []string `toml:"allowed"`
	MaxTimeoutSeconds int      `toml:"max_timeout_seconds"`
}

// NewPolicy returns a policy with the built-in defaults.
func NewPolicy(logger *slog.Logger) *Policy {
	if logger == nil {
		logger = slog.Default()
	}
	return &Policy{
		allowed:    slices.Clone(DefaultAllowed),
		maxTimeout: defaultMaxTimeout,
		logger:     logger.With("component", "shell-policy"),
		debounce:   reloadDebounce,
	}
}

// IsAllowed reports whether the command name is on the allow-list.
func (p *Policy) IsAllowed(name string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Contains(p.allowed, name)
}

// Allowed returns a copy of the current allow-list.
func (p *Policy) Allowed() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.allowed)
}

// MaxTimeout returns the cap applied to caller-supplied timeouts.
func (p *Policy) MaxTimeout() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.maxTimeout
}

// LoadFile replaces the policy from a TOML file. On any error the current
// policy is left untouched.
func (p *Policy) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading policy file: %w", err)
	}

	var pf policyFile
	if _, err := toml.Decode(string(data), &pf); err != nil {
		return fmt.Errorf("parsing policy file: %w", err)
	}
	if pf.MaxTimeoutSeconds < 0 {
		return fmt.Errorf("max_timeout_seconds must not be negative")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if pf.Allowed != nil {
		p.allowed = slices.Clone(pf.Allowed)
	}
	if pf.MaxTimeoutSeconds > 0 {
		p.maxTimeout = time.Duration(pf.MaxTimeoutSeconds) * time.Second
	}
	return nil
}

// Watch reloads the policy whenever the file changes, until ctx is
// cancelled. The parent directory is watched so editors that replace the
// file are still observed. A failed reload keeps the last good policy.
func (p *Policy) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating policy watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	go p.watchLoop(ctx, watcher, path)
	p.logger.Info("watching shell policy file", "path", path)
	return nil
}

func (p *Policy) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string) {
	defer watcher.Close()

	var pending *time.Timer
	for {
		select {
		case <-ctx.Done():
			if pending != nil {
				pending.Stop()
			}
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			// Debounce: editors fire several events per save
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(p.debounce, func() {
				if err := p.LoadFile(path); err != nil {
					p.logger.Warn("policy reload failed, keeping last good policy", "path", path, "error", err)
					return
				}
				p.logger.Info("shell policy reloaded", "path", path, "allowed", p.Allowed())
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Warn("policy watcher error", "error", err)
		}
	}
}
