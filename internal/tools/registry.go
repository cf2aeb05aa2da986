// ABOUTME: Thread-safe registry mapping tool names to descriptors and invocables.
// ABOUTME: Populated once at startup; read-only once request traffic begins.

package tools

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
)

// ErrToolNotFound indicates the named tool is not registered.
var ErrToolNotFound = errors.New("tool not found")

// ErrInvalidArgs marks a failure caused by the shape of the argument bag
// (missing or mistyped parameters) rather than by tool execution itself.
// Tools wrap it so the dispatcher can classify the failure.
var ErrInvalidArgs = errors.New("invalid arguments")

// Invocable is the entry point of a registered tool. Implementations may
// block on I/O and must honor ctx cancellation for anything long-running.
type Invocable func(ctx context.Context, args map[string]any) (any, error)

// Param describes one declared tool parameter.
type Param struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Required bool   `json:"required"`
	Default  any    `json:"default,omitempty"`
}

// Descriptor is the registered identity of a tool: name, ordered
// parameter list, and documentation. Immutable after registration.
type Descriptor struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"parameters"`
}

// ParamNames returns the declared parameter names in declaration order.
func (d Descriptor) ParamNames() []string {
	names := make([]string, len(d.Params))
	for i, p := range d.Params {
		names[i] = p.Name
	}
	return names
}

// ListItem is one row of a registry listing.
type ListItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// entry pairs a descriptor with its invocable.
type entry struct {
	descriptor Descriptor
	fn         Invocable
}

// Registry maintains the mapping from tool name to registered tool.
// Registration for an existing name silently replaces the previous
// entry (last write wins); the replacement is logged for operators.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]*entry
	logger *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tools:  make(map[string]*entry),
		logger: logger,
	}
}

// Register inserts or overwrites the tool registered under name.
// name must be non-empty and fn non-nil; params and description may be
// empty for tools that take no arguments.
func (r *Registry) Register(name string, fn Invocable, params []Param, description string) error {
	if name == "" {
		return errors.New("tool name is required")
	}
	if fn == nil {
		return errors.New("tool invocable is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		r.logger.Warn("tool re-registered, previous entry replaced", "tool", name)
	}

	r.tools[name] = &entry{
		descriptor: Descriptor{
			Name:        name,
			Description: description,
			Params:      params,
		},
		fn: fn,
	}

	r.logger.Debug("tool registered", "tool", name, "param_count", len(params))
	return nil
}

// List returns (name, description) pairs for every registered tool,
// sorted by name for determinism.
func (r *Registry) List() []ListItem {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]ListItem, 0, len(r.tools))
	for _, e := range r.tools {
		items = append(items, ListItem{
			Name:        e.descriptor.Name,
			Description: e.descriptor.Description,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Name < items[j].Name
	})
	return items
}

// Describe returns the full descriptor for name, or ErrToolNotFound.
func (r *Registry) Describe(name string) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.tools[name]
	if !ok {
		return Descriptor{}, ErrToolNotFound
	}
	return e.descriptor, nil
}

// Get returns the invocable registered under name, or ErrToolNotFound.
func (r *Registry) Get(name string) (Invocable, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.tools[name]
	if !ok {
		return nil, ErrToolNotFound
	}
	return e.fn, nil
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
