// ABOUTME: Module enumeration and the recoverable registration pass
// ABOUTME: A module that fails to register is logged and skipped, never fatal

package builtins

import (
	"fmt"
	"log/slog"

	"github.com/saib0ndi/Coding-AI-Assistant/internal/tools"
)

// Module is one registerable group of built-in tools.
type Module struct {
	Name     string
	Register func(reg *tools.Registry) error
}

// Modules enumerates the built-in tool modules. The shell module is bound
// to the given policy; the others have no dependencies.
func Modules(policy *Policy) []Module {
	return []Module{
		{Name: "fs", Register: RegisterFS},
		{Name: "fs_write", Register: RegisterFSWrite},
		{Name: "shell", Register: func(reg *tools.Registry) error { return RegisterShell(reg, policy) }},
		{Name: "test", Register: RegisterTest},
	}
}

// RegisterAll registers every module into the registry. Registration
// failures are logged and the module is skipped; the remaining modules
// still register. A panicking module is contained the same way.
func RegisterAll(reg *tools.Registry, modules []Module, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, m := range modules {
		if err := registerModule(reg, m); err != nil {
			logger.Error("builtin module registration failed, skipping", "module", m.Name, "error", err)
			continue
		}
		logger.Debug("registered builtin module", "module", m.Name)
	}
}

func registerModule(reg *tools.Registry, m Module) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during registration: %v", r)
		}
	}()
	return m.Register(reg)
}
