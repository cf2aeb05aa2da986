// ABOUTME: Filesystem write tool: fs_write
// ABOUTME: Creates parent directories and writes UTF-8 text

package builtins

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/saib0ndi/Coding-AI-Assistant/internal/tools"
)

// RegisterFSWrite registers the filesystem write tool.
func RegisterFSWrite(reg *tools.Registry) error {
	return reg.Register(
		"fs_write",
		fsWrite,
		[]tools.Param{
			{Name: "path", Type: "string", Required: true},
			{Name: "content", Type: "string", Required: true},
		},
		"Write text to a file, creating parent directories",
	)
}

func fsWrite(ctx context.Context, args map[string]any) (any, error) {
	rawPath, err := requiredString(args, "path")
	if err != nil {
		return nil, err
	}
	content, err := requiredString(args, "content")
	if err != nil {
		return nil, err
	}

	p := filepath.Clean(rawPath)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return nil, fmt.Errorf("creating parent directories for %s: %w", p, err)
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", p, err)
	}

	return map[string]any{"ok": true, "path": p}, nil
}
