// ABOUTME: Test workflow tools: test_detect and test_run
// ABOUTME: test_run executes through the shell so compound commands work

package builtins

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/saib0ndi/Coding-AI-Assistant/internal/tools"
)

// defaultTestTimeout applies when the caller names no timeout.
const defaultTestTimeout = 120

// defaultTestCommand is the fallback when no cmd is supplied.
const defaultTestCommand = "pytest -q"

// RegisterTest registers the test workflow tools.
func RegisterTest(reg *tools.Registry) error {
	if err := reg.Register(
		"test_detect",
		testDetect,
		[]tools.Param{
			{Name: "cwd", Type: "string", Default: "."},
		},
		"Suggest the test command for a project directory",
	); err != nil {
		return err
	}

	return reg.Register(
		"test_run",
		testRun,
		[]tools.Param{
			{Name: "cmd", Type: "string", Default: defaultTestCommand},
			{Name: "cwd", Type: "string", Default: "."},
			{Name: "timeout", Type: "integer", Default: defaultTestTimeout},
		},
		"Run a test command through the shell",
	)
}

func testDetect(ctx context.Context, args map[string]any) (any, error) {
	cwd, err := optionalString(args, "cwd", ".")
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(filepath.Join(cwd, "package.json")); err == nil {
		return map[string]any{"ok": true, "cmd": "pnpm test || npm test"}, nil
	}
	return map[string]any{"ok": true, "cmd": defaultTestCommand}, nil
}

func testRun(ctx context.Context, args map[string]any) (any, error) {
	cmdStr, err := optionalString(args, "cmd", defaultTestCommand)
	if err != nil {
		return nil, err
	}
	cwd, err := optionalString(args, "cwd", ".")
	if err != nil {
		return nil, err
	}
	timeoutSecs, err := optionalInt(args, "timeout", defaultTestTimeout)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(timeoutSecs) * time.Second
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", cmdStr)
	cmd.Dir = cwd
	out, runErr := cmd.CombinedOutput()
	output := truncateOutput(string(out))

	if runErr != nil {
		// A timeout is an invocation failure, not a test failure
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("test command timed out after %s", timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return map[string]any{"ok": false, "code": exitErr.ExitCode(), "output": output}, nil
		}
		return nil, fmt.Errorf("running test command: %w", runErr)
	}

	return map[string]any{"ok": true, "output": output}, nil
}
