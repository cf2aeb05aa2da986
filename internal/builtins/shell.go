// ABOUTME: Allow-listed shell execution tool: shell_run
// ABOUTME: Only the first token is checked; tokens run directly, no shell

package builtins

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode"

	"github.com/saib0ndi/Coding-AI-Assistant/internal/tools"
)

// maxOutputBytes caps the combined output returned by shell_run and
// test_run.
const maxOutputBytes = 20000

// defaultShellTimeout applies when the caller names no timeout.
const defaultShellTimeout = 30

// RegisterShell registers the shell execution tool bound to a policy.
func RegisterShell(reg *tools.Registry, policy *Policy) error {
	h := &shellHandlers{policy: policy}
	return reg.Register(
		"shell_run",
		h.run,
		[]tools.Param{
			{Name: "cmd", Type: "string", Required: true},
			{Name: "cwd", Type: "string", Default: "."},
			{Name: "timeout", Type: "integer", Default: defaultShellTimeout},
		},
		"Run an allow-listed command and capture combined output",
	)
}

type shellHandlers struct {
	policy *Policy
}

func (h *shellHandlers) run(ctx context.Context, args map[string]any) (any, error) {
	cmdStr, err := requiredString(args, "cmd")
	if err != nil {
		return nil, err
	}
	cwd, err := optionalString(args, "cwd", ".")
	if err != nil {
		return nil, err
	}
	timeoutSecs, err := optionalInt(args, "timeout", defaultShellTimeout)
	if err != nil {
		return nil, err
	}

	if containsShellOperator(cmdStr) {
		return map[string]any{"ok": false, "error": "shell operators not allowed"}, nil
	}

	tokens, err := splitCommand(cmdStr)
	if err != nil {
		return nil, fmt.Errorf("parsing command: %w", err)
	}
	if len(tokens) == 0 {
		return map[string]any{"ok": false, "error": "empty command"}, nil
	}

	first := tokens[0]
	if !h.policy.IsAllowed(first) {
		return map[string]any{"ok": false, "error": "command not allowed: " + first}, nil
	}

	timeout := clampTimeout(time.Duration(timeoutSecs)*time.Second, h.policy.MaxTimeout())
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Tokens run directly so quoting in cmd never reaches a shell.
	cmd := exec.CommandContext(runCtx, first, tokens[1:]...)
	cmd.Dir = cwd
	out, runErr := cmd.CombinedOutput()
	output := truncateOutput(string(out))

	if runErr != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return map[string]any{"ok": false, "error": fmt.Sprintf("command timed out after %s", timeout)}, nil
		}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return map[string]any{"ok": false, "code": exitErr.ExitCode(), "output": output}, nil
		}
		return map[string]any{"ok": false, "error": runErr.Error()}, nil
	}

	return map[string]any{"ok": true, "output": output}, nil
}

// containsShellOperator rejects command chaining up front. Tokens never
// reach a shell, so operators would only ever be literal arguments, but
// a command carrying them is almost certainly a mistake.
func containsShellOperator(cmd string) bool {
	for _, op := range []string{"&&", "||", ";", "|"} {
		if strings.Contains(cmd, op) {
			return true
		}
	}
	return false
}

// clampTimeout caps a caller-supplied timeout at the policy maximum.
func clampTimeout(timeout, max time.Duration) time.Duration {
	if timeout > max {
		return max
	}
	return timeout
}

// truncateOutput caps command output at maxOutputBytes.
func truncateOutput(out string) string {
	if len(out) > maxOutputBytes {
		return out[:maxOutputBytes]
	}
	return out
}

// splitCommand splits a command line into tokens with single and double
// quote grouping and backslash escapes outside quotes. An unterminated
// quote is an error.
func splitCommand(s string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	var quote rune
	inToken := false
	escaped := false

	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			inToken = true
			escaped = false
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\\':
			escaped = true
			inToken = true
		case r == '\'' || r == '"':
			quote = r
			inToken = true
		case unicode.IsSpace(r):
			if inToken {
				tokens = append(tokens, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("no closing quotation")
	}
	if inToken {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}
