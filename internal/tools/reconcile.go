// ABOUTME: Argument reconciliation between caller-supplied argument bags and
// ABOUTME: a tool's declared parameter names, via a small ordered rule set.

package tools

// Reconcile adjusts a caller-supplied argument bag so that near-miss key
// names line up with the tool's declared parameter names. Rules apply in
// order, each only when its precondition holds:
//
//  1. The tool declares exactly one parameter and the bag carries "path"
//     under a different declared name: "path" is renamed to the declared
//     name (unless the declared name is already present).
//  2. The sole declared parameter is "command" and the bag carries "cmd"
//     (or the reverse): the alias is renamed to the declared spelling.
//  3. The declared parameters include "dir" and the bag carries "path"
//     but no "dir": "path" is renamed to "dir".
//
// A supplied value that is not a mapping is returned unchanged: the
// downstream invocation then fails as an argument-shape error. The
// returned map never aliases the input.
func Reconcile(declared []string, supplied any) any {
	args, ok := supplied.(map[string]any)
	if !ok {
		return supplied
	}

	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = v
	}

	// Rule 1: single declared parameter, supplied under "path".
	if len(declared) == 1 && declared[0] != "path" {
		if v, has := out["path"]; has {
			if _, taken := out[declared[0]]; !taken {
				out[declared[0]] = v
				delete(out, "path")
			}
		}
	}

	// Rule 2: command/cmd spelling mismatch on a single-parameter tool.
	if len(declared) == 1 {
		switch declared[0] {
		case "command":
			if v, has := out["cmd"]; has {
				if _, taken := out["command"]; !taken {
					out["command"] = v
					delete(out, "cmd")
				}
			}
		case "cmd":
			if v, has := out["command"]; has {
				if _, taken := out["cmd"]; !taken {
					out["cmd"] = v
					delete(out, "command")
				}
			}
		}
	}

	// Rule 3: "path" supplied to a tool that declares "dir".
	if declaresName(declared, "dir") {
		if _, has := out["dir"]; !has {
			if v, hasPath := out["path"]; hasPath {
				out["dir"] = v
				delete(out, "path")
			}
		}
	}

	return out
}

func declaresName(declared []string, name string) bool {
	for _, d := range declared {
		if d == name {
			return true
		}
	}
	return false
}
