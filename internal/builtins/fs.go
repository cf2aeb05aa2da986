// ABOUTME: Filesystem read tools: fs_read and fs_list
// ABOUTME: Expected failures (missing file or dir) return ok:false results

package builtins

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/saib0ndi/Coding-AI-Assistant/internal/tools"
)

const (
	// defaultReadMax bounds fs_read output at 1 MiB unless overridden.
	defaultReadMax = 1 << 20

	// defaultListGlob matches every entry under the directory.
	defaultListGlob = "**/*"

	// defaultListLimit caps how many glob matches fs_list scans.
	defaultListLimit = 200
)

// RegisterFS registers the read-only filesystem tools.
func RegisterFS(reg *tools.Registry) error {
	if err := reg.Register(
		"fs_read",
		fsRead,
		[]tools.Param{
			{Name: "path", Type: "string", Required: true},
			{Name: "max_bytes", Type: "integer", Default: defaultReadMax},
		},
		"Read a file as UTF-8 text, truncated at max_bytes",
	); err != nil {
		return err
	}

	return reg.Register(
		"fs_list",
		fsList,
		[]tools.Param{
			{Name: "dir", Type: "string", Required: true},
			{Name: "glob", Type: "string", Default: defaultListGlob},
			{Name: "limit", Type: "integer", Default: defaultListLimit},
		},
		"List files under a directory matched by a glob pattern",
	)
}

func fsRead(ctx context.Context, args map[string]any) (any, error) {
	rawPath, err := requiredString(args, "path")
	if err != nil {
		return nil, err
	}
	maxBytes, err := optionalInt(args, "max_bytes", defaultReadMax)
	if err != nil {
		return nil, err
	}

	p := filepath.Clean(rawPath)
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return map[string]any{"ok": false, "error": "not found", "path": p}, nil
		}
		return nil, fmt.Errorf("stat %s: %w", p, err)
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}

	truncated := false
	if maxBytes > 0 && len(data) > maxBytes {
		data = data[:maxBytes]
		truncated = true
	}

	return map[string]any{
		"ok":        true,
		"path":      p,
		"text":      strings.ToValidUTF8(string(data), ""),
		"truncated": truncated,
	}, nil
}

func fsList(ctx context.Context, args map[string]any) (any, error) {
	rawDir, err := requiredString(args, "dir")
	if err != nil {
		return nil, err
	}
	pattern, err := optionalString(args, "glob", defaultListGlob)
	if err != nil {
		return nil, err
	}
	limit, err := optionalInt(args, "limit", defaultListLimit)
	if err != nil {
		return nil, err
	}

	base := filepath.Clean(rawDir)
	if _, err := os.Stat(base); err != nil {
		if os.IsNotExist(err) {
			return map[string]any{"ok": false, "error": "dir not found", "dir": base}, nil
		}
		return nil, fmt.Errorf("stat %s: %w", base, err)
	}

	segments, err := splitGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob %q: %w", pattern, err)
	}

	matches, err := globMatches(base, segments)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", base, err)
	}

	// Matches are sorted by relative path, and the limit counts scanned
	// matches (directories included) even though only files are returned.
	items := []map[string]any{}
	for i, m := range matches {
		if i >= limit {
			break
		}
		if m.entry.IsDir() {
			continue
		}
		info, err := m.entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", m.rel, err)
		}
		items = append(items, map[string]any{
			"path": filepath.Join(base, m.rel),
			"size": info.Size(),
		})
	}

	return map[string]any{"ok": true, "dir": base, "items": items}, nil
}

// globMatch holds one matched entry, keyed by its slash-separated path
// relative to the listing root.
type globMatch struct {
	rel   string
	entry fs.DirEntry
}

// splitGlob splits a pattern into path segments and validates each one.
func splitGlob(pattern string) ([]string, error) {
	segments := strings.Split(pattern, "/")
	for _, seg := range segments {
		if seg == "**" {
			continue
		}
		if _, err := path.Match(seg, "probe"); err != nil {
			return nil, err
		}
	}
	return segments, nil
}

// globMatches walks base and returns entries whose relative path matches
// the pattern segments, sorted lexicographically by path.
func globMatches(base string, segments []string) ([]globMatch, error) {
	var matches []globMatch
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == base {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if matchSegments(segments, strings.Split(rel, "/")) {
			matches = append(matches, globMatch{rel: rel, entry: d})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].rel < matches[j].rel })
	return matches, nil
}

// matchSegments matches pattern segments against path segments. "**"
// matches zero or more whole segments; everything else matches one
// segment with path.Match semantics.
func matchSegments(pattern, name []string) bool {
	if len(pattern) == 0 {
		return len(name) == 0
	}
	if pattern[0] == "**" {
		if matchSegments(pattern[1:], name) {
			return true
		}
		return len(name) > 0 && matchSegments(pattern, name[1:])
	}
	if len(name) == 0 {
		return false
	}
	ok, err := path.Match(pattern[0], name[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(pattern[1:], name[1:])
}
