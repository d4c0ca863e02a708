// Package files implements the Read, Write, and Edit tool executors
// against the local filesystem.
package files

import "path/filepath"

// Resolve joins path against cwd when path is relative and cwd is
// non-empty; an empty cwd falls back to the process's own working
// directory via filepath's own relative-path handling.
func Resolve(path, cwd string) string {
	if filepath.IsAbs(path) || cwd == "" {
		return path
	}
	return filepath.Join(cwd, path)
}
