package tools

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/opencowork/opencowork/internal/toolkit"
)

// globTool expands a ** glob pattern relative to an optional path,
// falling back to cwd, falling back to ".".
type globTool struct{}

func (globTool) Name() string { return "Glob" }

func (globTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pattern": map[string]any{
				"type":        "string",
				"description": "Glob pattern, supports ** for recursive matching.",
			},
			"path": map[string]any{
				"type":        "string",
				"description": "Directory to glob within (default: cwd).",
			},
		},
		"required": []string{"pattern"},
	}
}

func (globTool) Execute(_ context.Context, input map[string]any, cwd string) toolkit.Result {
	pattern, errResult := toolkit.RequireString(input, "pattern")
	if errResult != nil {
		return *errResult
	}

	root := toolkit.OptionalString(input, "path", cwd)
	if root == "" {
		root = "."
	}

	fsys := osDirFS(root)
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return toolkit.Error(err.Error())
	}

	sort.Strings(matches)
	for i, m := range matches {
		matches[i] = filepath.Join(root, m)
	}
	return toolkit.Ok(strings.Join(matches, "\n"))
}
