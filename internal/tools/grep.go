package tools

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/opencowork/opencowork/internal/toolkit"
)

// grepTool runs a recursive text search via the system grep binary.
type grepTool struct{}

func (grepTool) Name() string { return "Grep" }

func (grepTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pattern": map[string]any{
				"type":        "string",
				"description": "Text or regular expression to search for.",
			},
			"path": map[string]any{
				"type":        "string",
				"description": "Directory to search (default: cwd).",
			},
			"file_path": map[string]any{
				"type":        "string",
				"description": "Single file to search instead of a directory.",
			},
		},
		"required": []string{"pattern"},
	}
}

func (grepTool) Execute(ctx context.Context, input map[string]any, cwd string) toolkit.Result {
	pattern, errResult := toolkit.RequireString(input, "pattern")
	if errResult != nil {
		return *errResult
	}

	target := toolkit.OptionalString(input, "file_path", "")
	args := []string{"-rn", pattern}
	if target != "" {
		args = []string{"-n", pattern, target}
	} else {
		searchPath := toolkit.OptionalString(input, "path", cwd)
		if searchPath == "" {
			searchPath = "."
		}
		args = append(args, searchPath)
	}

	cmd := exec.CommandContext(ctx, "grep", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return toolkit.Ok(stdout.String())
	}

	exitErr, ok := err.(*exec.ExitError)
	if ok && exitErr.ExitCode() == 1 {
		return toolkit.Ok("")
	}
	return toolkit.Error(stderr.String())
}
