package files

import (
	"context"
	"os"
	"strings"

	"github.com/opencowork/opencowork/internal/toolkit"
)

// EditTool replaces the first occurrence of old_string with new_string in
// a file.
type EditTool struct{}

func (EditTool) Name() string { return "Edit" }

func (EditTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"file_path": map[string]any{
				"type":        "string",
				"description": "Path to the file to edit.",
			},
			"old_string": map[string]any{
				"type":        "string",
				"description": "Exact text to replace.",
			},
			"new_string": map[string]any{
				"type":        "string",
				"description": "Replacement text.",
			},
		},
		"required": []string{"file_path", "old_string", "new_string"},
	}
}

func (EditTool) Execute(_ context.Context, input map[string]any, cwd string) toolkit.Result {
	path, errResult := toolkit.RequireString(input, "file_path")
	if errResult != nil {
		return *errResult
	}
	oldString, errResult := toolkit.RequireString(input, "old_string")
	if errResult != nil {
		return *errResult
	}
	newString, errResult := toolkit.RequireString(input, "new_string")
	if errResult != nil {
		return *errResult
	}

	resolved := Resolve(path, cwd)
	content, err := os.ReadFile(resolved)
	if err != nil {
		return toolkit.Error(err.Error())
	}

	if !strings.Contains(string(content), oldString) {
		return toolkit.Error("Old string not found in file.")
	}

	updated := strings.Replace(string(content), oldString, newString, 1)
	if err := os.WriteFile(resolved, []byte(updated), 0o644); err != nil {
		return toolkit.Error(err.Error())
	}
	return toolkit.Ok("OK")
}
