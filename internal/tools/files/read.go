package files

import (
	"context"
	"os"

	"github.com/opencowork/opencowork/internal/toolkit"
)

// ReadTool returns the contents of a file.
type ReadTool struct{}

func (ReadTool) Name() string { return "Read" }

func (ReadTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"file_path": map[string]any{
				"type":        "string",
				"description": "Path to the file to read.",
			},
		},
		"required": []string{"file_path"},
	}
}

// Execute reads the file at file_path, resolved against cwd.
func (ReadTool) Execute(_ context.Context, input map[string]any, cwd string) toolkit.Result {
	path, errResult := toolkit.RequireString(input, "file_path")
	if errResult != nil {
		return *errResult
	}

	content, err := os.ReadFile(Resolve(path, cwd))
	if err != nil {
		return toolkit.Error(err.Error())
	}
	return toolkit.Ok(string(content))
}
