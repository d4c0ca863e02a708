package files

import (
	"context"
	"fmt"
	"os"

	"github.com/opencowork/opencowork/internal/toolkit"
)

// WriteTool overwrites a file with the given content.
type WriteTool struct{}

func (WriteTool) Name() string { return "Write" }

func (WriteTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"file_path": map[string]any{
				"type":        "string",
				"description": "Path to the file to write.",
			},
			"content": map[string]any{
				"type":        "string",
				"description": "Content to write to the file.",
			},
		},
		"required": []string{"file_path", "content"},
	}
}

func (WriteTool) Execute(_ context.Context, input map[string]any, cwd string) toolkit.Result {
	path, errResult := toolkit.RequireString(input, "file_path")
	if errResult != nil {
		return *errResult
	}
	content, errResult := toolkit.RequireString(input, "content")
	if errResult != nil {
		return *errResult
	}

	resolved := Resolve(path, cwd)
	if err := os.WriteFile(resolved, []byte(content), 0o644); err != nil {
		return toolkit.Error(err.Error())
	}
	return toolkit.Ok(fmt.Sprintf("Wrote %d bytes to %s", len(content), path))
}
