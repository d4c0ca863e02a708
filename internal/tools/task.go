package tools

import (
	"context"
	"fmt"

	"github.com/opencowork/opencowork/internal/toolkit"
)

// taskTool records a note with no side effect beyond echoing it back.
type taskTool struct{}

func (taskTool) Name() string { return "Task" }

func (taskTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": map[string]any{
				"type":        "string",
				"description": "Free-form note to record.",
			},
		},
		"required": []string{"description"},
	}
}

func (taskTool) Execute(_ context.Context, input map[string]any, _ string) toolkit.Result {
	description, errResult := toolkit.RequireString(input, "description")
	if errResult != nil {
		return *errResult
	}
	return toolkit.Ok(fmt.Sprintf("Task noted: %s", description))
}
