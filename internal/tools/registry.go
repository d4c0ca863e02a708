// Package tools implements the executable tool contract (C2): a pure I/O
// layer with no knowledge of sessions, keyed by tool name and dispatched
// through a Registry.
package tools

import (
	"context"
	"fmt"

	"github.com/opencowork/opencowork/internal/toolkit"
	"github.com/opencowork/opencowork/internal/tools/exec"
	"github.com/opencowork/opencowork/internal/tools/files"
)

// Tool is one named, schema-described executor.
type Tool interface {
	Name() string
	Schema() map[string]any
	Execute(ctx context.Context, input map[string]any, cwd string) toolkit.Result
}

// Registry dispatches by name to the concrete tool implementations.
// AskUserQuestion is deliberately absent from the dispatch table: it
// must never reach the executor, per spec §4.2.
type Registry struct {
	byName map[string]Tool
}

// NewRegistry returns a registry with every executable tool registered.
func NewRegistry() *Registry {
	r := &Registry{byName: map[string]Tool{}}
	for _, t := range []Tool{
		files.ReadTool{},
		files.WriteTool{},
		files.EditTool{},
		exec.BashTool{},
		globTool{},
		grepTool{},
		webFetchTool{},
		taskTool{},
	} {
		r.byName[t.Name()] = t
	}
	return r
}

// Execute runs the named tool. An unknown name, including the
// never-dispatched AskUserQuestion, fails with "Unsupported tool: <name>".
func (r *Registry) Execute(ctx context.Context, name string, input map[string]any, cwd string) toolkit.Result {
	t, ok := r.byName[name]
	if !ok {
		return toolkit.Error(fmt.Sprintf("Unsupported tool: %s", name))
	}
	return t.Execute(ctx, input, cwd)
}

// askUserQuestionSchema is the structured schema exposed to providers for
// the client-side question tool; it is never dispatched through Execute.
var askUserQuestionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"questions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question": map[string]any{"type": "string"},
					"header":   map[string]any{"type": "string"},
					"options": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"label":       map[string]any{"type": "string"},
								"description": map[string]any{"type": "string"},
							},
						},
					},
					"multiSelect": map[string]any{"type": "boolean"},
				},
				"required": []string{"question"},
			},
		},
	},
	"required": []string{"questions"},
}

// AnthropicToolDefs returns the tool catalog in Anthropic's input_schema
// shape, including AskUserQuestion.
func (r *Registry) AnthropicToolDefs() []map[string]any {
	var defs []map[string]any
	for _, t := range r.orderedTools() {
		defs = append(defs, map[string]any{
			"name":         t.Name(),
			"input_schema": t.Schema(),
		})
	}
	defs = append(defs, map[string]any{
		"name":         "AskUserQuestion",
		"input_schema": askUserQuestionSchema,
	})
	return defs
}

// OpenAIToolDefs returns the tool catalog in OpenAI's function-tools
// shape, including AskUserQuestion.
func (r *Registry) OpenAIToolDefs() []map[string]any {
	var defs []map[string]any
	for _, t := range r.orderedTools() {
		defs = append(defs, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":       t.Name(),
				"parameters": t.Schema(),
			},
		})
	}
	defs = append(defs, map[string]any{
		"type": "function",
		"function": map[string]any{
			"name":       "AskUserQuestion",
			"parameters": askUserQuestionSchema,
		},
	})
	return defs
}

// toolOrder fixes the catalog order so tool defs are deterministic across
// calls, independent of Go's randomized map iteration.
var toolOrder = []string{"Read", "Write", "Edit", "Bash", "Glob", "Grep", "WebFetch", "Task"}

func (r *Registry) orderedTools() []Tool {
	out := make([]Tool, 0, len(toolOrder))
	for _, name := range toolOrder {
		if t, ok := r.byName[name]; ok {
			out = append(out, t)
		}
	}
	return out
}
