// Package runner implements the per-session finite-state control loop
// (C6): turn → stream → tool dispatch → next turn, with an iteration
// ceiling, permission rendezvous, and status transitions.
package runner

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/opencowork/opencowork/internal/provider"
	"github.com/opencowork/opencowork/internal/session"
	"github.com/opencowork/opencowork/internal/tools"
	"github.com/opencowork/opencowork/internal/transcode"
)

// permissionTimeout is how long the runner waits for a PermissionResponse
// before treating the rendezvous as failed, per spec §5.
const permissionTimeout = 600 * time.Second

// iterationCeilingEnv names the environment variable that bounds how
// many tool-call turns one session may run before the runner gives up.
const iterationCeilingEnv = "OPEN_COWORK_MAX_TOOL_ITERATIONS"

// iterationCeilingMessage is the fixed message used when the ceiling
// stops a session, per spec §4.6.
const iterationCeilingMessage = "工具调用循环次数过多，已停止。"

// Emitter delivers outbound server events for a session.
type Emitter interface {
	Emit(sessionID, tag string, payload map[string]any)
}

// Runner drives session loops against the registry, tool registry, and
// provider adapters.
type Runner struct {
	Sessions  *session.Registry
	Tools     *tools.Registry
	Providers map[string]provider.Adapter
	Emit      Emitter
}

// maxIterations reads and parses the iteration ceiling. Empty, unset, or
// unparseable values all mean "unlimited" (0).
func maxIterations() uint64 {
	raw := os.Getenv(iterationCeilingEnv)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// Run executes the session's turn loop until it completes, errors, or the
// caller's context is cancelled. It is intended to run on its own
// goroutine, spawned by the command handler on SessionStart/Continue.
func (r *Runner) Run(ctx context.Context, sessionID string) {
	max := maxIterations()
	var iterations uint64

	for {
		settings, ok := r.Sessions.GetProvider(sessionID)
		if !ok {
			r.failSession(sessionID, "provider settings missing")
			return
		}
		sess, ok := r.Sessions.Get(sessionID)
		if !ok {
			return
		}

		if max > 0 && iterations >= max {
			r.failSession(sessionID, iterationCeilingMessage)
			return
		}

		adapter, ok := r.Providers[settings.Provider]
		if !ok {
			r.failSession(sessionID, "unknown provider: "+settings.Provider)
			return
		}

		log := r.Sessions.GetMessages(sessionID)
		var messages []map[string]any
		var toolDefs []map[string]any
		switch settings.Provider {
		case "anthropic":
			messages = transcode.BuildAnthropicMessages(log)
			toolDefs = r.Tools.AnthropicToolDefs()
		default:
			messages = transcode.BuildOpenAIMessages(log)
			toolDefs = r.Tools.OpenAIToolDefs()
		}

		result, err := adapter.Complete(ctx, provider.Request{
			APIKey:   settings.APIKey,
			Model:    settings.Model,
			BaseURL:  settings.BaseURL,
			Messages: messages,
			Tools:    toolDefs,
		}, func(ev provider.StreamEvent) {
			r.emitStreamEvent(sessionID, ev)
		})
		if err != nil {
			r.failSession(sessionID, err.Error())
			return
		}

		if len(result.ContentBlocks) > 0 {
			entry := map[string]any{
				"type": "assistant",
				"message": map[string]any{
					"content": blocksToAny(result.ContentBlocks),
				},
			}
			r.Sessions.AddMessage(sessionID, entry)
			r.Emit.Emit(sessionID, "stream.message", entry)
		}

		if len(result.ToolCalls) == 0 {
			r.Sessions.Update(sessionID, session.StatusCompleted, nil, nil, "")
			r.emitStatus(sessionID)
			return
		}

		iterations++

		for _, call := range result.ToolCalls {
			if !r.dispatchTool(ctx, sessionID, sess.Cwd, settings, call) {
				return
			}
		}
	}
}

func blocksToAny(blocks []map[string]any) []any {
	out := make([]any, len(blocks))
	for i, b := range blocks {
		out[i] = b
	}
	return out
}

// dispatchTool runs the permission workflow and execution for one tool
// call, per spec §4.6. It returns false when a fatal (session-level)
// error occurred and the caller must stop the loop.
func (r *Runner) dispatchTool(ctx context.Context, sessionID, cwd string, settings session.ProviderSettings, call provider.ToolCall) bool {
	var effectiveInput any

	autoAllow := settings.PermissionMode == "auto" && call.Name != "AskUserQuestion"
	if autoAllow {
		effectiveInput = call.Input
	} else {
		ch, err := r.Sessions.RegisterPermission(call.ID)
		if err != nil {
			r.failSession(sessionID, err.Error())
			return false
		}
		r.Emit.Emit(sessionID, "permission.request", map[string]any{
			"toolUseId": call.ID,
			"toolName":  call.Name,
			"input":     call.Input,
		})

		select {
		case result := <-ch:
			behavior, _ := result["behavior"].(string)
			if behavior != "allow" {
				message, _ := result["message"].(string)
				if message == "" {
					message = "User denied the request."
				}
				r.recordToolResult(sessionID, call.ID, message, true)
				return true
			}
			if updated, ok := result["updatedInput"]; ok {
				effectiveInput = updated
			} else {
				effectiveInput = call.Input
			}
		case <-time.After(permissionTimeout):
			r.failSession(sessionID, "permission request timed out")
			return false
		case <-ctx.Done():
			r.failSession(sessionID, "permission request cancelled")
			return false
		}
	}

	if call.Name == "AskUserQuestion" {
		r.recordToolResult(sessionID, call.ID, transcode.Stringify(effectiveInput), false)
		return true
	}

	inputMap, _ := effectiveInput.(map[string]any)
	result := r.Tools.Execute(ctx, call.Name, inputMap, cwd)
	r.recordToolResult(sessionID, call.ID, result.Content, result.IsError)
	return true
}

func (r *Runner) recordToolResult(sessionID, toolUseID, content string, isError bool) {
	entry := map[string]any{
		"type": "user",
		"message": map[string]any{
			"content": []any{
				map[string]any{
					"type":        "tool_result",
					"tool_use_id": toolUseID,
					"content":     content,
					"is_error":    isError,
				},
			},
		},
	}
	r.Sessions.AddMessage(sessionID, entry)
	r.Emit.Emit(sessionID, "stream.message", entry)
}

func (r *Runner) emitStreamEvent(sessionID string, ev provider.StreamEvent) {
	event := map[string]any{"type": ev.Type}
	if ev.Delta != nil {
		event["delta"] = ev.Delta
	}
	r.Emit.Emit(sessionID, "stream.message", map[string]any{
		"type":  "stream_event",
		"event": event,
	})
}

func (r *Runner) failSession(sessionID, message string) {
	r.Sessions.Update(sessionID, session.StatusError, nil, nil, message)
	r.emitStatus(sessionID)
}

func (r *Runner) emitStatus(sessionID string) {
	sess, ok := r.Sessions.Get(sessionID)
	if !ok {
		return
	}
	payload := map[string]any{
		"sessionId": sess.ID,
		"status":    string(sess.Status),
		"updatedAt": sess.UpdatedAt,
	}
	if sess.Error != "" {
		payload["error"] = sess.Error
	}
	r.Emit.Emit(sessionID, "session.status", payload)
}
