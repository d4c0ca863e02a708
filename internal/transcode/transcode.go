// Package transcode converts the canonical internal message log into each
// provider's request payload shape. One function per provider; both are
// pure over the log, with no I/O or session mutation.
package transcode

import (
	"encoding/json"

	"github.com/opencowork/opencowork/internal/jsonval"
)

// Stringify returns v unchanged when it is already a JSON string,
// otherwise its compact JSON serialization. It is the identity on
// JSON-string values and round-trips structurally for everything else.
func Stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// BuildOpenAIMessages walks the log and produces the OpenAI chat
// completions message array, per spec §4.4.1.
func BuildOpenAIMessages(log []map[string]any) []map[string]any {
	var out []map[string]any

	for _, rec := range log {
		switch jsonval.String(rec, "type", "") {
		case "user_prompt":
			out = append(out, map[string]any{
				"role":    "user",
				"content": jsonval.String(rec, "prompt", ""),
			})

		case "assistant":
			msg := jsonval.Map(rec, "message")
			blocks := jsonval.Slice(msg, "content")
			var text string
			var toolCalls []map[string]any
			for _, b := range blocks {
				block, ok := b.(map[string]any)
				if !ok {
					continue
				}
				switch jsonval.String(block, "type", "") {
				case "text":
					text += jsonval.String(block, "text", "")
				case "tool_use":
					toolCalls = append(toolCalls, map[string]any{
						"id":   jsonval.String(block, "id", ""),
						"type": "function",
						"function": map[string]any{
							"name":      jsonval.String(block, "name", ""),
							"arguments": Stringify(block["input"]),
						},
					})
				}
			}
			if text == "" && len(toolCalls) == 0 {
				continue
			}
			msgOut := map[string]any{
				"role":    "assistant",
				"content": text,
			}
			if len(toolCalls) > 0 {
				msgOut["tool_calls"] = toolCalls
			}
			out = append(out, msgOut)

		case "user":
			msg := jsonval.Map(rec, "message")
			for _, b := range jsonval.Slice(msg, "content") {
				block, ok := b.(map[string]any)
				if !ok || jsonval.String(block, "type", "") != "tool_result" {
					continue
				}
				out = append(out, map[string]any{
					"role":         "tool",
					"tool_call_id": jsonval.String(block, "tool_use_id", ""),
					"content":      Stringify(block["content"]),
				})
			}
		}
	}

	return out
}

// BuildAnthropicMessages walks the log and produces the Anthropic
// messages-API payload, per spec §4.4.2. Consecutive tool_result-only
// user records are coalesced into a single user turn.
func BuildAnthropicMessages(log []map[string]any) []map[string]any {
	var out []map[string]any
	var pending []any

	flush := func() {
		if len(pending) == 0 {
			return
		}
		out = append(out, map[string]any{
			"role":    "user",
			"content": pending,
		})
		pending = nil
	}

	for _, rec := range log {
		switch jsonval.String(rec, "type", "") {
		case "user_prompt":
			flush()
			out = append(out, map[string]any{
				"role": "user",
				"content": []any{
					map[string]any{"type": "text", "text": jsonval.String(rec, "prompt", "")},
				},
			})

		case "assistant":
			flush()
			msg := jsonval.Map(rec, "message")
			out = append(out, map[string]any{
				"role":    "assistant",
				"content": jsonval.Slice(msg, "content"),
			})

		case "user":
			msg := jsonval.Map(rec, "message")
			blocks := jsonval.Slice(msg, "content")
			if allToolResults(blocks) {
				pending = append(pending, blocks...)
			} else {
				flush()
				out = append(out, map[string]any{
					"role":    "user",
					"content": blocks,
				})
			}
		}
	}

	flush()
	return out
}

func allToolResults(blocks []any) bool {
	if len(blocks) == 0 {
		return false
	}
	for _, b := range blocks {
		block, ok := b.(map[string]any)
		if !ok || jsonval.String(block, "type", "") != "tool_result" {
			return false
		}
	}
	return true
}
