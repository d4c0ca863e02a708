package transcode

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringify_IdentityForStrings(t *testing.T) {
	assert.Equal(t, "abc", Stringify("abc"))
}

func TestStringify_RoundTripsStructurally(t *testing.T) {
	v := map[string]any{"a": float64(1), "b": []any{"x", "y"}}
	s := Stringify(v)

	var back any
	require.NoError(t, json.Unmarshal([]byte(s), &back))
	assert.Equal(t, v, back)
}

func TestBuildOpenAIMessages(t *testing.T) {
	log := []map[string]any{
		{"type": "user_prompt", "prompt": "hi"},
		{"type": "assistant", "message": map[string]any{
			"content": []any{
				map[string]any{"type": "text", "text": "hello"},
				map[string]any{"type": "tool_use", "id": "t1", "name": "Read", "input": map[string]any{"file_path": "a.txt"}},
			},
		}},
		{"type": "user", "message": map[string]any{
			"content": []any{
				map[string]any{"type": "tool_result", "tool_use_id": "t1", "content": "abc", "is_error": false},
			},
		}},
	}

	out := BuildOpenAIMessages(log)
	require.Len(t, out, 3)
	assert.Equal(t, "user", out[0]["role"])
	assert.Equal(t, "hi", out[0]["content"])

	assert.Equal(t, "assistant", out[1]["role"])
	assert.Equal(t, "hello", out[1]["content"])
	toolCalls := out[1]["tool_calls"].([]map[string]any)
	require.Len(t, toolCalls, 1)
	assert.Equal(t, "t1", toolCalls[0]["id"])

	assert.Equal(t, "tool", out[2]["role"])
	assert.Equal(t, "t1", out[2]["tool_call_id"])
}

func TestBuildOpenAIMessages_SkipsEmptyAssistant(t *testing.T) {
	log := []map[string]any{
		{"type": "assistant", "message": map[string]any{"content": []any{}}},
	}
	assert.Empty(t, BuildOpenAIMessages(log))
}

func TestBuildAnthropicMessages_CoalescesToolResults(t *testing.T) {
	log := []map[string]any{
		{"type": "user_prompt", "prompt": "hi"},
		{"type": "assistant", "message": map[string]any{
			"content": []any{
				map[string]any{"type": "tool_use", "id": "t1", "name": "Read", "input": map[string]any{}},
				map[string]any{"type": "tool_use", "id": "t2", "name": "Read", "input": map[string]any{}},
			},
		}},
		{"type": "user", "message": map[string]any{
			"content": []any{map[string]any{"type": "tool_result", "tool_use_id": "t1", "content": "a"}},
		}},
		{"type": "user", "message": map[string]any{
			"content": []any{map[string]any{"type": "tool_result", "tool_use_id": "t2", "content": "b"}},
		}},
	}

	out := BuildAnthropicMessages(log)
	require.Len(t, out, 3)
	assert.Equal(t, "user", out[0]["role"])
	assert.Equal(t, "assistant", out[1]["role"])
	assert.Equal(t, "user", out[2]["role"])

	content := out[2]["content"].([]any)
	require.Len(t, content, 2)
}

func TestBuildAnthropicMessages_NonToolResultUserFlushesBuffer(t *testing.T) {
	log := []map[string]any{
		{"type": "user", "message": map[string]any{
			"content": []any{map[string]any{"type": "tool_result", "tool_use_id": "t1", "content": "a"}},
		}},
		{"type": "user", "message": map[string]any{
			"content": []any{map[string]any{"type": "text", "text": "interrupt"}},
		}},
	}

	out := BuildAnthropicMessages(log)
	require.Len(t, out, 2)
	first := out[0]["content"].([]any)
	require.Len(t, first, 1)
	second := out[1]["content"].([]any)
	require.Len(t, second, 1)
}
