package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropic_TextOnlyStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		frames := []string{
			`event: content_block_start` + "\n" + `data: {"type":"content_block_start","index":0,"content_block":{"type":"text"}}` + "\n\n",
			`event: content_block_delta` + "\n" + `data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"hello"}}` + "\n\n",
			`event: content_block_stop` + "\n" + `data: {"type":"content_block_stop","index":0}` + "\n\n",
		}
		for _, f := range frames {
			w.Write([]byte(f))
		}
	}))
	defer srv.Close()

	var events []StreamEvent
	a := Anthropic{}
	res, err := a.Complete(context.Background(), Request{
		APIKey: "k", Model: "claude", BaseURL: srv.URL,
	}, func(ev StreamEvent) { events = append(events, ev) })

	require.NoError(t, err)
	require.Len(t, res.ContentBlocks, 1)
	assert.Equal(t, "text", res.ContentBlocks[0]["type"])
	assert.Equal(t, "hello", res.ContentBlocks[0]["text"])
	assert.Empty(t, res.ToolCalls)

	require.Len(t, events, 3)
	assert.Equal(t, "content_block_start", events[0].Type)
	assert.Equal(t, "content_block_delta", events[1].Type)
	assert.Equal(t, "content_block_stop", events[2].Type)
}

func TestAnthropic_ToolUseBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`event: content_block_start` + "\n" + `data: {"type":"content_block_start","index":0,"content_block":{"type":"tool_use","id":"t1","name":"Read","input":{}}}` + "\n\n"))
		w.Write([]byte(`event: content_block_delta` + "\n" + `data: {"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"{\"file_path\":"}}` + "\n\n"))
		w.Write([]byte(`event: content_block_delta` + "\n" + `data: {"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"\"a.txt\"}"}}` + "\n\n"))
		w.Write([]byte(`event: content_block_stop` + "\n" + `data: {"type":"content_block_stop","index":0}` + "\n\n"))
	}))
	defer srv.Close()

	a := Anthropic{}
	res, err := a.Complete(context.Background(), Request{APIKey: "k", Model: "claude", BaseURL: srv.URL}, nil)
	require.NoError(t, err)
	require.Len(t, res.ToolCalls, 1)
	assert.Equal(t, "t1", res.ToolCalls[0].ID)
	assert.Equal(t, "Read", res.ToolCalls[0].Name)
	input, ok := res.ToolCalls[0].Input.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a.txt", input["file_path"])
}

func TestAnthropic_NonOKStatusFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("bad key"))
	}))
	defer srv.Close()

	a := Anthropic{}
	_, err := a.Complete(context.Background(), Request{APIKey: "k", Model: "claude", BaseURL: srv.URL}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestOpenAI_TextAndToolCallDeltaAccumulation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`data: {"choices":[{"delta":{"content":"he"}}]}` + "\n\n"))
		w.Write([]byte(`data: {"choices":[{"delta":{"content":"llo"}}]}` + "\n\n"))
		w.Write([]byte(`data: {"choices":[{"delta":{"tool_calls":[{"index":0,"id":"c1","function":{"name":"Bash","arguments":"{\"command\":"}}]}}]}` + "\n\n"))
		w.Write([]byte(`data: {"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"\"ls\"}"}}]}}]}` + "\n\n"))
		w.Write([]byte(`data: [DONE]` + "\n\n"))
	}))
	defer srv.Close()

	o := OpenAI{}
	res, err := o.Complete(context.Background(), Request{APIKey: "k", Model: "gpt", BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	require.Len(t, res.ContentBlocks, 2)
	assert.Equal(t, "hello", res.ContentBlocks[0]["text"])

	require.Len(t, res.ToolCalls, 1)
	assert.Equal(t, "c1", res.ToolCalls[0].ID)
	assert.Equal(t, "Bash", res.ToolCalls[0].Name)
	input, ok := res.ToolCalls[0].Input.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ls", input["command"])
}

func TestOpenAI_UnknownToolAndIdDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`data: {"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":""}}]}}]}` + "\n\n"))
		w.Write([]byte(`data: [DONE]` + "\n\n"))
	}))
	defer srv.Close()

	o := OpenAI{}
	res, err := o.Complete(context.Background(), Request{APIKey: "k", Model: "gpt", BaseURL: srv.URL}, nil)
	require.NoError(t, err)
	require.Len(t, res.ToolCalls, 1)
	assert.Equal(t, "UnknownTool", res.ToolCalls[0].Name)
	assert.Equal(t, "tool-0", res.ToolCalls[0].ID)
	assert.Nil(t, res.ToolCalls[0].Input)
}
