package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/opencowork/opencowork/internal/sse"
)

const defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"

// OpenAI drives the OpenAI chat completions API's streaming protocol.
type OpenAI struct{}

func (OpenAI) Name() string { return "openai" }

type openaiToolBuilder struct {
	id        string
	name      string
	arguments strings.Builder
}

func (OpenAI) Complete(ctx context.Context, req Request, emit func(StreamEvent)) (*Result, error) {
	body, err := json.Marshal(map[string]any{
		"model":       req.Model,
		"messages":    req.Messages,
		"stream":      true,
		"tools":       req.Tools,
		"tool_choice": "auto",
	})
	if err != nil {
		return nil, err
	}

	url := resolveURL(req.BaseURL, defaultOpenAIURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)

	resp, err := httpClient().Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("OpenAI 请求失败(%d): %s", resp.StatusCode, string(errBody))
	}

	var assistantText strings.Builder
	var builders []*openaiToolBuilder
	started := false
	done := false

	decoder := sse.NewDecoder()
	buf := make([]byte, 4096)

	for !done {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			decoder.Feed(buf[:n])
			for _, ev := range decoder.Drain() {
				if strings.TrimSpace(ev.Data) == "" {
					continue
				}
				if sse.IsDone(ev) {
					done = true
					break
				}
				var chunk map[string]any
				if err := json.Unmarshal([]byte(ev.Data), &chunk); err != nil {
					return nil, fmt.Errorf("stream parse failed: %w", err)
				}
				if err := handleOpenAIChunk(chunk, &assistantText, &builders, &started, emit); err != nil {
					return nil, err
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, readErr
		}
	}

	if started && emit != nil {
		emit(StreamEvent{Type: "content_block_stop"})
	}

	return finalizeOpenAI(assistantText.String(), builders), nil
}

func handleOpenAIChunk(chunk map[string]any, assistantText *strings.Builder, builders *[]*openaiToolBuilder, started *bool, emit func(StreamEvent)) error {
	choices, _ := chunk["choices"].([]any)
	if len(choices) == 0 {
		return nil
	}
	choice, _ := choices[0].(map[string]any)
	delta, _ := choice["delta"].(map[string]any)
	if delta == nil {
		return nil
	}

	if content, ok := delta["content"].(string); ok {
		if !*started {
			*started = true
			if emit != nil {
				emit(StreamEvent{Type: "content_block_start"})
			}
		}
		assistantText.WriteString(content)
		if emit != nil {
			emit(StreamEvent{Type: "content_block_delta", Delta: map[string]any{"type": "text_delta", "text": content}})
		}
	}

	if calls, ok := delta["tool_calls"].([]any); ok {
		for _, c := range calls {
			entry, _ := c.(map[string]any)
			index := intField(entry, "index")
			for len(*builders) <= index {
				*builders = append(*builders, &openaiToolBuilder{})
			}
			b := (*builders)[index]
			if id, ok := entry["id"].(string); ok {
				b.id = id
			}
			if fn, ok := entry["function"].(map[string]any); ok {
				if name, ok := fn["name"].(string); ok {
					b.name = name
				}
				if args, ok := fn["arguments"].(string); ok {
					b.arguments.WriteString(args)
				}
			}
		}
	}

	return nil
}

func finalizeOpenAI(assistantText string, builders []*openaiToolBuilder) *Result {
	res := &Result{}
	if assistantText != "" {
		res.ContentBlocks = append(res.ContentBlocks, map[string]any{
			"type": "text",
			"text": assistantText,
		})
	}

	for i, b := range builders {
		if b == nil {
			continue
		}
		name := b.name
		if name == "" {
			name = "UnknownTool"
		}
		id := b.id
		if id == "" {
			id = fmt.Sprintf("tool-%d", i)
		}

		var input any
		raw := strings.TrimSpace(b.arguments.String())
		switch {
		case raw == "":
			input = nil
		default:
			if err := json.Unmarshal([]byte(raw), &input); err != nil {
				input = raw
			}
		}

		res.ToolCalls = append(res.ToolCalls, ToolCall{ID: id, Name: name, Input: input})
		res.ContentBlocks = append(res.ContentBlocks, map[string]any{
			"type":  "tool_use",
			"id":    id,
			"name":  name,
			"input": input,
		})
	}

	return res
}
