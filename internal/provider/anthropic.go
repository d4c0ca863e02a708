package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/opencowork/opencowork/internal/sse"
)

const defaultAnthropicURL = "https://api.anthropic.com/v1/messages"

// Anthropic drives the Anthropic messages API's streaming protocol.
type Anthropic struct{}

func (Anthropic) Name() string { return "anthropic" }

type anthropicBlockKind int

const (
	anthropicText anthropicBlockKind = iota
	anthropicToolUse
)

type anthropicBlock struct {
	kind anthropicBlockKind

	text strings.Builder

	id        string
	toolName  string
	inputJSON strings.Builder
	inputHint any
}

func (Anthropic) Complete(ctx context.Context, req Request, emit func(StreamEvent)) (*Result, error) {
	body, err := json.Marshal(map[string]any{
		"model":      req.Model,
		"messages":   req.Messages,
		"stream":     true,
		"max_tokens": 1024,
		"tools":      req.Tools,
	})
	if err != nil {
		return nil, err
	}

	url := resolveURL(req.BaseURL, defaultAnthropicURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-api-key", req.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := httpClient().Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Anthropic 请求失败(%d): %s", resp.StatusCode, string(errBody))
	}

	blocks := map[int]*anthropicBlock{}
	decoder := sse.NewDecoder()
	buf := make([]byte, 4096)

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			decoder.Feed(buf[:n])
			for _, ev := range decoder.Drain() {
				if strings.TrimSpace(ev.Data) == "" {
					continue
				}
				var data map[string]any
				if err := json.Unmarshal([]byte(ev.Data), &data); err != nil {
					return nil, fmt.Errorf("stream parse failed: %w", err)
				}
				if err := handleAnthropicEvent(ev.Type, data, blocks, emit); err != nil {
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

	return finalizeAnthropic(blocks), nil
}

func handleAnthropicEvent(eventType string, data map[string]any, blocks map[int]*anthropicBlock, emit func(StreamEvent)) error {
	switch eventType {
	case "content_block_start":
		index := intField(data, "index")
		cb, _ := data["content_block"].(map[string]any)
		cbType, _ := cb["type"].(string)
		switch cbType {
		case "text":
			blocks[index] = &anthropicBlock{kind: anthropicText}
			if emit != nil {
				emit(StreamEvent{Type: "content_block_start"})
			}
		case "tool_use":
			id, _ := cb["id"].(string)
			name, _ := cb["name"].(string)
			blocks[index] = &anthropicBlock{
				kind:      anthropicToolUse,
				id:        id,
				toolName:  name,
				inputHint: cb["input"],
			}
		}

	case "content_block_delta":
		index := intField(data, "index")
		delta, _ := data["delta"].(map[string]any)
		deltaType, _ := delta["type"].(string)
		b, ok := blocks[index]
		if !ok {
			return nil
		}
		switch deltaType {
		case "text_delta":
			text, _ := delta["text"].(string)
			b.text.WriteString(text)
			if emit != nil {
				emit(StreamEvent{Type: "content_block_delta", Delta: map[string]any{"type": "text_delta", "text": text}})
			}
		case "input_json_delta":
			partial, _ := delta["partial_json"].(string)
			b.inputJSON.WriteString(partial)
		}

	case "content_block_stop":
		if emit != nil {
			emit(StreamEvent{Type: "content_block_stop"})
		}
	}

	return nil
}

func finalizeAnthropic(blocks map[int]*anthropicBlock) *Result {
	indices := make([]int, 0, len(blocks))
	for i := range blocks {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	res := &Result{}
	for _, i := range indices {
		b := blocks[i]
		switch b.kind {
		case anthropicText:
			if b.text.Len() > 0 {
				res.ContentBlocks = append(res.ContentBlocks, map[string]any{
					"type": "text",
					"text": b.text.String(),
				})
			}
		case anthropicToolUse:
			var parsed any
			raw := strings.TrimSpace(b.inputJSON.String())
			switch {
			case raw != "":
				if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
					parsed = raw
				}
			case b.inputHint != nil:
				parsed = b.inputHint
			default:
				parsed = nil
			}
			res.ToolCalls = append(res.ToolCalls, ToolCall{ID: b.id, Name: b.toolName, Input: parsed})
			res.ContentBlocks = append(res.ContentBlocks, map[string]any{
				"type":  "tool_use",
				"id":    b.id,
				"name":  b.toolName,
				"input": parsed,
			})
		}
	}
	return res
}

func intField(m map[string]any, key string) int {
	v, ok := m[key]
	if !ok {
		return 0
	}
	f, ok := v.(float64)
	if !ok {
		return 0
	}
	return int(f)
}
