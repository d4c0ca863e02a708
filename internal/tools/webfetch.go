package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/opencowork/opencowork/internal/toolkit"
)

// webFetchTimeout bounds a single WebFetch call, per spec §4.2/§5.
const webFetchTimeout = 30 * time.Second

// webFetchMaxBytes is the body size beyond which content is truncated.
const webFetchMaxBytes = 8000

// webFetchTool issues an HTTP GET and returns a truncated text body.
type webFetchTool struct{}

func (webFetchTool) Name() string { return "WebFetch" }

func (webFetchTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "URL to fetch.",
			},
		},
		"required": []string{"url"},
	}
}

func (webFetchTool) Execute(ctx context.Context, input map[string]any, _ string) toolkit.Result {
	url, errResult := toolkit.RequireString(input, "url")
	if errResult != nil {
		return *errResult
	}

	fetchCtx, cancel := context.WithTimeout(ctx, webFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, url, nil)
	if err != nil {
		return toolkit.Error(err.Error())
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return toolkit.Error(err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return toolkit.Error(err.Error())
	}

	text := string(body)
	if len(body) > webFetchMaxBytes {
		truncatedBytes := len(body) - webFetchMaxBytes
		text = fmt.Sprintf("%s...\n[truncated %d bytes]", string(body[:webFetchMaxBytes]), truncatedBytes)
	}

	return toolkit.Ok(fmt.Sprintf("Status: %d\n\n%s", resp.StatusCode, text))
}
