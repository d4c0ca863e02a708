package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_UnsupportedToolError(t *testing.T) {
	r := NewRegistry()
	res := r.Execute(context.Background(), "Nope", map[string]any{}, "")
	assert.True(t, res.IsError)
	assert.Equal(t, "Unsupported tool: Nope", res.Content)
}

func TestRegistry_AskUserQuestionNeverDispatches(t *testing.T) {
	r := NewRegistry()
	res := r.Execute(context.Background(), "AskUserQuestion", map[string]any{}, "")
	assert.True(t, res.IsError)
	assert.Equal(t, "Unsupported tool: AskUserQuestion", res.Content)
}

func TestRegistry_ReadWriteEdit(t *testing.T) {
	dir := t.TempDir()
	r := NewRegistry()

	writeRes := r.Execute(context.Background(), "Write", map[string]any{
		"file_path": "a.txt",
		"content":   "abc",
	}, dir)
	require.False(t, writeRes.IsError)
	assert.Equal(t, "Wrote 3 bytes to a.txt", writeRes.Content)

	readRes := r.Execute(context.Background(), "Read", map[string]any{"file_path": "a.txt"}, dir)
	require.False(t, readRes.IsError)
	assert.Equal(t, "abc", readRes.Content)

	editRes := r.Execute(context.Background(), "Edit", map[string]any{
		"file_path":  "a.txt",
		"old_string": "abc",
		"new_string": "xyz",
	}, dir)
	require.False(t, editRes.IsError)

	content, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "xyz", string(content))
}

func TestRegistry_EditMissingOldStringDoesNotModifyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o644))

	r := NewRegistry()
	res := r.Execute(context.Background(), "Edit", map[string]any{
		"file_path":  "a.txt",
		"old_string": "missing",
		"new_string": "new",
	}, dir)

	assert.True(t, res.IsError)
	assert.Equal(t, "Old string not found in file.", res.Content)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(content))
}

func TestRegistry_MissingRequiredField(t *testing.T) {
	r := NewRegistry()
	res := r.Execute(context.Background(), "Read", map[string]any{}, "")
	assert.True(t, res.IsError)
	assert.Equal(t, "Missing required field: file_path", res.Content)
}

func TestRegistry_BashCombinesOutputAndExitCode(t *testing.T) {
	r := NewRegistry()
	res := r.Execute(context.Background(), "Bash", map[string]any{"command": "echo hi"}, "")
	assert.False(t, res.IsError)
	assert.Equal(t, "hi\n", res.Content)

	failRes := r.Execute(context.Background(), "Bash", map[string]any{"command": "exit 1"}, "")
	assert.True(t, failRes.IsError)
}

func TestRegistry_Task(t *testing.T) {
	r := NewRegistry()
	res := r.Execute(context.Background(), "Task", map[string]any{"description": "follow up"}, "")
	assert.False(t, res.IsError)
	assert.Equal(t, "Task noted: follow up", res.Content)
}

func TestRegistry_GlobFindsNestedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "x.go"), []byte("x"), 0o644))

	r := NewRegistry()
	res := r.Execute(context.Background(), "Glob", map[string]any{"pattern": "**/*.go"}, dir)
	assert.False(t, res.IsError)
	assert.Contains(t, res.Content, "x.go")
}

func TestRegistry_WebFetchTruncatesLongBody(t *testing.T) {
	body := strings.Repeat("a", 12000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	r := NewRegistry()
	res := r.Execute(context.Background(), "WebFetch", map[string]any{"url": srv.URL}, "")
	require.False(t, res.IsError)

	want := "Status: 200\n\n" + strings.Repeat("a", 8000) + "...\n[truncated 4000 bytes]"
	assert.Equal(t, want, res.Content)
}

func TestRegistry_ToolDefsIncludeAskUserQuestion(t *testing.T) {
	r := NewRegistry()
	anthropic := r.AnthropicToolDefs()
	found := false
	for _, d := range anthropic {
		if d["name"] == "AskUserQuestion" {
			found = true
		}
	}
	assert.True(t, found)

	openai := r.OpenAIToolDefs()
	found = false
	for _, d := range openai {
		fn := d["function"].(map[string]any)
		if fn["name"] == "AskUserQuestion" {
			found = true
		}
	}
	assert.True(t, found)
}
