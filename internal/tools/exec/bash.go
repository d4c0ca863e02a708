// Package exec implements the Bash tool executor, running commands
// through a login `sh` (`sh -lc`).
package exec

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/opencowork/opencowork/internal/toolkit"
)

// BashTool runs a shell command via `sh -lc`.
type BashTool struct{}

func (BashTool) Name() string { return "Bash" }

func (BashTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"command": map[string]any{
				"type":        "string",
				"description": "Shell command to execute.",
			},
		},
		"required": []string{"command"},
	}
}

// Execute runs command through `sh -lc`, optionally in cwd, and combines
// stdout and stderr. is_error is set iff the process exits non-zero.
func (BashTool) Execute(ctx context.Context, input map[string]any, cwd string) toolkit.Result {
	command, errResult := toolkit.RequireString(input, "command")
	if errResult != nil {
		return *errResult
	}

	cmd := exec.CommandContext(ctx, "sh", "-lc", command)
	if cwd != "" {
		cmd.Dir = cwd
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	var parts []string
	if out := stdout.String(); out != "" {
		parts = append(parts, out)
	}
	if errOut := stderr.String(); errOut != "" {
		parts = append(parts, errOut)
	}
	combined := strings.Join(parts, "\n")

	if err != nil {
		return toolkit.Error(combined)
	}
	return toolkit.Result{Content: combined}
}
