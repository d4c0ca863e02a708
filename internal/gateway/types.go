// Package gateway implements the event bus and client command handler
// (C7): it translates inbound client commands into session-registry
// mutations or runner spawns, and emits outbound server events to every
// connected UI, per spec §4.7/§6.
package gateway

import "encoding/json"

// ClientCommand is the inbound envelope: {type, payload}, per spec §6.
type ClientCommand struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ServerEvent is the outbound envelope, identically shaped.
type ServerEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// SessionStartPayload is the SessionStart command's payload.
type SessionStartPayload struct {
	Title          string   `json:"title"`
	Prompt         string   `json:"prompt"`
	Cwd            string   `json:"cwd"`
	Provider       string   `json:"provider"`
	APIKey         string   `json:"apiKey"`
	Model          string   `json:"model"`
	BaseURL        string   `json:"baseUrl"`
	PermissionMode string   `json:"permissionMode"`
	AllowedTools   []string `json:"allowedTools"`
}

// SessionContinuePayload is the SessionContinue command's payload.
type SessionContinuePayload struct {
	SessionID string `json:"sessionId"`
	Prompt    string `json:"prompt"`
}

// SessionIDPayload covers SessionHistory, SessionStop, and SessionDelete,
// each of which carries only a session id.
type SessionIDPayload struct {
	SessionID string `json:"sessionId"`
}

// PermissionResponsePayload is the PermissionResponse command's payload.
type PermissionResponsePayload struct {
	ToolUseID string         `json:"toolUseId"`
	Result    map[string]any `json:"result"`
}
