package gateway

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/opencowork/opencowork/internal/session"
)

// handleCommand dispatches one decoded ClientCommand per the table in
// spec §4.7. c identifies the originating connection and is used only to
// answer an unknown command type; every other outcome, including payload
// and validation errors, is broadcast to all connected clients, per the
// emit primitive's "best-effort, fire-and-forget" contract.
func (s *Server) handleCommand(ctx context.Context, c *conn, cmd ClientCommand) {
	switch cmd.Type {
	case "session.list":
		s.handleSessionList()

	case "session.history":
		s.handleSessionHistory(cmd.Payload)

	case "session.start":
		s.handleSessionStart(ctx, cmd.Payload)

	case "session.continue":
		s.handleSessionContinue(ctx, cmd.Payload)

	case "session.stop":
		s.handleSessionStop(cmd.Payload)

	case "session.delete":
		s.handleSessionDelete(cmd.Payload)

	case "permission.response":
		s.handlePermissionResponse(cmd.Payload)

	default:
		s.emitTo(c, "runner.error", map[string]any{"error": "unknown command: " + cmd.Type})
	}
}

func (s *Server) handleSessionList() {
	sessions := s.Sessions.ListSessions()
	s.broadcast("session.list", map[string]any{"sessions": sessionsToPayload(sessions)})
}

func (s *Server) handleSessionHistory(raw json.RawMessage) {
	var p SessionIDPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		s.broadcast("runner.error", map[string]any{"error": "invalid session.history payload"})
		return
	}

	status := session.StatusIdle
	if sess, ok := s.Sessions.Get(p.SessionID); ok {
		status = sess.Status
	}
	s.broadcast("session.history", map[string]any{
		"sessionId": p.SessionID,
		"status":    string(status),
		"messages":  s.Sessions.GetMessages(p.SessionID),
	})
}

func (s *Server) handleSessionStart(ctx context.Context, raw json.RawMessage) {
	var p SessionStartPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		s.broadcast("runner.error", map[string]any{"error": "invalid session.start payload"})
		return
	}

	apiKey := strings.TrimSpace(p.APIKey)
	model := strings.TrimSpace(p.Model)
	if apiKey == "" || model == "" {
		s.broadcast("runner.error", map[string]any{"error": "apiKey and model are required"})
		return
	}

	permissionMode := p.PermissionMode
	if permissionMode == "" {
		permissionMode = "ask"
	}

	settings := session.ProviderSettings{
		Provider:       p.Provider,
		APIKey:         apiKey,
		Model:          model,
		BaseURL:        session.NormalizeBaseURL(p.BaseURL),
		PermissionMode: permissionMode,
	}

	sess := s.Sessions.Create(p.Title, p.Cwd, settings)
	s.emitSessionStatus(sess)

	promptEntry := map[string]any{"type": "user_prompt", "prompt": p.Prompt}
	_ = s.Sessions.AddMessage(sess.ID, promptEntry)
	s.Emit(sess.ID, "stream.user_prompt", promptEntry)

	// The runner outlives this connection's request context: a client
	// disconnecting mid-stream must not cancel an in-flight model call,
	// per spec §5's "SessionStop is advisory" framing.
	go s.Runner.Run(context.Background(), sess.ID)
}

func (s *Server) handleSessionContinue(ctx context.Context, raw json.RawMessage) {
	var p SessionContinuePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		s.broadcast("runner.error", map[string]any{"error": "invalid session.continue payload"})
		return
	}

	if _, ok := s.Sessions.GetProvider(p.SessionID); !ok {
		s.broadcast("runner.error", map[string]any{"sessionId": p.SessionID, "error": "session not found"})
		return
	}

	sess, ok := s.Sessions.Update(p.SessionID, session.StatusRunning, nil, nil, "")
	if !ok {
		s.broadcast("runner.error", map[string]any{"sessionId": p.SessionID, "error": "session not found"})
		return
	}
	s.emitSessionStatus(sess)

	promptEntry := map[string]any{"type": "user_prompt", "prompt": p.Prompt}
	_ = s.Sessions.AddMessage(sess.ID, promptEntry)
	s.Emit(sess.ID, "stream.user_prompt", promptEntry)

	// The runner outlives this connection's request context: a client
	// disconnecting mid-stream must not cancel an in-flight model call,
	// per spec §5's "SessionStop is advisory" framing.
	go s.Runner.Run(context.Background(), sess.ID)
}

func (s *Server) handleSessionStop(raw json.RawMessage) {
	var p SessionIDPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return
	}
	// SessionStop is advisory only: it flips status without interrupting
	// an in-flight provider stream, per spec §5/§9.
	if sess, ok := s.Sessions.Update(p.SessionID, session.StatusIdle, nil, nil, ""); ok {
		s.emitSessionStatus(sess)
	}
}

func (s *Server) handleSessionDelete(raw json.RawMessage) {
	var p SessionIDPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return
	}
	s.Sessions.Delete(p.SessionID)
	s.broadcast("session.deleted", map[string]any{"sessionId": p.SessionID})
}

func (s *Server) handlePermissionResponse(raw json.RawMessage) {
	var p PermissionResponsePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return
	}
	// A missing pending entry (late or duplicate response) is silently
	// discarded, per spec §4.3/§4.7.
	s.Sessions.ResolvePermission(p.ToolUseID, p.Result)
}

func (s *Server) emitSessionStatus(sess *session.Session) {
	payload := map[string]any{
		"sessionId": sess.ID,
		"status":    string(sess.Status),
		"createdAt": sess.CreatedAt,
		"updatedAt": sess.UpdatedAt,
	}
	if sess.Title != "" {
		payload["title"] = sess.Title
	}
	if sess.Cwd != "" {
		payload["cwd"] = sess.Cwd
	}
	if sess.Error != "" {
		payload["error"] = sess.Error
	}
	s.broadcast("session.status", payload)
}

func sessionsToPayload(sessions []*session.Session) []map[string]any {
	out := make([]map[string]any, len(sessions))
	for i, sess := range sessions {
		entry := map[string]any{
			"sessionId": sess.ID,
			"status":    string(sess.Status),
			"createdAt": sess.CreatedAt,
			"updatedAt": sess.UpdatedAt,
		}
		if sess.Title != "" {
			entry["title"] = sess.Title
		}
		if sess.Cwd != "" {
			entry["cwd"] = sess.Cwd
		}
		out[i] = entry
	}
	return out
}
