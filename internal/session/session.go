// Package session implements the thread-safe registry of sessions,
// per-session message logs, per-session provider settings, and the
// pending-permission rendezvous table that gates tool calls.
//
// The registry is the only shared mutable state in the process; every
// other component either owns private state or receives a defensive copy
// from here. Locking is per sub-map (sessions, messages, providers,
// pending) rather than global, matching the concurrency model the runner
// depends on.
package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Status is a session's lifecycle state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// Session is the externally visible record for one conversation.
type Session struct {
	ID        string
	Title     string
	Status    Status
	Cwd       string
	Provider  string
	Model     string
	CreatedAt int64 // milliseconds since epoch
	UpdatedAt int64
	Error     string
}

func cloneSession(s *Session) *Session {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}

// ProviderSettings are the immutable per-session provider credentials and
// defaults; they are never included in exported session history.
type ProviderSettings struct {
	Provider       string // "anthropic" | "openai"
	APIKey         string
	Model          string
	BaseURL        string
	PermissionMode string // "ask" | "auto"
}

// recentCwdLimit bounds how many distinct working directories the
// registry remembers for ListRecentCwds, independent of any caller-given
// limit.
const recentCwdLimit = 20

// Registry is the concurrency-safe store described in spec §4.3.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	messagesMu sync.RWMutex
	messages   map[string][]map[string]any

	providersMu sync.RWMutex
	providers   map[string]ProviderSettings

	pendingMu sync.Mutex
	pending   map[string]chan map[string]any

	cwdMu      sync.Mutex
	recentCwds []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions:  map[string]*Session{},
		messages:  map[string][]map[string]any{},
		providers: map[string]ProviderSettings{},
		pending:   map[string]chan map[string]any{},
	}
}

// ListSessions returns every session sorted ascending by UpdatedAt.
func (r *Registry) ListSessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, cloneSession(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt < out[j].UpdatedAt })
	return out
}

// Get returns the session with the given id, or false if unknown.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	return cloneSession(s), true
}

// GetMessages returns the message log for id, or an empty slice if the
// session is unknown.
func (r *Registry) GetMessages(id string) []map[string]any {
	r.messagesMu.RLock()
	defer r.messagesMu.RUnlock()

	msgs := r.messages[id]
	out := make([]map[string]any, len(msgs))
	copy(out, msgs)
	return out
}

// Create makes a new Running session with a monotonic id and records its
// provider settings. cwd, if non-empty, is recorded in the recent-cwds
// list.
func (r *Registry) Create(title, cwd string, settings ProviderSettings) *Session {
	now := time.Now().UnixMilli()
	s := &Session{
		ID:        fmt.Sprintf("session-%d", now),
		Title:     title,
		Status:    StatusRunning,
		Cwd:       cwd,
		Provider:  settings.Provider,
		Model:     settings.Model,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.providersMu.Lock()
	r.providers[s.ID] = settings
	r.providersMu.Unlock()

	if cwd != "" {
		r.rememberCwd(cwd)
	}

	return cloneSession(s)
}

// Update mutates status and, when non-nil, title/cwd; it bumps UpdatedAt.
// It returns false if the session does not exist.
func (r *Registry) Update(id string, status Status, title, cwd *string, errMsg string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	s.Status = status
	s.Error = errMsg
	if title != nil {
		s.Title = *title
	}
	if cwd != nil {
		s.Cwd = *cwd
	}
	s.UpdatedAt = time.Now().UnixMilli()
	if s.Cwd != "" {
		r.rememberCwd(s.Cwd)
	}
	return cloneSession(s), true
}

// AddMessage appends value to id's message log. It is a no-op error if
// the session does not exist.
func (r *Registry) AddMessage(id string, value map[string]any) error {
	r.mu.RLock()
	_, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return errors.New("session not found")
	}

	r.messagesMu.Lock()
	r.messages[id] = append(r.messages[id], value)
	r.messagesMu.Unlock()
	return nil
}

// GetProvider returns the provider settings for id.
func (r *Registry) GetProvider(id string) (ProviderSettings, bool) {
	r.providersMu.RLock()
	defer r.providersMu.RUnlock()

	s, ok := r.providers[id]
	return s, ok
}

// rememberCwd inserts cwd at the front of the recent-cwd list,
// deduplicating and capping at recentCwdLimit.
func (r *Registry) rememberCwd(cwd string) {
	r.cwdMu.Lock()
	defer r.cwdMu.Unlock()

	filtered := r.recentCwds[:0:0]
	for _, c := range r.recentCwds {
		if c != cwd {
			filtered = append(filtered, c)
		}
	}
	filtered = append([]string{cwd}, filtered...)
	if len(filtered) > recentCwdLimit {
		filtered = filtered[:recentCwdLimit]
	}
	r.recentCwds = filtered
}

// ListRecentCwds returns up to limit most-recently-used working
// directories, most recent first. limit is clamped to [1, 20].
func (r *Registry) ListRecentCwds(limit int) []string {
	if limit < 1 {
		limit = 1
	}
	if limit > recentCwdLimit {
		limit = recentCwdLimit
	}

	r.cwdMu.Lock()
	defer r.cwdMu.Unlock()

	if limit > len(r.recentCwds) {
		limit = len(r.recentCwds)
	}
	out := make([]string, limit)
	copy(out, r.recentCwds[:limit])
	return out
}

// RegisterPermission creates a one-shot rendezvous channel keyed by
// toolUseID. It fails if an entry is already pending for that id.
func (r *Registry) RegisterPermission(toolUseID string) (<-chan map[string]any, error) {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()

	if _, exists := r.pending[toolUseID]; exists {
		return nil, fmt.Errorf("permission already pending for %q", toolUseID)
	}
	ch := make(chan map[string]any, 1)
	r.pending[toolUseID] = ch
	return ch, nil
}

// ResolvePermission consumes and fulfills the pending entry for
// toolUseID, if any. It returns false silently when no entry is pending
// (late or duplicate responses are ignored).
func (r *Registry) ResolvePermission(toolUseID string, result map[string]any) bool {
	r.pendingMu.Lock()
	ch, ok := r.pending[toolUseID]
	if ok {
		delete(r.pending, toolUseID)
	}
	r.pendingMu.Unlock()

	if !ok {
		return false
	}
	ch <- result
	return true
}

// Delete removes the session, its messages, and its provider settings.
// It does not cancel any pending permission for the session; those fail
// by the runner's own timeout, per spec §4.3.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()

	r.messagesMu.Lock()
	delete(r.messages, id)
	r.messagesMu.Unlock()

	r.providersMu.Lock()
	delete(r.providers, id)
	r.providersMu.Unlock()
}

// NormalizeBaseURL trims whitespace and returns "" for an empty result,
// per spec §4.7's base-URL normalization rule.
func NormalizeBaseURL(raw string) string {
	return strings.TrimSpace(raw)
}
