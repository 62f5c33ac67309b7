package catalog

import (
	"strings"
	"sync"
	"time"
)

// TerminalState is what the hub knows about one connected terminal: liveness
// plus the catalog version it last reported.
type TerminalState struct {
	TerminalID     string
	CatalogVersion int64
	ContactCount   int
	AppCount       int
	Online         bool
	LastSeen       time.Time
}

// Registry tracks terminal presence in memory. Entries older than the TTL
// count as offline; the catalog rows themselves live in the Store and
// survive a restart.
type Registry struct {
	mu   sync.RWMutex
	data map[string]TerminalState
	ttl  time.Duration
}

func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Registry{
		data: make(map[string]TerminalState),
		ttl:  ttl,
	}
}

// Touch records a heartbeat or any other sign of life.
func (r *Registry) Touch(terminalID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := r.data[terminalID]
	state.TerminalID = terminalID
	state.Online = true
	state.LastSeen = time.Now()
	r.data[terminalID] = state
}

// SetOnline flips the terminal's announced presence.
func (r *Registry) SetOnline(terminalID string, online bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := r.data[terminalID]
	state.TerminalID = terminalID
	state.Online = online
	state.LastSeen = time.Now()
	r.data[terminalID] = state
}

// AcceptCatalog decides whether a reported catalog version should replace
// the stored one. Versions only move forward; a report without a version
// (zero) is always accepted.
func (r *Registry) AcceptCatalog(terminalID string, version int64, contacts, apps int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := r.data[terminalID]
	if state.CatalogVersion > 0 && version > 0 && version < state.CatalogVersion {
		return false
	}
	if version == 0 {
		version = state.CatalogVersion
	}

	state.TerminalID = terminalID
	state.CatalogVersion = version
	state.ContactCount = contacts
	state.AppCount = apps
	state.Online = true
	state.LastSeen = time.Now()
	r.data[terminalID] = state
	return true
}

// GetState returns the terminal's state when it is still fresh.
func (r *Registry) GetState(terminalID string) (TerminalState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.data[terminalID]
	if !ok || r.isExpired(state) {
		return TerminalState{}, false
	}
	return state, true
}

// ListOnline returns every terminal currently considered alive.
func (r *Registry) ListOnline() []TerminalState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]TerminalState, 0, len(r.data))
	for _, state := range r.data {
		if strings.TrimSpace(state.TerminalID) == "" {
			continue
		}
		if !state.Online || r.isExpired(state) {
			continue
		}
		out = append(out, state)
	}
	return out
}

func (r *Registry) isExpired(state TerminalState) bool {
	if r.ttl <= 0 {
		return false
	}
	return time.Since(state.LastSeen) > r.ttl
}
