package dialogue

import (
	"time"

	"voz/internal/domain"
)

// State is the dialogue position of the active session. It is the single
// source of truth for turn taking: Listening and Speaking are never
// concurrently active.
type State string

const (
	StateIdle                     State = "idle"
	StateListening                State = "listening"
	StateSpeaking                 State = "speaking"
	StateAwaitingContactSelection State = "awaiting_contact_selection"
	StateAwaitingAppSelection     State = "awaiting_app_selection"
	StateTerminated               State = "terminated"
)

// Session is the single mutable unit of dialogue state, owned exclusively by
// the Controller. At most one session exists at any instant; starting a new
// conversation replaces the old one atomically.
//
// PendingCandidates is non-empty only inside a disambiguation sub-dialogue.
// Its order is frozen when the resolver builds it and is exactly the
// numbering 1..N spoken to the user; selection indices resolve against this
// frozen order.
type Session struct {
	ID                string
	TerminalID        string
	State             State
	PendingCandidates []domain.Candidate
	PendingIntent     domain.Intent
	CreatedAt         time.Time
}

// Snapshot is the read-only session view served by the ops API.
type Snapshot struct {
	SessionID     string    `json:"session_id,omitempty"`
	TerminalID    string    `json:"terminal_id,omitempty"`
	State         State     `json:"state"`
	PendingLabels []string  `json:"pending_labels,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitzero"`
}
