package domain

import (
	"encoding/json"
	"time"
)

// IntentKind discriminates the closed set of Intent variants.
type IntentKind string

const (
	IntentStop        IntentKind = "stop"
	IntentOpenApp     IntentKind = "open_app"
	IntentSendMessage IntentKind = "send_message"
	IntentOpenChat    IntentKind = "open_chat"
	IntentSetAlarm    IntentKind = "set_alarm"
	IntentSearch      IntentKind = "search"
	IntentUnknown     IntentKind = "unknown"
)

// Message channels for IntentSendMessage.
const (
	ChannelWhatsApp = "whatsapp"
	ChannelSMS      = "sms"
)

// Intent is the classified, structured meaning of one utterance. Exactly one
// variant results per classification; only the fields of that variant are set.
type Intent struct {
	Kind IntentKind `json:"kind"`

	AppName string `json:"app_name,omitempty"` // open_app
	Channel string `json:"channel,omitempty"`  // send_message: whatsapp|sms
	Contact string `json:"contact,omitempty"`  // send_message, open_chat
	Message string `json:"message,omitempty"`  // send_message
	Hour    int    `json:"hour,omitempty"`     // set_alarm
	Minute  int    `json:"minute,omitempty"`   // set_alarm
	Query   string `json:"query,omitempty"`    // search
	Hint    string `json:"hint,omitempty"`     // unknown: guidance spoken back
}

// NeedsTarget reports whether the intent names a real-world target that must
// be matched against a catalog before it can be dispatched.
func (i Intent) NeedsTarget() bool {
	switch i.Kind {
	case IntentOpenApp, IntentSendMessage, IntentOpenChat:
		return true
	}
	return false
}

// RawUtterance is one transcribed span of speech as delivered by the capture
// collaborator. Consumed once by the dialogue controller.
type RawUtterance struct {
	Text       string
	ReceivedAt time.Time
}

// Candidate is a named real-world target (contact or installed application).
// Payload is catalog specific: a phone number for contacts, a package name
// for apps. Candidates are built by catalog collaborators, never by the core.
type Candidate struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Payload string `json:"payload"`
}

// Outcome is the dispatcher's report for one executed action.
type Outcome struct {
	OK    bool   `json:"ok"`
	Label string `json:"label,omitempty"`
}

// MQTT payloads

// UtteranceEvent carries one transcription from the terminal.
type UtteranceEvent struct {
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text"`
	TS        string `json:"ts,omitempty"`
}

// ASR event kinds reported by the terminal's recognizer.
const (
	ASRErrorNoMatch = "no_match"
	ASRErrorTimeout = "timeout"
	ASRErrorEngine  = "engine"
)

type ASREvent struct {
	Event string `json:"event"`
	Kind  string `json:"kind,omitempty"`
}

// SpeakRequest asks the terminal to flush any in-flight synthesis and speak.
type SpeakRequest struct {
	UtteranceID string `json:"utterance_id"`
	Text        string `json:"text"`
}

// SpeechEvent reports synthesis progress for a previous SpeakRequest.
type SpeechEvent struct {
	UtteranceID string `json:"utterance_id"`
	Event       string `json:"event"` // done|error
}

// OverlayUpdate mirrors the original on-screen overlay text.
type OverlayUpdate struct {
	Text string `json:"text"`
}

// CatalogReport is a full contact/app snapshot published by the terminal.
// Reports carry a monotonic version; stale versions are ignored.
type CatalogReport struct {
	TerminalID     string         `json:"terminal_id"`
	CatalogVersion int64          `json:"catalog_version,omitempty"`
	Contacts       []ContactEntry `json:"contacts"`
	Apps           []AppEntry     `json:"apps"`
}

type ContactEntry struct {
	ContactID string `json:"contact_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
}

type AppEntry struct {
	Package string `json:"package"`
	Label   string `json:"label"`
}

// ActionRequest asks the terminal to perform a resolved action.
type ActionRequest struct {
	RequestID string          `json:"request_id"`
	Action    string          `json:"action"`
	Arguments json.RawMessage `json:"arguments"`
}

type ActionResult struct {
	RequestID string `json:"request_id"`
	OK        bool   `json:"ok"`
	Output    string `json:"output"`
	Error     string `json:"error,omitempty"`
}
