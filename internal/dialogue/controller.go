package dialogue

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"voz/internal/domain"
	"voz/internal/nlu"
	"voz/internal/resolve"
)

// Speech is the synthesis/capture side of the terminal. A Speak request
// flushes any in-flight synthesis on the terminal rather than queueing.
type Speech interface {
	Speak(ctx context.Context, terminalID string, req domain.SpeakRequest) error
	StartListening(ctx context.Context, terminalID string) error
	CancelListening(ctx context.Context, terminalID string) error
	ShowOverlay(ctx context.Context, terminalID, text string) error
}

// CatalogLookup answers target queries with candidates whose normalized
// label contains the normalized key.
type CatalogLookup interface {
	LookupContacts(ctx context.Context, terminalID, normalizedKey string) ([]domain.Candidate, error)
	LookupApps(ctx context.Context, terminalID, normalizedKey string) ([]domain.Candidate, error)
}

// Dispatcher executes a resolved intent in the real world. The controller
// never learns how; it only turns the Outcome into spoken feedback.
type Dispatcher interface {
	Execute(ctx context.Context, terminalID string, intent domain.Intent, target *domain.Candidate) (domain.Outcome, error)
}

type Config struct {
	SpeechSettleDelay time.Duration // pause between synthesis completion and re-arming capture
	ErrorRetryDelay   time.Duration // backoff after a recognition error
	DrainDelay        time.Duration // pause between the farewell and teardown
	ActionTimeout     time.Duration // budget for catalog lookups and action execution
}

func (c Config) withDefaults() Config {
	if c.SpeechSettleDelay <= 0 {
		c.SpeechSettleDelay = 500 * time.Millisecond
	}
	if c.ErrorRetryDelay <= 0 {
		c.ErrorRetryDelay = time.Second
	}
	if c.DrainDelay <= 0 {
		c.DrainDelay = 2 * time.Second
	}
	if c.ActionTimeout <= 0 {
		c.ActionTimeout = 20 * time.Second
	}
	return c
}

// Controller owns the session and sequences the conversation: listen,
// classify, resolve ambiguity, dispatch, speak, listen again. Every external
// event is processed to completion under the controller mutex before the
// next one is accepted; all waiting goes through the Scheduler.
type Controller struct {
	cfg        Config
	speech     Speech
	catalogs   CatalogLookup
	dispatcher Dispatcher
	sched      Scheduler
	logger     *slog.Logger

	onTerminated func(terminalID string)
	pickIndex    func(n int) int

	mu           sync.Mutex
	session      *Session
	resume       State // state entered when the current speech settles
	speakingID   string
	terminating  bool
	pendingTimer CancelFunc
	timerSeq     uint64
}

func New(cfg Config, speech Speech, catalogs CatalogLookup, dispatcher Dispatcher, sched Scheduler, logger *slog.Logger) *Controller {
	return &Controller{
		cfg:        cfg.withDefaults(),
		speech:     speech,
		catalogs:   catalogs,
		dispatcher: dispatcher,
		sched:      sched,
		logger:     logger,
		pickIndex:  rand.Intn,
	}
}

// SetTerminatedHook registers a callback invoked (on its own goroutine) when
// a conversation reaches the terminal state.
func (c *Controller) SetTerminatedHook(fn func(terminalID string)) {
	c.onTerminated = fn
}

// Start opens a conversation with the terminal and arms listening. Any
// previous session, in whatever state, is replaced.
func (c *Controller) Start(terminalID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s := c.session; s != nil && s.State != StateTerminated {
		c.logger.Warn("replacing active conversation", "old_terminal_id", s.TerminalID, "new_terminal_id", terminalID)
	}
	c.cancelTimer()
	c.terminating = false
	c.speakingID = ""
	c.session = &Session{
		ID:         uuid.NewString(),
		TerminalID: terminalID,
		State:      StateListening,
		CreatedAt:  time.Now(),
	}
	c.logger.Info("conversation started", "session_id", c.session.ID, "terminal_id", terminalID)
	c.overlay(c.session, respListeningOverlay)
	c.listen(c.session)
}

// Shutdown tears the conversation down immediately without a spoken
// farewell. Used for the control-plane stop signal and server shutdown.
func (c *Controller) Shutdown(terminalID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil || s.TerminalID != terminalID || s.State == StateTerminated {
		return
	}
	c.cancelTimer()
	s.PendingCandidates = nil
	s.PendingIntent = domain.Intent{}
	c.finalize(s)
}

// OnUtterance feeds one transcription into the session. Depending on the
// current state it is classified as a command or parsed as a disambiguation
// answer; it is never both.
func (c *Controller) OnUtterance(terminalID, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.activeSession(terminalID)
	if s == nil || c.terminating {
		return
	}
	// Any scheduled listen retry is superseded by a real utterance.
	c.cancelTimer()

	switch s.State {
	case StateAwaitingContactSelection:
		c.handleSelection(s, text, true)
	case StateAwaitingAppSelection:
		c.handleSelection(s, text, false)
	default:
		c.handleCommand(s, text)
	}
}

// OnSpeechDone is the terminal's synthesis-completion signal. Listening is
// re-armed after the settle delay; stale completions from flushed utterances
// are ignored.
func (c *Controller) OnSpeechDone(terminalID, utteranceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.activeSession(terminalID)
	if s == nil {
		return
	}
	if utteranceID != c.speakingID {
		c.logger.Debug("stale speech completion", "utterance_id", utteranceID)
		return
	}
	c.speakingID = ""
	if c.terminating {
		c.schedule(c.cfg.DrainDelay, func() { c.finalize(s) })
		return
	}
	c.schedule(c.cfg.SpeechSettleDelay, func() { c.afterSpeech(s) })
}

// OnSpeechError re-arms listening immediately; a broken synthesis must not
// stall the conversation.
func (c *Controller) OnSpeechError(terminalID, utteranceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.activeSession(terminalID)
	if s == nil {
		return
	}
	if utteranceID != c.speakingID {
		return
	}
	c.speakingID = ""
	c.logger.Warn("speech synthesis failed", "session_id", s.ID, "utterance_id", utteranceID)
	if c.terminating {
		c.schedule(c.cfg.DrainDelay, func() { c.finalize(s) })
		return
	}
	c.afterSpeech(s)
}

// OnRecognitionError schedules a listen retry after the backoff delay
// instead of retrying immediately. No message is spoken.
func (c *Controller) OnRecognitionError(terminalID, kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.activeSession(terminalID)
	if s == nil {
		return
	}
	switch s.State {
	case StateListening, StateAwaitingContactSelection, StateAwaitingAppSelection:
		c.logger.Debug("recognition error, scheduling retry", "kind", kind, "session_id", s.ID)
		c.schedule(c.cfg.ErrorRetryDelay, func() { c.listen(s) })
	default:
	}
}

// Snapshot returns the current session view for the ops API.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil {
		return Snapshot{State: StateIdle}
	}
	labels := make([]string, 0, len(s.PendingCandidates))
	for _, cand := range s.PendingCandidates {
		labels = append(labels, cand.Label)
	}
	return Snapshot{
		SessionID:     s.ID,
		TerminalID:    s.TerminalID,
		State:         s.State,
		PendingLabels: labels,
		CreatedAt:     s.CreatedAt,
	}
}

// activeSession returns the session when the event belongs to it, nil
// otherwise. Callers hold the mutex.
func (c *Controller) activeSession(terminalID string) *Session {
	s := c.session
	if s == nil || s.TerminalID != terminalID {
		return nil
	}
	if s.State == StateIdle || s.State == StateTerminated {
		return nil
	}
	return s
}

func (c *Controller) handleCommand(s *Session, text string) {
	intent := nlu.Classify(text)
	c.logger.Info("utterance classified", "session_id", s.ID, "kind", intent.Kind)

	switch intent.Kind {
	case domain.IntentStop:
		c.beginShutdown(s)
	case domain.IntentUnknown:
		c.overlay(s, respUnknownOverlay)
		c.speakThen(s, c.apology(intent.Hint), StateListening)
	case domain.IntentOpenApp, domain.IntentSendMessage, domain.IntentOpenChat:
		c.resolveTarget(s, intent)
	default: // set_alarm, search
		c.execute(s, intent, nil)
	}
}

// handleSelection parses the next utterance as a disambiguation answer. Stop
// still pre-empts; anything unusable re-prompts with the pending list kept
// unchanged.
func (c *Controller) handleSelection(s *Session, text string, contacts bool) {
	if nlu.IsStop(text) {
		c.beginShutdown(s)
		return
	}

	awaiting := s.State
	n, ok := nlu.ParseSelection(text)
	if !ok {
		reprompt := respNotANumberApp
		if contacts {
			reprompt = respNotANumberContact
		}
		c.speakThen(s, reprompt, awaiting)
		return
	}
	if n < 1 || n > len(s.PendingCandidates) {
		c.speakThen(s, respInvalidNumber, awaiting)
		return
	}

	chosen := s.PendingCandidates[n-1]
	intent := s.PendingIntent
	s.PendingCandidates = nil
	s.PendingIntent = domain.Intent{}
	c.overlay(s, "Selecionado: "+chosen.Label)
	c.execute(s, intent, &chosen)
}

// resolveTarget looks the intent's target up in the matching catalog and
// either dispatches, opens the selection sub-dialogue, or reports not-found.
// A new ambiguous lookup replaces any pending one atomically.
func (c *Controller) resolveTarget(s *Session, intent domain.Intent) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.ActionTimeout)
	defer cancel()

	var (
		key   string
		found []domain.Candidate
		err   error
	)
	if intent.Kind == domain.IntentOpenApp {
		key = intent.AppName
		found, err = c.catalogs.LookupApps(ctx, s.TerminalID, nlu.Normalize(key))
	} else {
		key = intent.Contact
		found, err = c.catalogs.LookupContacts(ctx, s.TerminalID, nlu.Normalize(key))
	}
	if err != nil {
		c.logger.Warn("catalog lookup failed", "session_id", s.ID, "kind", intent.Kind, "error", err)
		c.speakThen(s, lookupFailureMessage(intent), StateListening)
		return
	}

	res := resolve.Resolve(key, found)
	switch res.Status {
	case resolve.Resolved:
		c.execute(s, intent, &res.Candidate)
	case resolve.NotFound:
		c.speakThen(s, notFoundMessage(intent, key), StateListening)
	case resolve.AwaitSelection:
		s.PendingCandidates = res.Candidates
		s.PendingIntent = intent

		next := StateAwaitingContactSelection
		prompt := respManyContacts
		if res.Exact {
			prompt = respManyContactsExact
		}
		if intent.Kind == domain.IntentOpenApp {
			next = StateAwaitingAppSelection
			prompt = respManyApps
		}
		c.logger.Info("disambiguation opened", "session_id", s.ID, "kind", intent.Kind, "candidates", len(res.Candidates))
		c.overlay(s, selectionOverlay(res.Candidates))
		c.speakThen(s, prompt, next)
	}
}

func (c *Controller) execute(s *Session, intent domain.Intent, target *domain.Candidate) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.ActionTimeout)
	defer cancel()

	outcome, err := c.dispatcher.Execute(ctx, s.TerminalID, intent, target)
	if err != nil || !outcome.OK {
		if err != nil {
			c.logger.Warn("action execution failed", "session_id", s.ID, "kind", intent.Kind, "error", err)
		}
		c.speakThen(s, failureMessage(intent), StateListening)
		return
	}
	c.overlay(s, executedOverlay(intent, outcome))
	c.speakThen(s, confirmationMessage(intent, outcome), StateListening)
}

// beginShutdown speaks the farewell and, once it drains, terminates the
// session. Honored from any state; pending disambiguation is discarded.
func (c *Controller) beginShutdown(s *Session) {
	s.PendingCandidates = nil
	s.PendingIntent = domain.Intent{}
	c.terminating = true
	c.overlay(s, respFarewell)
	c.speakThen(s, respFarewell, StateTerminated)
}

func (c *Controller) finalize(s *Session) {
	s.State = StateTerminated
	c.terminating = false
	c.speakingID = ""
	if err := c.speech.CancelListening(context.Background(), s.TerminalID); err != nil {
		c.logger.Warn("cancel listening failed", "terminal_id", s.TerminalID, "error", err)
	}
	c.logger.Info("conversation terminated", "session_id", s.ID, "terminal_id", s.TerminalID)
	if c.onTerminated != nil {
		go c.onTerminated(s.TerminalID)
	}
}

// speakThen requests synthesis and records the state to enter once the
// speech settles. Capture is cancelled first: listening and speaking are
// never concurrently active.
func (c *Controller) speakThen(s *Session, text string, next State) {
	c.cancelTimer()
	id := uuid.NewString()
	c.speakingID = id
	c.resume = next
	s.State = StateSpeaking

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.ActionTimeout)
	defer cancel()
	if err := c.speech.CancelListening(ctx, s.TerminalID); err != nil {
		c.logger.Warn("cancel listening failed", "terminal_id", s.TerminalID, "error", err)
	}
	if err := c.speech.Speak(ctx, s.TerminalID, domain.SpeakRequest{UtteranceID: id, Text: text}); err != nil {
		// Do not stall the conversation on a transport failure.
		c.logger.Warn("speak request failed", "session_id", s.ID, "error", err)
		c.speakingID = ""
		if c.terminating {
			c.schedule(c.cfg.DrainDelay, func() { c.finalize(s) })
			return
		}
		c.afterSpeech(s)
	}
}

// afterSpeech enters the recorded resume state and re-arms listening.
func (c *Controller) afterSpeech(s *Session) {
	if s.State == StateSpeaking {
		s.State = c.resume
	}
	if s.State == StateListening {
		c.overlay(s, respListeningOverlay)
	}
	c.listen(s)
}

func (c *Controller) listen(s *Session) {
	if err := c.speech.StartListening(context.Background(), s.TerminalID); err != nil {
		c.logger.Warn("start listening failed", "terminal_id", s.TerminalID, "error", err)
		c.schedule(c.cfg.ErrorRetryDelay, func() { c.listen(s) })
	}
}

func (c *Controller) overlay(s *Session, text string) {
	if err := c.speech.ShowOverlay(context.Background(), s.TerminalID, text); err != nil {
		c.logger.Warn("overlay update failed", "terminal_id", s.TerminalID, "error", err)
	}
}

func (c *Controller) apology(hint string) string {
	return apologyPrefixes[c.pickIndex(len(apologyPrefixes))] + hint
}

// schedule replaces the single outstanding timer. The callback runs under
// the controller mutex and is dropped when superseded or cancelled, even if
// it already fired and is waiting on the lock.
func (c *Controller) schedule(d time.Duration, fn func()) {
	c.cancelTimer()
	c.timerSeq++
	seq := c.timerSeq
	c.pendingTimer = c.sched.AfterFunc(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if seq != c.timerSeq {
			return
		}
		c.pendingTimer = nil
		fn()
	})
}

func (c *Controller) cancelTimer() {
	if c.pendingTimer != nil {
		c.pendingTimer()
		c.pendingTimer = nil
	}
	c.timerSeq++
}
