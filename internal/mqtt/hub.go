// Package mqtt connects the engine to its terminals over an MQTT broker.
// Terminals publish utterances, recognizer and synthesis events, catalog
// snapshots and liveness; the hub publishes speak, listen, overlay and
// action commands back.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"voz/internal/catalog"
	"voz/internal/domain"
)

type HubConfig struct {
	BrokerURL   string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

// ConversationDriver is the dialogue side of the hub. Every inbound terminal
// event ends up in exactly one of these calls.
type ConversationDriver interface {
	Start(terminalID string)
	Shutdown(terminalID string)
	OnUtterance(terminalID, text string)
	OnRecognitionError(terminalID, kind string)
	OnSpeechDone(terminalID, utteranceID string)
	OnSpeechError(terminalID, utteranceID string)
}

// CatalogStore receives accepted catalog snapshots.
type CatalogStore interface {
	ReplaceCatalog(ctx context.Context, report domain.CatalogReport) error
}

type Hub struct {
	cfg      HubConfig
	client   paho.Client
	registry *catalog.Registry
	store    CatalogStore
	driver   ConversationDriver
	logger   *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]chan domain.ActionResult
}

func NewHub(cfg HubConfig, registry *catalog.Registry, store CatalogStore, logger *slog.Logger) *Hub {
	return &Hub{
		cfg:      cfg,
		registry: registry,
		store:    store,
		logger:   logger,
		pending:  make(map[string]chan domain.ActionResult),
	}
}

// Bind attaches the dialogue driver. Must happen before Start: the driver is
// also the hub's speech consumer, so the two are constructed in sequence and
// wired here.
func (h *Hub) Bind(driver ConversationDriver) {
	h.driver = driver
}

func (h *Hub) Start(ctx context.Context) error {
	opts := paho.NewClientOptions().
		AddBroker(h.cfg.BrokerURL).
		SetClientID(h.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true)

	if h.cfg.Username != "" {
		opts.SetUsername(h.cfg.Username)
		opts.SetPassword(h.cfg.Password)
	}

	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		h.logger.Error("mqtt connection lost", "error", err)
	})

	h.client = paho.NewClient(opts)
	if token := h.client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}

	if err := h.subscribeHandlers(); err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		h.client.Disconnect(100)
	}()

	return nil
}

func (h *Hub) subscribeHandlers() error {
	subs := []struct {
		topic   string
		handler paho.MessageHandler
	}{
		{TopicTerminalUtterance(h.cfg.TopicPrefix), h.handleUtterance},
		{TopicTerminalASR(h.cfg.TopicPrefix), h.handleASR},
		{TopicTerminalSpeech(h.cfg.TopicPrefix), h.handleSpeech},
		{TopicTerminalCatalog(h.cfg.TopicPrefix), h.handleCatalog},
		{TopicTerminalOnline(h.cfg.TopicPrefix), h.handleOnline},
		{TopicTerminalHeartbeat(h.cfg.TopicPrefix), h.handleHeartbeat},
		{TopicTerminalAssistant(h.cfg.TopicPrefix), h.handleAssistant},
		{TopicTerminalResult(h.cfg.TopicPrefix), h.handleActionResult},
	}
	for _, s := range subs {
		if token := h.client.Subscribe(s.topic, 1, s.handler); token.Wait() && token.Error() != nil {
			return token.Error()
		}
	}
	return nil
}

func (h *Hub) handleUtterance(_ paho.Client, msg paho.Message) {
	terminalID, err := ParseTerminalID(msg.Topic(), h.cfg.TopicPrefix)
	if err != nil {
		h.logger.Warn("skip invalid utterance topic", "topic", msg.Topic(), "error", err)
		return
	}

	var event domain.UtteranceEvent
	if err := json.Unmarshal(msg.Payload(), &event); err != nil {
		// backward compatible: payload can be the bare transcription
		event = domain.UtteranceEvent{Text: string(msg.Payload())}
	}

	h.registry.Touch(terminalID)
	h.driver.OnUtterance(terminalID, event.Text)
}

func (h *Hub) handleASR(_ paho.Client, msg paho.Message) {
	terminalID, err := ParseTerminalID(msg.Topic(), h.cfg.TopicPrefix)
	if err != nil {
		h.logger.Warn("skip invalid asr topic", "topic", msg.Topic(), "error", err)
		return
	}

	var event domain.ASREvent
	if err := json.Unmarshal(msg.Payload(), &event); err != nil {
		h.logger.Warn("invalid asr payload", "terminal_id", terminalID, "error", err)
		return
	}
	if event.Event != "error" {
		return
	}
	kind := event.Kind
	if kind == "" {
		kind = domain.ASRErrorEngine
	}
	h.driver.OnRecognitionError(terminalID, kind)
}

func (h *Hub) handleSpeech(_ paho.Client, msg paho.Message) {
	terminalID, err := ParseTerminalID(msg.Topic(), h.cfg.TopicPrefix)
	if err != nil {
		h.logger.Warn("skip invalid speech topic", "topic", msg.Topic(), "error", err)
		return
	}

	var event domain.SpeechEvent
	if err := json.Unmarshal(msg.Payload(), &event); err != nil {
		h.logger.Warn("invalid speech payload", "terminal_id", terminalID, "error", err)
		return
	}

	switch event.Event {
	case "done":
		h.driver.OnSpeechDone(terminalID, event.UtteranceID)
	case "error":
		h.driver.OnSpeechError(terminalID, event.UtteranceID)
	default:
		h.logger.Warn("unknown speech event", "terminal_id", terminalID, "event", event.Event)
	}
}

func (h *Hub) handleCatalog(_ paho.Client, msg paho.Message) {
	terminalID, err := ParseTerminalID(msg.Topic(), h.cfg.TopicPrefix)
	if err != nil {
		h.logger.Warn("skip invalid catalog topic", "topic", msg.Topic(), "error", err)
		return
	}

	var report domain.CatalogReport
	if err := json.Unmarshal(msg.Payload(), &report); err != nil {
		h.logger.Warn("invalid catalog payload", "terminal_id", terminalID, "error", err)
		return
	}
	if report.TerminalID == "" {
		report.TerminalID = terminalID
	}
	if report.TerminalID != terminalID {
		h.logger.Warn("catalog report terminal mismatch", "topic_terminal", terminalID, "payload_terminal", report.TerminalID)
		return
	}

	if !h.registry.AcceptCatalog(terminalID, report.CatalogVersion, len(report.Contacts), len(report.Apps)) {
		h.logger.Info("stale catalog ignored", "terminal_id", terminalID, "catalog_version", report.CatalogVersion)
		return
	}
	if err := h.store.ReplaceCatalog(context.Background(), report); err != nil {
		h.logger.Error("catalog replace failed", "terminal_id", terminalID, "error", err)
		return
	}
	h.logger.Info("catalog updated", "terminal_id", terminalID,
		"catalog_version", report.CatalogVersion,
		"contacts", len(report.Contacts), "apps", len(report.Apps))
}

func (h *Hub) handleOnline(_ paho.Client, msg paho.Message) {
	terminalID, err := ParseTerminalID(msg.Topic(), h.cfg.TopicPrefix)
	if err != nil {
		h.logger.Warn("skip invalid online topic", "topic", msg.Topic(), "error", err)
		return
	}

	payload := strings.TrimSpace(strings.ToLower(string(msg.Payload())))
	online := payload == "1" || payload == "true" || payload == "online"
	h.registry.SetOnline(terminalID, online)
	h.logger.Info("terminal online status", "terminal_id", terminalID, "online", online)
	if !online {
		// A vanished terminal cannot answer; drop its conversation.
		h.driver.Shutdown(terminalID)
	}
}

func (h *Hub) handleHeartbeat(_ paho.Client, msg paho.Message) {
	terminalID, err := ParseTerminalID(msg.Topic(), h.cfg.TopicPrefix)
	if err != nil {
		h.logger.Warn("skip invalid heartbeat topic", "topic", msg.Topic(), "error", err)
		return
	}
	h.registry.Touch(terminalID)
}

// handleAssistant is the wake/sleep control signal: "start" opens a
// conversation, "stop" tears the current one down without a farewell.
func (h *Hub) handleAssistant(_ paho.Client, msg paho.Message) {
	terminalID, err := ParseTerminalID(msg.Topic(), h.cfg.TopicPrefix)
	if err != nil {
		h.logger.Warn("skip invalid assistant topic", "topic", msg.Topic(), "error", err)
		return
	}

	switch cmd := strings.TrimSpace(strings.ToLower(string(msg.Payload()))); cmd {
	case "start", "wake":
		h.registry.Touch(terminalID)
		h.driver.Start(terminalID)
	case "stop", "sleep":
		h.driver.Shutdown(terminalID)
	default:
		h.logger.Warn("unknown assistant command", "terminal_id", terminalID, "command", cmd)
	}
}

func (h *Hub) handleActionResult(_ paho.Client, msg paho.Message) {
	requestID := ParseRequestID(msg.Topic())
	if requestID == "" {
		return
	}

	var result domain.ActionResult
	if err := json.Unmarshal(msg.Payload(), &result); err != nil {
		h.logger.Warn("invalid action result", "topic", msg.Topic(), "error", err)
		return
	}
	if result.RequestID == "" {
		result.RequestID = requestID
	}

	h.pendingMu.Lock()
	ch, ok := h.pending[result.RequestID]
	h.pendingMu.Unlock()
	if !ok {
		return
	}

	select {
	case ch <- result:
	default:
	}
}

// Speak, StartListening, CancelListening and ShowOverlay make the hub the
// dialogue controller's speech collaborator.

func (h *Hub) Speak(_ context.Context, terminalID string, req domain.SpeakRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return h.publish(TopicSpeak(h.cfg.TopicPrefix, terminalID), body)
}

func (h *Hub) StartListening(_ context.Context, terminalID string) error {
	return h.publish(TopicListen(h.cfg.TopicPrefix, terminalID), []byte("start"))
}

func (h *Hub) CancelListening(_ context.Context, terminalID string) error {
	return h.publish(TopicListen(h.cfg.TopicPrefix, terminalID), []byte("cancel"))
}

func (h *Hub) ShowOverlay(_ context.Context, terminalID, text string) error {
	body, err := json.Marshal(domain.OverlayUpdate{Text: text})
	if err != nil {
		return err
	}
	return h.publish(TopicOverlay(h.cfg.TopicPrefix, terminalID), body)
}

// InvokeAction publishes an action request and waits for the terminal's
// correlated result. Results arriving after the wait ends are dropped.
func (h *Hub) InvokeAction(ctx context.Context, terminalID, action string, args json.RawMessage) (domain.ActionResult, error) {
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	requestID := uuid.NewString()
	payload := domain.ActionRequest{
		RequestID: requestID,
		Action:    action,
		Arguments: args,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.ActionResult{}, err
	}

	resultCh := make(chan domain.ActionResult, 1)
	h.pendingMu.Lock()
	h.pending[requestID] = resultCh
	h.pendingMu.Unlock()
	defer func() {
		h.pendingMu.Lock()
		delete(h.pending, requestID)
		h.pendingMu.Unlock()
	}()

	topic := TopicAction(h.cfg.TopicPrefix, terminalID, requestID)
	if err := h.publish(topic, body); err != nil {
		return domain.ActionResult{}, err
	}

	// The caller's context carries the action timeout; no second clock here.
	select {
	case <-ctx.Done():
		return domain.ActionResult{}, ctx.Err()
	case result := <-resultCh:
		if !result.OK {
			if result.Error == "" {
				result.Error = "action failed"
			}
			return result, fmt.Errorf("%s", result.Error)
		}
		return result, nil
	}
}

func (h *Hub) publish(topic string, body []byte) error {
	if token := h.client.Publish(topic, 1, false, body); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}
