// terminal-probe is a fake terminal for exercising the engine without a
// real device. It reports a small catalog, answers speak requests with
// synthesis-done events, echoes overlay updates and acknowledges every
// action. Lines typed on stdin become utterances; /start and /stop drive
// the assistant control topic.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"voz/internal/config"
	"voz/internal/domain"
	"voz/internal/mqtt"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := config.LoadTerminalProbeConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := startMQTT(ctx, cfg, logger)
	if err != nil {
		logger.Error("start probe mqtt failed", "error", err)
		os.Exit(1)
	}
	defer client.Disconnect(100)

	go readStdin(cfg, client, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("probe shutting down")
	client.Publish(onlineTopic(cfg), 1, true, "offline")
}

func onlineTopic(cfg config.TerminalProbeConfig) string {
	return fmt.Sprintf("%s/terminal/%s/online", cfg.MQTTTopicPrefix, cfg.TerminalID)
}

func terminalTopic(cfg config.TerminalProbeConfig, kind string) string {
	return fmt.Sprintf("%s/terminal/%s/%s", cfg.MQTTTopicPrefix, cfg.TerminalID, kind)
}

func startMQTT(ctx context.Context, cfg config.TerminalProbeConfig, logger *slog.Logger) (paho.Client, error) {
	opts := paho.NewClientOptions().
		AddBroker(cfg.MQTTBrokerURL).
		SetClientID(cfg.MQTTClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true)

	if cfg.MQTTUsername != "" {
		opts.SetUsername(cfg.MQTTUsername)
		opts.SetPassword(cfg.MQTTPassword)
	}
	opts.SetWill(onlineTopic(cfg), "offline", 1, true)

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}

	if token := client.Publish(onlineTopic(cfg), 1, true, "online"); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	if err := publishCatalog(client, cfg); err != nil {
		return nil, err
	}

	if token := client.Subscribe(mqtt.TopicSpeak(cfg.MQTTTopicPrefix, cfg.TerminalID), 1, func(_ paho.Client, msg paho.Message) {
		var req domain.SpeakRequest
		if err := json.Unmarshal(msg.Payload(), &req); err != nil {
			logger.Error("invalid speak payload", "error", err)
			return
		}
		fmt.Printf(">> FALA: %s\n", req.Text)
		// Pretend the synthesis took a moment, then report completion.
		go func() {
			time.Sleep(300 * time.Millisecond)
			body, _ := json.Marshal(domain.SpeechEvent{UtteranceID: req.UtteranceID, Event: "done"})
			client.Publish(terminalTopic(cfg, "speech"), 1, false, body)
		}()
	}); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}

	if token := client.Subscribe(mqtt.TopicListen(cfg.MQTTTopicPrefix, cfg.TerminalID), 1, func(_ paho.Client, msg paho.Message) {
		fmt.Printf(">> ESCUTA: %s\n", string(msg.Payload()))
	}); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}

	if token := client.Subscribe(mqtt.TopicOverlay(cfg.MQTTTopicPrefix, cfg.TerminalID), 1, func(_ paho.Client, msg paho.Message) {
		var update domain.OverlayUpdate
		if err := json.Unmarshal(msg.Payload(), &update); err != nil {
			return
		}
		fmt.Printf(">> OVERLAY: %s\n", update.Text)
	}); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}

	actionTopic := fmt.Sprintf("%s/terminal/%s/action/+", cfg.MQTTTopicPrefix, cfg.TerminalID)
	if token := client.Subscribe(actionTopic, 1, func(_ paho.Client, msg paho.Message) {
		var req domain.ActionRequest
		if err := json.Unmarshal(msg.Payload(), &req); err != nil {
			logger.Error("invalid action payload", "error", err)
			return
		}
		fmt.Printf(">> ACAO: %s %s\n", req.Action, string(req.Arguments))
		result := domain.ActionResult{RequestID: req.RequestID, OK: true, Output: "ok"}
		body, _ := json.Marshal(result)
		resultTopic := mqtt.TopicResult(cfg.MQTTTopicPrefix, cfg.TerminalID, req.RequestID)
		if tk := client.Publish(resultTopic, 1, false, body); tk.Wait() && tk.Error() != nil {
			logger.Error("publish result failed", "error", tk.Error())
		}
	}); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}

	heartbeatTopic := terminalTopic(cfg, "heartbeat")
	client.Publish(heartbeatTopic, 0, false, []byte("1"))
	go func() {
		ticker := time.NewTicker(cfg.HeartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				client.Publish(heartbeatTopic, 0, false, []byte("1"))
			}
		}
	}()

	return client, nil
}

func publishCatalog(client paho.Client, cfg config.TerminalProbeConfig) error {
	report := domain.CatalogReport{
		TerminalID:     cfg.TerminalID,
		CatalogVersion: cfg.CatalogVersion,
		Contacts: []domain.ContactEntry{
			{ContactID: "c1", Name: "João Silva", Phone: "+351911111111"},
			{ContactID: "c2", Name: "João Pedro", Phone: "+351922222222"},
			{ContactID: "c3", Name: "Maria", Phone: "+351933333333"},
		},
		Apps: []domain.AppEntry{
			{Package: "com.spotify.music", Label: "Spotify"},
			{Package: "com.android.calculator2", Label: "Calculadora"},
			{Package: "com.android.camera2", Label: "Câmera"},
		},
	}
	buf, _ := json.Marshal(report)
	if token := client.Publish(terminalTopic(cfg, "catalog"), 1, true, buf); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func readStdin(cfg config.TerminalProbeConfig, client paho.Client, logger *slog.Logger) {
	fmt.Println("comandos: /start /stop /erro, qualquer outra linha vira uma fala")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch line {
		case "/start":
			client.Publish(terminalTopic(cfg, "assistant"), 1, false, []byte("start"))
		case "/stop":
			client.Publish(terminalTopic(cfg, "assistant"), 1, false, []byte("stop"))
		case "/erro":
			body, _ := json.Marshal(domain.ASREvent{Event: "error", Kind: domain.ASRErrorNoMatch})
			client.Publish(terminalTopic(cfg, "asr"), 1, false, body)
		default:
			body, _ := json.Marshal(domain.UtteranceEvent{Text: line, TS: time.Now().UTC().Format(time.RFC3339)})
			client.Publish(terminalTopic(cfg, "utterance"), 1, false, body)
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Error("stdin read failed", "error", err)
	}
}
