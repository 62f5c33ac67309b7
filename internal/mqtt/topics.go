package mqtt

import "fmt"

// Terminal -> server subscriptions.

func TopicTerminalUtterance(prefix string) string {
	return fmt.Sprintf("%s/terminal/+/utterance", prefix)
}

func TopicTerminalASR(prefix string) string {
	return fmt.Sprintf("%s/terminal/+/asr", prefix)
}

func TopicTerminalSpeech(prefix string) string {
	return fmt.Sprintf("%s/terminal/+/speech", prefix)
}

func TopicTerminalCatalog(prefix string) string {
	return fmt.Sprintf("%s/terminal/+/catalog", prefix)
}

func TopicTerminalOnline(prefix string) string {
	return fmt.Sprintf("%s/terminal/+/online", prefix)
}

func TopicTerminalHeartbeat(prefix string) string {
	return fmt.Sprintf("%s/terminal/+/heartbeat", prefix)
}

func TopicTerminalAssistant(prefix string) string {
	return fmt.Sprintf("%s/terminal/+/assistant", prefix)
}

func TopicTerminalResult(prefix string) string {
	return fmt.Sprintf("%s/terminal/+/result/+", prefix)
}

// Server -> terminal publications.

func TopicSpeak(prefix, terminalID string) string {
	return fmt.Sprintf("%s/terminal/%s/speak", prefix, terminalID)
}

func TopicListen(prefix, terminalID string) string {
	return fmt.Sprintf("%s/terminal/%s/listen", prefix, terminalID)
}

func TopicOverlay(prefix, terminalID string) string {
	return fmt.Sprintf("%s/terminal/%s/overlay", prefix, terminalID)
}

func TopicAction(prefix, terminalID, requestID string) string {
	return fmt.Sprintf("%s/terminal/%s/action/%s", prefix, terminalID, requestID)
}

func TopicResult(prefix, terminalID, requestID string) string {
	return fmt.Sprintf("%s/terminal/%s/result/%s", prefix, terminalID, requestID)
}
