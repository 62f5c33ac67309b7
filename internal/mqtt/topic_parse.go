package mqtt

import (
	"fmt"
	"strings"
)

// ParseTerminalID extracts the terminal segment out of
// {prefix}/terminal/{terminalId}/{kind}/... topics.
func ParseTerminalID(topic, prefix string) (string, error) {
	parts := strings.Split(topic, "/")
	prefixParts := strings.Split(prefix, "/")
	if len(parts) < len(prefixParts)+3 {
		return "", fmt.Errorf("invalid topic: %s", topic)
	}
	for i, p := range prefixParts {
		if parts[i] != p {
			return "", fmt.Errorf("topic prefix mismatch: %s", topic)
		}
	}
	if parts[len(prefixParts)] != "terminal" {
		return "", fmt.Errorf("invalid topic pattern: %s", topic)
	}
	id := parts[len(prefixParts)+1]
	if id == "" {
		return "", fmt.Errorf("empty terminal id: %s", topic)
	}
	return id, nil
}

// ParseRequestID returns the trailing request segment of a result topic.
func ParseRequestID(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
