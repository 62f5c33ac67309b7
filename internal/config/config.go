package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type ServerConfig struct {
	HTTPAddr          string
	DBDSN             string
	MQTTBrokerURL     string
	MQTTClientID      string
	MQTTUsername      string
	MQTTPassword      string
	MQTTTopicPrefix   string
	SpeechSettleDelay time.Duration
	ErrorRetryDelay   time.Duration
	DrainDelay        time.Duration
	ActionTimeout     time.Duration
	TerminalTTL       time.Duration
}

type TerminalProbeConfig struct {
	TerminalID        string
	CatalogVersion    int64
	HeartbeatInterval time.Duration
	MQTTBrokerURL     string
	MQTTClientID      string
	MQTTUsername      string
	MQTTPassword      string
	MQTTTopicPrefix   string
}

func LoadServerConfig() (ServerConfig, error) {
	cfg := ServerConfig{
		HTTPAddr:          getenvDefault("VOZ_HTTP_ADDR", ":9020"),
		DBDSN:             os.Getenv("DB_DSN"),
		MQTTBrokerURL:     getenvDefault("MQTT_BROKER_URL", "tcp://localhost:1883"),
		MQTTClientID:      getenvDefault("VOZ_MQTT_CLIENT_ID", "voz-server"),
		MQTTUsername:      os.Getenv("MQTT_USERNAME"),
		MQTTPassword:      os.Getenv("MQTT_PASSWORD"),
		MQTTTopicPrefix:   getenvDefault("MQTT_TOPIC_PREFIX", "voz"),
		SpeechSettleDelay: time.Duration(getenvIntDefault("SPEECH_SETTLE_DELAY_MS", 500)) * time.Millisecond,
		ErrorRetryDelay:   time.Duration(getenvIntDefault("ERROR_RETRY_DELAY_MS", 1000)) * time.Millisecond,
		DrainDelay:        time.Duration(getenvIntDefault("DRAIN_DELAY_MS", 2000)) * time.Millisecond,
		ActionTimeout:     time.Duration(getenvIntDefault("ACTION_TIMEOUT_SECONDS", 20)) * time.Second,
		TerminalTTL:       time.Duration(getenvIntDefault("TERMINAL_TTL_SECONDS", 60)) * time.Second,
	}

	if cfg.DBDSN == "" {
		return ServerConfig{}, fmt.Errorf("DB_DSN is required")
	}

	return cfg, nil
}

func LoadTerminalProbeConfig() TerminalProbeConfig {
	return TerminalProbeConfig{
		TerminalID:        getenvDefault("TERMINAL_ID", "terminal-debug-01"),
		CatalogVersion:    getenvInt64Default("TERMINAL_CATALOG_VERSION", 1),
		HeartbeatInterval: time.Duration(getenvIntDefault("TERMINAL_HEARTBEAT_INTERVAL_SECONDS", 10)) * time.Second,
		MQTTBrokerURL:     getenvDefault("MQTT_BROKER_URL", "tcp://localhost:1883"),
		MQTTClientID:      getenvDefault("TERMINAL_MQTT_CLIENT_ID", "terminal-probe"),
		MQTTUsername:      os.Getenv("MQTT_USERNAME"),
		MQTTPassword:      os.Getenv("MQTT_PASSWORD"),
		MQTTTopicPrefix:   getenvDefault("MQTT_TOPIC_PREFIX", "voz"),
	}
}

func getenvDefault(key, val string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return val
}

func getenvIntDefault(key string, val int) int {
	v := os.Getenv(key)
	if v == "" {
		return val
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return val
	}
	return n
}

func getenvInt64Default(key string, val int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return val
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return val
	}
	return n
}
