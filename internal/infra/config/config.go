package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates service configuration loaded from environment variables.
type Config struct {
	Env      string
	HTTPAddr string

	// Upstream chat API. The sentinel value "memory" selects the in-process
	// demo backend instead of HTTP.
	ChatAPIURL   string
	ChatAPIToken string
	ChatAPITime  time.Duration

	// Real-time event sources. SocketURL enables the websocket source;
	// KafkaBrokers enables the broker source. Either or both may be set.
	SocketURL   string
	KafkaBroker []string
	KafkaTopic  string
	KafkaGroup  string

	// Optional mongo-backed event inbox for at-least-once dedup.
	MongoURI string
	MongoDB  string

	// Viewer the daemon synchronizes for.
	ViewerID string

	PageLimit      int
	SearchDebounce time.Duration
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:          getEnv("APP_ENV", "dev"),
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		ChatAPIURL:   getEnv("CHAT_API_URL", "http://localhost:3000/api"),
		ChatAPIToken: strings.TrimSpace(os.Getenv("CHAT_API_TOKEN")),
		SocketURL:    strings.TrimSpace(os.Getenv("SOCKET_URL")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "chat.room-events"),
		KafkaGroup:   getEnv("KAFKA_GROUP_ID", "linkup-roomsync"),
		MongoURI:     strings.TrimSpace(os.Getenv("MONGO_URI")),
		MongoDB:      getEnv("MONGO_DB", "linkup"),
		ViewerID:     strings.TrimSpace(os.Getenv("VIEWER_ID")),
	}
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBroker = splitAndTrim(brokers)
	}

	apiTimeout, err := parseDurationEnv("CHAT_API_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.ChatAPITime = apiTimeout

	debounceWindow, err := parseDurationEnv("SEARCH_DEBOUNCE", 300*time.Millisecond)
	if err != nil {
		return Config{}, err
	}
	cfg.SearchDebounce = debounceWindow

	cfg.PageLimit, err = parseIntEnv("PAGE_LIMIT", 15)
	if err != nil {
		return Config{}, err
	}

	if cfg.ChatAPIURL == "" {
		return Config{}, fmt.Errorf("CHAT_API_URL is required")
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return dur, nil
}

func parseIntEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return v, nil
}
