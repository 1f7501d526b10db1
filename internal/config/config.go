package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIURL         string
	WSURL          string
	ReconnectDelay time.Duration
	RequestTimeout time.Duration
	DialTimeout    time.Duration
	SessionCookie  string
	SessionToken   string
	JournalDSN     string
	JournalBuffer  int
	Log            LogConfig
}

type LogConfig struct {
	Level  string
	Format string // "json" | "console"
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := &Config{
		APIURL:         getEnv("BUSFAHRER_API_URL", "http://localhost:8080/api/"),
		WSURL:          getEnv("BUSFAHRER_WS_URL", "ws://localhost:8080/ws"),
		ReconnectDelay: getDurationEnv("BUSFAHRER_RECONNECT_DELAY", time.Second),
		RequestTimeout: getDurationEnv("BUSFAHRER_REQUEST_TIMEOUT", 10*time.Second),
		DialTimeout:    getDurationEnv("BUSFAHRER_DIAL_TIMEOUT", 5*time.Second),
		SessionCookie:  getEnv("BUSFAHRER_SESSION_COOKIE", "session"),
		SessionToken:   getEnv("BUSFAHRER_SESSION_TOKEN", ""),
		JournalDSN:     getEnv("BUSFAHRER_JOURNAL_DSN", ""),
		JournalBuffer:  getIntEnv("BUSFAHRER_JOURNAL_BUFFER", 256),
		Log: LogConfig{
			Level:  getEnv("BUSFAHRER_LOG_LEVEL", "info"),
			Format: getEnv("BUSFAHRER_LOG_FORMAT", "console"),
		},
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	api, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("invalid api url: %w", err)
	}
	if api.Scheme != "http" && api.Scheme != "https" {
		return fmt.Errorf("api url must be http(s), got %q", c.APIURL)
	}
	ws, err := url.Parse(c.WSURL)
	if err != nil {
		return fmt.Errorf("invalid websocket url: %w", err)
	}
	if ws.Scheme != "ws" && ws.Scheme != "wss" {
		return fmt.Errorf("websocket url must be ws(s), got %q", c.WSURL)
	}
	if c.ReconnectDelay <= 0 {
		return errors.New("reconnect delay must be positive")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
