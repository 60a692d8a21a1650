package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration loaded from environment variables.
// DATABASE_URL, SENDGRID_API_KEY, and TRIGGER_TOKEN are required; a missing
// one is a configuration error that aborts startup before any candidate
// processing. Everything else has a sensible default.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Mail transport
	SendGridAPIKey string
	SendGridURL    string
	MailTimeout    time.Duration

	// Bearer credential required by the /internal/run/* trigger endpoints.
	TriggerToken string

	// Schedule pass
	ReminderOffsets []int         // lead-time offsets in days, e.g. 90,60,30,15
	Lookback        time.Duration // dedup lookback window
	ScanConcurrency int           // concurrent tenant scans

	// Dispatch pass
	DispatchWorkers   int
	DispatchBatchSize int
	DispatchInterval  time.Duration
	SendRatePerSec    int
}

func Load() (*Config, error) {
	// A local .env is a convenience for development; absence is not an error.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("SENDGRID_API_KEY is required")
	}
	triggerToken := os.Getenv("TRIGGER_TOKEN")
	if triggerToken == "" {
		return nil, fmt.Errorf("TRIGGER_TOKEN is required")
	}

	offsets, err := getIntList("REMINDER_OFFSETS", []int{90, 60, 30, 15})
	if err != nil {
		return nil, err
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL: dbURL,
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 5)),

		SendGridAPIKey: apiKey,
		SendGridURL:    getEnv("SENDGRID_URL", "https://api.sendgrid.com/v3/mail/send"),
		MailTimeout:    getDuration("MAIL_TIMEOUT", 10*time.Second),

		TriggerToken: triggerToken,

		ReminderOffsets: offsets,
		Lookback:        time.Duration(getInt("LOOKBACK_DAYS", 7)) * 24 * time.Hour,
		ScanConcurrency: getInt("SCAN_CONCURRENCY", 4),

		DispatchWorkers:   getInt("DISPATCH_WORKERS", 5),
		DispatchBatchSize: getInt("DISPATCH_BATCH_SIZE", 500),
		DispatchInterval:  getDuration("DISPATCH_INTERVAL", time.Minute),
		SendRatePerSec:    getInt("SEND_RATE_PER_SEC", 10),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

// getIntList parses a comma-separated integer list, e.g. "90,60,30,15".
// A malformed list is a configuration error, not a silent fallback: the
// offset list decides who gets mailed.
func getIntList(key string, defaultVal []int) ([]int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	parts := strings.Split(v, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%s: invalid entry %q", key, p)
		}
		out = append(out, n)
	}
	return out, nil
}
