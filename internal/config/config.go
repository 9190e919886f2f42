// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the reminder API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// EligibilityURL is the base URL of the eligibility service. Required.
	EligibilityURL string

	// VAPIDPublicKey and VAPIDPrivateKey sign Web Push requests. Required.
	VAPIDPublicKey  string
	VAPIDPrivateKey string

	// VAPIDSubject identifies the push sender to push services.
	// Defaults to "mailto:transport@ridewise.app".
	VAPIDSubject string

	// PushConcurrency bounds simultaneous push deliveries per dispatch.
	// Defaults to 5.
	PushConcurrency int

	// PushTimeout bounds each individual push attempt. Defaults to 10s.
	// Set PUSH_TIMEOUT_SECONDS to override.
	PushTimeout time.Duration

	// ReminderCron is the cron expression for the nightly reminder run.
	// Defaults to "0 18 * * *" (18:00 every day). Empty disables the schedule.
	ReminderCron string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CORSOrigins:     splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		VAPIDSubject:    getEnv("VAPID_SUBJECT", "mailto:transport@ridewise.app"),
		PushConcurrency: getEnvInt("PUSH_CONCURRENCY", 5),
		PushTimeout:     time.Duration(getEnvInt("PUSH_TIMEOUT_SECONDS", 10)) * time.Second,
		ReminderCron:    getEnv("REMINDER_CRON", "0 18 * * *"),
	}

	var missing []string
	for _, v := range []struct {
		key  string
		dest *string
	}{
		{"DATABASE_URL", &cfg.DatabaseURL},
		{"ELIGIBILITY_URL", &cfg.EligibilityURL},
		{"VAPID_PUBLIC_KEY", &cfg.VAPIDPublicKey},
		{"VAPID_PRIVATE_KEY", &cfg.VAPIDPrivateKey},
	} {
		*v.dest = os.Getenv(v.key)
		if *v.dest == "" {
			missing = append(missing, v.key)
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt is getEnv for positive integers. Non-numeric or non-positive
// values fall back.
func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
