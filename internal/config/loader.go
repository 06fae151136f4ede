package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the coordinator
// service.
type Config struct {
	HTTPPort  int
	SQLiteDSN string

	LLMBaseURL     string
	LLMAPIKey      string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float64
	LLMTopP        float64
	LLMTimeout     time.Duration

	OverallDeadline  time.Duration
	ExtractionBudget time.Duration
	FetchBudget      time.Duration
	PerFetchTimeout  time.Duration

	CacheCapacity int

	BusinessHoursStart     int
	BusinessHoursEnd       int
	LookaheadDays          int
	DefaultDurationMinutes int
	DefaultDomain          string

	GoogleClientID        string
	GoogleClientSecret    string
	GoogleCredentialsFile string
	CalendarTokensDir     string
}

// Load parses configuration values from the current process environment.
//
// Every value has a usable default; set values are validated and all invalid
// entries are reported together so a misconfigured deploy fails with one
// complete message.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:               8080,
		SQLiteDSN:              "file:coordinator.db",
		LLMBaseURL:             "http://localhost:4000/v1",
		LLMAPIKey:              "NULL",
		LLMModel:               "llama-3.2-3b",
		LLMMaxTokens:           512,
		LLMTemperature:         0.1,
		LLMTopP:                0.9,
		LLMTimeout:             15 * time.Second,
		OverallDeadline:        5 * time.Second,
		ExtractionBudget:       2500 * time.Millisecond,
		FetchBudget:            2 * time.Second,
		PerFetchTimeout:        1500 * time.Millisecond,
		CacheCapacity:          128,
		BusinessHoursStart:     9,
		BusinessHoursEnd:       18,
		LookaheadDays:          7,
		DefaultDurationMinutes: 30,
		DefaultDomain:          "@example.com",
		GoogleCredentialsFile:  "credentials.json",
		CalendarTokensDir:      "tokens",
	}

	invalid := make([]string, 0, 2)

	loadInt := func(name string, target *int, min int) {
		if value := strings.TrimSpace(os.Getenv(name)); value != "" {
			parsed, err := strconv.Atoi(value)
			if err != nil || parsed < min {
				invalid = append(invalid, name)
			} else {
				*target = parsed
			}
		}
	}
	loadFloat := func(name string, target *float64) {
		if value := strings.TrimSpace(os.Getenv(name)); value != "" {
			parsed, err := strconv.ParseFloat(value, 64)
			if err != nil || parsed < 0 {
				invalid = append(invalid, name)
			} else {
				*target = parsed
			}
		}
	}
	loadDuration := func(name string, target *time.Duration) {
		if value := strings.TrimSpace(os.Getenv(name)); value != "" {
			parsed, err := time.ParseDuration(value)
			if err != nil || parsed <= 0 {
				invalid = append(invalid, name)
			} else {
				*target = parsed
			}
		}
	}
	loadString := func(name string, target *string) {
		if value := strings.TrimSpace(os.Getenv(name)); value != "" {
			*target = value
		}
	}

	loadInt("COORDINATOR_HTTP_PORT", &cfg.HTTPPort, 1)
	loadString("COORDINATOR_SQLITE_DSN", &cfg.SQLiteDSN)

	loadString("COORDINATOR_LLM_BASE_URL", &cfg.LLMBaseURL)
	loadString("COORDINATOR_LLM_API_KEY", &cfg.LLMAPIKey)
	loadString("COORDINATOR_LLM_MODEL", &cfg.LLMModel)
	loadInt("COORDINATOR_LLM_MAX_TOKENS", &cfg.LLMMaxTokens, 1)
	loadFloat("COORDINATOR_LLM_TEMPERATURE", &cfg.LLMTemperature)
	loadFloat("COORDINATOR_LLM_TOP_P", &cfg.LLMTopP)
	loadDuration("COORDINATOR_LLM_TIMEOUT", &cfg.LLMTimeout)

	loadDuration("COORDINATOR_OVERALL_DEADLINE", &cfg.OverallDeadline)
	loadDuration("COORDINATOR_EXTRACTION_BUDGET", &cfg.ExtractionBudget)
	loadDuration("COORDINATOR_FETCH_BUDGET", &cfg.FetchBudget)
	loadDuration("COORDINATOR_PER_FETCH_TIMEOUT", &cfg.PerFetchTimeout)

	loadInt("COORDINATOR_CACHE_CAPACITY", &cfg.CacheCapacity, 1)

	loadInt("COORDINATOR_BUSINESS_HOURS_START", &cfg.BusinessHoursStart, 0)
	loadInt("COORDINATOR_BUSINESS_HOURS_END", &cfg.BusinessHoursEnd, 1)
	loadInt("COORDINATOR_LOOKAHEAD_DAYS", &cfg.LookaheadDays, 1)
	loadInt("COORDINATOR_DEFAULT_DURATION_MINUTES", &cfg.DefaultDurationMinutes, 1)
	loadString("COORDINATOR_DEFAULT_DOMAIN", &cfg.DefaultDomain)

	loadString("COORDINATOR_GOOGLE_CLIENT_ID", &cfg.GoogleClientID)
	loadString("COORDINATOR_GOOGLE_CLIENT_SECRET", &cfg.GoogleClientSecret)
	loadString("COORDINATOR_GOOGLE_CREDENTIALS_FILE", &cfg.GoogleCredentialsFile)
	loadString("COORDINATOR_CALENDAR_TOKENS_DIR", &cfg.CalendarTokensDir)

	if cfg.BusinessHoursEnd <= cfg.BusinessHoursStart {
		invalid = append(invalid, "COORDINATOR_BUSINESS_HOURS_END")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
