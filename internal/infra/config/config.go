package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"idetude/internal/domain/assignment"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	Storage             string
	DatabaseURL         string
	TelegramToken       string // empty disables the bot
	AdminTelegramID     int64
	HTTPAddr            string
	SchoolYear          string
	CronSpecLedgerAudit string
	LogLevel            string
	Environment         string
	MaxLevel            int
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load does not override variables that are already set.
	_ = godotenv.Load()
	return load(os.Getenv, time.Now())
}

func load(getenv func(string) string, now time.Time) (*AppConfig, error) {
	cfg := &AppConfig{}
	var err error

	cfg.Storage = strings.ToLower(getenv("STORAGE"))
	if cfg.Storage == "" {
		cfg.Storage = StoragePostgres
	}
	if cfg.Storage != StoragePostgres && cfg.Storage != StorageMemory {
		return nil, fmt.Errorf("invalid STORAGE %q: want %s or %s", cfg.Storage, StoragePostgres, StorageMemory)
	}

	cfg.DatabaseURL = getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" && cfg.Storage == StoragePostgres {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.TelegramToken = getenv("TELEGRAM_TOKEN")

	if adminIDStr := getenv("ADMIN_TELEGRAM_ID"); adminIDStr != "" {
		cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	} else if cfg.TelegramToken != "" {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}

	cfg.HTTPAddr = getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	cfg.SchoolYear = getenv("SCHOOL_YEAR")
	if cfg.SchoolYear == "" {
		cfg.SchoolYear = SchoolYearOf(now)
	} else if !assignment.ValidSchoolYear(cfg.SchoolYear) {
		return nil, fmt.Errorf("invalid SCHOOL_YEAR %q, expected e.g. 2026-2027", cfg.SchoolYear)
	}

	cfg.CronSpecLedgerAudit = getenv("CRON_SPEC_LEDGER_AUDIT")
	if cfg.CronSpecLedgerAudit == "" {
		cfg.CronSpecLedgerAudit = "0 3 * * *" // 03:00 daily
	}

	cfg.LogLevel = strings.ToLower(getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.MaxLevel = 4
	if maxStr := getenv("MAX_LEVEL"); maxStr != "" {
		cfg.MaxLevel, err = strconv.Atoi(maxStr)
		if err != nil || cfg.MaxLevel <= 0 {
			return nil, fmt.Errorf("invalid MAX_LEVEL %q", maxStr)
		}
	}

	return cfg, nil
}

// SchoolYearOf returns the "YYYY-YYYY" school year containing t. Years start in September.
func SchoolYearOf(t time.Time) string {
	start := t.Year()
	if t.Month() < time.September {
		start--
	}
	return fmt.Sprintf("%d-%d", start, start+1)
}
