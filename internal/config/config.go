// Package config loads runtime configuration from the environment with
// sensible defaults, validating everything up front.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	// HTTP server
	Port string

	// Backend selection: memory, sqlite or sheets.
	Backend string

	// Local store
	SQLiteDBPath string

	// Google Sheets store
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string

	// Save events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Archiver
	ArchiveDBPath string
}

func Load() *Config {
	return &Config{
		Port:    getEnv("PORT", "8082"),
		Backend: getEnv("LEDGER_BACKEND", "memory"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/ledger.db"),

		SpreadsheetID:   getEnv("GOOGLE_SPREADSHEET_ID", ""),
		SheetName:       getEnv("GOOGLE_SHEET_NAME", "T_RawData"),
		CredentialsJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		CredentialsFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "gagebu"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "save_events"),

		ArchiveDBPath: getEnv("ARCHIVE_DB_PATH", "./data/archive.db"),
	}
}

// Validate checks the configuration and returns every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.Backend {
	case "memory":
	case "sqlite":
		if c.SQLiteDBPath == "" {
			problems = append(problems, "SQLITE_DB_PATH cannot be empty with the sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					problems = append(problems, fmt.Sprintf("cannot create database directory '%s': %v", dir, err))
				}
			}
		}
	case "sheets":
		if c.SpreadsheetID == "" {
			problems = append(problems, "GOOGLE_SPREADSHEET_ID is required with the sheets backend")
		}
		if c.SheetName == "" {
			problems = append(problems, "GOOGLE_SHEET_NAME cannot be empty with the sheets backend")
		}
		if c.CredentialsFile != "" {
			if _, err := os.Stat(c.CredentialsFile); os.IsNotExist(err) {
				problems = append(problems, fmt.Sprintf("service account file does not exist: %s", c.CredentialsFile))
			}
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid backend '%s': must be one of [memory sqlite sheets]", c.Backend))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP_EXCHANGE cannot be empty when AMQP_URL is set")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP_QUEUE cannot be empty when AMQP_URL is set")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
