package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"primanota/internal/ledger"
)

type Config struct {
	// HTTP Server
	Port string

	// Backend selection
	DataBackend string

	// Google Sheets
	GoogleSpreadsheetID string
	MovementsSheetName  string
	ReferencesSheetName string

	// Ledger
	CacheTTL     time.Duration
	AmountPolicy string

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Worker
	StatsInterval time.Duration
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend: getEnv("DATA_BACKEND", "memory"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		MovementsSheetName:  getEnv("PRIMA_NOTA_SHEET_NAME", "Prima Nota"),
		ReferencesSheetName: getEnv("REFERENCES_SHEET_NAME", "riferimenti"),

		CacheTTL:     getEnvDuration("LEDGER_CACHE_TTL", 5*time.Minute),
		AmountPolicy: getEnv("AMOUNT_POLICY", "coerce_zero"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/primanota.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "primanota"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "movement_appended"),

		StatsInterval: getEnvDuration("STATS_INTERVAL", 5*time.Minute),
	}

	return cfg
}

// AmountPolicyValue maps the configured policy name onto the loader's
// enum.
func (c *Config) AmountPolicyValue() (ledger.AmountPolicy, error) {
	switch c.AmountPolicy {
	case "coerce_zero":
		return ledger.CoerceZero, nil
	case "drop_row":
		return ledger.DropRow, nil
	default:
		return ledger.CoerceZero, fmt.Errorf("invalid amount policy '%s': must be 'coerce_zero' or 'drop_row'", c.AmountPolicy)
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"memory", "sheets"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sheets" {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.MovementsSheetName == "" {
			errors = append(errors, "movements sheet name cannot be empty when using sheets backend")
		}
		if c.ReferencesSheetName == "" {
			errors = append(errors, "references sheet name cannot be empty when using sheets backend")
		}
	}

	if _, err := c.AmountPolicyValue(); err != nil {
		errors = append(errors, err.Error())
	}

	if c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	} else if c.CacheTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at most 24 hours", c.CacheTTL))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}

		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	}

	if c.StatsInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid stats interval %v: must be at least 1 second", c.StatsInterval))
	} else if c.StatsInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid stats interval %v: must be at most 24 hours", c.StatsInterval))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
