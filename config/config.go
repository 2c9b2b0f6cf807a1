package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"lottery/database"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Roster sources
const (
	RosterSourceXLSX     = "xlsx"
	RosterSourceCSV      = "csv"
	RosterSourcePostgres = "postgres"
)

// Result stores
const (
	ResultStoreFile     = "file"
	ResultStorePostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	// Passcodes
	OperatorPasscode string `env:"OPERATOR_PASSCODE"`
	ResetPasscode    string `env:"RESET_PASSCODE"`

	// Roster configuration
	RosterSource     string `env:"ROSTER_SOURCE" envDefault:"xlsx"`
	RosterFile       string `env:"ROSTER_FILE" envDefault:"members_data.xlsx"`
	RosterSheet      string `env:"ROSTER_SHEET"`       // Defaults to the first sheet
	RosterIDColumn   string `env:"ROSTER_ID_COLUMN"`   // Defaults to the first column
	RosterNameColumn string `env:"ROSTER_NAME_COLUMN"` // Optional display name column

	// Result store configuration
	ResultStore string `env:"RESULT_STORE" envDefault:"file"`
	ResultFile  string `env:"RESULT_FILE" envDefault:"winners_record.json"`

	// Database configuration
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseName string `env:"DATABASE_NAME"`

	// Discord configuration
	DiscordToken string `env:"DISCORD_TOKEN"`
	GuildID      string `env:"GUILD_ID"` // Registers commands on one guild when set

	// NATS configuration
	NATSServers       string `env:"NATS_SERVERS"` // Comma-separated, publishing disabled when empty
	NATSSubjectPrefix string `env:"NATS_SUBJECT_PREFIX" envDefault:"lottery"`

	// Metrics configuration
	OTelExporterType     string `env:"OTEL_EXPORTER_TYPE" envDefault:"none"` // "none", "console" or "otlp"
	OTelOTLPEndpoint     string `env:"OTEL_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTelExportIntervalMS int    `env:"OTEL_EXPORT_INTERVAL_MS" envDefault:"60000"`
	OTelServiceName      string `env:"OTEL_SERVICE_NAME" envDefault:"lottery"`

	// Passcode attempt throttling, per caller
	AuthAttemptsPerMinute float64 `env:"AUTH_ATTEMPTS_PER_MINUTE" envDefault:"5"`
	AuthAttemptBurst      int     `env:"AUTH_ATTEMPT_BURST" envDefault:"3"`

	// Export format for winners downloads
	ExportFormat string `env:"EXPORT_FORMAT" envDefault:"xlsx"`

	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = Load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// Load reads an optional .env file, then parses and validates the environment
func Load() (*Config, error) {
	// A missing .env file is fine; real environment variables take precedence
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.RosterSource = strings.ToLower(strings.TrimSpace(c.RosterSource))
	c.ResultStore = strings.ToLower(strings.TrimSpace(c.ResultStore))
	c.ExportFormat = strings.ToLower(strings.TrimSpace(c.ExportFormat))
	c.OTelExporterType = strings.ToLower(strings.TrimSpace(c.OTelExporterType))
}

// Validate checks option values and the settings each selected backend needs
func (c *Config) Validate() error {
	switch c.RosterSource {
	case RosterSourceXLSX, RosterSourceCSV, RosterSourcePostgres:
	default:
		return fmt.Errorf("ROSTER_SOURCE must be xlsx, csv or postgres, got %q", c.RosterSource)
	}

	switch c.ResultStore {
	case ResultStoreFile, ResultStorePostgres:
	default:
		return fmt.Errorf("RESULT_STORE must be file or postgres, got %q", c.ResultStore)
	}

	switch c.ExportFormat {
	case "xlsx", "csv":
	default:
		return fmt.Errorf("EXPORT_FORMAT must be xlsx or csv, got %q", c.ExportFormat)
	}

	switch c.OTelExporterType {
	case "none", "console", "otlp":
	default:
		return fmt.Errorf("OTEL_EXPORTER_TYPE must be none, console or otlp, got %q", c.OTelExporterType)
	}

	if c.UsesDatabase() && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required when a postgres backend is selected")
	}
	if c.RosterSource != RosterSourcePostgres && strings.TrimSpace(c.RosterFile) == "" {
		return fmt.Errorf("ROSTER_FILE cannot be empty")
	}
	if c.ResultStore == ResultStoreFile && strings.TrimSpace(c.ResultFile) == "" {
		return fmt.Errorf("RESULT_FILE cannot be empty")
	}
	if c.AuthAttemptsPerMinute <= 0 || c.AuthAttemptBurst < 1 {
		return fmt.Errorf("AUTH_ATTEMPTS_PER_MINUTE and AUTH_ATTEMPT_BURST must be positive")
	}
	return nil
}

// Warnings lists non-fatal problems. Unset passcodes are reported by the
// authorizer that enforces them.
func (c *Config) Warnings() []error {
	var warnings []error
	if c.ResetPasscode != "" && c.ResetPasscode == c.OperatorPasscode {
		warnings = append(warnings, errors.New("reset passcode is the same as the operator passcode"))
	}
	return warnings
}

// UsesDatabase reports whether any configured backend needs Postgres
func (c *Config) UsesDatabase() bool {
	return c.RosterSource == RosterSourcePostgres || c.ResultStore == ResultStorePostgres
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// NATSServerList splits NATS_SERVERS
func (c *Config) NATSServerList() []string {
	var servers []string
	for _, s := range strings.Split(c.NATSServers, ",") {
		if s = strings.TrimSpace(s); s != "" {
			servers = append(servers, s)
		}
	}
	return servers
}

// OTelExportInterval returns the metrics export interval
func (c *Config) OTelExportInterval() time.Duration {
	return time.Duration(c.OTelExportIntervalMS) * time.Millisecond
}

// IsProduction reports whether ENVIRONMENT is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		OperatorPasscode:      "test-operator",
		ResetPasscode:         "test-reset",
		RosterSource:          RosterSourceXLSX,
		RosterFile:            "members_data.xlsx",
		ResultStore:           ResultStoreFile,
		ResultFile:            "winners_record.json",
		NATSSubjectPrefix:     "lottery",
		OTelExporterType:      "none",
		OTelExportIntervalMS:  60000,
		OTelServiceName:       "lottery",
		AuthAttemptsPerMinute: 5,
		AuthAttemptBurst:      3,
		ExportFormat:          "xlsx",
		LogLevel:              "info",
		Environment:           "test",
	}
}
