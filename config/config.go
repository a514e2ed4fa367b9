// config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// APIConfig covers the external item source. The token is a secret and
// comes from the env file, never from config.yaml.
type APIConfig struct {
	BaseURL   string `yaml:"base_url"`
	URLPrefix string `yaml:"url_prefix"`
	Token     string `yaml:"-"`
}

// StorageConfig selects and addresses the storage backend.
type StorageConfig struct {
	// Backend is "csv", "sqlite" or "sheets".
	Backend string `yaml:"backend"`
	// Path is the local file for the csv and sqlite backends.
	Path string `yaml:"path"`
}

// SheetsConfig is the remote spreadsheet configuration, read from the env
// file. All-or-nothing: a partial set of variables is a configuration error.
type SheetsConfig struct {
	CredentialsFile string
	SpreadsheetID   string
	TrackingSheet   string
	RunsSheet       string
}

// SLAConfig holds the compliance thresholds.
type SLAConfig struct {
	ResponseWindowDays int      `yaml:"response_window_days"`
	RoadmapWindowDays  int      `yaml:"roadmap_window_days"`
	LookbackDays       int      `yaml:"lookback_days"`
	InitialStatus      string   `yaml:"initial_status"`
	TerminalStatuses   []string `yaml:"terminal_statuses"`
}

// FiltersConfig holds the exclusion thresholds as written in config.yaml;
// the date strings are parsed into the *Date fields on load.
type FiltersConfig struct {
	CreatedAfter        string `yaml:"created_after"`
	ExcludeSource       string `yaml:"exclude_source"`
	ExcludeSourceBefore string `yaml:"exclude_source_before"`
	ExcludeCustomer     string `yaml:"exclude_customer"`

	CreatedAfterDate        time.Time `yaml:"-"`
	ExcludeSourceBeforeDate time.Time `yaml:"-"`
}

// Config is the explicit configuration value passed into the engine and
// storage at construction. Nothing reads ambient globals.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	SLA     SLAConfig     `yaml:"sla"`
	Filters FiltersConfig `yaml:"filters"`

	// Sheets is nil when the spreadsheet backend is not configured.
	Sheets *SheetsConfig `yaml:"-"`
}

func defaults() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: "csv",
			Path:    "data/sla_tracking.csv",
		},
		SLA: SLAConfig{
			ResponseWindowDays: 14,
			RoadmapWindowDays:  60,
			LookbackDays:       14,
			InitialStatus:      "On deck",
			TerminalStatuses:   []string{"Accepted", "Rejected"},
		},
		Filters: FiltersConfig{
			ExcludeCustomer: "TEST",
		},
	}
}

// Load reads configuration from a YAML file plus an env file of secrets.
// Either path may name a missing file: the YAML falls back to defaults and
// the env file falls back to the process environment.
func Load(configPath, envPath string) (*Config, error) {
	cfg := defaults()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case os.IsNotExist(err):
			// Defaults apply.
		case err != nil:
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config file %s: %w", configPath, err)
			}
		}
	}

	if envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return nil, fmt.Errorf("failed to load env file %s: %w", envPath, err)
			}
		}
	}

	cfg.API.Token = os.Getenv("PRODUCTPLAN_API_TOKEN")

	sheets, err := sheetsFromEnv()
	if err != nil {
		return nil, err
	}
	cfg.Sheets = sheets

	if err := cfg.parseFilterDates(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) parseFilterDates() error {
	var err error
	if c.Filters.CreatedAfter != "" {
		c.Filters.CreatedAfterDate, err = parseDate(c.Filters.CreatedAfter)
		if err != nil {
			return fmt.Errorf("failed to parse filters.created_after: %w", err)
		}
	}
	if c.Filters.ExcludeSourceBefore != "" {
		c.Filters.ExcludeSourceBeforeDate, err = parseDate(c.Filters.ExcludeSourceBefore)
		if err != nil {
			return fmt.Errorf("failed to parse filters.exclude_source_before: %w", err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "csv", "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the %s backend", c.Storage.Backend)
		}
	case "sheets":
		if c.Sheets == nil {
			return fmt.Errorf("storage.backend is sheets but the Google Sheets environment variables are not set")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Filters.ExcludeSource != "" && c.Filters.ExcludeSourceBeforeDate.IsZero() {
		return fmt.Errorf("filters.exclude_source is set but filters.exclude_source_before is not")
	}
	return nil
}

// sheetsFromEnv reads the spreadsheet variables. The credentials file, the
// spreadsheet id and the tracking sheet name must be set together or not at
// all; a partial configuration is rejected rather than silently ignored.
func sheetsFromEnv() (*SheetsConfig, error) {
	creds := os.Getenv("GOOGLE_CREDENTIALS_FILE")
	sheetID := os.Getenv("GOOGLE_SHEET_ID")
	sheetName := os.Getenv("GOOGLE_SHEET_NAME")

	set := 0
	for _, v := range []string{creds, sheetID, sheetName} {
		if v != "" {
			set++
		}
	}
	if set == 0 {
		return nil, nil
	}
	if set != 3 {
		return nil, fmt.Errorf("partial Google Sheets configuration: GOOGLE_CREDENTIALS_FILE, GOOGLE_SHEET_ID and GOOGLE_SHEET_NAME must all be set or none")
	}

	info, err := os.Stat(creds)
	if err != nil {
		return nil, fmt.Errorf("Google credentials file not found: %s", creds)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("Google credentials path is a directory, not a file: %s", creds)
	}

	runs := os.Getenv("GOOGLE_SHEET_RUNS_NAME")
	if runs == "" {
		runs = "Runs"
	}
	return &SheetsConfig{
		CredentialsFile: creds,
		SpreadsheetID:   sheetID,
		TrackingSheet:   sheetName,
		RunsSheet:       runs,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
