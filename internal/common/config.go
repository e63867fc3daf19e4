package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Timetable   TimetableConfig  `toml:"timetable"`
	Crawler     CrawlerConfig    `toml:"crawler"`
	Dispatcher  DispatcherConfig `toml:"dispatcher"`
	Logging     LoggingConfig    `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gte=0,lte=65535"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Type   string       `toml:"type" validate:"omitempty,oneof=badger"`
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration.
type BadgerConfig struct {
	Path       string `toml:"path"`        // Database directory path
	GCSchedule string `toml:"gc_schedule"` // Cron schedule for value-log garbage collection
}

// TimetableConfig locates the operator-editable schedule file.
type TimetableConfig struct {
	Dir    string `toml:"dir"`    // Directory holding the timetable file
	Name   string `toml:"name"`   // File name without extension
	Format string `toml:"format"` // File format; "json" is the reference format
	Watch  bool   `toml:"watch"`  // Reload the scheduler when the file is edited externally
}

// CrawlerConfig contains catalog API crawl configuration. The detail delay
// is intentionally larger than the page delay: listing is a bulk endpoint,
// per-item detail has the tighter rate budget.
type CrawlerConfig struct {
	BaseURL        string        `toml:"base_url"`        // Catalog API base URL
	UserAgent      string        `toml:"user_agent"`      // User agent sent with every request
	PerPage        int           `toml:"per_page" validate:"gte=1,lte=100"`
	PageDelay      time.Duration `toml:"page_delay"`      // Minimum delay between result-page requests
	DetailDelay    time.Duration `toml:"detail_delay"`    // Minimum delay between per-item detail requests
	RequestTimeout time.Duration `toml:"request_timeout"` // HTTP request timeout
}

// DispatcherConfig controls the asynchronous crawl queue.
type DispatcherConfig struct {
	QueueSize int `toml:"queue_size" validate:"gte=1"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for log lines
}

// DefaultConfig returns the built-in configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Type: "badger",
			Badger: BadgerConfig{
				Path:       "./data/colligo",
				GCSchedule: "30 3 * * *",
			},
		},
		Timetable: TimetableConfig{
			Dir:    ".timetables",
			Name:   "timetable",
			Format: "json",
			Watch:  true,
		},
		Crawler: CrawlerConfig{
			BaseURL:        "https://api.hh.ru",
			UserAgent:      "colligo/1.0 (vacancy collector)",
			PerPage:        100,
			PageDelay:      50 * time.Millisecond,
			DetailDelay:    500 * time.Millisecond,
			RequestTimeout: 30 * time.Second,
		},
		Dispatcher: DispatcherConfig{
			QueueSize: 64,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
	}
}

// LoadFromFiles loads configuration starting from defaults, then applies
// each file in order (later files override earlier ones), then environment
// overrides, then validates. Missing files are an error; an empty path list
// yields defaults plus environment.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := DefaultConfig()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies COLLIGO_* environment variables on top of the
// file configuration.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("COLLIGO_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("COLLIGO_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("COLLIGO_STORAGE_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}
	if v := os.Getenv("COLLIGO_TIMETABLE_DIR"); v != "" {
		config.Timetable.Dir = v
	}
	if v := os.Getenv("COLLIGO_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("COLLIGO_CRAWLER_BASE_URL"); v != "" {
		config.Crawler.BaseURL = v
	}
}

// ApplyFlagOverrides applies command-line flag values (highest priority).
// Zero values leave the config untouched.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// IsProduction returns true if the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}
