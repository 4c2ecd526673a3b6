package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all ingestion settings, populated from an optional YAML file
// and environment variables.
type Config struct {
	DatabaseDSN string `yaml:"database_dsn" env:"DATABASE_DSN"`
	DBMaxConns  int32  `yaml:"db_max_conns" env:"DB_MAX_CONNS" env-default:"4"`

	DataDir          string `yaml:"data_dir" env:"DATA_DIR" env-default:"data"`
	RelaxQuotes      bool   `yaml:"csv_relax_quotes" env:"CSV_RELAX_QUOTES" env-default:"true"`
	RelaxColumnCount bool   `yaml:"csv_relax_column_count" env:"CSV_RELAX_COLUMN_COUNT" env-default:"true"`

	BatchSize     int      `yaml:"batch_size" env:"BATCH_SIZE" env-default:"1000"`
	ChunkSize     int      `yaml:"chunk_size" env:"CHUNK_SIZE" env-default:"100"`
	ProgressEvery int      `yaml:"progress_every" env:"PROGRESS_EVERY" env-default:"10000"`
	DedupMaxKeys  int      `yaml:"dedup_max_keys" env:"DEDUP_MAX_KEYS" env-default:"0"`
	WriteRate     float64  `yaml:"write_rate_limit" env:"WRITE_RATE_LIMIT" env-default:"0"`
	CleanSlate    []string `yaml:"clean_slate_tables" env:"CLEAN_SLATE_TABLES" env-separator:","`

	RefreshComputedFields bool `yaml:"refresh_computed_fields" env:"REFRESH_COMPUTED_FIELDS" env-default:"true"`

	HTTPAddr        string        `yaml:"http_addr" env:"HTTP_ADDR"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
	PushgatewayURL  string        `yaml:"pushgateway_url" env:"PUSHGATEWAY_URL"`

	// Run summaries are published when brokers are set.
	KafkaBrokers      []string `yaml:"kafka_brokers" env:"KAFKA_BROKERS" env-separator:","`
	KafkaSummaryTopic string   `yaml:"kafka_summary_topic" env:"KAFKA_SUMMARY_TOPIC" env-default:"ingest-runs"`

	// Hosted backend admin API, used by maintenance commands only.
	AdminAPIURL     string        `yaml:"admin_api_url" env:"ADMIN_API_URL" env-default:"https://api.supabase.com"`
	AdminProjectRef string        `yaml:"admin_project_ref" env:"ADMIN_PROJECT_REF"`
	AdminTokenFile  string        `yaml:"admin_token_file" env:"ADMIN_TOKEN_FILE"`
	AdminTimeout    time.Duration `yaml:"admin_timeout" env:"ADMIN_TIMEOUT" env-default:"60s"`

	EPADownloadURL string `yaml:"epa_download_url" env:"EPA_DOWNLOAD_URL" env-default:"https://echo.epa.gov/files/echodownloads/SDWA_latest_downloads.zip"`

	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`
}

const maxBatchSize = 5000

// dotenvFiles are loaded in order when present; earlier files win and real
// environment variables win over both.
var dotenvFiles = []string{".env.local", ".env"}

// Load reads configuration. A YAML file is used when CONFIG_PATH is set or
// ./config.yaml exists; environment variables override it.
func Load() (*Config, error) {
	for _, f := range dotenvFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return nil, fmt.Errorf("load %s: %w", f, err)
			}
		}
	}

	var cfg Config
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.CleanSlate = trimAll(cfg.CleanSlate)
	cfg.KafkaBrokers = trimAll(cfg.KafkaBrokers)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges. Requirements that depend on the command,
// such as DATABASE_DSN, are checked by the Require helpers.
func (c *Config) Validate() error {
	if c.BatchSize < 1 || c.BatchSize > maxBatchSize {
		return fmt.Errorf("BATCH_SIZE must be between 1 and %d, got %d", maxBatchSize, c.BatchSize)
	}
	if c.ChunkSize < 1 || c.ChunkSize > c.BatchSize {
		return fmt.Errorf("CHUNK_SIZE must be between 1 and BATCH_SIZE (%d), got %d", c.BatchSize, c.ChunkSize)
	}
	if c.ProgressEvery < 1 {
		return errors.New("PROGRESS_EVERY must be positive")
	}
	if c.DedupMaxKeys < 0 {
		return errors.New("DEDUP_MAX_KEYS must not be negative")
	}
	if c.WriteRate < 0 {
		return errors.New("WRITE_RATE_LIMIT must not be negative")
	}
	if c.DBMaxConns < 1 {
		return errors.New("DB_MAX_CONNS must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if c.AdminTimeout <= 0 {
		return errors.New("ADMIN_TIMEOUT must be positive")
	}
	if c.DataDir == "" {
		return errors.New("DATA_DIR is required")
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	return nil
}

// RequireDatabase reports a missing DATABASE_DSN.
func (c *Config) RequireDatabase() error {
	if c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	return nil
}

// RequireAdminAPI reports missing admin API settings.
func (c *Config) RequireAdminAPI() error {
	if c.AdminProjectRef == "" {
		return errors.New("ADMIN_PROJECT_REF is required")
	}
	if c.AdminTokenFile == "" {
		return errors.New("ADMIN_TOKEN_FILE is required")
	}
	return nil
}

// KafkaEnabled reports whether run summaries should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func trimAll(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
