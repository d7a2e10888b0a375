package config

import (
	"database/sql"
	"errors"
	"io/fs"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq"
	"gopkg.in/yaml.v3"
)

// SheetConfig points at the published spreadsheet holding the attendance log.
type SheetConfig struct {
	// CSVBaseURL is the spreadsheet base URL, e.g.
	// "https://docs.google.com/spreadsheets/d/<id>". Worksheets are read
	// through the published-CSV endpoint; no API credentials are needed.
	CSVBaseURL string `yaml:"csv_base_url"`
	// Worksheet is the attendance log worksheet name.
	Worksheet string `yaml:"worksheet"`
	// MarkerWorksheet/MarkerCell locate the last-modified marker cell the
	// poller checks before doing a full read.
	MarkerWorksheet string        `yaml:"marker_worksheet"`
	MarkerCell      string        `yaml:"marker_cell"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
}

type PollConfig struct {
	// Schedule is a cron spec or "@every <duration>".
	Schedule string `yaml:"schedule"`
}

// ArchiveConfig enables the optional PostgreSQL archive of refreshed data.
type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled"`
	DSN     string `yaml:"dsn"`
}

// AuthConfig holds the single dashboard admin credential. PasswordHash is a
// bcrypt hash; use cmd/hashpw to generate one.
type AuthConfig struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
	JWTSecret    string `yaml:"jwt_secret"`
}

type Config struct {
	Listen   string        `yaml:"listen"`
	Timezone string        `yaml:"timezone"`
	Sheet    SheetConfig   `yaml:"sheet"`
	Poll     PollConfig    `yaml:"poll"`
	Archive  ArchiveConfig `yaml:"archive"`
	Auth     AuthConfig    `yaml:"auth"`
}

var (
	appConfig *Config
	db        *sql.DB
)

// Default returns the built-in configuration. The worksheet and marker cell
// defaults match the sheet layout the badge scanners write to.
func Default() *Config {
	return &Config{
		Listen:   ":8080",
		Timezone: "Asia/Manila",
		Sheet: SheetConfig{
			Worksheet:       "Sheet1",
			MarkerWorksheet: "Metadata",
			MarkerCell:      "A1",
			FetchTimeout:    15 * time.Second,
		},
		Poll: PollConfig{Schedule: "@every 30s"},
	}
}

// Normalize fills zero values with defaults so partial config files behave.
func (c *Config) Normalize() {
	def := Default()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.Sheet.Worksheet == "" {
		c.Sheet.Worksheet = def.Sheet.Worksheet
	}
	if c.Sheet.MarkerWorksheet == "" {
		c.Sheet.MarkerWorksheet = def.Sheet.MarkerWorksheet
	}
	if c.Sheet.MarkerCell == "" {
		c.Sheet.MarkerCell = def.Sheet.MarkerCell
	}
	if c.Sheet.FetchTimeout <= 0 {
		c.Sheet.FetchTimeout = def.Sheet.FetchTimeout
	}
	if c.Poll.Schedule == "" {
		c.Poll.Schedule = def.Poll.Schedule
	}
}

// Load reads the YAML config at path, applies defaults and environment
// overrides. A missing file is not an error: defaults plus environment are
// used, which keeps container deployments config-file free.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if err == nil {
		cfg = &Config{}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
		cfg.Normalize()
	}

	applyEnv(cfg)

	appConfig = cfg
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("SHEET_CSV_URL"); v != "" {
		cfg.Sheet.CSVBaseURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Archive.Enabled = true
		cfg.Archive.DSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("ADMIN_USER"); v != "" {
		cfg.Auth.Username = v
	}
	if v := os.Getenv("ADMIN_PASSWORD_HASH"); v != "" {
		cfg.Auth.PasswordHash = v
	}
}

// Get returns the loaded configuration.
func Get() *Config {
	return appConfig
}

// InitDB opens the archive database and verifies the connection.
func InitDB(cfg ArchiveConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("archive enabled but dsn is empty")
	}

	conn, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, err
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)

	log.Println("Testing archive database connection...")
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	db = conn
	log.Println("Archive database connected successfully")
	return conn, nil
}

// GetDB returns the archive database handle, or nil when the archive is
// disabled.
func GetDB() *sql.DB {
	return db
}
