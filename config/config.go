package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vinizap/takenote/storage"
)

type Config struct {
	Port    string          `yaml:"port"`
	Storage storage.Options `yaml:"storage"`
	Log     LogConfig       `yaml:"log"`
	Export  ExportConfig    `yaml:"export"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type ExportConfig struct {
	// PDFCommand converts HTML on stdin to PDF on stdout. Empty disables
	// PDF export.
	PDFCommand []string `yaml:"pdf_command"`
}

func Default() Config {
	return Config{
		Port: "8080",
		Storage: storage.Options{
			Backend: storage.BackendFile,
			Path:    "./data/takenote.json",
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads .env (if present), then the YAML file at path (if non-empty),
// then TAKENOTE_* environment overrides.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path == "" {
		path = os.Getenv("TAKENOTE_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("TAKENOTE_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("TAKENOTE_STORAGE"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("TAKENOTE_DATA"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("TAKENOTE_DATABASE_URL"); v != "" {
		cfg.Storage.DatabaseURL = v
	}
	if v := os.Getenv("TAKENOTE_QUOTA_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TAKENOTE_QUOTA_BYTES: %w", err)
		}
		cfg.Storage.QuotaBytes = n
	}
	if v := os.Getenv("TAKENOTE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TAKENOTE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("TAKENOTE_PDF_COMMAND"); v != "" {
		cfg.Export.PDFCommand = strings.Fields(v)
	}
	return nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	if c.Storage.QuotaBytes < 0 {
		return errors.New("storage quota must not be negative")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return c.Storage.Validate()
}
