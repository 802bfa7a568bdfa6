package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load overlays the TOML file at path onto Default(). Keys absent from the
// file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// FromEnv builds the configuration the entry points run with: .env is read
// when present, QA_CONFIG names an optional TOML file, and the remaining
// QA_* variables override individual settings.
func FromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("QA_CONFIG"); path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.URL = getEnv("QA_URL", cfg.URL)
	cfg.Report.PostgresDSN = getEnv("PG_DSN", cfg.Report.PostgresDSN)
	cfg.Report.SQLitePath = getEnv("QA_SQLITE", cfg.Report.SQLitePath)
	cfg.Report.CSVPath = getEnv("QA_CSV", cfg.Report.CSVPath)
	cfg.Report.XLSXPath = getEnv("QA_XLSX", cfg.Report.XLSXPath)
	cfg.Report.DumpDir = getEnv("QA_DUMP_DIR", cfg.Report.DumpDir)
	cfg.Browser.Headless = getEnvBool("QA_HEADLESS", cfg.Browser.Headless)
	cfg.Schedule.Cron = getEnv("QA_SCHEDULE", cfg.Schedule.Cron)
}

func getEnv(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
