// Package config resolves pkmbinder settings from, in rising precedence,
// built-in defaults, an optional TOML file, and environment variables. A
// .env file in the working directory is folded into the environment first
// (it never overrides variables that are already set).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config carries every runtime setting.
type Config struct {
	APIKey         string
	BaseURL        string
	TimeoutSeconds int
	DBPath         string
	ListenAddr     string
	PageSize       int
	RatePerSec     float64
	RefreshCron    string
	LogLevel       string
	LogFormat      string
}

const (
	defaultConfigPath = "~/.config/pkmbinder/config.toml"
	defaultDBPath     = "~/.local/share/pkmbinder/pkmbinder.db"
	defaultListenAddr = ":8480"
	defaultPageSize   = 25
	defaultRate       = 5
	defaultCron       = "0 6 * * *"
)

// Load reads the config file at path (or the default location when path is
// empty). A missing file is not an error; defaults and environment apply.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		TimeoutSeconds: 30,
		DBPath:         defaultDBPath,
		ListenAddr:     defaultListenAddr,
		PageSize:       defaultPageSize,
		RatePerSec:     defaultRate,
		RefreshCron:    defaultCron,
		LogLevel:       "info",
		LogFormat:      "text",
	}

	data, err := os.ReadFile(resolved)
	switch {
	case err == nil:
		if err := applyFile(&cfg, data); err != nil {
			return Config{}, err
		}
	case errors.Is(err, os.ErrNotExist):
		// fine, run on defaults
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	applyEnv(&cfg)

	cfg.DBPath = mustExpand(cfg.DBPath)
	return cfg, nil
}

func applyFile(cfg *Config, data []byte) error {
	var raw struct {
		APIKey         string  `toml:"api_key"`
		BaseURL        string  `toml:"base_url"`
		TimeoutSeconds int     `toml:"timeout_seconds"`
		DBPath         string  `toml:"db_path"`
		ListenAddr     string  `toml:"listen_addr"`
		PageSize       int     `toml:"page_size"`
		RatePerSec     float64 `toml:"rate_per_sec"`
		RefreshCron    string  `toml:"refresh_cron"`
		LogLevel       string  `toml:"log_level"`
		LogFormat      string  `toml:"log_format"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIKey); v != "" {
		cfg.APIKey = v
	}
	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	if raw.TimeoutSeconds > 0 {
		cfg.TimeoutSeconds = raw.TimeoutSeconds
	}
	if v := strings.TrimSpace(raw.DBPath); v != "" {
		cfg.DBPath = v
	}
	if v := strings.TrimSpace(raw.ListenAddr); v != "" {
		cfg.ListenAddr = v
	}
	if raw.PageSize > 0 {
		cfg.PageSize = raw.PageSize
	}
	if raw.RatePerSec > 0 {
		cfg.RatePerSec = raw.RatePerSec
	}
	if v := strings.TrimSpace(raw.RefreshCron); v != "" {
		cfg.RefreshCron = v
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(raw.LogFormat); v != "" {
		cfg.LogFormat = v
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("POKEMONTCG_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("PKMBINDER_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("PKMBINDER_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("PKMBINDER_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("PKMBINDER_REFRESH_CRON"); v != "" {
		cfg.RefreshCron = v
	}
	if v := os.Getenv("PKMBINDER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PKMBINDER_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("PKMBINDER_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutSeconds = n
		}
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
