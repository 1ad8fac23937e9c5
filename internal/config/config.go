package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the file-level configuration for the devtrack process. User
// preferences that the dashboard edits (idle timeout, reporting timezone,
// targets) live in the store's settings table instead; this file only
// carries what is needed before the store is open.
type Config struct {
	ListenAddr string `toml:"listen_addr"`
	DBPath     string `toml:"db_path"`
	LogDir     string `toml:"log_dir"`
}

// Default returns a Config pointing at the standard user-config locations.
func Default() (*Config, error) {
	dbPath, err := defaultDBPath()
	if err != nil {
		return nil, err
	}
	return &Config{
		ListenAddr: "127.0.0.1:5317",
		DBPath:     dbPath,
		LogDir:     filepath.Join(filepath.Dir(dbPath), "log"),
	}, nil
}

// DefaultPath returns ~/.config/devtrack/config.toml.
func DefaultPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "devtrack", "config.toml"), nil
}

func defaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "devtrack", "devtrack.db"), nil
}

// ReadFromFile loads the config at path, filling missing fields with
// defaults. A missing file is not an error: the defaults are returned.
func ReadFromFile(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if cfg.ListenAddr == "" || cfg.DBPath == "" {
		base, err := Default()
		if err != nil {
			return nil, err
		}
		if cfg.ListenAddr == "" {
			cfg.ListenAddr = base.ListenAddr
		}
		if cfg.DBPath == "" {
			cfg.DBPath = base.DBPath
		}
		if cfg.LogDir == "" {
			cfg.LogDir = base.LogDir
		}
	}
	return cfg, nil
}

// Init writes cfg to path, refusing to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}
