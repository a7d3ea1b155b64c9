package internal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type StorageConfig struct {
	Backend string `yaml:"backend"`        // "sqlite" or "memory"
	Path    string `yaml:"path,omitempty"` // overrides the scope's default db path
}

type CacheConfig struct {
	Size int `yaml:"size"`
}

type Config struct {
	Storage           StorageConfig `yaml:"storage"`
	Cache             CacheConfig   `yaml:"cache"`
	DefaultConfidence Confidence    `yaml:"default_confidence,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Storage:           StorageConfig{Backend: "sqlite"},
		Cache:             CacheConfig{Size: DefaultCacheSize},
		DefaultConfidence: ConfidenceMedium,
	}
}

func LoadConfig(scope Scope) (*Config, error) {
	path := scope.ConfigPath()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "sqlite"
	}
	if cfg.Cache.Size <= 0 {
		cfg.Cache.Size = DefaultCacheSize
	}
	if cfg.DefaultConfidence == "" {
		cfg.DefaultConfidence = ConfidenceMedium
	}

	return &cfg, nil
}

func SaveConfig(scope Scope, cfg *Config) error {
	path := scope.ConfigPath()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// OpenStore opens the configured persistence backend for a scope.
func OpenStore(scope Scope, cfg *Config) (CommitStore, error) {
	switch cfg.Storage.Backend {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite", "":
		path := cfg.Storage.Path
		if path == "" {
			path = scope.DBPath()
		}
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// InitWorkspace creates the .microclaw directory, a default config, and an
// empty database for a scope.
func InitWorkspace(scope Scope) error {
	if err := os.MkdirAll(scope.DataPath, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	if _, err := os.Stat(scope.ConfigPath()); os.IsNotExist(err) {
		if err := SaveConfig(scope, DefaultConfig()); err != nil {
			return err
		}
	}

	store, err := NewSQLiteStore(scope.DBPath())
	if err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	return store.Close()
}
