// Package config loads the server configuration from TOML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// AdminKeyEnv overrides api.admin_key when set.
const AdminKeyEnv = "HEARTHVALE_ADMIN_KEY"

type Config struct {
	World   WorldConfig   `toml:"world"`
	Engine  EngineConfig  `toml:"engine"`
	Storage StorageConfig `toml:"storage"`
	API     APIConfig     `toml:"api"`
	Logging LoggingConfig `toml:"logging"`
	Tuning  string        `toml:"tuning"` // optional YAML file of simulation knobs
}

type WorldConfig struct {
	Seed       int64 `toml:"seed"` // 0 = random
	GridSize   int   `toml:"grid_size"`
	Population int   `toml:"population"`
	Houses     int   `toml:"houses"`
}

type EngineConfig struct {
	TickInterval time.Duration `toml:"tick_interval"`
	Speed        float64       `toml:"speed"`
	AutosaveDays int           `toml:"autosave_days"` // 0 disables autosave
	Paused       bool          `toml:"paused"`
}

type StorageConfig struct {
	DBPath      string `toml:"db_path"`
	SnapshotDir string `toml:"snapshot_dir"` // empty disables snapshot files
}

type APIConfig struct {
	Port     int    `toml:"port"`
	AdminKey string `toml:"admin_key"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text, json, auto
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if key := os.Getenv(AdminKeyEnv); key != "" {
		cfg.API.AdminKey = key
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.World.GridSize < 10 {
		errs = append(errs, fmt.Errorf("world.grid_size %d is too small", c.World.GridSize))
	}
	if c.World.Population < 0 {
		errs = append(errs, errors.New("world.population must not be negative"))
	}
	if c.Engine.TickInterval <= 0 {
		errs = append(errs, errors.New("engine.tick_interval must be positive"))
	}
	if c.Engine.Speed <= 0 {
		errs = append(errs, errors.New("engine.speed must be positive"))
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		errs = append(errs, fmt.Errorf("api.port %d out of range", c.API.Port))
	}
	switch c.Logging.Format {
	case "text", "json", "auto":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be text, json or auto", c.Logging.Format))
	}
	return errors.Join(errs...)
}

func defaults() *Config {
	return &Config{
		World: WorldConfig{
			Seed:       42,
			GridSize:   200,
			Population: 100,
			Houses:     30,
		},
		Engine: EngineConfig{
			TickInterval: time.Second,
			Speed:        1,
			AutosaveDays: 1,
		},
		Storage: StorageConfig{
			DBPath:      "data/hearthvale.db",
			SnapshotDir: "data/snapshots",
		},
		API: APIConfig{
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}
