package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lightrig/rigsnap/pkg/cache"
	"github.com/lightrig/rigsnap/pkg/fixture"
)

// Config is the user configuration file.
//
//	catalog = "/path/to/catalogue.toml"
//
//	[room]
//	width = 8
//	depth = 6
//	height = 3
//
//	[cache]
//	backend = "redis"              # file, redis or none
//	redis_url = "redis://localhost:6379/0"
//	ttl = "72h"
//
//	[server]
//	addr = ":8080"
type Config struct {
	Catalog string       `toml:"catalog"`
	Room    fixture.Room `toml:"room"`
	Cache   CacheConfig  `toml:"cache"`
	Server  ServerConfig `toml:"server"`
}

// CacheConfig selects the solve cache backend.
type CacheConfig struct {
	Backend  string        `toml:"backend"`
	RedisURL string        `toml:"redis_url"`
	TTL      time.Duration `toml:"ttl"`
}

// ServerConfig configures "rigsnap serve".
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Room:   fixture.Room{Width: 8, Depth: 6, Height: 3},
		Cache:  CacheConfig{Backend: "file", TTL: cache.DefaultTTL},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// LoadConfig reads path, or the default location when path is empty. A
// missing default file yields DefaultConfig; a missing explicit file is an
// error. Values absent from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return DefaultConfig(), nil
		}
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if !c.Room.Valid() {
		return fmt.Errorf("config: room %s must have positive extents", c.Room)
	}
	switch c.Cache.Backend {
	case "file", "none":
	case "redis":
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("config: cache backend redis needs redis_url")
		}
	default:
		return fmt.Errorf("config: unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("config: cache ttl must not be negative")
	}
	return nil
}
