package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"prepdeck/internal/logger"
	"prepdeck/internal/storage"
	"prepdeck/internal/view"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "prepdeck.db"
	DefaultLogName        = "prepdeck.log"
	appDirName            = "prepdeck"
	envConfigPath         = "PREPDECK_CONFIG"
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Keymap holds the application keys. List navigation (j/k, arrows, enter,
// space, e, m, /, esc, s, ?) is fixed and not part of it.
type Keymap struct {
	Quit   string `toml:"quit"`
	New    string `toml:"new"`
	Delete string `toml:"delete"`
	Import string `toml:"import"`
	Export string `toml:"export"`
	Clear  string `toml:"clear"`
	Tags   string `toml:"tags"`
	Link   string `toml:"link"`
	Unlink string `toml:"unlink"`
	Save   string `toml:"save"`
}

type Redis struct {
	Addr     string `toml:"addr"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Timeout  string `toml:"timeout"`
}

type Config struct {
	DBPath        string `toml:"db_path"`
	Backend       string `toml:"backend"`
	StorageKey    string `toml:"storage_key"`
	DefaultSort   string `toml:"default_sort"`
	NotifySeconds int    `toml:"notify_seconds"`
	LogLevel      string `toml:"log_level"`
	LogPath       string `toml:"log_path"`
	Redis         Redis  `toml:"redis"`
	Keys          Keymap `toml:"keys"`
}

// ResolveConfigPath returns $PREPDECK_CONFIG or <user config dir>/prepdeck/config.toml.
func ResolveConfigPath() string {
	if p := os.Getenv(envConfigPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, appDirName, DefaultConfigFileName)
}

// LoadOrCreate reads path, writing the defaults there first when it does not
// exist. Relative db and log paths resolve against the config file's directory.
func LoadOrCreate(path string) (Config, error) {
	dir := filepath.Dir(path)
	cfg := defaultConfig(dir)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.fillDefaults(dir)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the application cannot start with.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendSQLite, BackendRedis)
	}
	if _, err := view.ParseSortMode(c.DefaultSort); err != nil {
		return fmt.Errorf("default_sort: %w", err)
	}
	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	if c.NotifySeconds < 0 {
		return fmt.Errorf("notify_seconds must be >= 0, got %d", c.NotifySeconds)
	}
	if c.Backend == BackendRedis && c.Redis.Addr == "" {
		return errors.New("redis.addr is required with backend = \"redis\"")
	}
	return nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) fillDefaults(dir string) {
	def := defaultConfig(dir)
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	} else if !filepath.IsAbs(c.DBPath) {
		c.DBPath = filepath.Join(dir, c.DBPath)
	}
	if c.LogPath != "" && !filepath.IsAbs(c.LogPath) {
		c.LogPath = filepath.Join(dir, c.LogPath)
	}
	if c.Backend == "" {
		c.Backend = def.Backend
	}
	if c.StorageKey == "" {
		c.StorageKey = def.StorageKey
	}
	if c.DefaultSort == "" {
		c.DefaultSort = def.DefaultSort
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	fillKey(&c.Keys.Quit, def.Keys.Quit)
	fillKey(&c.Keys.New, def.Keys.New)
	fillKey(&c.Keys.Delete, def.Keys.Delete)
	fillKey(&c.Keys.Import, def.Keys.Import)
	fillKey(&c.Keys.Export, def.Keys.Export)
	fillKey(&c.Keys.Clear, def.Keys.Clear)
	fillKey(&c.Keys.Tags, def.Keys.Tags)
	fillKey(&c.Keys.Link, def.Keys.Link)
	fillKey(&c.Keys.Unlink, def.Keys.Unlink)
	fillKey(&c.Keys.Save, def.Keys.Save)
}

func fillKey(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

// Default returns the configuration written on first launch for a config
// file living in dir.
func Default(dir string) Config {
	return defaultConfig(dir)
}

func defaultConfig(dir string) Config {
	return Config{
		DBPath:        filepath.Join(dir, DefaultDBName),
		Backend:       BackendSQLite,
		StorageKey:    storage.DefaultKey,
		DefaultSort:   string(view.SortNewest),
		NotifySeconds: 5,
		LogLevel:      "info",
		LogPath:       filepath.Join(dir, DefaultLogName),
		Redis: Redis{
			Addr:    "localhost:6379",
			Timeout: "3s",
		},
		Keys: Keymap{
			Quit:   "q",
			New:    "n",
			Delete: "d",
			Import: "i",
			Export: "x",
			Clear:  "X",
			Tags:   "t",
			Link:   "ctrl+l",
			Unlink: "ctrl+u",
			Save:   "ctrl+s",
		},
	}
}
