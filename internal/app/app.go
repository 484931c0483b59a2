// Package app wires configuration, logging and storage into a ready store.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"prepdeck/internal/config"
	"prepdeck/internal/logger"
	"prepdeck/internal/storage"
	"prepdeck/internal/store"
	"prepdeck/internal/view"
)

type Options struct {
	// ConfigPath overrides config.ResolveConfigPath.
	ConfigPath string
	// Memory keeps everything in process; nothing is read or written on disk
	// except the config file.
	Memory bool
	// Backend, when set, is used instead of the configured one.
	Backend storage.Backend
}

type App struct {
	Config      config.Config
	ConfigPath  string
	FirstLaunch bool
	Log         logger.Logger
	Store       *store.Store
	Slot        *storage.Slot
	DefaultSort view.SortMode

	backend storage.Backend
}

// Open loads the config, opens the backend and seeds the store from it.
func Open(ctx context.Context, opts Options) (*App, error) {
	path := opts.ConfigPath
	if path == "" {
		path = config.ResolveConfigPath()
	}
	firstLaunch := false
	if _, err := os.Stat(path); err != nil {
		firstLaunch = errors.Is(err, os.ErrNotExist)
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogPath)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	backend := opts.Backend
	if backend == nil {
		backend, err = openBackend(cfg, opts.Memory, log)
		if err != nil {
			_ = log.Sync()
			return nil, err
		}
	}

	slot := storage.NewSlot(backend, cfg.StorageKey, log)
	initial, err := slot.LoadAll(ctx)
	if err != nil {
		_ = backend.Close()
		_ = log.Sync()
		return nil, err
	}
	sortMode, _ := view.ParseSortMode(cfg.DefaultSort)

	log.Info("questions loaded",
		logger.String("backend", backendName(cfg, opts)),
		logger.String("key", slot.Key()),
		logger.Int("count", len(initial)))

	return &App{
		Config:      cfg,
		ConfigPath:  path,
		FirstLaunch: firstLaunch,
		Log:         log,
		Store:       store.New(slot, initial, store.WithLogger(log)),
		Slot:        slot,
		DefaultSort: sortMode,
		backend:     backend,
	}, nil
}

// NotifyDuration is how long transient messages stay visible.
func (a *App) NotifyDuration() time.Duration {
	return time.Duration(a.Config.NotifySeconds) * time.Second
}

func (a *App) Close() error {
	err := a.backend.Close()
	_ = a.Log.Sync()
	return err
}

func openBackend(cfg config.Config, memory bool, log logger.Logger) (storage.Backend, error) {
	if memory {
		return storage.NewMemory(), nil
	}
	switch cfg.Backend {
	case config.BackendRedis:
		timeout, err := parseTimeout(cfg.Redis.Timeout)
		if err != nil {
			return nil, err
		}
		r, err := storage.OpenRedis(storage.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  timeout,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("open redis: %w", err)
		}
		return r, nil
	default:
		db, err := storage.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		return db, nil
	}
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("redis.timeout: %w", err)
	}
	return d, nil
}

func backendName(cfg config.Config, opts Options) string {
	switch {
	case opts.Backend != nil:
		return "custom"
	case opts.Memory:
		return "memory"
	default:
		return cfg.Backend
	}
}
