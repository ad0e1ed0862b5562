package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alnah/go-pubstream/internal/assets"
	"github.com/alnah/go-pubstream/internal/config"
	"github.com/alnah/go-pubstream/internal/hints"
	"github.com/alnah/go-pubstream/internal/logging"
	"github.com/alnah/go-pubstream/internal/store"
	redisstore "github.com/alnah/go-pubstream/internal/store/redis"
)

// ErrStoreUnavailable is returned when the reader state backend cannot be reached.
var ErrStoreUnavailable = errors.New("store unavailable")

const storePingTimeout = 5 * time.Second

// loadFileConfig returns the file configuration, or the defaults when no
// config was named. The manager is nil when no file is used.
func loadFileConfig(flagPath string, env *envConfig) (*config.Config, *config.Manager, error) {
	name := flagPath
	if name == "" {
		name = env.ConfigPath
	}
	if name == "" {
		return config.DefaultConfig(), nil, nil
	}

	mgr, err := config.NewManager(name)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(userConfigCandidates(name)))
		}
		return nil, nil, err
	}
	return mgr.Get(), mgr, nil
}

// userConfigCandidates lists the per-user paths a config name resolves to.
func userConfigCandidates(name string) []string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(dir, config.AppName, name+".yaml")}
}

// effectiveConfig layers env and flag overrides over base and validates the
// result. base is not modified.
func effectiveConfig(base *config.Config, env *envConfig, applyFlags func(*config.Config)) (*config.Config, error) {
	cfg := cloneConfig(base)
	applyEnvConfig(env, cfg)
	if applyFlags != nil {
		applyFlags(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func cloneConfig(c *config.Config) *config.Config {
	out := *c
	if c.Reader != nil {
		r := *c.Reader
		out.Reader = &r
	}
	return &out
}

// newLogger builds the service logger from validated log settings.
func newLogger(cfg *config.Config, env *Environment) *slog.Logger {
	level, _ := logging.ParseLevel(cfg.Log.Level)
	return logging.New(level, cfg.Log.Format, env.Stderr)
}

// assetPaths resolves the bundle directories for cfg.
func assetPaths(cfg *config.Config) *assets.Paths {
	return assets.NewPaths(cfg.AssetMode(), cfg.Assets.BaseDir, cfg.Assets.NodeModulesRel)
}

// openStore opens the configured backend, seeded with the reader default.
// A redis store is pinged first and only seeded when the config names a
// reader record, so a default shared by other processes is kept otherwise.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.Store.Backend != config.BackendRedis {
		return store.NewMemory(cfg.ReaderDefault()), nil
	}

	rs := redisstore.New(cfg.Store.Redis.Addr, cfg.RedisPassword(), cfg.Store.Redis.DB,
		redisstore.WithPrefix(cfg.Store.Redis.Prefix),
		redisstore.WithTTL(cfg.RedisTTL()),
	)

	pingCtx, cancel := context.WithTimeout(ctx, storePingTimeout)
	defer cancel()
	if err := rs.Ping(pingCtx); err != nil {
		_ = rs.Close()
		return nil, fmt.Errorf("%w: redis %s: %v%s", ErrStoreUnavailable, cfg.Store.Redis.Addr, err, hints.ForRedisConnect(cfg.Store.Redis.Addr))
	}

	if cfg.Reader != nil {
		if err := rs.PutDefaultConfig(ctx, cfg.ReaderDefault()); err != nil {
			_ = rs.Close()
			return nil, fmt.Errorf("%w: seeding default config: %v", ErrStoreUnavailable, err)
		}
	}
	return rs, nil
}
