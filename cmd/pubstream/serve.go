package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/alnah/go-pubstream"
	"github.com/alnah/go-pubstream/internal/config"
	"github.com/alnah/go-pubstream/internal/hints"
	"github.com/alnah/go-pubstream/internal/metrics"
	"github.com/alnah/go-pubstream/internal/publication"
	"github.com/alnah/go-pubstream/internal/server"
	"github.com/alnah/go-pubstream/internal/store"
)

// runServe starts the HTTP delivery surface and blocks until ctx is cancelled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	undo := setMaxProcs(flags.common.verbose, env.Stderr)
	defer undo()

	if !flags.common.quiet {
		warnUnknownEnvVars(env.Stderr)
	}
	envCfg, err := loadEnvConfig()
	if err != nil {
		return err
	}

	base, mgr, err := loadFileConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	applyFlags := func(c *config.Config) { applyServeFlags(flags, c) }
	cfg, err := effectiveConfig(base, envCfg, applyFlags)
	if err != nil {
		return err
	}

	logger := newLogger(cfg, env)

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	var library *publication.Library
	if cfg.Publications.Root != "" {
		library, err = publication.NewLibrary(cfg.Publications.Root)
		if err != nil {
			return fmt.Errorf("%w%s", err, hints.ForPublicationsRoot())
		}
	} else {
		logger.Warn("no publications root configured, publication routes answer 404")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	streamer := pubstream.NewStreamer(st,
		pubstream.WithLogger(logger),
		pubstream.WithMetrics(m),
		pubstream.WithAssetPaths(assetPaths(cfg)),
	)

	srv := server.New(server.Config{Addr: cfg.Server.Addr, PublicURL: cfg.Server.PublicURL},
		streamer, st, library,
		server.WithLogger(logger),
		server.WithGatherer(reg),
	)
	if err := srv.Listen(); err != nil {
		return err
	}
	streamer.SetupMathJax(func() string { return pubstream.MathJaxURL(srv.BaseURL()) })

	if mgr != nil {
		mgr.OnChange(func(reloaded *config.Config) {
			next, err := effectiveConfig(reloaded, envCfg, applyFlags)
			if err != nil {
				logger.Warn("reloaded config rejected", "error", err)
				return
			}
			pushReaderDefault(ctx, st, next, logger)
		})
		hup, stopHup := notifyReload()
		defer stopHup()
		go reloadOnSignal(ctx, hup, mgr, logger)
	}
	if mgr != nil && !flags.noWatch {
		go func() {
			if err := mgr.Watch(ctx, logger); err != nil {
				logger.Error("config watcher stopped", "error", err)
			}
		}()
	}

	paths := streamer.AssetPaths()
	logger.Info("pubstream starting",
		"version", Version,
		"url", srv.BaseURL(),
		"store", cfg.Store.Backend,
		"assets", paths.Mode().String(),
		"mathjax_dir", paths.MathJax(),
		"readium_css_dir", paths.ReadiumCSS(),
	)
	if env.OnListen != nil {
		env.OnListen(srv.BaseURL())
	}

	return srv.Serve(ctx)
}

// reloadOnSignal rereads the config file each time sig fires, even with
// --no-watch.
func reloadOnSignal(ctx context.Context, sig <-chan os.Signal, mgr *config.Manager, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			logger.Info("reload signal received", "path", mgr.Path())
			if err := mgr.Reload(); err != nil {
				logger.Warn("config reload failed, keeping previous config", "error", err)
			}
		}
	}
}

// pushReaderDefault writes the reader default of a reloaded config into st.
// Without a reader section, from the file or a mathjax override, the stored
// default is left as is, the same rule openStore applies when seeding.
func pushReaderDefault(ctx context.Context, st store.Store, next *config.Config, logger *slog.Logger) {
	if next.Reader == nil {
		logger.Info("reloaded config has no reader section, default reader config unchanged")
		return
	}
	def := next.ReaderDefault()
	if err := st.PutDefaultConfig(ctx, def); err != nil {
		logger.Error("updating default reader config", "error", err)
		return
	}
	logger.Info("default reader config updated", "mathjax", def.EnableMathJax)
}
