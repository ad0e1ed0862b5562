package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/alnah/go-pubstream/internal/logging"
)

// DefaultDebounce coalesces the burst of events editors emit on save.
const DefaultDebounce = 200 * time.Millisecond

// Manager holds the current configuration and reloads it when the file changes.
type Manager struct {
	path     string
	debounce time.Duration

	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithDebounce sets the delay between the last file event and the reload.
func WithDebounce(d time.Duration) ManagerOption {
	return func(m *Manager) { m.debounce = d }
}

// NewManager resolves nameOrPath, loads it and returns a manager for it.
func NewManager(nameOrPath string, opts ...ManagerOption) (*Manager, error) {
	path, err := ResolvePath(nameOrPath)
	if err != nil {
		return nil, err
	}
	if abs, absErr := filepath.Abs(path); absErr == nil {
		path = abs
	}

	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		path:     path,
		debounce: DefaultDebounce,
		config:   cfg,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Path returns the absolute path of the watched file.
func (m *Manager) Path() string { return m.path }

// Get returns the current configuration. Callers must not modify it.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// OnChange registers a callback run after each successful reload.
func (m *Manager) OnChange(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

// Reload reads the file again. On error the current configuration is kept.
func (m *Manager) Reload() error {
	cfg, err := loadFile(m.path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.config = cfg
	callbacks := make([]func(*Config), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
	return nil
}

// Watch reloads the configuration whenever its file is written, created or
// renamed into place. Reload failures are logged to logger and the previous
// configuration is kept. It blocks until ctx is cancelled.
//
// The parent directory is watched rather than the file so atomic
// save-by-rename keeps working.
func (m *Manager) Watch(ctx context.Context, logger *slog.Logger) error {
	logger = logging.OrNop(logger)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	dir := filepath.Dir(m.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != m.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(m.debounce)
			} else {
				timer.Reset(m.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := m.Reload(); err != nil {
				logger.Warn("config reload failed, keeping previous", "path", m.path, "error", err)
				continue
			}
			logger.Info("config reloaded", "path", m.path)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", "error", err)
		}
	}
}
