package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alnah/go-pubstream/internal/config"
)

// ErrInvalidEnv is returned when a PUBSTREAM_* variable cannot be parsed.
var ErrInvalidEnv = errors.New("invalid environment variable")

// envConfig holds configuration from environment variables.
// Provides container-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath   string // PUBSTREAM_CONFIG: config file name or path
	Addr         string // PUBSTREAM_ADDR: listen address
	Publications string // PUBSTREAM_PUBLICATIONS: publication library root

	// Tier 2 - Assets and store
	Packaging      string // PUBSTREAM_PACKAGING: packaged or development
	BaseDir        string // PUBSTREAM_BASE_DIR: application base directory
	NodeModulesRel string // PUBSTREAM_NODE_MODULES_REL: node modules, relative to base
	Store          string // PUBSTREAM_STORE: memory or redis
	RedisAddr      string // PUBSTREAM_REDIS_ADDR: redis host:port

	// Tier 3 - Extended
	PublicURL string // PUBSTREAM_PUBLIC_URL: externally visible base URL
	LogLevel  string // PUBSTREAM_LOG_LEVEL: debug, info, warn, error
	LogFormat string // PUBSTREAM_LOG_FORMAT: text or json
	MathJax   *bool  // PUBSTREAM_MATHJAX: default enableMathJax
}

// knownEnvVars lists valid PUBSTREAM_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"PUBSTREAM_CONFIG":       true,
	"PUBSTREAM_ADDR":         true,
	"PUBSTREAM_PUBLICATIONS": true,
	// Tier 2 - Assets and store
	"PUBSTREAM_PACKAGING":        true,
	"PUBSTREAM_BASE_DIR":         true,
	"PUBSTREAM_NODE_MODULES_REL": true,
	"PUBSTREAM_STORE":            true,
	"PUBSTREAM_REDIS_ADDR":       true,
	// Tier 3 - Extended
	"PUBSTREAM_PUBLIC_URL": true,
	"PUBSTREAM_LOG_LEVEL":  true,
	"PUBSTREAM_LOG_FORMAT": true,
	"PUBSTREAM_MATHJAX":    true,
}

// loadEnvConfig reads configuration from environment variables.
// Returns ErrInvalidEnv if a typed variable cannot be parsed.
func loadEnvConfig() (*envConfig, error) {
	cfg := &envConfig{
		// Tier 1
		ConfigPath:   os.Getenv("PUBSTREAM_CONFIG"),
		Addr:         os.Getenv("PUBSTREAM_ADDR"),
		Publications: os.Getenv("PUBSTREAM_PUBLICATIONS"),
		// Tier 2
		Packaging:      os.Getenv("PUBSTREAM_PACKAGING"),
		BaseDir:        os.Getenv("PUBSTREAM_BASE_DIR"),
		NodeModulesRel: os.Getenv("PUBSTREAM_NODE_MODULES_REL"),
		Store:          os.Getenv("PUBSTREAM_STORE"),
		RedisAddr:      os.Getenv("PUBSTREAM_REDIS_ADDR"),
		// Tier 3
		PublicURL: os.Getenv("PUBSTREAM_PUBLIC_URL"),
		LogLevel:  os.Getenv("PUBSTREAM_LOG_LEVEL"),
		LogFormat: os.Getenv("PUBSTREAM_LOG_FORMAT"),
	}

	if v := os.Getenv("PUBSTREAM_MATHJAX"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%w: PUBSTREAM_MATHJAX=%q (must be true or false)", ErrInvalidEnv, v)
		}
		cfg.MathJax = &b
	}

	return cfg, nil
}

// warnUnknownEnvVars logs warnings for unrecognized PUBSTREAM_* variables.
// Helps catch typos like PUBSTREAM_REDIS instead of PUBSTREAM_REDIS_ADDR.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "PUBSTREAM_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values over the file config.
// Priority: CLI flags > env vars > config file > defaults
// (CLI flags are applied afterwards by applyFlagOverrides).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	// Tier 1
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if env.Publications != "" {
		cfg.Publications.Root = env.Publications
	}

	// Tier 2 - Assets
	if env.Packaging != "" {
		cfg.Assets.Packaging = env.Packaging
	}
	if env.BaseDir != "" {
		cfg.Assets.BaseDir = env.BaseDir
	}
	if env.NodeModulesRel != "" {
		cfg.Assets.NodeModulesRel = env.NodeModulesRel
	}

	// Tier 2 - Store
	if env.Store != "" {
		cfg.Store.Backend = env.Store
	}
	if env.RedisAddr != "" {
		cfg.Store.Redis.Addr = env.RedisAddr
	}

	// Tier 3
	if env.PublicURL != "" {
		cfg.Server.PublicURL = env.PublicURL
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
	if env.MathJax != nil {
		setMathJax(cfg, *env.MathJax)
	}
}

// setMathJax overrides enableMathJax in the reader default.
func setMathJax(cfg *config.Config, enabled bool) {
	r := cfg.ReaderDefault()
	r.EnableMathJax = enabled
	cfg.Reader = &r
}
