package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/alnah/go-pubstream/internal/assets"
	"github.com/alnah/go-pubstream/internal/fileutil"
	"github.com/alnah/go-pubstream/internal/logging"
	"github.com/alnah/go-pubstream/internal/readerconfig"
	"github.com/alnah/go-pubstream/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxAddrLength     = 255
	MaxURLLength      = 2048 // Browser limit
	MaxPathLength     = 4096
	MaxPasswordLength = 512
	MaxPrefixLength   = 100
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// AppName names the per-user config directory.
const AppName = "go-pubstream"

// Config holds all configuration for the pubstream service.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Assets       AssetsConfig       `yaml:"assets"`
	Store        StoreConfig        `yaml:"store"`
	Publications PublicationsConfig `yaml:"publications"`
	Log          LogConfig          `yaml:"log"`

	// Reader is the default reader configuration seeded into the store.
	// Nil means readerconfig.Default().
	Reader *readerconfig.Config `yaml:"reader"`
}

// ServerConfig defines HTTP listener options.
type ServerConfig struct {
	Addr      string `yaml:"addr"`      // "127.0.0.1:8080"
	PublicURL string `yaml:"publicURL"` // Empty = derived from the listener
}

// AssetsConfig defines where the MathJax and Readium CSS bundles live.
type AssetsConfig struct {
	Packaging      string `yaml:"packaging"` // "packaged" or "development"
	BaseDir        string `yaml:"baseDir"`
	NodeModulesRel string `yaml:"nodeModulesRel"`
}

// StoreConfig selects the reader state backend.
type StoreConfig struct {
	Backend string      `yaml:"backend"` // "memory" (default) or "redis"
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig defines the redis backend connection.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"` // ${ENV_VAR} references are expanded
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
	TTL      string `yaml:"ttl"` // Go duration, empty = no expiry
}

// PublicationsConfig defines the publication library.
type PublicationsConfig struct {
	Root string `yaml:"root"` // Empty = no publications served
}

// LogConfig defines logger options.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Validate checks field lengths and enumerated values.
// Called automatically by LoadConfig, but available for callers
// who construct Config manually (env and flag overrides).
func (c *Config) Validate() error {
	// Validate server fields
	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}
	if err := validateFieldLength("server.publicURL", c.Server.PublicURL, MaxURLLength); err != nil {
		return err
	}
	if c.Server.PublicURL != "" {
		u, err := url.Parse(c.Server.PublicURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: server.publicURL %q (must be an absolute http or https URL)", ErrInvalidValue, c.Server.PublicURL)
		}
	}

	// Validate asset fields
	if _, err := assets.ParseMode(c.Assets.Packaging); err != nil {
		return fmt.Errorf("assets.packaging: %w", err)
	}
	if err := validateFieldLength("assets.baseDir", c.Assets.BaseDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("assets.nodeModulesRel", c.Assets.NodeModulesRel, MaxPathLength); err != nil {
		return err
	}

	// Validate store fields
	switch c.Store.Backend {
	case "", BackendMemory:
	case BackendRedis:
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("%w: store.redis.addr required when store.backend is redis", ErrInvalidValue)
		}
	default:
		return fmt.Errorf("%w: store.backend %q (must be memory or redis)", ErrInvalidValue, c.Store.Backend)
	}
	if err := validateFieldLength("store.redis.addr", c.Store.Redis.Addr, MaxAddrLength); err != nil {
		return err
	}
	if err := validateFieldLength("store.redis.password", c.Store.Redis.Password, MaxPasswordLength); err != nil {
		return err
	}
	if err := validateFieldLength("store.redis.prefix", c.Store.Redis.Prefix, MaxPrefixLength); err != nil {
		return err
	}
	if c.Store.Redis.DB < 0 {
		return fmt.Errorf("%w: store.redis.db must be >= 0, got %d", ErrInvalidValue, c.Store.Redis.DB)
	}
	if _, err := parseTTL(c.Store.Redis.TTL); err != nil {
		return err
	}

	// Validate publications
	if err := validateFieldLength("publications.root", c.Publications.Root, MaxPathLength); err != nil {
		return err
	}

	// Validate log fields
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidValue, err)
	}
	switch c.Log.Format {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("%w: log.format %q (must be text or json)", ErrInvalidValue, c.Log.Format)
	}

	// Validate reader default
	if c.Reader != nil {
		if err := c.Reader.Validate(); err != nil {
			return fmt.Errorf("reader: %w", err)
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func parseTTL(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: store.redis.ttl %q (must be a non-negative duration)", ErrInvalidValue, s)
	}
	return d, nil
}

// DefaultConfig returns a configuration serving packaged assets from the
// working directory with an in-memory store.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
		Assets: AssetsConfig{
			Packaging:      assets.ModePackaged.String(),
			BaseDir:        ".",
			NodeModulesRel: "node_modules",
		},
		Store: StoreConfig{
			Backend: BackendMemory,
			Redis:   RedisConfig{Prefix: "pubstream:"},
		},
		Log: LogConfig{Level: "info", Format: logging.FormatText},
	}
}

// ReaderDefault returns the reader default to seed the store with.
// Empty enum and font fields of a configured record take the built-in defaults.
func (c *Config) ReaderDefault() readerconfig.Config {
	def := readerconfig.Default()
	if c.Reader == nil {
		return def
	}
	r := c.Reader.Normalized()
	if r.Font == "" {
		r.Font = def.Font
	}
	if r.FontSize == "" {
		r.FontSize = def.FontSize
	}
	return r
}

// AssetMode returns the parsed packaging mode. Invalid values are development.
func (c *Config) AssetMode() assets.Mode {
	m, _ := assets.ParseMode(c.Assets.Packaging)
	return m
}

// RedisTTL returns the parsed session TTL, zero when unset or invalid.
func (c *Config) RedisTTL() time.Duration {
	d, _ := parseTTL(c.Store.Redis.TTL)
	return d
}

// RedisPassword returns the password with ${ENV_VAR} references expanded.
func (c *Config) RedisPassword() string {
	return ResolveEnvVars(c.Store.Redis.Password)
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envRef.ReplaceAllStringFunc(value, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	path, err := ResolvePath(nameOrPath)
	if err != nil {
		return nil, err
	}
	return loadFile(path)
}

// ResolvePath returns the file LoadConfig would read for nameOrPath.
func ResolvePath(nameOrPath string) (string, error) {
	if nameOrPath == "" {
		return "", ErrEmptyConfigName
	}
	if fileutil.IsFilePath(nameOrPath) {
		return nameOrPath, nil
	}
	return resolveConfigPath(nameOrPath)
}

func loadFile(path string) (*Config, error) {
	f, err := os.Open(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	cfg := DefaultConfig()
	if err := yamlutil.DecodeStrict(f, cfg); err != nil && !errors.Is(err, yamlutil.ErrNilData) {
		return nil, fmt.Errorf("%w: %s\n%s", ErrConfigParse, path, yamlutil.FormatError(err))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-pubstream/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, AppName, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
