package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-pubstream/internal/config"
)

// ErrUsage wraps flag and argument errors.
var ErrUsage = errors.New("usage error")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// assetFlags holds bundle location flags.
type assetFlags struct {
	packaging   string
	baseDir     string
	nodeModules string
}

// storeFlags holds reader state backend flags.
type storeFlags struct {
	backend   string
	redisAddr string
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common       commonFlags
	assets       assetFlags
	store        storeFlags
	addr         string
	publicURL    string
	publications string
	logLevel     string
	logFormat    string
	mathJax      bool
	noWatch      bool
	changed      func(name string) bool
}

// transformFlags holds all flags for the transform command.
type transformFlags struct {
	common     commonFlags
	output     string
	url        string
	mathJax    bool
	color      bool
	colorStyle string
	changed    func(name string) bool
}

// messageFlags holds all flags for the message command.
type messageFlags struct {
	common  commonFlags
	store   storeFlags
	urlRoot string
	compact bool
}

// doctorFlags holds all flags for the doctor command.
type doctorFlags struct {
	common       commonFlags
	assets       assetFlags
	store        storeFlags
	publications string
	json         bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed output")
}

// addAssetFlags adds bundle location flags to a FlagSet.
func addAssetFlags(fs *flag.FlagSet, f *assetFlags) {
	fs.StringVar(&f.packaging, "packaging", "", "asset layout: packaged, development")
	fs.StringVar(&f.baseDir, "base-dir", "", "application base directory")
	fs.StringVar(&f.nodeModules, "node-modules", "", "node modules directory, relative to base dir")
}

// addStoreFlags adds store backend flags to a FlagSet.
func addStoreFlags(fs *flag.FlagSet, f *storeFlags) {
	fs.StringVar(&f.backend, "store", "", "reader state backend: memory, redis")
	fs.StringVar(&f.redisAddr, "redis-addr", "", "redis address (host:port)")
}

func newFlagSet(name string, stderr io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr) }
	return fs
}

func parseError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, error) {
	f := &serveFlags{}
	fs := newFlagSet("serve", stderr, printServeUsage)
	registerServeFlags(fs, f)

	if err := fs.Parse(args); err != nil {
		return nil, parseError(err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: serve takes no arguments, got %q", ErrUsage, fs.Args())
	}
	f.changed = fs.Changed
	return f, nil
}

func registerServeFlags(fs *flag.FlagSet, f *serveFlags) {
	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (host:port)")
	fs.StringVar(&f.publicURL, "public-url", "", "externally visible base URL")
	fs.StringVarP(&f.publications, "publications", "p", "", "publication library root")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: text, json")
	fs.BoolVar(&f.mathJax, "mathjax", false, "enable MathJax in the default reader config")
	fs.BoolVar(&f.noWatch, "no-watch", false, "do not reload the config file on change")

	addCommonFlags(fs, &f.common)
	addAssetFlags(fs, &f.assets)
	addStoreFlags(fs, &f.store)
}

// parseTransformFlags parses transform command flags and returns positional args.
func parseTransformFlags(args []string, stderr io.Writer) (*transformFlags, []string, error) {
	f := &transformFlags{}
	fs := newFlagSet("transform", stderr, printTransformUsage)
	registerTransformFlags(fs, f)

	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError(err)
	}
	f.changed = fs.Changed
	return f, fs.Args(), nil
}

func registerTransformFlags(fs *flag.FlagSet, f *transformFlags) {
	fs.StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")
	fs.StringVar(&f.url, "url", "", "base URL the MathJax bundle is served from")
	fs.BoolVar(&f.mathJax, "mathjax", false, "enable MathJax injection")
	fs.BoolVar(&f.color, "color", false, "syntax-highlight the output on a terminal")
	fs.StringVar(&f.colorStyle, "color-style", "monokai", "highlighting style")

	addCommonFlags(fs, &f.common)
}

// parseMessageFlags parses message command flags and returns positional args.
func parseMessageFlags(args []string, stderr io.Writer) (*messageFlags, []string, error) {
	f := &messageFlags{}
	fs := newFlagSet("message", stderr, printMessageUsage)
	registerMessageFlags(fs, f)

	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError(err)
	}
	return f, fs.Args(), nil
}

func registerMessageFlags(fs *flag.FlagSet, f *messageFlags) {
	fs.StringVar(&f.urlRoot, "url-root", "", "Readium CSS URL root to include")
	fs.BoolVar(&f.compact, "compact", false, "print JSON on a single line")

	addCommonFlags(fs, &f.common)
	addStoreFlags(fs, &f.store)
}

// parseDoctorFlags parses doctor command flags.
func parseDoctorFlags(args []string, stderr io.Writer) (*doctorFlags, error) {
	f := &doctorFlags{}
	fs := newFlagSet("doctor", stderr, printDoctorUsage)
	registerDoctorFlags(fs, f)

	if err := fs.Parse(args); err != nil {
		return nil, parseError(err)
	}
	return f, nil
}

func registerDoctorFlags(fs *flag.FlagSet, f *doctorFlags) {
	fs.BoolVar(&f.json, "json", false, "output JSON")
	fs.StringVarP(&f.publications, "publications", "p", "", "publication library root")

	addCommonFlags(fs, &f.common)
	addAssetFlags(fs, &f.assets)
	addStoreFlags(fs, &f.store)
}

// applyAssetFlags applies non-empty asset flags to cfg.
func applyAssetFlags(f *assetFlags, cfg *config.Config) {
	if f.packaging != "" {
		cfg.Assets.Packaging = f.packaging
	}
	if f.baseDir != "" {
		cfg.Assets.BaseDir = f.baseDir
	}
	if f.nodeModules != "" {
		cfg.Assets.NodeModulesRel = f.nodeModules
	}
}

// applyStoreFlags applies non-empty store flags to cfg.
func applyStoreFlags(f *storeFlags, cfg *config.Config) {
	if f.backend != "" {
		cfg.Store.Backend = f.backend
	}
	if f.redisAddr != "" {
		cfg.Store.Redis.Addr = f.redisAddr
	}
}

// applyServeFlags applies serve flags over env and file values.
func applyServeFlags(f *serveFlags, cfg *config.Config) {
	applyAssetFlags(&f.assets, cfg)
	applyStoreFlags(&f.store, cfg)
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.publicURL != "" {
		cfg.Server.PublicURL = f.publicURL
	}
	if f.publications != "" {
		cfg.Publications.Root = f.publications
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
	if f.changed != nil && f.changed("mathjax") {
		setMathJax(cfg, f.mathJax)
	}
}
