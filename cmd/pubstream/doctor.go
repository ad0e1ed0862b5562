package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-pubstream"
	"github.com/alnah/go-pubstream/internal/assets"
	"github.com/alnah/go-pubstream/internal/config"
	"github.com/alnah/go-pubstream/internal/fileutil"
	"github.com/alnah/go-pubstream/internal/hints"
	"github.com/alnah/go-pubstream/internal/publication"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status       string           `json:"status"` // "ready", "warnings", "errors"
	CheckedAt    time.Time        `json:"checked_at"`
	Config       configInfo       `json:"config"`
	Assets       []bundleInfo     `json:"assets"`
	Publications publicationsInfo `json:"publications"`
	Store        storeInfo        `json:"store"`
	Env          envInfo          `json:"environment"`
	Warnings     []string         `json:"warnings,omitempty"`
	Errors       []string         `json:"errors,omitempty"`
}

// configInfo describes the configuration in effect.
type configInfo struct {
	Source  string `json:"source"` // file path or "defaults"
	MathJax bool   `json:"mathjax"`
}

// bundleInfo holds one asset bundle check.
type bundleInfo struct {
	Name  string `json:"name"`
	Mode  string `json:"mode"`
	Dir   string `json:"dir"`
	Found bool   `json:"found"`
}

// publicationsInfo holds the publication library check.
type publicationsInfo struct {
	Root  string `json:"root,omitempty"`
	Found bool   `json:"found"`
	Count int    `json:"count"`
}

// storeInfo holds the reader state backend check.
type storeInfo struct {
	Backend   string `json:"backend"`
	Addr      string `json:"addr,omitempty"`
	Reachable bool   `json:"reachable"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = usage.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	flags, err := parseDoctorFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}

	envCfg, err := loadEnvConfig()
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}
	base, mgr, err := loadFileConfig(flags.common.config, envCfg)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}
	cfg, err := effectiveConfig(base, envCfg, func(c *config.Config) {
		applyAssetFlags(&flags.assets, c)
		applyStoreFlags(&flags.store, c)
		if flags.publications != "" {
			c.Publications.Root = flags.publications
		}
	})
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}

	source := "defaults"
	if mgr != nil {
		source = mgr.Path()
	}
	result := runDoctor(ctx, cfg, source, env.Now())

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, cfg *config.Config, source string, now time.Time) *doctorResult {
	result := &doctorResult{
		Status:    "ready",
		CheckedAt: now,
		Config: configInfo{
			Source:  source,
			MathJax: cfg.ReaderDefault().EnableMathJax,
		},
		Env: envInfo{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
		},
	}

	checkAssets(result, cfg)
	checkPublications(result, cfg)
	checkStore(ctx, result, cfg)
	checkEnvironment(result)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkAssets verifies the MathJax and Readium CSS bundle directories.
// Missing bundles are warnings: pages still load, unstyled or without math.
func checkAssets(result *doctorResult, cfg *config.Config) {
	paths := assetPaths(cfg)
	packaged := paths.Mode() == assets.ModePackaged

	for _, kind := range []assets.Kind{assets.MathJax, assets.ReadiumCSS} {
		dir := paths.Dir(kind)
		info := bundleInfo{
			Name:  kind.Name,
			Mode:  paths.Mode().String(),
			Dir:   dir,
			Found: fileutil.DirExists(dir),
		}
		result.Assets = append(result.Assets, info)

		if !info.Found {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s bundle not found at %s%s", kind.Name, dir, hints.ForAssetDir(packaged)))
			continue
		}
		if kind.Name == assets.MathJax.Name && cfg.ReaderDefault().EnableMathJax {
			entry := filepath.Join(dir, filepath.FromSlash(pubstream.MathJaxEntry))
			if !fileutil.FileExists(entry) {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("MathJax enabled but entry script missing: %s", entry))
			}
		}
	}
}

// checkPublications verifies the publication library root.
func checkPublications(result *doctorResult, cfg *config.Config) {
	root := cfg.Publications.Root
	result.Publications.Root = root
	if root == "" {
		result.Warnings = append(result.Warnings,
			"No publications root configured"+hints.ForPublicationsRoot())
		return
	}

	lib, err := publication.NewLibrary(root)
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Publications root unusable: %v%s", err, hints.ForPublicationsRoot()))
		return
	}
	ids, err := lib.List()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Listing publications: %v", err))
		return
	}
	result.Publications.Found = true
	result.Publications.Count = len(ids)
	if len(ids) == 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("No publications in %s", lib.Root()))
	}
}

// checkStore opens the configured backend, which pings redis.
func checkStore(ctx context.Context, result *doctorResult, cfg *config.Config) {
	result.Store.Backend = cfg.Store.Backend
	if cfg.Store.Backend == config.BackendRedis {
		result.Store.Addr = cfg.Store.Redis.Addr
	}

	// Seeding is skipped: doctor must not write to a shared store.
	probe := cloneConfig(cfg)
	probe.Reader = nil
	st, err := openStore(ctx, probe)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	_ = st.Close()
	result.Store.Reachable = true
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = hints.Container()
	result.Env.CI = hints.CI()

	if result.Env.Container && strings.HasPrefix(result.Store.Addr, "localhost:") {
		result.Warnings = append(result.Warnings,
			"Container detected but redis address is localhost"+hints.ForRedisConnect(result.Store.Addr))
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "pubstream doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Configuration")
	fmt.Fprintf(w, "  [OK] Source: %s\n", r.Config.Source)
	fmt.Fprintf(w, "  [OK] MathJax by default: %v\n", r.Config.MathJax)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Assets")
	for _, b := range r.Assets {
		if b.Found {
			fmt.Fprintf(w, "  [OK] %s (%s): %s\n", b.Name, b.Mode, b.Dir)
		} else {
			fmt.Fprintf(w, "  [WARN] %s (%s): missing %s\n", b.Name, b.Mode, b.Dir)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Publications")
	switch {
	case r.Publications.Root == "":
		fmt.Fprintln(w, "  [WARN] Not configured")
	case r.Publications.Found:
		fmt.Fprintf(w, "  [OK] %s (%d publications)\n", r.Publications.Root, r.Publications.Count)
	default:
		fmt.Fprintf(w, "  [ERROR] %s unusable\n", r.Publications.Root)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Store")
	name := r.Store.Backend
	if r.Store.Addr != "" {
		name += " at " + r.Store.Addr
	}
	if r.Store.Reachable {
		fmt.Fprintf(w, "  [OK] %s\n", name)
	} else {
		fmt.Fprintf(w, "  [ERROR] %s unreachable\n", name)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to serve")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
