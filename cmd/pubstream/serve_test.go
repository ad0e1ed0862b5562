package main

// Notes:
// - runServe: started on an ephemeral port, observed through OnListen and
//   real HTTP requests, stopped by cancelling the context.
// - Hot reload is checked end to end: rewriting the config file flips
//   MathJax injection on the next request. Polling keeps it robust against
//   debounce and filesystem event latency.
// - Not parallel: serve adjusts GOMAXPROCS through automaxprocs.
// - pushReaderDefault runs against miniredis: a reload must not overwrite a
//   shared default unless the new config carries a reader section.

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/alnah/go-pubstream/internal/config"
	"github.com/alnah/go-pubstream/internal/inject"
	"github.com/alnah/go-pubstream/internal/logging"
	redisstore "github.com/alnah/go-pubstream/internal/store/redis"
)

type serveHandle struct {
	baseURL string
	cancel  context.CancelFunc
	done    chan error
}

func startServe(t *testing.T, args ...string) *serveHandle {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	listening := make(chan string, 1)
	env, _, _ := testEnv()
	env.OnListen = func(u string) { listening <- u }

	h := &serveHandle{cancel: cancel, done: make(chan error, 1)}
	go func() {
		h.done <- runServe(ctx, append([]string{"--addr", "127.0.0.1:0", "-q", "--log-level", "error"}, args...), env)
	}()

	select {
	case h.baseURL = <-listening:
	case err := <-h.done:
		cancel()
		t.Fatalf("runServe() exited early: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("server did not start")
	}

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-h.done:
			if err != nil {
				t.Errorf("runServe() error = %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})
	return h
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url) // #nosec G107 -- test server URL
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func makeLibrary(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "moby")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "chapter.xhtml"), []byte(chapterHTML), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

// ---------------------------------------------------------------------------
// TestRunServe - HTTP delivery surface
// ---------------------------------------------------------------------------

func TestRunServe(t *testing.T) {
	root := makeLibrary(t)
	h := startServe(t, "--publications", root, "--mathjax", "--no-watch")

	if code, body := get(t, h.baseURL+"/healthz"); code != http.StatusOK {
		t.Errorf("/healthz = %d %s, want 200", code, body)
	}

	code, body := get(t, h.baseURL+"/pub/moby/chapter.xhtml")
	if code != http.StatusOK {
		t.Fatalf("resource = %d, want 200: %s", code, body)
	}
	for _, want := range []string{
		inject.MarkerDragGuard,
		inject.MarkerMathJax,
		h.baseURL + "/math-jax/es5/tex-mml-chtml.js",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("resource missing %q", want)
		}
	}

	code, body = get(t, h.baseURL+"/readium-css-message")
	if code != http.StatusOK {
		t.Fatalf("style message = %d, want 200", code)
	}
	if !strings.Contains(body, h.baseURL+"/readium-css") {
		t.Errorf("style message %s should carry the Readium CSS URL root", body)
	}

	if code, _ := get(t, h.baseURL+"/metrics"); code != http.StatusOK {
		t.Errorf("/metrics = %d, want 200", code)
	}
}

func TestRunServe_NoLibrary(t *testing.T) {
	h := startServe(t, "--no-watch")

	if code, _ := get(t, h.baseURL+"/pub/moby/chapter.xhtml"); code != http.StatusNotFound {
		t.Errorf("resource without library = %d, want 404", code)
	}
}

func TestRunServe_InvalidLibrary(t *testing.T) {
	env, _, _ := testEnv()
	missing := filepath.Join(t.TempDir(), "absent")

	err := runServe(context.Background(), []string{"--addr", "127.0.0.1:0", "-q", "--publications", missing}, env)
	if err == nil {
		t.Fatal("runServe() should fail for a missing publications root")
	}
	if exitCodeFor(err) != ExitIO {
		t.Errorf("exit code = %d, want %d (%v)", exitCodeFor(err), ExitIO, err)
	}
}

func TestRunServe_ConfigReload(t *testing.T) {
	root := makeLibrary(t)
	cfgPath := filepath.Join(t.TempDir(), "pubstream.yaml")
	writeCfg := func(mathJax bool) {
		content := fmt.Sprintf("publications:\n  root: %q\nreader:\n  enableMathJax: %v\n", root, mathJax)
		if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	writeCfg(false)

	h := startServe(t, "--config", cfgPath)

	if _, body := get(t, h.baseURL+"/pub/moby/chapter.xhtml"); strings.Contains(body, inject.MarkerMathJax) {
		t.Fatal("MathJax injected before it was enabled")
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		writeCfg(true)
		time.Sleep(300 * time.Millisecond)
		if _, body := get(t, h.baseURL+"/pub/moby/chapter.xhtml"); strings.Contains(body, inject.MarkerMathJax) {
			return
		}
	}
	t.Fatal("MathJax not injected after config reload")
}

func TestReloadOnSignal(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, "log:\n  level: info\n")
	mgr, err := config.NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	reloaded := make(chan string, 1)
	mgr.OnChange(func(c *config.Config) {
		select {
		case reloaded <- c.Log.Level:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sig := make(chan os.Signal, 1)
	go reloadOnSignal(ctx, sig, mgr, logging.NewNop())

	if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	sig <- os.Interrupt

	select {
	case level := <-reloaded:
		if level != "debug" {
			t.Errorf("reloaded level = %q, want debug", level)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config not reloaded on signal")
	}
}

// ---------------------------------------------------------------------------
// TestPushReaderDefault - Reloads only write a configured reader default
// ---------------------------------------------------------------------------

func TestPushReaderDefault(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mr := miniredis.RunT(t)
	key := redisstore.DefaultPrefix + "default-config"

	redisConfig := func() *config.Config {
		cfg := config.DefaultConfig()
		cfg.Store.Backend = config.BackendRedis
		cfg.Store.Redis.Addr = mr.Addr()
		return cfg
	}

	seed := redisConfig()
	setMathJax(seed, true)
	st, err := openStore(ctx, seed)
	if err != nil {
		t.Fatalf("openStore() error = %v", err)
	}
	defer func() { _ = st.Close() }()

	before, err := mr.Get(key)
	if err != nil {
		t.Fatalf("default config not seeded: %v", err)
	}

	t.Run("config without reader section", func(t *testing.T) {
		next := redisConfig()
		next.Log.Level = "debug"
		pushReaderDefault(ctx, st, next, logging.NewNop())

		after, err := mr.Get(key)
		if err != nil {
			t.Fatalf("default config key gone: %v", err)
		}
		if after != before {
			t.Errorf("stored default rewritten:\nbefore %s\nafter  %s", before, after)
		}
		def, err := st.DefaultConfig(ctx)
		if err != nil {
			t.Fatalf("DefaultConfig() error = %v", err)
		}
		if !def.EnableMathJax {
			t.Error("shared MathJax toggle reset by a reader-less reload")
		}
	})

	t.Run("config with reader section", func(t *testing.T) {
		next := redisConfig()
		setMathJax(next, false)
		pushReaderDefault(ctx, st, next, logging.NewNop())

		def, err := st.DefaultConfig(ctx)
		if err != nil {
			t.Fatalf("DefaultConfig() error = %v", err)
		}
		if def.EnableMathJax {
			t.Error("EnableMathJax = true, want the reloaded false")
		}
	})
}
