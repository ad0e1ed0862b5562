package hints

// Notes:
// - Tests swap the package-level lookupEnv and fileExists probes, so none of
//   them run in parallel.
// - fakeEnv never consults the real process environment, which keeps CI
//   runners from leaking markers into the assertions.

import (
	"strings"
	"testing"
)

func fakeEnv(t *testing.T, vars map[string]string, dockerenv bool) {
	t.Helper()
	origEnv, origStat := lookupEnv, fileExists
	t.Cleanup(func() { lookupEnv, fileExists = origEnv, origStat })

	lookupEnv = func(k string) string { return vars[k] }
	fileExists = func(p string) bool { return dockerenv && p == "/.dockerenv" }
}

// ---------------------------------------------------------------------------
// TestContainer - Container marker detection
// ---------------------------------------------------------------------------

func TestContainer(t *testing.T) {
	tests := []struct {
		name      string
		vars      map[string]string
		dockerenv bool
		want      bool
		wantHint  string
	}{
		{"nothing", nil, false, false, ""},
		{"explicit override", map[string]string{"PUBSTREAM_CONTAINER": "1"}, true, true, "PUBSTREAM_CONTAINER=1"},
		{"override must be 1", map[string]string{"PUBSTREAM_CONTAINER": "yes"}, false, false, ""},
		{"dockerenv", nil, true, true, "/.dockerenv"},
		{"podman", map[string]string{"container": "podman"}, false, true, "container=podman"},
		{"kubernetes", map[string]string{"KUBERNETES_SERVICE_HOST": "10.0.0.1"}, false, true, "KUBERNETES_SERVICE_HOST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeEnv(t, tt.vars, tt.dockerenv)

			got, hint := Container()
			if got != tt.want || hint != tt.wantHint {
				t.Errorf("Container() = (%v, %q), want (%v, %q)", got, hint, tt.want, tt.wantHint)
			}
		})
	}
}

func TestCI(t *testing.T) {
	for _, marker := range ciMarkers {
		t.Run(marker, func(t *testing.T) {
			fakeEnv(t, map[string]string{marker: "true"}, false)
			if !CI() {
				t.Errorf("CI() = false with %s set", marker)
			}
		})
	}

	t.Run("none", func(t *testing.T) {
		fakeEnv(t, nil, false)
		if CI() {
			t.Error("CI() = true with no markers")
		}
	})
}

// ---------------------------------------------------------------------------
// TestForBrowserLaunch - Sandbox and binary advice
// ---------------------------------------------------------------------------

func TestForBrowserLaunch(t *testing.T) {
	tests := []struct {
		name        string
		vars        map[string]string
		dockerenv   bool
		wantSandbox bool
		wantBin     bool
	}{
		{"desktop", nil, false, false, true},
		{"ci", map[string]string{"GITLAB_CI": "1"}, false, true, true},
		{"docker", nil, true, true, true},
		{"sandbox already off", map[string]string{"ROD_NO_SANDBOX": "1"}, true, false, true},
		{"fully configured", map[string]string{"ROD_NO_SANDBOX": "1", "ROD_BROWSER_BIN": "/usr/bin/chromium"}, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeEnv(t, tt.vars, tt.dockerenv)

			hint := ForBrowserLaunch()
			if got := strings.Contains(hint, "ROD_NO_SANDBOX=1"); got != tt.wantSandbox {
				t.Errorf("sandbox advice = %v, want %v (%q)", got, tt.wantSandbox, hint)
			}
			if got := strings.Contains(hint, "ROD_BROWSER_BIN"); got != tt.wantBin {
				t.Errorf("binary advice = %v, want %v (%q)", got, tt.wantBin, hint)
			}
			if !tt.wantSandbox && !tt.wantBin && hint != "" {
				t.Errorf("hint = %q, want empty", hint)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestForRedisConnect - Loopback addresses inside containers
// ---------------------------------------------------------------------------

func TestForRedisConnect(t *testing.T) {
	tests := []struct {
		name        string
		dockerenv   bool
		addr        string
		wantService bool
	}{
		{"host loopback", false, "localhost:6379", false},
		{"container localhost", true, "localhost:6379", true},
		{"container loopback ip", true, "127.0.0.1:6379", true},
		{"container ipv6 loopback", true, "[::1]:6379", true},
		{"container service name", true, "redis:6379", false},
		{"unparseable address", true, "redis", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeEnv(t, nil, tt.dockerenv)

			hint := ForRedisConnect(tt.addr)
			if !strings.Contains(hint, "PUBSTREAM_REDIS_ADDR") {
				t.Errorf("hint = %q, want PUBSTREAM_REDIS_ADDR", hint)
			}
			if got := strings.Contains(hint, "service name"); got != tt.wantService {
				t.Errorf("service name advice = %v, want %v (%q)", got, tt.wantService, hint)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestStaticHints - Fixed advice strings
// ---------------------------------------------------------------------------

func TestStaticHints(t *testing.T) {
	tests := []struct {
		name string
		hint string
		want string
	}{
		{"config no paths", ForConfigNotFound(nil), "--config"},
		{"config user dir", ForConfigNotFound([]string{"./x.yaml", "/home/u/.config/go-pubstream/x.yaml"}), "create /home/u/.config/go-pubstream/x.yaml"},
		{"config windows path", ForConfigNotFound([]string{`C:\Users\u\.config\go-pubstream\x.yaml`}), "create "},
		{"packaged assets", ForAssetDir(true), "--base-dir"},
		{"development assets", ForAssetDir(false), "npm install"},
		{"publications", ForPublicationsRoot(), "PUBSTREAM_PUBLICATIONS"},
		{"output", ForOutputDirectory(), "--output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.HasPrefix(tt.hint, "\n  hint: ") {
				t.Errorf("hint %q lacks the hint prefix", tt.hint)
			}
			if !strings.Contains(tt.hint, tt.want) {
				t.Errorf("hint %q, want containing %q", tt.hint, tt.want)
			}
		})
	}
}
