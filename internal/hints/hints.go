// Package hints appends remediation advice to pubstream error messages.
//
// Every hint renders as "\n  hint: <text>" so callers can concatenate it
// onto an error string without further formatting.
package hints

import (
	"net"
	"os"
	"strings"

	"github.com/alnah/go-pubstream/internal/fileutil"
)

// Probes for the runtime environment. Tests replace them.
var (
	lookupEnv  = os.Getenv
	fileExists = fileutil.FileExists
)

var ciMarkers = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}

// Container reports whether pubstream runs inside a container, along with
// the marker that revealed it.
func Container() (bool, string) {
	switch {
	case lookupEnv("PUBSTREAM_CONTAINER") == "1":
		return true, "PUBSTREAM_CONTAINER=1"
	case fileExists("/.dockerenv"):
		return true, "/.dockerenv"
	case lookupEnv("container") != "":
		return true, "container=" + lookupEnv("container")
	case lookupEnv("KUBERNETES_SERVICE_HOST") != "":
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// CI reports whether a known CI provider marker is set.
func CI() bool {
	for _, name := range ciMarkers {
		if lookupEnv(name) != "" {
			return true
		}
	}
	return false
}

// ForBrowserLaunch advises on headless Chrome startup failures.
func ForBrowserLaunch() string {
	var tips []string
	inContainer, _ := Container()
	if (inContainer || CI()) && lookupEnv("ROD_NO_SANDBOX") != "1" {
		tips = append(tips, "set ROD_NO_SANDBOX=1 when running in a container or CI")
	}
	if lookupEnv("ROD_BROWSER_BIN") == "" {
		tips = append(tips, "point ROD_BROWSER_BIN at a local Chrome")
	}
	return join(tips)
}

// ForConfigNotFound advises on a config name that matched no file.
func ForConfigNotFound(searched []string) string {
	tip := "pass --config with a path to a .yaml file"
	for _, p := range searched {
		if strings.Contains(strings.ReplaceAll(p, `\`, "/"), ".config/go-pubstream") {
			tip += ", or create " + p
			break
		}
	}
	return line(tip)
}

// ForAssetDir advises on a missing MathJax or Readium CSS bundle directory.
func ForAssetDir(packaged bool) string {
	if packaged {
		return line("copy the bundles next to the application or set --base-dir (PUBSTREAM_BASE_DIR)")
	}
	return line("run npm install or set --node-modules (PUBSTREAM_NODE_MODULES_REL)")
}

func ForPublicationsRoot() string {
	return line("set --publications (PUBSTREAM_PUBLICATIONS) to a directory of unpacked publications")
}

// ForRedisConnect advises on an unreachable redis. Inside a container a
// loopback address reaches the container itself, not the redis host.
func ForRedisConnect(addr string) string {
	var tips []string
	if host, _, err := net.SplitHostPort(addr); err == nil && loopback(host) {
		if inContainer, _ := Container(); inContainer {
			tips = append(tips, "inside a container, use the redis service name instead of "+host)
		}
	}
	tips = append(tips, "check PUBSTREAM_REDIS_ADDR or use --store memory")
	return join(tips)
}

func ForOutputDirectory() string {
	return line("the parent directory of --output must exist and be writable")
}

func loopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func line(tip string) string {
	if tip == "" {
		return ""
	}
	return "\n  hint: " + tip
}

func join(tips []string) string {
	return line(strings.Join(tips, "; "))
}
