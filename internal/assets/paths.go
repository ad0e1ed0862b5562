package assets

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// URL path segments under which the bundles are served.
const (
	MathJaxURLPath    = "math-jax"
	ReadiumCSSURLPath = "readium-css"
)

// Mode is the application layout the paths are resolved for.
type Mode int

const (
	// ModeDevelopment resolves bundles inside the node modules tree.
	ModeDevelopment Mode = iota
	// ModePackaged resolves bundles next to the application.
	ModePackaged
)

func (m Mode) String() string {
	if m == ModePackaged {
		return "packaged"
	}
	return "development"
}

// ParseMode parses a packaging mode. The build flag values "1" and "0" are
// accepted alongside the names.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "packaged", "1":
		return ModePackaged, nil
	case "development", "dev", "0", "":
		return ModeDevelopment, nil
	default:
		return ModeDevelopment, fmt.Errorf("%w: %q (must be packaged or development)", ErrUnknownMode, s)
	}
}

// Kind identifies a served bundle.
type Kind struct {
	Name         string
	PackagedName string
	DevName      string
	URLPath      string
}

// Bundles served next to publications.
var (
	MathJax = Kind{
		Name:         "mathjax",
		PackagedName: "MathJax",
		DevName:      "mathjax",
		URLPath:      MathJaxURLPath,
	}
	ReadiumCSS = Kind{
		Name:         "readiumcss",
		PackagedName: "ReadiumCSS",
		DevName:      "r2-navigator-js/dist/ReadiumCSS",
		URLPath:      ReadiumCSSURLPath,
	}
)

// Resolve returns the directory holding kind for the given layout.
// The result is cleaned and always uses forward slashes. It never fails.
func Resolve(kind Kind, mode Mode, baseDir, nodeModulesRel string) string {
	var p string
	if mode == ModePackaged {
		p = filepath.Join(baseDir, kind.PackagedName)
	} else {
		p = filepath.Join(baseDir, nodeModulesRel, kind.DevName)
	}
	return strings.ReplaceAll(p, `\`, "/")
}

// Paths resolves each bundle once and caches the result.
// The zero value is not usable; create with NewPaths.
type Paths struct {
	mode           Mode
	baseDir        string
	nodeModulesRel string

	mathJaxOnce sync.Once
	mathJax     string
	rcssOnce    sync.Once
	rcss        string
}

// NewPaths creates a Paths for the given layout.
func NewPaths(mode Mode, baseDir, nodeModulesRel string) *Paths {
	return &Paths{mode: mode, baseDir: baseDir, nodeModulesRel: nodeModulesRel}
}

// Mode returns the layout the paths resolve for.
func (p *Paths) Mode() Mode { return p.mode }

// MathJax returns the MathJax bundle directory.
func (p *Paths) MathJax() string {
	p.mathJaxOnce.Do(func() {
		p.mathJax = Resolve(MathJax, p.mode, p.baseDir, p.nodeModulesRel)
	})
	return p.mathJax
}

// ReadiumCSS returns the Readium CSS bundle directory.
func (p *Paths) ReadiumCSS() string {
	p.rcssOnce.Do(func() {
		p.rcss = Resolve(ReadiumCSS, p.mode, p.baseDir, p.nodeModulesRel)
	})
	return p.rcss
}

// Dir returns the cached directory for kind.
func (p *Paths) Dir(kind Kind) string {
	if kind.Name == MathJax.Name {
		return p.MathJax()
	}
	return p.ReadiumCSS()
}
