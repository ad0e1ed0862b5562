// Package assets locates the on-disk script and stylesheet bundles served
// next to publications, and embeds the small HTML fragments injected into
// publication documents.
//
// # Asset paths
//
// Two bundles are served from disk: MathJax and Readium CSS. Their location
// depends on how the application is laid out:
//
//	packaged:    {baseDir}/MathJax
//	             {baseDir}/ReadiumCSS
//	development: {baseDir}/{nodeModulesRel}/mathjax
//	             {baseDir}/{nodeModulesRel}/r2-navigator-js/dist/ReadiumCSS
//
// Resolved paths always use forward slashes. Resolution does not touch the
// filesystem; a missing directory surfaces when files are served, and the
// doctor command reports it up front.
//
// # Embedded fragments
//
// The injection fragments are compiled into the binary:
//
//	styles/
//	└── no-drag.css               # drag neutralising rules
//	templates/
//	├── drag-guard.html           # dragstart guard script
//	└── mathjax-bootstrap.html    # MathJax bootstrap (html/template)
//
// Fragment names are validated before lookup so a name can never address a
// file outside its directory.
package assets
