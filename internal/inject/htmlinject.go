package inject

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/alnah/go-pubstream/internal/assets"
)

// ErrMathJaxRender is returned when the bootstrap template fails to execute.
var ErrMathJaxRender = errors.New("mathjax template rendering failed")

// Markers identifying each fragment once injected.
const (
	MarkerNoDrag    = `data-pubstream="no-drag"`
	MarkerDragGuard = `data-pubstream="drag-guard"`
	MarkerMathJax   = `id="pubstream_mathjax"`
)

const headClose = "</head>"

// InsertBeforeHeadClose inserts fragment right before the first </head>,
// matched case-insensitively. Without </head> the text is returned unchanged.
func InsertBeforeHeadClose(htmlContent, fragment string) string {
	idx := headCloseIndex(htmlContent)
	if idx == -1 {
		return htmlContent
	}
	return htmlContent[:idx] + fragment + htmlContent[idx:]
}

// inHead reports whether marker occurs before the first </head>. Text in the
// body quoting a marker does not count.
func inHead(htmlContent, marker string) bool {
	idx := headCloseIndex(htmlContent)
	if idx == -1 {
		return false
	}
	return strings.Contains(htmlContent[:idx], marker)
}

// HasHeadClose reports whether htmlContent has a </head> tag.
func HasHeadClose(htmlContent string) bool {
	return headCloseIndex(htmlContent) != -1
}

// headCloseIndex scans bytes so offsets stay valid for non-UTF-8 input.
func headCloseIndex(htmlContent string) int {
	for i := 0; i+len(headClose) <= len(htmlContent); i++ {
		if htmlContent[i] == '<' && strings.EqualFold(htmlContent[i:i+len(headClose)], headClose) {
			return i
		}
	}
	return -1
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// fragments holds the rendered injection fragments.
type fragments struct {
	noDrag    string
	dragGuard string
	mathJax   *template.Template
}

// loadFragments reads the embedded fragments.
// Panics if a fragment cannot be loaded or parsed (programmer error).
func loadFragments() *fragments {
	css := assets.MustLoadStyle(assets.StyleNoDrag)

	tmpl, err := template.New(assets.TemplateMathJaxBootstrap).Parse(assets.MustLoadTemplate(assets.TemplateMathJaxBootstrap))
	if err != nil {
		panic("failed to parse mathjax template: " + err.Error())
	}

	return &fragments{
		noDrag:    "\n<style type=\"text/css\" " + MarkerNoDrag + ">\n" + sanitizeCSS(css) + "</style>\n",
		dragGuard: "\n" + assets.MustLoadTemplate(assets.TemplateDragGuard),
		mathJax:   tmpl,
	}
}

// renderMathJax renders the bootstrap script and its loader template for url.
// An empty url leaves the loader template out; the bootstrap then reports
// the missing loader in the page instead of requesting a bogus src.
func (f *fragments) renderMathJax(url string) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("\n")
	if err := f.mathJax.Execute(&buf, struct{ URL string }{URL: url}); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMathJaxRender, err)
	}
	return buf.String(), nil
}
