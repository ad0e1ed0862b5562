// Package inject provides the conditional injection transformer: it adds the
// drag-neutralising style, the drag guard script and, when math typesetting
// is enabled in the default reader configuration, the MathJax bootstrap to
// every HTML resource just before </head>.
package inject

import (
	"context"
	"log/slog"

	"github.com/alnah/go-pubstream/internal/logging"
	"github.com/alnah/go-pubstream/internal/store"
	"github.com/alnah/go-pubstream/internal/transform"
)

// TransformerName is the registry name of the injection transformer.
const TransformerName = "pubstream-inject"

// URLFunc returns the MathJax script URL. It is called at each injection.
type URLFunc func() string

// Injector injects the drag guards and the MathJax bootstrap.
type Injector struct {
	provider store.Provider
	urlFn    URLFunc
	logger   *slog.Logger
	frags    *fragments
}

// New creates an Injector. The provider is only asked for the default
// configuration, never for a session.
func New(provider store.Provider, urlFn URLFunc, logger *slog.Logger) *Injector {
	return &Injector{
		provider: provider,
		urlFn:    urlFn,
		logger:   logging.OrNop(logger),
		frags:    loadFragments(),
	}
}

// Register appends a new Injector to reg and returns it.
func Register(reg *transform.Registry, provider store.Provider, urlFn URLFunc, logger *slog.Logger) *Injector {
	inj := New(provider, urlFn, logger)
	reg.Add(inj.Transformer())
	return inj
}

// Transformer wraps the injector as an HTML-only transformer.
func (i *Injector) Transformer() transform.Transformer {
	return transform.HTML(TransformerName, i.Transform)
}

// Transform injects the fragments into doc.Body. Fragments already present
// are not injected again.
func (i *Injector) Transform(ctx context.Context, doc transform.Document) (string, error) {
	body := doc.Body
	if !HasHeadClose(body) {
		return body, nil
	}

	var injected []string
	if !inHead(body, MarkerNoDrag) {
		body = InsertBeforeHeadClose(body, i.frags.noDrag)
		injected = append(injected, "no-drag")
	}
	if !inHead(body, MarkerDragGuard) {
		body = InsertBeforeHeadClose(body, i.frags.dragGuard)
		injected = append(injected, "drag-guard")
	}

	if i.mathJaxEnabled(ctx) && !inHead(body, MarkerMathJax) {
		url := ""
		if i.urlFn != nil {
			url = i.urlFn()
		}
		if url == "" {
			i.logger.Warn("mathjax url is empty, bootstrap injected without loader", "href", href(doc))
		}
		frag, err := i.frags.renderMathJax(url)
		if err != nil {
			return "", err
		}
		body = InsertBeforeHeadClose(body, frag)
		injected = append(injected, "mathjax")
	}

	if len(injected) > 0 {
		i.logger.Debug("fragments injected", "href", href(doc), "fragments", injected)
	}
	return body, nil
}

// mathJaxEnabled reads the default configuration. Sessions are not consulted:
// a document is shared by every window showing it.
func (i *Injector) mathJaxEnabled(ctx context.Context) bool {
	cfg, err := i.provider.DefaultConfig(ctx)
	if err != nil {
		i.logger.Warn("default reader config unavailable, mathjax disabled", "error", err)
		return false
	}
	return cfg.EnableMathJax
}

func href(doc transform.Document) string {
	if doc.Link != nil {
		return doc.Link.Href
	}
	return doc.URL
}
