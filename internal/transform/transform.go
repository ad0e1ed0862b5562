// Package transform holds the ordered chain of content transformers applied
// to publication resources before delivery.
//
// Transformers are registered once, usually at startup, and applied in
// registration order. Each sees the output of the previous one. A failing
// transformer aborts the whole chain; callers never receive a partially
// transformed document.
package transform

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alnah/go-pubstream/internal/publication"
)

// ErrTransform wraps any transformer failure.
var ErrTransform = errors.New("transform failed")

// Document is the input of a transformer: a resource body and its context.
type Document struct {
	Publication *publication.Publication
	Link        *publication.Link
	URL         string // empty when the resource URL is unresolved
	Body        string
}

// Transformer rewrites the body of a publication resource.
type Transformer interface {
	Name() string
	// Supports reports whether the transformer applies to link.
	// A nil link is supported by every transformer.
	Supports(link *publication.Link) bool
	Transform(ctx context.Context, doc Document) (string, error)
}

// Func adapts a function to a Transformer.
type Func func(ctx context.Context, doc Document) (string, error)

type funcTransformer struct {
	name     string
	fn       Func
	htmlOnly bool
}

// HTML returns a transformer that only applies to HTML and XHTML resources.
func HTML(name string, fn Func) Transformer {
	return &funcTransformer{name: name, fn: fn, htmlOnly: true}
}

// Any returns a transformer that applies to every resource.
func Any(name string, fn Func) Transformer {
	return &funcTransformer{name: name, fn: fn}
}

func (f *funcTransformer) Name() string { return f.name }

func (f *funcTransformer) Supports(link *publication.Link) bool {
	if link == nil || !f.htmlOnly {
		return true
	}
	return link.IsHTML()
}

func (f *funcTransformer) Transform(ctx context.Context, doc Document) (string, error) {
	return f.fn(ctx, doc)
}

// Registry is an append-only, ordered list of transformers.
// It is safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	transformers []Transformer
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends t to the chain. Duplicates are kept.
func (r *Registry) Add(t Transformer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transformers = append(r.transformers, t)
}

// Len returns the number of registered transformers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.transformers)
}

// Names returns transformer names in application order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.transformers))
	for i, t := range r.transformers {
		names[i] = t.Name()
	}
	return names
}

// Apply runs every supporting transformer over doc.Body, left to right.
// Returns an error wrapping ErrTransform on the first failure, or when ctx
// is cancelled between transformers.
func (r *Registry) Apply(ctx context.Context, doc Document) (string, error) {
	r.mu.RLock()
	chain := make([]Transformer, len(r.transformers))
	copy(chain, r.transformers)
	r.mu.RUnlock()

	for _, t := range chain {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrTransform, t.Name(), err)
		}
		if !t.Supports(doc.Link) {
			continue
		}
		out, err := t.Transform(ctx, doc)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrTransform, t.Name(), err)
		}
		doc.Body = out
	}
	return doc.Body, nil
}
