//go:build bench

package inject

import (
	"context"
	"strings"
	"testing"

	"github.com/alnah/go-pubstream/internal/readerconfig"
	"github.com/alnah/go-pubstream/internal/store"
)

// BenchmarkInjector_Transform runs on every delivered HTML resource.
func BenchmarkInjector_Transform(b *testing.B) {
	large := "<html><head><title>T</title></head><body>" + strings.Repeat("<p>Paragraph content here.</p>\n", 500) + "</body></html>"

	inputs := []struct {
		name    string
		html    string
		mathJax bool
	}{
		{"small_no_mathjax", minimalDoc, false},
		{"small_mathjax", minimalDoc, true},
		{"large_mathjax", large, true},
		{"no_head", "<body><p>Content</p></body>", true},
	}

	for _, input := range inputs {
		cfg := readerconfig.Default()
		cfg.EnableMathJax = input.mathJax
		inj := New(store.NewMemory(cfg), staticURL(mathJaxURL), nil)
		doc := xhtmlDoc(input.html)

		b.Run(input.name, func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_, _ = inj.Transform(context.Background(), doc)
			}
		})
	}
}

func BenchmarkInsertBeforeHeadClose(b *testing.B) {
	html := "<html><head><title>T</title></head><body>" + strings.Repeat("x", 10000) + "</body></html>"
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = InsertBeforeHeadClose(html, "<style></style>")
	}
}
