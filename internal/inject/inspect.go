package inject

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Report counts the injected elements found in a document head.
type Report struct {
	NoDragStyles     int
	DragGuardScripts int
	MathJaxScripts   int
	MathJaxTemplates int
	HeadClosed       bool
}

// Inspect tokenizes htmlContent and counts the marked elements.
// The tokenizer treats script and style bodies as raw text, so markers
// quoted inside them are not counted.
func Inspect(htmlContent string) (Report, error) {
	var r Report
	z := html.NewTokenizer(strings.NewReader(htmlContent))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return r, nil
			}
			return r, z.Err()
		case html.EndTagToken:
			name, _ := z.TagName()
			if atom.Lookup(name) == atom.Head {
				r.HeadClosed = true
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.Style:
				if attr(tok, "data-pubstream") == "no-drag" {
					r.NoDragStyles++
				}
			case atom.Script:
				switch {
				case attr(tok, "data-pubstream") == "drag-guard":
					r.DragGuardScripts++
				case attr(tok, "id") == "pubstream_mathjax":
					r.MathJaxScripts++
				}
			case atom.Template:
				if attr(tok, "id") == "pubstream_mathjax_template" {
					r.MathJaxTemplates++
				}
			}
		}
	}
}

// CountElements returns the number of start tags named tag in htmlContent.
func CountElements(htmlContent, tag string) int {
	n := 0
	a := atom.Lookup([]byte(strings.ToLower(tag)))
	z := html.NewTokenizer(strings.NewReader(htmlContent))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return n
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if a != 0 && atom.Lookup(name) == a || a == 0 && string(name) == strings.ToLower(tag) {
				n++
			}
		}
	}
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
