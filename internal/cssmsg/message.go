// Package cssmsg builds the Readium CSS styling message sent to the renderer
// over the side channel when a resource is delivered.
package cssmsg

import "github.com/alnah/go-pubstream/internal/readerconfig"

// Message is the styling payload. A nil SetCSS tells the renderer to remove
// Readium CSS from the document.
type Message struct {
	SetCSS        *ReadiumCSS `json:"setCSS,omitempty"`
	IsFixedLayout bool        `json:"isFixedLayout"`
	URLRoot       string      `json:"urlRoot,omitempty"`
}

// ReadiumCSS is the projection of a reader configuration the renderer applies.
type ReadiumCSS struct {
	Paged           bool   `json:"paged"`
	ColCount        string `json:"colCount"`
	TextAlign       string `json:"textAlign"`
	Font            string `json:"font"`
	FontSize        string `json:"fontSize"`
	LineHeight      string `json:"lineHeight,omitempty"`
	LetterSpacing   string `json:"letterSpacing,omitempty"`
	WordSpacing     string `json:"wordSpacing,omitempty"`
	ParaSpacing     string `json:"paraSpacing,omitempty"`
	ParaIndent      string `json:"paraIndent,omitempty"`
	PageMargins     string `json:"pageMargins,omitempty"`
	TypeScale       string `json:"typeScale,omitempty"`
	TextColor       string `json:"textColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	Ligatures       bool   `json:"ligatures"`
	BodyHyphens     bool   `json:"bodyHyphens"`
	Night           bool   `json:"night"`
	Sepia           bool   `json:"sepia"`
	Invert          bool   `json:"invert"`
	Darken          bool   `json:"darken"`
	A11yNormalize   bool   `json:"a11yNormalize"`
	NoFootnotes     bool   `json:"noFootnotes"`
	ReduceMotion    bool   `json:"reduceMotion"`
	MathJax         bool   `json:"mathJax"`
}

// Build projects cfg into a styling message. It never fails.
func Build(cfg readerconfig.Config) Message {
	if !cfg.ReadiumCSS {
		return Message{}
	}

	cfg = cfg.Normalized()
	font := cfg.Font
	if font == "" {
		font = readerconfig.DefaultFont
	}

	return Message{
		SetCSS: &ReadiumCSS{
			Paged:           cfg.Paged,
			ColCount:        cfg.ColCount,
			TextAlign:       cfg.Align,
			Font:            font,
			FontSize:        cfg.FontSize,
			LineHeight:      cfg.LineHeight,
			LetterSpacing:   cfg.LetterSpacing,
			WordSpacing:     cfg.WordSpacing,
			ParaSpacing:     cfg.ParaSpacing,
			ParaIndent:      cfg.ParaIndent,
			PageMargins:     cfg.PageMargins,
			TypeScale:       cfg.TypeScale,
			TextColor:       cfg.TextColor,
			BackgroundColor: cfg.BackgroundColor,
			Ligatures:       cfg.Ligatures,
			BodyHyphens:     cfg.BodyHyphens,
			// dark is the legacy name of night mode
			Night:         cfg.Night || cfg.Dark,
			Sepia:         cfg.Sepia,
			Invert:        cfg.Invert,
			Darken:        cfg.Darken,
			A11yNormalize: cfg.A11yNormalize,
			NoFootnotes:   cfg.NoFootnotes,
			ReduceMotion:  cfg.ReduceMotion,
			MathJax:       cfg.EnableMathJax,
		},
	}
}

// BuildForURLRoot is Build with URLRoot pointing at the served Readium CSS.
func BuildForURLRoot(cfg readerconfig.Config, urlRoot string) Message {
	msg := Build(cfg)
	msg.URLRoot = urlRoot
	return msg
}
