// Package readerconfig defines the reader configuration record: the display
// and rendering toggles a reading window applies to publication resources.
//
// A Config is a value type. Copies are independent, so a record handed out by
// a store can never be mutated behind the store's back.
package readerconfig

import (
	"errors"
	"fmt"
)

// Sentinel errors for configuration validation.
var (
	ErrInvalidColCount = errors.New("invalid column count")
	ErrInvalidAlign    = errors.New("invalid text alignment")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
)

// Column count values.
const (
	ColCountAuto = "auto"
	ColCountOne  = "1"
	ColCountTwo  = "2"
)

// Text alignment values.
const (
	AlignAuto    = "auto"
	AlignJustify = "justify"
	AlignStart   = "start"
	AlignLeft    = "left"
	AlignRight   = "right"
)

// DefaultFont keeps the publication's own font.
const DefaultFont = "DEFAULT"

// maxValueLength bounds free-form string settings (font names, CSS lengths).
const maxValueLength = 200

// Config holds reader display settings.
// Absent booleans decode as false, so a record missing enableMathJax
// leaves math typesetting disabled.
type Config struct {
	Align           string `json:"align,omitempty" yaml:"align"`
	ColCount        string `json:"colCount,omitempty" yaml:"colCount"`
	Paged           bool   `json:"paged" yaml:"paged"`
	Font            string `json:"font,omitempty" yaml:"font"`
	FontSize        string `json:"fontSize,omitempty" yaml:"fontSize"` // "100%"
	LineHeight      string `json:"lineHeight,omitempty" yaml:"lineHeight"`
	LetterSpacing   string `json:"letterSpacing,omitempty" yaml:"letterSpacing"`
	WordSpacing     string `json:"wordSpacing,omitempty" yaml:"wordSpacing"`
	ParaSpacing     string `json:"paraSpacing,omitempty" yaml:"paraSpacing"`
	ParaIndent      string `json:"paraIndent,omitempty" yaml:"paraIndent"`
	PageMargins     string `json:"pageMargins,omitempty" yaml:"pageMargins"`
	TypeScale       string `json:"typeScale,omitempty" yaml:"typeScale"`
	TextColor       string `json:"textColor,omitempty" yaml:"textColor"`
	BackgroundColor string `json:"backgroundColor,omitempty" yaml:"backgroundColor"`
	Ligatures       bool   `json:"ligatures" yaml:"ligatures"`
	BodyHyphens     bool   `json:"bodyHyphens" yaml:"bodyHyphens"`
	Dark            bool   `json:"dark" yaml:"dark"`
	Night           bool   `json:"night" yaml:"night"`
	Sepia           bool   `json:"sepia" yaml:"sepia"`
	Invert          bool   `json:"invert" yaml:"invert"`
	Darken          bool   `json:"darken" yaml:"darken"`
	A11yNormalize   bool   `json:"a11yNormalize" yaml:"a11yNormalize"`
	NoFootnotes     bool   `json:"noFootnotes" yaml:"noFootnotes"`
	ReduceMotion    bool   `json:"reduceMotion" yaml:"reduceMotion"`
	EnableMathJax   bool   `json:"enableMathJax" yaml:"enableMathJax"`
	ReadiumCSS      bool   `json:"readiumcss" yaml:"readiumcss"` // false disables Readium CSS entirely
}

// Default returns the global default reader configuration.
func Default() Config {
	return Config{
		Align:      AlignAuto,
		ColCount:   ColCountAuto,
		Paged:      true,
		Font:       DefaultFont,
		FontSize:   "100%",
		ReadiumCSS: true,
	}
}

// UnmarshalYAML layers a YAML reader section over Default, so keys the
// file omits keep their built-in values instead of zeroing out. JSON
// records are complete and keep plain decoding.
func (c *Config) UnmarshalYAML(unmarshal func(any) error) error {
	type plain Config
	layered := plain(Default())
	if err := unmarshal(&layered); err != nil {
		return err
	}
	*c = Config(layered)
	return nil
}

// Validate checks enumerated values and string lengths.
// Empty enum values are accepted and mean "auto".
func (c Config) Validate() error {
	switch c.ColCount {
	case "", ColCountAuto, ColCountOne, ColCountTwo:
	default:
		return fmt.Errorf("%w: %q (must be auto, 1 or 2)", ErrInvalidColCount, c.ColCount)
	}

	switch c.Align {
	case "", AlignAuto, AlignJustify, AlignStart, AlignLeft, AlignRight:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAlign, c.Align)
	}

	fields := []struct {
		name  string
		value string
	}{
		{"font", c.Font},
		{"fontSize", c.FontSize},
		{"lineHeight", c.LineHeight},
		{"letterSpacing", c.LetterSpacing},
		{"wordSpacing", c.WordSpacing},
		{"paraSpacing", c.ParaSpacing},
		{"paraIndent", c.ParaIndent},
		{"pageMargins", c.PageMargins},
		{"typeScale", c.TypeScale},
		{"textColor", c.TextColor},
		{"backgroundColor", c.BackgroundColor},
	}
	for _, f := range fields {
		if len(f.value) > maxValueLength {
			return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, f.name, len(f.value), maxValueLength)
		}
	}

	return nil
}

// Normalized returns a copy with empty enum fields replaced by "auto".
func (c Config) Normalized() Config {
	if c.ColCount == "" {
		c.ColCount = ColCountAuto
	}
	if c.Align == "" {
		c.Align = AlignAuto
	}
	return c
}
