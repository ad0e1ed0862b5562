package assets

import (
	"fmt"
	"strings"
)

// Fragment names shipped with the binary.
const (
	StyleNoDrag              = "no-drag"
	TemplateDragGuard        = "drag-guard"
	TemplateMathJaxBootstrap = "mathjax-bootstrap"
)

// AssetLoader resolves fragment names, given without extension, to their
// text. Unknown names yield ErrStyleNotFound or ErrTemplateNotFound.
type AssetLoader interface {
	LoadStyle(name string) (string, error)
	LoadTemplate(name string) (string, error)
}

// ValidateAssetName accepts bare fragment names only: no separators, dots
// or whitespace.
func ValidateAssetName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidAssetName)
	case strings.ContainsAny(name, "/\\. \t\r\n"):
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
