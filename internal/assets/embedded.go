package assets

import (
	"embed"
	"fmt"
	"path"
)

//go:embed styles/*.css templates/*.html
var fragments embed.FS

// EmbeddedLoader reads injection fragments compiled into the binary.
type EmbeddedLoader struct {
	fsys embed.FS
}

// NewEmbeddedLoader creates an EmbeddedLoader over the shipped fragments.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{fsys: fragments}
}

func (e *EmbeddedLoader) read(dir, ext, name string, notFound error) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	content, err := e.fsys.ReadFile(path.Join(dir, name+ext))
	if err != nil {
		return "", fmt.Errorf("%w: %q", notFound, name)
	}
	return string(content), nil
}

// LoadStyle returns styles/<name>.css.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	return e.read("styles", ".css", name, ErrStyleNotFound)
}

// LoadTemplate returns templates/<name>.html.
func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	return e.read("templates", ".html", name, ErrTemplateNotFound)
}

var _ AssetLoader = (*EmbeddedLoader)(nil)
