// Package publication reads resources of unpacked publications stored under a
// library root directory, one sub-directory per publication.
package publication

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Sentinel errors for publication access.
var (
	ErrInvalidRoot          = errors.New("invalid library root")
	ErrInvalidPublicationID = errors.New("invalid publication id")
	ErrPublicationNotFound  = errors.New("publication not found")
	ErrResourceNotFound     = errors.New("resource not found")
	ErrResourceRead         = errors.New("failed to read resource")
	ErrPathTraversal        = errors.New("path traversal detected")
)

// Library is a directory of unpacked publications.
type Library struct {
	root string
}

// NewLibrary creates a Library rooted at root.
// Returns ErrInvalidRoot if root is not a readable directory.
func NewLibrary(root string) (*Library, error) {
	abs, err := realDir(root)
	if err != nil {
		return nil, err
	}
	return &Library{root: abs}, nil
}

// Root returns the resolved library directory.
func (l *Library) Root() string { return l.root }

// Open returns the publication stored under id.
func (l *Library) Open(id string) (*Publication, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	dir := filepath.Join(l.root, id)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %q", ErrPublicationNotFound, id)
	}

	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrPublicationNotFound, id)
	}
	if !within(l.root, real) {
		return nil, fmt.Errorf("%w: publication %q escapes library", ErrPathTraversal, id)
	}

	return &Publication{ID: id, Dir: real}, nil
}

// List returns the ids of all publications in the library, sorted.
func (l *Library) List() ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() && validateID(e.Name()) == nil {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Publication is one unpacked publication.
type Publication struct {
	ID  string
	Dir string
}

// Read returns the content of the resource at href together with its link.
// href is relative to the publication directory, with forward slashes.
func (p *Publication) Read(href string) ([]byte, *Link, error) {
	rel, err := cleanHref(href)
	if err != nil {
		return nil, nil, err
	}

	filePath := filepath.Join(p.Dir, rel)
	if err := p.verifyPathContainment(filePath); err != nil {
		return nil, nil, err
	}

	if isDir(filePath) {
		return nil, nil, fmt.Errorf("%w: %q is a directory", ErrResourceNotFound, href)
	}

	content, err := os.ReadFile(filePath) // #nosec G304 -- path validated above
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %q", ErrResourceNotFound, href)
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrResourceRead, err)
	}

	link := &Link{Href: filepath.ToSlash(rel), MediaType: MediaType(rel)}
	return content, link, nil
}

// verifyPathContainment ensures the resolved file path is within the
// publication directory, following symlinks.
func (p *Publication) verifyPathContainment(filePath string) error {
	absFilePath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve path", ErrPathTraversal)
	}

	// A missing file fails to open later; the prefix check still applies.
	if realPath, err := filepath.EvalSymlinks(absFilePath); err == nil {
		absFilePath = realPath
	}

	if !within(p.Dir, absFilePath) {
		return fmt.Errorf("%w: path escapes publication directory", ErrPathTraversal)
	}
	return nil
}

func cleanHref(href string) (string, error) {
	if href == "" {
		return "", fmt.Errorf("%w: empty href", ErrResourceNotFound)
	}
	if strings.ContainsRune(href, 0) {
		return "", fmt.Errorf("%w: null byte in href", ErrPathTraversal)
	}
	slashed := strings.ReplaceAll(href, `\`, "/")
	if strings.HasPrefix(slashed, "/") || filepath.IsAbs(href) || filepath.VolumeName(href) != "" {
		return "", fmt.Errorf("%w: absolute href %q", ErrPathTraversal, href)
	}
	rel := filepath.Clean(filepath.FromSlash(slashed))
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: href %q escapes publication", ErrPathTraversal, href)
	}
	if rel == "." {
		return "", fmt.Errorf("%w: empty href", ErrResourceNotFound)
	}
	return rel, nil
}

func validateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidPublicationID)
	}
	if strings.ContainsAny(id, "/\\\x00") || strings.HasPrefix(id, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidPublicationID, id)
	}
	return nil
}

// realDir resolves dir to an absolute, symlink-free, readable directory.
func realDir(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidRoot)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: directory does not exist: %s", ErrInvalidRoot, abs)
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: not a directory: %s", ErrInvalidRoot, abs)
	}
	if _, err := os.ReadDir(abs); err != nil {
		return "", fmt.Errorf("%w: cannot read directory: %v", ErrInvalidRoot, err)
	}
	return abs, nil
}

// within reports whether path is strictly inside base.
// The separator suffix rejects sibling prefixes such as /base/pathevil.
func within(base, path string) bool {
	return strings.HasPrefix(path, base+string(filepath.Separator))
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
