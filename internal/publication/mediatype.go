package publication

import (
	"mime"
	"path/filepath"
	"strings"
)

// Media types of HTML resources.
const (
	MediaTypeXHTML = "application/xhtml+xml"
	MediaTypeHTML  = "text/html"
)

// mediaTypes covers the resources found in reflowable publications.
// Platform MIME tables disagree on several of these, so they are pinned.
var mediaTypes = map[string]string{
	".xhtml": MediaTypeXHTML,
	".xht":   MediaTypeXHTML,
	".html":  MediaTypeHTML,
	".htm":   MediaTypeHTML,
	".css":   "text/css",
	".js":    "text/javascript",
	".mjs":   "text/javascript",
	".svg":   "image/svg+xml",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".webp":  "image/webp",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".otf":   "font/otf",
	".ttf":   "font/ttf",
	".mp3":   "audio/mpeg",
	".mp4":   "video/mp4",
	".smil":  "application/smil+xml",
	".ncx":   "application/x-dtbncx+xml",
	".opf":   "application/oebps-package+xml",
	".xml":   "application/xml",
	".json":  "application/json",
}

// MediaType returns the media type for href, without parameters.
// Unknown extensions map to application/octet-stream.
func MediaType(href string) string {
	ext := strings.ToLower(filepath.Ext(href))
	if mt, ok := mediaTypes[ext]; ok {
		return mt
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		if base, _, err := mime.ParseMediaType(mt); err == nil {
			return base
		}
		return mt
	}
	return "application/octet-stream"
}

// Link describes a publication resource.
type Link struct {
	Href      string
	MediaType string
}

// IsHTML reports whether the resource is an HTML or XHTML document.
func (l *Link) IsHTML() bool {
	if l == nil {
		return false
	}
	return l.MediaType == MediaTypeXHTML || l.MediaType == MediaTypeHTML
}

// IsXHTML reports whether the resource must stay well-formed XML.
func (l *Link) IsXHTML() bool {
	return l != nil && l.MediaType == MediaTypeXHTML
}
