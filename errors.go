package pubstream

import (
	"github.com/alnah/go-pubstream/internal/session"
	"github.com/alnah/go-pubstream/internal/transform"
)

// Sentinel errors re-exported for callers of the library.
var (
	ErrTransform    = transform.ErrTransform
	ErrInvalidToken = session.ErrInvalidToken
)
