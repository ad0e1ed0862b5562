package assets

import "errors"

var (
	ErrStyleNotFound    = errors.New("fragment style not found")
	ErrTemplateNotFound = errors.New("fragment template not found")
	// ErrInvalidAssetName rejects names that could escape the fragment
	// directories (separators, dots, whitespace).
	ErrInvalidAssetName = errors.New("invalid fragment name")
	// ErrUnknownMode is returned by ParseMode.
	ErrUnknownMode = errors.New("unknown packaging mode")
)
