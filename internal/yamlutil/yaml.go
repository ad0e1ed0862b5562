// Package yamlutil decodes pubstream config documents with goccy/go-yaml.
//
// Decoding is always strict: a key the destination has no field for is an
// error, so a misspelled setting never silently falls back to its default.
package yamlutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

// MaxDocumentSize bounds a config document in bytes.
const MaxDocumentSize = 1 << 20

var (
	ErrNilData        = errors.New("empty YAML document")
	ErrNilDestination = errors.New("nil YAML destination")
	ErrInputTooLarge  = errors.New("YAML document too large")
)

// DecodeStrict reads one document from r and decodes it into v.
func DecodeStrict(r io.Reader, v any) error {
	if v == nil {
		return ErrNilDestination
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return fmt.Errorf("read YAML: %w", err)
	}
	return UnmarshalStrict(data, v)
}

// UnmarshalStrict decodes data into v. Whitespace-only data is ErrNilData.
func UnmarshalStrict(data []byte, v any) error {
	switch {
	case v == nil:
		return ErrNilDestination
	case len(data) > MaxDocumentSize:
		return fmt.Errorf("%w: more than %d bytes", ErrInputTooLarge, MaxDocumentSize)
	case len(bytes.TrimSpace(data)) == 0:
		return ErrNilData
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("decode YAML: %w", err)
	}
	return nil
}

// FormatError renders err with the offending source lines when the decoder
// attached a position to it.
func FormatError(err error) string {
	return yaml.FormatError(err, false, true)
}
