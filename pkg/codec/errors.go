package codec

import "errors"

var (
	// ErrEmptyDocument is returned by Decode for blank input.
	ErrEmptyDocument = errors.New("codec: empty document")
	// ErrInvalidDocument wraps every structural problem found while decoding
	// or hydrating a persisted form.
	ErrInvalidDocument = errors.New("codec: invalid document")
)
