package safety

import "errors"

var (
	// ErrUnsupported indicates a platform without per-mapping protection keys.
	ErrUnsupported = errors.New("safety: protection keys unsupported on this platform")

	// ErrMalformed indicates smaps input that could not be parsed.
	ErrMalformed = errors.New("safety: malformed smaps")
)
