package trailers

import "errors"

var (
	// ErrUnknownWhere indicates an unrecognized placement value.
	ErrUnknownWhere = errors.New("unknown where value")
	// ErrUnknownIfExists indicates an unrecognized if-exists policy value.
	ErrUnknownIfExists = errors.New("unknown if-exists value")
	// ErrUnknownIfMissing indicates an unrecognized if-missing policy value.
	ErrUnknownIfMissing = errors.New("unknown if-missing value")
	// ErrEmptyKey indicates a trailer argument with a separator but no key.
	ErrEmptyKey = errors.New("empty trailer key")
	// ErrCommand indicates a trailer derivation command failed.
	ErrCommand = errors.New("trailer command failed")
)
