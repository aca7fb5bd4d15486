package enquiries

import "errors"

var (
	// ErrNotFound is returned when no enquiry has the requested id.
	ErrNotFound = errors.New("enquiry not found")

	// ErrInvalidUpdate is returned for partial updates touching fields
	// other than the attended flag.
	ErrInvalidUpdate = errors.New("invalid enquiry update")

	ErrInvalidCursor = errors.New("invalid cursor")
	ErrInvalidPage   = errors.New("page must be >= 1")

	// ErrCursorOutOfSequence means the previous page was never fetched,
	// so there is nothing to start after.
	ErrCursorOutOfSequence = errors.New("page requested out of sequence")
)
