package text

import "github.com/pkg/errors"

var (
	// ErrInvalidInput reports a glyph source with no glyphs or an empty cell.
	ErrInvalidInput = errors.New("text: invalid glyph source")
	// ErrAllocation reports a failed texture allocation.
	ErrAllocation = errors.New("text: atlas allocation failed")
	// ErrUpload reports a failed glyph upload in strict mode.
	ErrUpload = errors.New("text: glyph upload failed")
	// ErrNoFont reports font data that holds no usable face.
	ErrNoFont = errors.New("text: no font")
)

// kindError tags an underlying failure with one of the sentinels above.
// errors.Is matches both; errors.Cause walks to the underlying failure.
type kindError struct {
	kind  error
	cause error
}

func (e *kindError) Error() string   { return e.kind.Error() + ": " + e.cause.Error() }
func (e *kindError) Cause() error    { return e.cause }
func (e *kindError) Unwrap() []error { return []error{e.kind, e.cause} }

// wrapKind annotates cause with format and tags it with kind.
func wrapKind(kind, cause error, format string, args ...any) error {
	return &kindError{kind: kind, cause: errors.Wrapf(cause, format, args...)}
}
