package model

import "errors"

// ErrorCategory classifies an error for exit-code mapping. The extraction
// library and ffmpeg raise the underlying errors; the wrapper only decides
// which documented exit code they map to.
type ErrorCategory int

const (
	CategoryGeneral ErrorCategory = iota
	CategoryNetwork
	CategoryInvalidInput
	CategoryMissingDependency
	CategoryRestricted
	CategoryFilesystem
)

// Sentinel errors for download operations.
var (
	// ErrNoMatchingFormat is returned when no stream satisfies the
	// requested format constraints.
	ErrNoMatchingFormat = errors.New("no matching format available")
	// ErrNoSubtitles is returned when a video has no caption track for
	// the requested language.
	ErrNoSubtitles = errors.New("no subtitles available for requested language")
)

type categorizedError struct {
	category ErrorCategory
	err      error
}

func (e categorizedError) Error() string { return e.err.Error() }

func (e categorizedError) Unwrap() error { return e.err }

// WrapCategory attaches a category to err. A nil err stays nil.
func WrapCategory(category ErrorCategory, err error) error {
	if err == nil {
		return nil
	}
	return categorizedError{category: category, err: err}
}

// IsCategorized reports whether a category was already attached somewhere
// in err's chain. Callers use it to avoid relabeling an error.
func IsCategorized(err error) bool {
	var ce categorizedError
	return errors.As(err, &ce)
}

// Category returns the category attached to err, or CategoryGeneral when
// none was attached.
func Category(err error) ErrorCategory {
	var ce categorizedError
	if errors.As(err, &ce) {
		return ce.category
	}
	return CategoryGeneral
}

// ExitCode maps an error to the documented process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	switch Category(err) {
	case CategoryNetwork:
		return ExitNetworkError
	case CategoryInvalidInput:
		return ExitInvalidInput
	case CategoryMissingDependency:
		return ExitMissingDependency
	default:
		return ExitGeneralError
	}
}
