package export

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBaseURL reports a base URL that lacks an http(s) scheme
	// prefix or a trailing slash. Attribute rewriting refuses to guess.
	ErrInvalidBaseURL = errors.New("export: base url must start with http and end with /")

	// ErrMissingAttribute reports an element without the attribute a
	// transformation needs (a src-less iframe, an img with no src).
	ErrMissingAttribute = errors.New("export: element attribute missing")

	// ErrUnsupportedFormat reports a format outside pdf, png, epub.
	ErrUnsupportedFormat = errors.New("export: unsupported output format")

	// ErrNavigationTimeout reports a page that never reached network idle
	// within the navigation timeout. Fatal for the job: a partially loaded
	// page must never become an artifact.
	ErrNavigationTimeout = errors.New("export: navigation timed out")
)

// FailedError wraps any error escaping the export pipeline so the worker can
// attach the job identity when logging.
type FailedError struct {
	SpaceID string
	Format  string
	Err     error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("export: space %s to %s failed: %v", e.SpaceID, e.Format, e.Err)
}

func (e *FailedError) Unwrap() error { return e.Err }

// PackagingError reports a failure while assembling or validating the output
// document, after the page itself was processed successfully.
type PackagingError struct {
	Format string
	Err    error
}

func (e *PackagingError) Error() string {
	return fmt.Sprintf("export: packaging %s: %v", e.Format, e.Err)
}

func (e *PackagingError) Unwrap() error { return e.Err }
