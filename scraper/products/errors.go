package products

import (
	"errors"
	"fmt"
)

var (
	ErrBrowserStart      = errors.New("browser could not be started")
	ErrNavigationTimeout = errors.New("navigation timed out")
	ErrNoItems           = errors.New("no matching item elements found")
)

// ExtractionError reports a fatal failure while loading or reading the target page.
type ExtractionError struct {
	Stage string // launch, navigate or extract
	URL   string
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction %s %s: %v", e.Stage, e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
