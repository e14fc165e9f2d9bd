package storage

import "fmt"

// ReportWriteError reports one artifact (or the output directory) that could
// not be written. Other artifacts are still attempted.
type ReportWriteError struct {
	Artifact string
	Path     string
	Err      error
}

func (e *ReportWriteError) Error() string {
	return fmt.Sprintf("report %s %s: %v", e.Artifact, e.Path, e.Err)
}

func (e *ReportWriteError) Unwrap() error {
	return e.Err
}
