package storage

import (
	"io"

	"scraper-analytics/models"
)

// ArtifactWriter is the interface every report format must satisfy.
type ArtifactWriter interface {
	// Kind names the artifact in logs and errors ("spreadsheet", "csv", ...).
	Kind() string
	// FileName returns the artifact file name for a run timestamp token.
	FileName(token string) string
	Write(w io.Writer, bundle *models.ReportBundle) error
}
