package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"scraper-analytics/models"
	"scraper-analytics/utils"
)

// Artifact is one file written by the Emitter.
type Artifact struct {
	Kind string
	Path string
}

// Emitter writes a ReportBundle as a set of artifacts into one directory.
type Emitter struct {
	dir     string
	writers []ArtifactWriter
	logger  *utils.Logger
}

// NewEmitter creates an Emitter producing the spreadsheet, CSV, JSON and text
// summary artifacts.
func NewEmitter(dir string, logger *utils.Logger) *Emitter {
	return NewEmitterWith(dir, logger, XLSXWriter{}, CSVWriter{}, JSONWriter{}, SummaryWriter{})
}

// NewEmitterWith creates an Emitter with an explicit writer list.
func NewEmitterWith(dir string, logger *utils.Logger, writers ...ArtifactWriter) *Emitter {
	return &Emitter{dir: dir, writers: writers, logger: logger}
}

// Emit writes every artifact. A directory failure aborts immediately; an
// artifact failure is recorded and the remaining artifacts are still written.
// The returned error joins one *ReportWriteError per failed artifact.
func (e *Emitter) Emit(bundle *models.ReportBundle) ([]Artifact, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, &ReportWriteError{Artifact: "output directory", Path: e.dir, Err: err}
	}

	written := make([]Artifact, 0, len(e.writers))
	var errs []error
	for _, w := range e.writers {
		path := filepath.Join(e.dir, w.FileName(bundle.Token()))

		err := writeAtomic(path, func(out io.Writer) error {
			return w.Write(out, bundle)
		})
		if err != nil {
			e.logger.Error("[report] %s failed: %v", w.Kind(), err)
			errs = append(errs, &ReportWriteError{Artifact: w.Kind(), Path: path, Err: err})
			continue
		}

		e.logger.Info("[report] %s saved: %s", w.Kind(), path)
		written = append(written, Artifact{Kind: w.Kind(), Path: path})
	}

	return written, errors.Join(errs...)
}
