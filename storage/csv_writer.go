package storage

import (
	"encoding/csv"
	"fmt"
	"io"

	"scraper-analytics/models"
)

// CSVWriter writes the flat one-row-per-product dataset for BI ingestion.
type CSVWriter struct{}

func (CSVWriter) Kind() string { return "csv" }

func (CSVWriter) FileName(token string) string {
	return "powerbi_dataset_" + token + ".csv"
}

func (CSVWriter) Write(w io.Writer, bundle *models.ReportBundle) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(recordColumns); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, p := range bundle.Records() {
		if err := cw.Write(recordRow(p)); err != nil {
			return fmt.Errorf("csv: write row %s: %w", p.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
