package storage

import (
	"strconv"
	"time"

	"scraper-analytics/models"
)

// recordColumns is the stable column order of the CSV file and the first
// spreadsheet sheet. BI dashboards depend on it; append, never reorder.
var recordColumns = []string{"id", "name", "price", "rating", "in_stock", "price_category", "scraped_at"}

func formatRating(r *float64) string {
	if r == nil {
		return ""
	}
	return strconv.FormatFloat(*r, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func recordRow(p models.ProductRecord) []string {
	return []string{
		p.ID,
		p.Name,
		p.Price.StringFixed(2),
		formatRating(p.Rating),
		strconv.FormatBool(p.InStock),
		string(p.PriceCategory),
		formatTime(p.ScrapedAt),
	}
}
