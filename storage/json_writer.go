package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"scraper-analytics/models"
)

// JSONWriter writes the records and category summary as one indented document.
type JSONWriter struct{}

type jsonExport struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Records     []jsonRecord  `json:"records"`
	Summary     []jsonSummary `json:"summary"`
}

type jsonRecord struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Price         json.Number `json:"price"`
	Rating        *float64    `json:"rating"`
	InStock       bool        `json:"in_stock"`
	PriceCategory string      `json:"price_category"`
	ScrapedAt     time.Time   `json:"scraped_at"`
}

type jsonSummary struct {
	Category  string      `json:"category"`
	Count     int         `json:"count"`
	AvgPrice  json.Number `json:"avg_price"`
	MinPrice  json.Number `json:"min_price"`
	MaxPrice  json.Number `json:"max_price"`
	AvgRating *float64    `json:"avg_rating"`
}

// money renders d as a JSON number with two fraction digits.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func (JSONWriter) Kind() string { return "json" }

func (JSONWriter) FileName(token string) string {
	return "data_export_" + token + ".json"
}

func (JSONWriter) Write(w io.Writer, bundle *models.ReportBundle) error {
	export := jsonExport{
		GeneratedAt: bundle.GeneratedAt(),
		Records:     make([]jsonRecord, 0, len(bundle.Records())),
		Summary:     make([]jsonSummary, 0, len(bundle.Summaries())),
	}

	for _, p := range bundle.Records() {
		export.Records = append(export.Records, jsonRecord{
			ID:            p.ID,
			Name:          p.Name,
			Price:         money(p.Price),
			Rating:        p.Rating,
			InStock:       p.InStock,
			PriceCategory: string(p.PriceCategory),
			ScrapedAt:     p.ScrapedAt.UTC(),
		})
	}
	for _, cs := range bundle.Summaries() {
		export.Summary = append(export.Summary, jsonSummary{
			Category:  string(cs.Category),
			Count:     cs.Count,
			AvgPrice:  money(cs.AvgPrice),
			MinPrice:  money(cs.MinPrice),
			MaxPrice:  money(cs.MaxPrice),
			AvgRating: cs.AvgRating,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(export); err != nil {
		return fmt.Errorf("json: encode: %w", err)
	}
	return nil
}
