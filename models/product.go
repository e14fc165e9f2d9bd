package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Raw field names read from each item element on the page.
const (
	FieldName        = "name"
	FieldPrice       = "price"
	FieldRating      = "rating"
	FieldStock       = "stock"
	FieldDescription = "description"
	FieldReviews     = "reviews"
)

// RawRecord holds the unprocessed text captured for one item element.
// It only lives between extraction and normalization.
type RawRecord struct {
	Fields    map[string]string
	ScrapedAt time.Time
}

// Get returns the raw text for field, or "" when it was not captured.
func (r RawRecord) Get(field string) string {
	return r.Fields[field]
}

// ProductRecord is the normalized, typed product row shared by every report format.
type ProductRecord struct {
	ID            string
	Name          string
	Price         decimal.Decimal
	Rating        *float64
	InStock       bool
	PriceCategory PriceCategory
	ScrapedAt     time.Time
}

// HasRating reports whether a valid rating was parsed for the record.
func (p ProductRecord) HasRating() bool {
	return p.Rating != nil
}

// CategorySummary holds the statistics of one non-empty price category.
type CategorySummary struct {
	Category  PriceCategory
	Count     int
	AvgPrice  decimal.Decimal
	MinPrice  decimal.Decimal
	MaxPrice  decimal.Decimal
	AvgRating *float64
}

// Overview holds batch-wide statistics for the text digest.
type Overview struct {
	Total      int
	Rated      int
	MinPrice   decimal.Decimal
	MaxPrice   decimal.Decimal
	AvgPrice   decimal.Decimal
	AvgRating  *float64
	TopByPrice []ProductRecord
}
