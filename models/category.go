package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceCategory is one of the fixed, ordered price bands.
type PriceCategory string

const (
	Budget   PriceCategory = "Budget"
	MidRange PriceCategory = "Mid-Range"
	Premium  PriceCategory = "Premium"
	Luxury   PriceCategory = "Luxury"
)

// Categories returns every price category in report order.
func Categories() []PriceCategory {
	return []PriceCategory{Budget, MidRange, Premium, Luxury}
}

var (
	ErrNegativeThreshold   = errors.New("price thresholds must be non-negative")
	ErrThresholdsNotSorted = errors.New("price thresholds must be strictly ascending")
)

// Thresholds are the three ascending boundaries between price categories.
// A price equal to a boundary belongs to the higher category.
type Thresholds struct {
	MidRange decimal.Decimal
	Premium  decimal.Decimal
	Luxury   decimal.Decimal
}

// NewThresholds builds a validated threshold table.
func NewThresholds(midRange, premium, luxury decimal.Decimal) (Thresholds, error) {
	t := Thresholds{MidRange: midRange, Premium: premium, Luxury: luxury}
	return t, t.Validate()
}

// ParseThresholds parses three decimal strings into a validated threshold table.
func ParseThresholds(values []string) (Thresholds, error) {
	if len(values) != 3 {
		return Thresholds{}, fmt.Errorf("price thresholds: want 3 values, got %d", len(values))
	}
	parsed := make([]decimal.Decimal, 3)
	for i, v := range values {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return Thresholds{}, fmt.Errorf("price thresholds: parse %q: %w", v, err)
		}
		parsed[i] = d
	}
	return NewThresholds(parsed[0], parsed[1], parsed[2])
}

// Validate checks the boundaries are non-negative and strictly ascending.
func (t Thresholds) Validate() error {
	if t.MidRange.IsNegative() {
		return ErrNegativeThreshold
	}
	if !t.MidRange.LessThan(t.Premium) || !t.Premium.LessThan(t.Luxury) {
		return ErrThresholdsNotSorted
	}
	return nil
}

// Categorize maps a price onto its category.
func (t Thresholds) Categorize(price decimal.Decimal) PriceCategory {
	switch {
	case price.LessThan(t.MidRange):
		return Budget
	case price.LessThan(t.Premium):
		return MidRange
	case price.LessThan(t.Luxury):
		return Premium
	default:
		return Luxury
	}
}

func (t Thresholds) String() string {
	return fmt.Sprintf("%s/%s/%s", t.MidRange, t.Premium, t.Luxury)
}
