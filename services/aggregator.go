package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"scraper-analytics/models"
	"scraper-analytics/utils"
)

// Aggregator computes per-category and batch-wide statistics.
type Aggregator struct {
	logger *utils.Logger
}

func NewAggregator(logger *utils.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

type accumulator struct {
	count      int
	sum        decimal.Decimal
	min        decimal.Decimal
	max        decimal.Decimal
	ratingSum  decimal.Decimal
	ratedCount int
}

func (a *accumulator) add(p models.ProductRecord) {
	if a.count == 0 || p.Price.LessThan(a.min) {
		a.min = p.Price
	}
	if a.count == 0 || p.Price.GreaterThan(a.max) {
		a.max = p.Price
	}
	a.count++
	a.sum = a.sum.Add(p.Price)
	if p.Rating != nil {
		a.ratingSum = a.ratingSum.Add(decimal.NewFromFloat(*p.Rating))
		a.ratedCount++
	}
}

func (a *accumulator) avgPrice() decimal.Decimal {
	return a.sum.Div(decimal.NewFromInt(int64(a.count))).Round(2)
}

func (a *accumulator) avgRating() *float64 {
	if a.ratedCount == 0 {
		return nil
	}
	avg := a.ratingSum.Div(decimal.NewFromInt(int64(a.ratedCount))).Round(2).InexactFloat64()
	return &avg
}

// Aggregate groups records by price category. Empty categories are omitted and
// the result follows category order: Budget, Mid-Range, Premium, Luxury.
func (s *Aggregator) Aggregate(records []models.ProductRecord) []models.CategorySummary {
	groups := make(map[models.PriceCategory]*accumulator)
	for _, p := range records {
		acc, ok := groups[p.PriceCategory]
		if !ok {
			acc = &accumulator{}
			groups[p.PriceCategory] = acc
		}
		acc.add(p)
	}

	summaries := make([]models.CategorySummary, 0, len(groups))
	for _, cat := range models.Categories() {
		acc, ok := groups[cat]
		if !ok {
			continue
		}
		summaries = append(summaries, models.CategorySummary{
			Category:  cat,
			Count:     acc.count,
			AvgPrice:  acc.avgPrice(),
			MinPrice:  acc.min,
			MaxPrice:  acc.max,
			AvgRating: acc.avgRating(),
		})
	}

	s.logger.Info("[aggregator] %d records across %d price categories", len(records), len(summaries))
	return summaries
}

// Overview computes batch-wide statistics and the top most expensive records.
// Ties on price are broken by id.
func (s *Aggregator) Overview(records []models.ProductRecord, top int) models.Overview {
	ov := models.Overview{Total: len(records)}
	if len(records) == 0 {
		return ov
	}

	acc := &accumulator{}
	for _, p := range records {
		acc.add(p)
	}
	ov.Rated = acc.ratedCount
	ov.MinPrice = acc.min
	ov.MaxPrice = acc.max
	ov.AvgPrice = acc.avgPrice()
	ov.AvgRating = acc.avgRating()

	sorted := append([]models.ProductRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Price.Equal(sorted[j].Price) {
			return sorted[i].Price.GreaterThan(sorted[j].Price)
		}
		return sorted[i].ID < sorted[j].ID
	})
	if top >= 0 && len(sorted) > top {
		sorted = sorted[:top]
	}
	ov.TopByPrice = sorted
	return ov
}
