package services

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"scraper-analytics/models"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func rating(v float64) *float64 { return &v }

func product(id, price string, cat models.PriceCategory, r *float64) models.ProductRecord {
	return models.ProductRecord{ID: id, Name: id, Price: decimal.RequireFromString(price), PriceCategory: cat, Rating: r}
}

func sampleRecords() []models.ProductRecord {
	return []models.ProductRecord{
		product("a", "9.99", models.Budget, rating(4.0)),
		product("b", "4.01", models.Budget, nil),
		product("c", "300.00", models.Premium, rating(5)),
		product("d", "250.50", models.Premium, rating(3.5)),
		product("e", "210.25", models.Premium, rating(4.1)),
		product("f", "900.00", models.Luxury, nil),
	}
}

func TestAggregateCounts(t *testing.T) {
	s := NewAggregator(newTestLogger())
	summaries := s.Aggregate(sampleRecords())

	if len(summaries) != 3 {
		t.Fatalf("summaries: got %d, want 3 (Mid-Range omitted)", len(summaries))
	}
	wantOrder := []models.PriceCategory{models.Budget, models.Premium, models.Luxury}
	wantCount := []int{2, 3, 1}
	for i, cs := range summaries {
		if cs.Category != wantOrder[i] {
			t.Errorf("summary[%d] category: got %s, want %s", i, cs.Category, wantOrder[i])
		}
		if cs.Count != wantCount[i] {
			t.Errorf("summary[%d] count: got %d, want %d", i, cs.Count, wantCount[i])
		}
	}
}

func TestAggregatePrices(t *testing.T) {
	s := NewAggregator(newTestLogger())
	premium := s.Aggregate(sampleRecords())[1]

	if !premium.AvgPrice.Equal(decimal.RequireFromString("253.58")) {
		t.Errorf("AvgPrice: got %s, want 253.58", premium.AvgPrice)
	}
	if !premium.MinPrice.Equal(decimal.RequireFromString("210.25")) {
		t.Errorf("MinPrice: got %s, want 210.25", premium.MinPrice)
	}
	if !premium.MaxPrice.Equal(decimal.RequireFromString("300")) {
		t.Errorf("MaxPrice: got %s, want 300", premium.MaxPrice)
	}
	for _, cs := range s.Aggregate(sampleRecords()) {
		if cs.AvgPrice.LessThan(cs.MinPrice) || cs.AvgPrice.GreaterThan(cs.MaxPrice) {
			t.Errorf("%s: avg %s outside [%s, %s]", cs.Category, cs.AvgPrice, cs.MinPrice, cs.MaxPrice)
		}
	}
}

func TestAggregateRatingExcludesUnrated(t *testing.T) {
	s := NewAggregator(newTestLogger())
	summaries := s.Aggregate(sampleRecords())

	budget := summaries[0]
	if budget.AvgRating == nil || *budget.AvgRating != 4.0 {
		t.Errorf("Budget AvgRating: got %v, want 4.0", budget.AvgRating)
	}
	if budget.Count != 2 {
		t.Errorf("unrated records still count: got %d, want 2", budget.Count)
	}
	if summaries[1].AvgRating == nil || *summaries[1].AvgRating != 4.2 {
		t.Errorf("Premium AvgRating: got %v, want 4.2", summaries[1].AvgRating)
	}
	if summaries[2].AvgRating != nil {
		t.Errorf("Luxury has no rated records, AvgRating should be nil, got %v", *summaries[2].AvgRating)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	s := NewAggregator(newTestLogger())
	if got := s.Aggregate(nil); len(got) != 0 {
		t.Errorf("expected 0 summaries for empty input, got %d", len(got))
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	s := NewAggregator(newTestLogger())
	records := sampleRecords()
	want := s.Aggregate(records)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]models.ProductRecord(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		if diff := cmp.Diff(want, s.Aggregate(shuffled), decimalEqual); diff != "" {
			t.Fatalf("shuffle %d changed the result (-want +got):\n%s", i, diff)
		}
	}
}

func TestOverview(t *testing.T) {
	s := NewAggregator(newTestLogger())
	ov := s.Overview(sampleRecords(), 2)

	if ov.Total != 6 || ov.Rated != 4 {
		t.Errorf("Total/Rated: got %d/%d, want 6/4", ov.Total, ov.Rated)
	}
	if !ov.MinPrice.Equal(decimal.RequireFromString("4.01")) || !ov.MaxPrice.Equal(decimal.NewFromInt(900)) {
		t.Errorf("range: got %s-%s", ov.MinPrice, ov.MaxPrice)
	}
	if len(ov.TopByPrice) != 2 || ov.TopByPrice[0].ID != "f" || ov.TopByPrice[1].ID != "c" {
		t.Errorf("TopByPrice: got %+v", ov.TopByPrice)
	}
}

func TestOverviewEmpty(t *testing.T) {
	s := NewAggregator(newTestLogger())
	ov := s.Overview(nil, 5)
	if ov.Total != 0 || ov.AvgRating != nil || len(ov.TopByPrice) != 0 {
		t.Errorf("expected zero overview, got %+v", ov)
	}
}
