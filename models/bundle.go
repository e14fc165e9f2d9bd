package models

import "time"

// ReportBundle is the complete output of one run. It copies its inputs on
// construction and hands out copies, so it cannot change once built.
type ReportBundle struct {
	records     []ProductRecord
	summaries   []CategorySummary
	overview    Overview
	scraped     int
	dropped     int
	generatedAt time.Time
}

// NewReportBundle assembles a bundle for one run. The run time is kept in
// UTC at second precision, matching Token.
func NewReportBundle(records []ProductRecord, summaries []CategorySummary, overview Overview,
	scraped, dropped int, generatedAt time.Time) *ReportBundle {
	ov := overview
	ov.TopByPrice = append([]ProductRecord(nil), overview.TopByPrice...)
	return &ReportBundle{
		records:     append([]ProductRecord(nil), records...),
		summaries:   append([]CategorySummary(nil), summaries...),
		overview:    ov,
		scraped:     scraped,
		dropped:     dropped,
		generatedAt: generatedAt.UTC().Truncate(time.Second),
	}
}

// WithGeneratedAt returns a copy of the bundle stamped with a different run time.
func (b *ReportBundle) WithGeneratedAt(t time.Time) *ReportBundle {
	return NewReportBundle(b.records, b.summaries, b.overview, b.scraped, b.dropped, t)
}

func (b *ReportBundle) Records() []ProductRecord {
	return append([]ProductRecord(nil), b.records...)
}

func (b *ReportBundle) Summaries() []CategorySummary {
	return append([]CategorySummary(nil), b.summaries...)
}

func (b *ReportBundle) Overview() Overview {
	ov := b.overview
	ov.TopByPrice = append([]ProductRecord(nil), b.overview.TopByPrice...)
	return ov
}

// Scraped is the number of raw records extracted from the page.
func (b *ReportBundle) Scraped() int { return b.scraped }

// Dropped is the number of raw records rejected during normalization.
func (b *ReportBundle) Dropped() int { return b.dropped }

func (b *ReportBundle) GeneratedAt() time.Time { return b.generatedAt }

// Token is the timestamp shared by every artifact name of the run.
func (b *ReportBundle) Token() string {
	return b.generatedAt.Format("20060102_150405")
}
