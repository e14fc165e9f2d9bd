package storage

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"scraper-analytics/models"
)

// SummaryWriter writes the plain-text digest of a run.
type SummaryWriter struct{}

func (SummaryWriter) Kind() string { return "summary" }

func (SummaryWriter) FileName(token string) string {
	return "report_summary_" + token + ".txt"
}

func (SummaryWriter) Write(w io.Writer, bundle *models.ReportBundle) error {
	_, err := io.WriteString(w, RenderSummary(bundle))
	return err
}

// RenderSummary formats the digest printed to stdout and written to the
// summary artifact.
func RenderSummary(b *models.ReportBundle) string {
	sep := strings.Repeat("=", 54)
	ov := b.Overview()
	token := b.Token()

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n  WEB SCRAPING ANALYTICS REPORT\n%s\n", sep, sep)
	fmt.Fprintf(&sb, "Generated: %s\n\n", b.GeneratedAt().Format("2006-01-02 15:04:05 MST"))

	sb.WriteString("OVERVIEW\n")
	fmt.Fprintf(&sb, "  Total products scraped : %d\n", b.Scraped())
	fmt.Fprintf(&sb, "  Records dropped        : %d\n", b.Dropped())
	fmt.Fprintf(&sb, "  Records kept           : %d\n", len(b.Records()))
	if ov.Total > 0 {
		fmt.Fprintf(&sb, "  Price range            : $%s - $%s\n", ov.MinPrice.StringFixed(2), ov.MaxPrice.StringFixed(2))
		fmt.Fprintf(&sb, "  Average price          : $%s\n", ov.AvgPrice.StringFixed(2))
	}
	if ov.AvgRating != nil {
		fmt.Fprintf(&sb, "  Average rating         : %.2f/5 (%d rated)\n", *ov.AvgRating, ov.Rated)
	} else {
		sb.WriteString("  Average rating         : n/a\n")
	}
	sb.WriteString("\n")

	sb.WriteString("PRICE CATEGORIES\n")
	summaries := b.Summaries()
	if len(summaries) == 0 {
		sb.WriteString("  No records survived normalization (0 records)\n")
	} else {
		t := newTable()
		t.AppendHeader(table.Row{"Category", "Count", "Avg Price", "Min Price", "Max Price", "Avg Rating"})
		for _, cs := range summaries {
			t.AppendRow(table.Row{
				cs.Category, cs.Count,
				cs.AvgPrice.StringFixed(2), cs.MinPrice.StringFixed(2), cs.MaxPrice.StringFixed(2),
				ratingCell(cs.AvgRating),
			})
		}
		sb.WriteString(t.Render())
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if len(ov.TopByPrice) > 0 {
		fmt.Fprintf(&sb, "TOP %d PRODUCTS BY PRICE\n", len(ov.TopByPrice))
		t := newTable()
		t.AppendHeader(table.Row{"#", "Product", "Price", "Rating", "Category"})
		for i, p := range ov.TopByPrice {
			t.AppendRow(table.Row{i + 1, truncate(p.Name, 40), p.Price.StringFixed(2), ratingCell(p.Rating), p.PriceCategory})
		}
		sb.WriteString(t.Render())
		sb.WriteString("\n\n")
	}

	sb.WriteString("FILES GENERATED\n")
	fmt.Fprintf(&sb, "  - Excel report     : %s\n", XLSXWriter{}.FileName(token))
	fmt.Fprintf(&sb, "  - Power BI dataset : %s\n", CSVWriter{}.FileName(token))
	fmt.Fprintf(&sb, "  - JSON export      : %s\n", JSONWriter{}.FileName(token))
	fmt.Fprintf(&sb, "  - Text summary     : %s\n", SummaryWriter{}.FileName(token))
	sb.WriteString(sep + "\n")
	return sb.String()
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	return t
}

func ratingCell(r *float64) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *r)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
