package storage

import (
	"fmt"
	"io"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"scraper-analytics/models"
)

// Sheet names of the spreadsheet artifact.
const (
	SheetProducts = "Product Data"
	SheetSummary  = "Summary Statistics"
	SheetAnalysis = "Price Analysis"
)

const (
	headerFill      = "366092"
	headerFontColor = "FFFFFF"
	maxColumnWidth  = 50
)

// XLSXWriter writes the formatted three-sheet spreadsheet.
type XLSXWriter struct{}

func (XLSXWriter) Kind() string { return "spreadsheet" }

func (XLSXWriter) FileName(token string) string {
	return "product_analysis_" + token + ".xlsx"
}

type xlsxStyles struct {
	header  int
	heading int
	price   int
}

func (XLSXWriter) Write(w io.Writer, bundle *models.ReportBundle) error {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newXLSXStyles(f)
	if err != nil {
		return err
	}

	if err := f.SetSheetName("Sheet1", SheetProducts); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}
	for _, name := range []string{SheetSummary, SheetAnalysis} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("xlsx: add sheet %q: %w", name, err)
		}
	}

	if err := writeProductSheet(f, styles, bundle.Records()); err != nil {
		return err
	}
	if err := writeSummarySheet(f, styles, bundle.Summaries()); err != nil {
		return err
	}
	if err := writeAnalysisSheet(f, styles, bundle); err != nil {
		return err
	}

	stamp := bundle.GeneratedAt().Format(time.RFC3339)
	if err := f.SetDocProps(&excelize.DocProperties{
		Created:  stamp,
		Modified: stamp,
		Creator:  "scraper-analytics",
		Title:    "Product analysis " + bundle.Token(),
	}); err != nil {
		return fmt.Errorf("xlsx: doc props: %w", err)
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}

func newXLSXStyles(f *excelize.File) (xlsxStyles, error) {
	var s xlsxStyles
	var err error

	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: headerFontColor},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerFill}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return s, fmt.Errorf("xlsx: header style: %w", err)
	}

	s.heading, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12, Color: headerFill},
	})
	if err != nil {
		return s, fmt.Errorf("xlsx: heading style: %w", err)
	}

	// built-in number format 2 is "0.00"
	s.price, err = f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return s, fmt.Errorf("xlsx: price style: %w", err)
	}
	return s, nil
}

// sheetWriter appends rows to one sheet and tracks column display widths.
type sheetWriter struct {
	f      *excelize.File
	name   string
	row    int
	widths []int
}

func newSheetWriter(f *excelize.File, name string) *sheetWriter {
	return &sheetWriter{f: f, name: name}
}

func (s *sheetWriter) append(style int, values ...interface{}) error {
	s.row++
	if len(values) == 0 {
		return nil
	}

	start, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	if err := s.f.SetSheetRow(s.name, start, &values); err != nil {
		return fmt.Errorf("xlsx: %s row %d: %w", s.name, s.row, err)
	}
	if style != 0 {
		end, err := excelize.CoordinatesToCellName(len(values), s.row)
		if err != nil {
			return err
		}
		if err := s.f.SetCellStyle(s.name, start, end, style); err != nil {
			return fmt.Errorf("xlsx: %s style row %d: %w", s.name, s.row, err)
		}
	}

	for i, v := range values {
		for len(s.widths) <= i {
			s.widths = append(s.widths, 0)
		}
		if w := runewidth.StringWidth(fmt.Sprint(v)); w > s.widths[i] {
			s.widths[i] = w
		}
	}
	return nil
}

// heading writes a single styled cell that does not widen its column.
func (s *sheetWriter) heading(style int, text string) error {
	s.row++
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	if err := s.f.SetCellValue(s.name, cell, text); err != nil {
		return fmt.Errorf("xlsx: %s row %d: %w", s.name, s.row, err)
	}
	return s.f.SetCellStyle(s.name, cell, cell, style)
}

// styleColumn applies style to column col from row `from` to the last row written.
func (s *sheetWriter) styleColumn(col, from, style int) error {
	if s.row < from {
		return nil
	}
	start, err := excelize.CoordinatesToCellName(col, from)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(col, s.row)
	if err != nil {
		return err
	}
	return s.f.SetCellStyle(s.name, start, end, style)
}

// autosize fits every column to its widest value, capped at maxColumnWidth.
func (s *sheetWriter) autosize() error {
	for i, w := range s.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := s.f.SetColWidth(s.name, col, col, float64(min(w+2, maxColumnWidth))); err != nil {
			return fmt.Errorf("xlsx: %s width %s: %w", s.name, col, err)
		}
	}
	return nil
}

func ratingValue(r *float64) interface{} {
	if r == nil {
		return ""
	}
	return *r
}

func writeProductSheet(f *excelize.File, st xlsxStyles, records []models.ProductRecord) error {
	sw := newSheetWriter(f, SheetProducts)

	header := make([]interface{}, len(recordColumns))
	for i, c := range recordColumns {
		header[i] = c
	}
	if err := sw.append(st.header, header...); err != nil {
		return err
	}

	for _, p := range records {
		if err := sw.append(0,
			p.ID, p.Name, p.Price.InexactFloat64(), ratingValue(p.Rating),
			p.InStock, string(p.PriceCategory), formatTime(p.ScrapedAt),
		); err != nil {
			return err
		}
	}
	if err := sw.styleColumn(3, 2, st.price); err != nil {
		return err
	}
	return sw.autosize()
}

func writeSummarySheet(f *excelize.File, st xlsxStyles, summaries []models.CategorySummary) error {
	sw := newSheetWriter(f, SheetSummary)

	if err := sw.append(st.header, "Category", "Product Count", "Avg Price", "Min Price", "Max Price", "Avg Rating"); err != nil {
		return err
	}
	for _, cs := range summaries {
		if err := sw.append(0,
			string(cs.Category), cs.Count,
			cs.AvgPrice.InexactFloat64(), cs.MinPrice.InexactFloat64(), cs.MaxPrice.InexactFloat64(),
			ratingValue(cs.AvgRating),
		); err != nil {
			return err
		}
	}
	for col := 3; col <= 5; col++ {
		if err := sw.styleColumn(col, 2, st.price); err != nil {
			return err
		}
	}
	return sw.autosize()
}

// writeAnalysisSheet lists records under one heading row per category, with
// each price compared to its category average.
func writeAnalysisSheet(f *excelize.File, st xlsxStyles, bundle *models.ReportBundle) error {
	sw := newSheetWriter(f, SheetAnalysis)
	summaries := bundle.Summaries()

	if len(summaries) == 0 {
		if err := sw.heading(st.heading, "No records (0 products)"); err != nil {
			return err
		}
		return sw.autosize()
	}

	byCategory := make(map[models.PriceCategory][]models.ProductRecord)
	for _, p := range bundle.Records() {
		byCategory[p.PriceCategory] = append(byCategory[p.PriceCategory], p)
	}

	hundred := decimal.NewFromInt(100)
	for i, cs := range summaries {
		if i > 0 {
			if err := sw.append(0); err != nil {
				return err
			}
		}
		heading := fmt.Sprintf("%s (%d products, avg $%s)", cs.Category, cs.Count, cs.AvgPrice.StringFixed(2))
		if err := sw.heading(st.heading, heading); err != nil {
			return err
		}
		if err := sw.append(st.header, "id", "name", "price", "rating", "vs_category_avg_pct"); err != nil {
			return err
		}
		for _, p := range byCategory[cs.Category] {
			pct := decimal.Zero
			if !cs.AvgPrice.IsZero() {
				pct = p.Price.Sub(cs.AvgPrice).Div(cs.AvgPrice).Mul(hundred).Round(2)
			}
			if err := sw.append(0, p.ID, p.Name, p.Price.InexactFloat64(), ratingValue(p.Rating), pct.InexactFloat64()); err != nil {
				return err
			}
		}
	}
	return sw.autosize()
}
