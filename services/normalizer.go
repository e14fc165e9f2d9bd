package services

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"scraper-analytics/models"
	"scraper-analytics/utils"
)

const defaultName = "Unnamed product"

var (
	// priceRegexp captures the first price value, grouping separators included:
	// "1,200.50", "1 299,00", "1.299,00", ".99"
	priceRegexp = regexp.MustCompile(`\d+(?:[,.]\d+|[ \x{00a0}]\d{3}\b)*|\.\d+`)
	// ratingRegexp captures the first signed number in rating text such as "4.5 out of 5"
	ratingRegexp = regexp.MustCompile(`-?(?:\d+(?:[.,]\d+)?|[.,]\d+)`)
)

// NormalizeResult is the output of one Normalize call.
type NormalizeResult struct {
	Records           []models.ProductRecord
	Dropped           []FieldParseError
	StockUnrecognized []StockTextUnrecognized
}

// DroppedCount returns the number of raw records that did not survive normalization.
func (r NormalizeResult) DroppedCount() int {
	return len(r.Dropped)
}

// Normalizer turns RawRecords into typed ProductRecords.
type Normalizer struct {
	logger     *utils.Logger
	thresholds models.Thresholds
	phrases    []stockPhrase
	now        func() time.Time
}

type stockPhrase struct {
	text    string
	inStock bool
}

// NewNormalizer creates a Normalizer that categorizes prices with thresholds
// and maps availability text through vocabulary.
func NewNormalizer(logger *utils.Logger, thresholds models.Thresholds, vocabulary map[string]bool) *Normalizer {
	phrases := make([]stockPhrase, 0, len(vocabulary))
	for text, inStock := range vocabulary {
		phrases = append(phrases, stockPhrase{text: normaliseStock(text), inStock: inStock})
	}
	// longest phrase first so "not available" wins over "available"
	sort.Slice(phrases, func(i, j int) bool {
		if len(phrases[i].text) != len(phrases[j].text) {
			return len(phrases[i].text) > len(phrases[j].text)
		}
		return phrases[i].text < phrases[j].text
	})

	return &Normalizer{
		logger:     logger,
		thresholds: thresholds,
		phrases:    phrases,
		now:        time.Now,
	}
}

// Normalize converts raw records in order. Records whose price cannot be parsed
// are dropped and reported in the result.
func (n *Normalizer) Normalize(raw []models.RawRecord) NormalizeResult {
	ids := utils.NewIDSet()
	result := NormalizeResult{Records: make([]models.ProductRecord, 0, len(raw))}

	for i, r := range raw {
		name := normaliseText(r.Get(models.FieldName))
		if name == "" || strings.EqualFold(name, "n/a") {
			name = defaultName
		}

		price, ok := parsePrice(r.Get(models.FieldPrice))
		if !ok {
			perr := FieldParseError{Index: i, Name: name, Field: models.FieldPrice, Raw: r.Get(models.FieldPrice)}
			n.logger.Warn("[normalizer] Dropping %v", perr)
			result.Dropped = append(result.Dropped, perr)
			continue
		}

		inStock, known := n.parseStock(r.Get(models.FieldStock))
		if !known {
			serr := StockTextUnrecognized{Index: i, Name: name, Raw: r.Get(models.FieldStock)}
			n.logger.Warn("[normalizer] %v, assuming out of stock", serr)
			result.StockUnrecognized = append(result.StockUnrecognized, serr)
		}

		base := utils.Slugify(name)
		if base == "" {
			base = "product"
		}

		scrapedAt := r.ScrapedAt
		if scrapedAt.IsZero() {
			scrapedAt = n.now()
		}

		result.Records = append(result.Records, models.ProductRecord{
			ID:            ids.Assign(base),
			Name:          name,
			Price:         price,
			Rating:        parseRating(r.Get(models.FieldRating)),
			InStock:       inStock,
			PriceCategory: n.thresholds.Categorize(price),
			ScrapedAt:     scrapedAt.UTC().Truncate(time.Second),
		})
	}

	n.logger.Info("[normalizer] Normalized %d → %d records (dropped %d, unrecognized stock %d)",
		len(raw), len(result.Records), result.DroppedCount(), len(result.StockUnrecognized))
	return result
}

// parsePrice extracts a non-negative price rounded to cents. Text with a
// minus sign ahead of the amount is rejected rather than read unsigned.
// Examples:
//
//	"$1,200.50"  → 1200.50
//	"1 299,00 €" → 1299.00
//	"$.99"       → 0.99
//	"-$5.00"     → not ok
//	"N/A"        → not ok
func parsePrice(raw string) (decimal.Decimal, bool) {
	loc := priceRegexp.FindStringIndex(raw)
	if loc == nil || negativePrefix(raw[:loc[0]]) {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(canonicalNumber(raw[loc[0]:loc[1]]))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d.Round(2), true
}

// negativePrefix reports whether the text before an amount ends in a minus
// sign, skipping currency symbols, codes and spaces: "-$", "USD -", "- ".
func negativePrefix(prefix string) bool {
	prefix = strings.TrimRightFunc(prefix, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsLetter(r) || unicode.Is(unicode.Sc, r)
	})
	return strings.HasSuffix(prefix, "-") || strings.HasSuffix(prefix, "\u2212")
}

// canonicalNumber rewrites a matched amount with "." as the only decimal
// separator and no grouping. When both "," and "." occur the last one is the
// decimal separator; a lone "," followed by exactly three digits groups thousands.
func canonicalNumber(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' {
			return -1
		}
		return r
	}, s)

	lastDot, lastComma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastDot > lastComma {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1)
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 != 3 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	return s
}

// parseRating extracts a 0–5 rating, returning nil when absent or out of range.
// A decimal comma is accepted; a minus sign makes the value out of range.
func parseRating(raw string) *float64 {
	match := ratingRegexp.FindString(raw)
	if match == "" {
		return nil
	}
	val, err := strconv.ParseFloat(strings.Replace(match, ",", ".", 1), 64)
	if err != nil || val < 0 || val > 5 {
		return nil
	}
	return &val
}

// parseStock maps availability text onto in_stock. Empty text is treated as
// out of stock without a warning; known reports whether non-empty text matched.
func (n *Normalizer) parseStock(raw string) (inStock, known bool) {
	text := normaliseStock(raw)
	if text == "" {
		return false, true
	}
	for _, p := range n.phrases {
		if text == p.text {
			return p.inStock, true
		}
	}
	for _, p := range n.phrases {
		if strings.Contains(text, p.text) {
			return p.inStock, true
		}
	}
	return false, false
}

func normaliseStock(s string) string {
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		if r == '-' || r == '_' || r == '!' || r == '.' {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
