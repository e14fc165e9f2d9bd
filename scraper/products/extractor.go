package products

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"scraper-analytics/config"
	"scraper-analytics/models"
	"scraper-analytics/utils"
)

// Extractor loads the configured product page once and reads one RawRecord
// per item element.
type Extractor struct {
	url       string
	ready     ReadyCondition
	timeout   time.Duration
	selectors config.Selectors
	browser   Browser
	logger    *utils.Logger
	now       func() time.Time
}

// New creates an Extractor for the page described by cfg.
func New(cfg *config.Config, browser Browser, logger *utils.Logger) (*Extractor, error) {
	kind, selector, err := config.ParseWaitFor(cfg.WaitFor)
	if err != nil {
		return nil, err
	}
	return &Extractor{
		url:       cfg.TargetURL,
		ready:     ReadyCondition{Kind: kind, Selector: selector},
		timeout:   cfg.NavTimeout(),
		selectors: cfg.Selectors,
		browser:   browser,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Extract fetches the page and returns its items in document order.
// Every failure is an *ExtractionError; there is no partial result.
func (e *Extractor) Extract(ctx context.Context) ([]models.RawRecord, error) {
	e.logger.Info("[extractor] Loading %s (wait: %s, timeout: %v)", e.url, e.ready, e.timeout)

	fetchCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	html, err := e.browser.Fetch(fetchCtx, e.url, e.ready)
	if err != nil {
		return nil, e.classify(fetchCtx, err)
	}

	records, err := ParseItems(html, e.selectors, e.now())
	if err != nil {
		return nil, &ExtractionError{Stage: "extract", URL: e.url, Err: err}
	}
	if len(records) == 0 {
		return nil, &ExtractionError{
			Stage: "extract",
			URL:   e.url,
			Err:   fmt.Errorf("%w for selector %q", ErrNoItems, e.selectors.Item),
		}
	}

	e.logger.Info("[extractor] Extracted %d raw records", len(records))
	return records, nil
}

func (e *Extractor) classify(fetchCtx context.Context, err error) error {
	switch {
	case errors.Is(err, ErrBrowserStart):
		return &ExtractionError{Stage: "launch", URL: e.url, Err: err}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(fetchCtx.Err(), context.DeadlineExceeded):
		return &ExtractionError{
			Stage: "navigate",
			URL:   e.url,
			Err:   fmt.Errorf("%w after %v: %w", ErrNavigationTimeout, e.timeout, err),
		}
	default:
		return &ExtractionError{Stage: "navigate", URL: e.url, Err: err}
	}
}

// ParseItems reads the configured fields from every item element in html.
// Fields whose selector matches nothing are left out of the record.
func ParseItems(html string, sel config.Selectors, scrapedAt time.Time) ([]models.RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	// stable field order keeps debugging output predictable
	names := make([]string, 0, len(sel.Fields))
	for name := range sel.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var records []models.RawRecord
	doc.Find(sel.Item).Each(func(_ int, item *goquery.Selection) {
		fields := make(map[string]string, len(names))
		for _, name := range names {
			if v, ok := readField(item, sel.Fields[name]); ok {
				fields[name] = v
			}
		}
		records = append(records, models.RawRecord{Fields: fields, ScrapedAt: scrapedAt})
	})
	return records, nil
}

func readField(item *goquery.Selection, fs config.FieldSelector) (string, bool) {
	if strings.TrimSpace(fs.Selector) == "" {
		return "", false
	}
	el := item.Find(fs.Selector).First()
	if el.Length() == 0 {
		return "", false
	}
	if fs.Attr != "" {
		if v, ok := el.Attr(fs.Attr); ok && strings.TrimSpace(v) != "" {
			return collapseSpace(v), true
		}
	}
	return collapseSpace(el.Text()), true
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
