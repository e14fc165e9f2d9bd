package products

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"scraper-analytics/config"
	"scraper-analytics/models"
	"scraper-analytics/utils"
)

const catalogPage = `<html><body>
<div class="row">
  <div class="col-md-4"><div class="thumbnail product-wrapper">
    <div class="caption">
      <h4 class="price">$295.99</h4>
      <h4><a href="/product/1" class="title" title="Asus VivoBook X441NA-GA190">Asus VivoBook X4...</a></h4>
      <p class="description">Asus VivoBook X441NA-GA190 Chocolate Black, 14", Celeron N3450</p>
      <p class="availability">In stock</p>
    </div>
    <div class="ratings">
      <p class="review-count">14 reviews</p>
      <p data-rating="3"><span class="glyphicon glyphicon-star"></span></p>
    </div>
  </div></div>
  <div class="col-md-4"><div class="thumbnail product-wrapper">
    <div class="caption">
      <h4 class="price">$24.99</h4>
      <h4><a href="/product/2" class="title">Nokia   123</a></h4>
    </div>
  </div></div>
</div>
</body></html>`

type staticBrowser struct {
	html  string
	calls int
}

func (b *staticBrowser) Fetch(_ context.Context, _ string, _ ReadyCondition) (string, error) {
	b.calls++
	return b.html, nil
}

// blockingBrowser never becomes ready and only returns when ctx is done.
type blockingBrowser struct{}

func (blockingBrowser) Fetch(ctx context.Context, _ string, _ ReadyCondition) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

type failingBrowser struct{ err error }

func (b failingBrowser) Fetch(context.Context, string, ReadyCondition) (string, error) {
	return "", b.err
}

func newTestExtractor(t *testing.T, b Browser, modify func(*config.Config)) *Extractor {
	t.Helper()
	cfg := config.Default()
	if modify != nil {
		modify(cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}
	e, err := New(cfg, b, utils.Discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestExtractReadsFields(t *testing.T) {
	b := &staticBrowser{html: catalogPage}
	e := newTestExtractor(t, b, nil)
	fixed := time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)
	e.now = func() time.Time { return fixed }

	records, err := e.Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if b.calls != 1 {
		t.Errorf("browser calls: got %d, want 1", b.calls)
	}
	if len(records) != 2 {
		t.Fatalf("records: got %d, want 2", len(records))
	}

	first := records[0]
	checks := map[string]string{
		models.FieldName:    "Asus VivoBook X441NA-GA190",
		models.FieldPrice:   "$295.99",
		models.FieldRating:  "3",
		models.FieldStock:   "In stock",
		models.FieldReviews: "14 reviews",
	}
	for field, want := range checks {
		if got := first.Get(field); got != want {
			t.Errorf("record[0] %s: got %q, want %q", field, got, want)
		}
	}
	if !first.ScrapedAt.Equal(fixed) {
		t.Errorf("ScrapedAt: got %v, want %v", first.ScrapedAt, fixed)
	}

	second := records[1]
	if got := second.Get(models.FieldName); got != "Nokia 123" {
		t.Errorf("title attr missing should fall back to text: got %q", got)
	}
	if _, ok := second.Fields[models.FieldRating]; ok {
		t.Error("absent rating element should leave the field out")
	}
}

func TestExtractZeroItems(t *testing.T) {
	e := newTestExtractor(t, &staticBrowser{html: "<html><body><p>maintenance</p></body></html>"}, nil)

	_, err := e.Extract(context.Background())

	var extErr *ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected *ExtractionError, got %v", err)
	}
	if extErr.Stage != "extract" {
		t.Errorf("stage: got %q, want extract", extErr.Stage)
	}
	if !errors.Is(err, ErrNoItems) {
		t.Errorf("expected ErrNoItems, got %v", err)
	}
}

func TestExtractNavigationTimeout(t *testing.T) {
	e := newTestExtractor(t, blockingBrowser{}, func(c *config.Config) { c.NavTimeoutMs = 20 })

	start := time.Now()
	_, err := e.Extract(context.Background())

	if !errors.Is(err, ErrNavigationTimeout) {
		t.Fatalf("expected ErrNavigationTimeout, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("timeout should wrap context.DeadlineExceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Extract blocked for %v, want bounded by the timeout", elapsed)
	}
}

func TestExtractBrowserStartFailure(t *testing.T) {
	e := newTestExtractor(t, failingBrowser{err: fmt.Errorf("%w: exec: not found", ErrBrowserStart)}, nil)

	_, err := e.Extract(context.Background())

	var extErr *ExtractionError
	if !errors.As(err, &extErr) || extErr.Stage != "launch" {
		t.Fatalf("expected launch ExtractionError, got %v", err)
	}
}

func TestExtractNavigationFailure(t *testing.T) {
	e := newTestExtractor(t, failingBrowser{err: errors.New("net::ERR_NAME_NOT_RESOLVED")}, nil)

	_, err := e.Extract(context.Background())

	var extErr *ExtractionError
	if !errors.As(err, &extErr) || extErr.Stage != "navigate" {
		t.Fatalf("expected navigate ExtractionError, got %v", err)
	}
	if errors.Is(err, ErrNavigationTimeout) {
		t.Error("a plain navigation failure is not a timeout")
	}
}

func TestNewUsesSelectorReadiness(t *testing.T) {
	e := newTestExtractor(t, &staticBrowser{}, func(c *config.Config) { c.WaitFor = "selector:.product-wrapper" })

	if e.ready.Kind != ReadySelector || e.ready.Selector != ".product-wrapper" {
		t.Errorf("ready: got %+v", e.ready)
	}
}
