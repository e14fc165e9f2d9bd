package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"scraper-analytics/models"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "./output", cfg.OutputDir)
	require.Equal(t, 30*time.Second, cfg.NavTimeout())
	require.True(t, cfg.Thresholds().MidRange.Equal(decimal.NewFromInt(50)))
	require.True(t, cfg.Thresholds().Luxury.Equal(decimal.NewFromInt(500)))
	require.Equal(t, ".product-wrapper", cfg.Selectors.Item)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TARGET_URL", "https://shop.example.com/catalog")
	t.Setenv("OUTPUT_DIR", "/tmp/reports")
	t.Setenv("PRICE_THRESHOLDS", "10, 50, 100")
	t.Setenv("NAV_TIMEOUT_MS", "5000")
	t.Setenv("WAIT_FOR", "selector:.product")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "https://shop.example.com/catalog", cfg.TargetURL)
	require.Equal(t, "/tmp/reports", cfg.OutputDir)
	require.Equal(t, 5*time.Second, cfg.NavTimeout())
	require.Equal(t, models.MidRange, cfg.Thresholds().Categorize(decimal.RequireFromString("19.99")))
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraper.yaml")
	data := `
target_url: https://books.example.com/
price_thresholds: ["5", "15", "40"]
selectors:
  item: article.product_pod
  fields:
    price:
      selector: .price_color
stock_vocabulary:
  "in stock": true
  "backorder": false
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "https://books.example.com/", cfg.TargetURL)
	require.Equal(t, "article.product_pod", cfg.Selectors.Item)
	require.Equal(t, ".price_color", cfg.Selectors.Fields[models.FieldPrice].Selector)
	// fields absent from the file keep their defaults
	require.Equal(t, "title", cfg.Selectors.Fields[models.FieldName].Attr)
	require.Len(t, cfg.StockVocabulary, 2)
	require.True(t, cfg.Thresholds().Premium.Equal(decimal.NewFromInt(15)))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"missing url", func(c *Config) { c.TargetURL = " " }, ErrMissingTargetURL},
		{"missing output", func(c *Config) { c.OutputDir = "" }, ErrMissingOutputDir},
		{"zero timeout", func(c *Config) { c.NavTimeoutMs = 0 }, ErrInvalidTimeout},
		{"bad wait", func(c *Config) { c.WaitFor = "domcontentloaded" }, ErrInvalidWaitFor},
		{"empty selector wait", func(c *Config) { c.WaitFor = "selector:" }, ErrInvalidWaitFor},
		{"no item selector", func(c *Config) { c.Selectors.Item = "" }, ErrMissingItemSel},
		{"no vocabulary", func(c *Config) { c.StockVocabulary = nil }, ErrEmptyVocabulary},
		{"unsorted thresholds", func(c *Config) { c.PriceThresholds = []string{"50", "20", "500"} }, models.ErrThresholdsNotSorted},
		{"negative threshold", func(c *Config) { c.PriceThresholds = []string{"-1", "20", "500"} }, models.ErrNegativeThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			require.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestParseWaitFor(t *testing.T) {
	cond, sel, err := ParseWaitFor("selector: .product-wrapper")
	require.NoError(t, err)
	require.Equal(t, "selector", cond)
	require.Equal(t, ".product-wrapper", sel)

	cond, sel, err = ParseWaitFor("load")
	require.NoError(t, err)
	require.Equal(t, "load", cond)
	require.Empty(t, sel)
}
