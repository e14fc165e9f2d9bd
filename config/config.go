package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"scraper-analytics/models"
)

// Configuration validation errors.
var (
	ErrMissingTargetURL = errors.New("target_url is required")
	ErrMissingOutputDir = errors.New("output_dir is required")
	ErrInvalidTimeout   = errors.New("nav_timeout_ms must be positive")
	ErrInvalidWaitFor   = errors.New("wait_for must be networkidle, load or selector:<css>")
	ErrMissingItemSel   = errors.New("selectors.item is required")
	ErrEmptyVocabulary  = errors.New("stock_vocabulary must not be empty")
)

// FieldSelector locates one raw field inside an item element.
// When Attr is set the attribute value is read, falling back to the element text.
type FieldSelector struct {
	Selector string `yaml:"selector"`
	Attr     string `yaml:"attr"`
}

// Selectors describes where product fields live on the target page.
type Selectors struct {
	Item   string                   `yaml:"item"`
	Fields map[string]FieldSelector `yaml:"fields"`
}

// Config holds all application configuration.
type Config struct {
	TargetURL       string          `yaml:"target_url"`
	OutputDir       string          `yaml:"output_dir"`
	PriceThresholds []string        `yaml:"price_thresholds"`
	NavTimeoutMs    int             `yaml:"nav_timeout_ms"`
	WaitFor         string          `yaml:"wait_for"`
	Selectors       Selectors       `yaml:"selectors"`
	StockVocabulary map[string]bool `yaml:"stock_vocabulary"`
	TopProducts     int             `yaml:"top_products"`
	ChromeBin       string          `yaml:"chrome_bin"`
	LogLevel        string          `yaml:"log_level"`

	thresholds models.Thresholds
}

// Default returns the configuration used when nothing is overridden.
// It targets the webscraper.io e-commerce test page.
func Default() *Config {
	return &Config{
		TargetURL:       "https://webscraper.io/test-sites/e-commerce/allinone",
		OutputDir:       "./output",
		PriceThresholds: []string{"50", "200", "500"},
		NavTimeoutMs:    30000,
		WaitFor:         "networkidle",
		Selectors: Selectors{
			Item: ".product-wrapper",
			Fields: map[string]FieldSelector{
				models.FieldName:        {Selector: ".title", Attr: "title"},
				models.FieldPrice:       {Selector: ".price"},
				models.FieldRating:      {Selector: ".ratings p[data-rating]", Attr: "data-rating"},
				models.FieldStock:       {Selector: ".availability, .stock"},
				models.FieldDescription: {Selector: ".description"},
				models.FieldReviews:     {Selector: ".ratings .review-count"},
			},
		},
		StockVocabulary: map[string]bool{
			"in stock":      true,
			"instock":       true,
			"available":     true,
			"out of stock":  false,
			"outofstock":    false,
			"sold out":      false,
			"unavailable":   false,
			"not available": false,
		},
		TopProducts: 5,
		LogLevel:    "info",
	}
}

// Load builds the configuration from defaults, an optional YAML file, the
// .env file and environment variables, in increasing order of precedence.
// configFile may be empty, in which case CONFIG_FILE is consulted.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := Default()

	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
	}
	if configFile != "" {
		if err := cfg.mergeFile(configFile); err != nil {
			return nil, err
		}
	}

	cfg.TargetURL = getEnv("TARGET_URL", cfg.TargetURL)
	cfg.OutputDir = getEnv("OUTPUT_DIR", cfg.OutputDir)
	cfg.NavTimeoutMs = getEnvInt("NAV_TIMEOUT_MS", cfg.NavTimeoutMs)
	cfg.WaitFor = getEnv("WAIT_FOR", cfg.WaitFor)
	cfg.ChromeBin = getEnv("CHROME_BIN", cfg.ChromeBin)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.TopProducts = getEnvInt("TOP_PRODUCTS", cfg.TopProducts)
	if val := os.Getenv("PRICE_THRESHOLDS"); val != "" {
		cfg.PriceThresholds = splitList(val)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile overlays the YAML file at path onto cfg. Field selectors are
// merged key by key; a vocabulary in the file replaces the default one.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	if fileCfg.TargetURL != "" {
		c.TargetURL = fileCfg.TargetURL
	}
	if fileCfg.OutputDir != "" {
		c.OutputDir = fileCfg.OutputDir
	}
	if len(fileCfg.PriceThresholds) > 0 {
		c.PriceThresholds = fileCfg.PriceThresholds
	}
	if fileCfg.NavTimeoutMs != 0 {
		c.NavTimeoutMs = fileCfg.NavTimeoutMs
	}
	if fileCfg.WaitFor != "" {
		c.WaitFor = fileCfg.WaitFor
	}
	if fileCfg.Selectors.Item != "" {
		c.Selectors.Item = fileCfg.Selectors.Item
	}
	for field, sel := range fileCfg.Selectors.Fields {
		c.Selectors.Fields[field] = sel
	}
	if len(fileCfg.StockVocabulary) > 0 {
		c.StockVocabulary = fileCfg.StockVocabulary
	}
	if fileCfg.TopProducts != 0 {
		c.TopProducts = fileCfg.TopProducts
	}
	if fileCfg.ChromeBin != "" {
		c.ChromeBin = fileCfg.ChromeBin
	}
	if fileCfg.LogLevel != "" {
		c.LogLevel = fileCfg.LogLevel
	}
	return nil
}

// Validate checks the configuration and caches the parsed thresholds.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.TargetURL) == "" {
		return ErrMissingTargetURL
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return ErrMissingOutputDir
	}
	if c.NavTimeoutMs <= 0 {
		return ErrInvalidTimeout
	}
	if _, _, err := ParseWaitFor(c.WaitFor); err != nil {
		return err
	}
	if strings.TrimSpace(c.Selectors.Item) == "" {
		return ErrMissingItemSel
	}
	if len(c.StockVocabulary) == 0 {
		return ErrEmptyVocabulary
	}

	t, err := models.ParseThresholds(c.PriceThresholds)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.thresholds = t
	return nil
}

// Thresholds returns the validated price-category boundaries.
func (c *Config) Thresholds() models.Thresholds {
	return c.thresholds
}

// NavTimeout returns the navigation timeout as a duration.
func (c *Config) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutMs) * time.Millisecond
}

// ParseWaitFor splits a wait_for value into its condition and optional selector.
func ParseWaitFor(s string) (condition, selector string, err error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "networkidle", s == "load":
		return s, "", nil
	case strings.HasPrefix(s, "selector:"):
		sel := strings.TrimSpace(strings.TrimPrefix(s, "selector:"))
		if sel == "" {
			return "", "", ErrInvalidWaitFor
		}
		return "selector", sel, nil
	default:
		return "", "", ErrInvalidWaitFor
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
