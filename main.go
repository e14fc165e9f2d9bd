package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"

	"scraper-analytics/config"
	"scraper-analytics/pipeline"
	"scraper-analytics/scraper/products"
	"scraper-analytics/storage"
	"scraper-analytics/utils"
)

// options are command-line overrides applied on top of config.Load.
type options struct {
	ConfigFile string `short:"c" long:"config" description:"YAML configuration file (defaults to $CONFIG_FILE)"`
	URL        string `long:"url" description:"Product listing page to scrape"`
	OutputDir  string `short:"o" long:"output" description:"Directory for the generated reports"`
	TimeoutMs  int    `long:"timeout" description:"Navigation timeout in milliseconds"`
	WaitFor    string `long:"wait-for" description:"Readiness condition: networkidle, load or selector:<css>"`
	LogLevel   string `long:"log-level" description:"Minimum log level: debug, info, warn or error"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config stage failed: %v\n", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(utils.ParseLevel(cfg.LogLevel))
	logger.Info("=== Product analytics run starting ===")
	logger.Info("Config: url=%s | output=%s | thresholds=%s | wait=%s | timeout=%v",
		cfg.TargetURL, cfg.OutputDir, cfg.Thresholds(), cfg.WaitFor, cfg.NavTimeout())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := pipeline.New(cfg, products.NewChromeBrowser(cfg.ChromeBin, logger), logger)
	if err != nil {
		logger.Error("config stage failed: %v", err)
		os.Exit(1)
	}

	res, err := p.Run(ctx)
	if err != nil {
		reportFailure(logger, err)
		stop()
		os.Exit(1)
	}

	fmt.Println(storage.RenderSummary(res.Bundle))
	for _, a := range res.Artifacts {
		logger.Info("%-8s -> %s", a.Kind, a.Path)
	}
}

func loadConfig(opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, err
	}

	overridden := false
	if opts.URL != "" {
		cfg.TargetURL, overridden = opts.URL, true
	}
	if opts.OutputDir != "" {
		cfg.OutputDir, overridden = opts.OutputDir, true
	}
	if opts.TimeoutMs != 0 {
		cfg.NavTimeoutMs, overridden = opts.TimeoutMs, true
	}
	if opts.WaitFor != "" {
		cfg.WaitFor, overridden = opts.WaitFor, true
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	if overridden {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// reportFailure logs the failing stage, and for report failures every
// artifact that could not be written.
func reportFailure(logger *utils.Logger, err error) {
	var stageErr *pipeline.StageError
	if !errors.As(err, &stageErr) {
		logger.Error("run failed: %v", err)
		return
	}

	logger.Error("%s stage failed", stageErr.Stage)

	var joined interface{ Unwrap() []error }
	if errors.As(stageErr.Err, &joined) {
		for _, e := range joined.Unwrap() {
			logger.Error("  %v", e)
		}
		return
	}
	logger.Error("  %v", stageErr.Err)
}
