// Package pipeline runs extraction, normalization, aggregation and report
// emission in sequence, labelling any fatal failure with its stage.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"scraper-analytics/config"
	"scraper-analytics/models"
	"scraper-analytics/scraper/products"
	"scraper-analytics/services"
	"scraper-analytics/storage"
	"scraper-analytics/utils"
)

// Stage names a pipeline step in failure messages.
type Stage string

const (
	StageExtraction Stage = "extraction"
	StageReport     Stage = "report"
)

// StageError is a fatal failure attributed to one stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Extractor produces the raw records of one run.
type Extractor interface {
	Extract(ctx context.Context) ([]models.RawRecord, error)
}

// Result is what a run produced, including partial output on report failure.
type Result struct {
	Bundle     *models.ReportBundle
	Normalized services.NormalizeResult
	Artifacts  []storage.Artifact
}

// Pipeline wires the four stages together for one run.
type Pipeline struct {
	extractor  Extractor
	normalizer *services.Normalizer
	aggregator *services.Aggregator
	emitter    *storage.Emitter
	topN       int
	logger     *utils.Logger
	now        func() time.Time
}

// New builds a Pipeline from cfg that loads pages through browser.
func New(cfg *config.Config, browser products.Browser, logger *utils.Logger) (*Pipeline, error) {
	extractor, err := products.New(cfg, browser, logger)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		extractor:  extractor,
		normalizer: services.NewNormalizer(logger, cfg.Thresholds(), cfg.StockVocabulary),
		aggregator: services.NewAggregator(logger),
		emitter:    storage.NewEmitter(cfg.OutputDir, logger),
		topN:       cfg.TopProducts,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// Run executes one batch. Extraction failures abort before anything is
// written; report failures are returned after every artifact was attempted.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	raw, err := p.extractor.Extract(ctx)
	if err != nil {
		return nil, &StageError{Stage: StageExtraction, Err: err}
	}

	normalized := p.normalizer.Normalize(raw)
	summaries := p.aggregator.Aggregate(normalized.Records)
	overview := p.aggregator.Overview(normalized.Records, p.topN)

	bundle := models.NewReportBundle(
		normalized.Records, summaries, overview,
		len(raw), normalized.DroppedCount(), p.now(),
	)

	artifacts, err := p.emitter.Emit(bundle)
	result := &Result{Bundle: bundle, Normalized: normalized, Artifacts: artifacts}
	if err != nil {
		return result, &StageError{Stage: StageReport, Err: err}
	}

	p.logger.Info("[pipeline] Run %s complete: %d records, %d dropped, %d artifacts",
		bundle.Token(), len(normalized.Records), normalized.DroppedCount(), len(artifacts))
	return result, nil
}
