// Package chartdata serves chart requests against registered datasets with
// per-call deadlines and bounded batch concurrency.
package chartdata

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kmmelissat/analisis-al-instante-api/internal/dataset"
	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
)

// DatasetStore resolves file ids to datasets.
type DatasetStore interface {
	Dataset(id string) (*dataset.Dataset, error)
}

// Renderer builds chart data from a dataset.
type Renderer interface {
	Render(ds *dataset.Dataset, chartType domain.ChartType, params map[string]any) (*domain.ChartResult, error)
}

// Config bounds the work a single call may do.
type Config struct {
	// Timeout caps one render; zero disables the service-level deadline.
	Timeout time.Duration
	// BatchConcurrency caps parallel renders within a batch.
	BatchConcurrency int
}

// Service renders chart requests.
type Service struct {
	store    DatasetStore
	renderer Renderer
	cfg      Config
	logger   *slog.Logger
}

// NewService creates a Service.
func NewService(store DatasetStore, renderer Renderer, cfg Config, logger *slog.Logger) *Service {
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		renderer: renderer,
		cfg:      cfg,
		logger:   logger.With("component", "chartdata"),
	}
}

// Render resolves the dataset and renders one chart. It returns the context
// error if ctx ends before the render finishes.
func (s *Service) Render(ctx context.Context, req domain.ChartRequest) (*domain.ChartResponse, error) {
	start := time.Now()
	ct, err := domain.ParseChartType(req.ChartType)
	if err != nil {
		return nil, err
	}
	ds, err := s.store.Dataset(req.FileID)
	if err != nil {
		return nil, err
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	type outcome struct {
		res *domain.ChartResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := s.renderer.Render(ds, ct, req.Parameters)
		done <- outcome{res, err}
	}()

	select {
	case <-ctx.Done():
		s.logger.Warn("chart render abandoned", "chart_type", ct, "file_id", req.FileID,
			"duration", time.Since(start), "error", ctx.Err())
		return nil, fmt.Errorf("render %s chart: %w", ct, ctx.Err())
	case out := <-done:
		if out.err != nil {
			s.logger.Warn("chart render failed", "chart_type", ct, "file_id", req.FileID,
				"duration", time.Since(start), "error", out.err)
			return nil, out.err
		}
		s.logger.Debug("chart rendered", "chart_type", ct, "file_id", req.FileID,
			"points", len(out.res.Data), "duration", time.Since(start))
		return &domain.ChartResponse{
			ChartType: string(ct),
			Data:      out.res.Data,
			Metadata:  out.res.Metadata,
			Title:     domain.ChartTitle(ct, req.Parameters),
		}, nil
	}
}

// BatchResult is the outcome of one request in a batch. Exactly one of
// Response and Err is set.
type BatchResult struct {
	Response *domain.ChartResponse
	Err      error
}

// RenderBatch renders every request with bounded concurrency. A failing
// request does not affect the others; results keep request order.
func (s *Service) RenderBatch(ctx context.Context, reqs []domain.ChartRequest) []BatchResult {
	results := make([]BatchResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BatchConcurrency)

	for i := range reqs {
		g.Go(func() error {
			resp, err := s.Render(gctx, reqs[i])
			results[i] = BatchResult{Response: resp, Err: err}
			return nil // one failed chart never cancels its siblings
		})
	}
	_ = g.Wait()

	s.logger.Debug("chart batch rendered", "requests", len(reqs))
	return results
}

// Summary returns the summary of the dataset registered under id.
func (s *Service) Summary(id string) (dataset.Summary, error) {
	ds, err := s.store.Dataset(id)
	if err != nil {
		return dataset.Summary{}, err
	}
	return dataset.Summarize(ds), nil
}
