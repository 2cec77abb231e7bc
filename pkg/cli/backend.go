package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/kmmelissat/analisis-al-instante-api/internal/chart"
	"github.com/kmmelissat/analisis-al-instante-api/internal/dataset"
	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
	"github.com/kmmelissat/analisis-al-instante-api/internal/registry"
	"github.com/kmmelissat/analisis-al-instante-api/internal/service/chartdata"
)

// renderResult is the outcome of one request. Exactly one field is set.
type renderResult struct {
	Response *domain.ChartResponse
	Err      error
}

// backend renders charts either in-process or through a running server.
type backend interface {
	Types(ctx context.Context) ([]chart.TypeInfo, error)
	Describe(ctx context.Context, src *datasetSource) (dataset.Summary, error)
	Render(ctx context.Context, src *datasetSource, reqs []domain.ChartRequest) ([]renderResult, error)
}

type localBackend struct {
	timeout time.Duration
	logger  *slog.Logger
}

func (b *localBackend) Types(context.Context) ([]chart.TypeInfo, error) {
	return chart.Types(), nil
}

func (b *localBackend) service(src *datasetSource) (*chartdata.Service, string, error) {
	ds, err := src.load()
	if err != nil {
		return nil, "", err
	}
	reg := registry.New(1)
	entry, _ := reg.Add(src.Name, ds)
	svc := chartdata.NewService(reg, chart.NewEngine(), chartdata.Config{
		Timeout:          b.timeout,
		BatchConcurrency: 4,
	}, b.logger)
	return svc, entry.ID, nil
}

func (b *localBackend) Describe(_ context.Context, src *datasetSource) (dataset.Summary, error) {
	svc, id, err := b.service(src)
	if err != nil {
		return dataset.Summary{}, err
	}
	return svc.Summary(id)
}

func (b *localBackend) Render(ctx context.Context, src *datasetSource, reqs []domain.ChartRequest) ([]renderResult, error) {
	svc, id, err := b.service(src)
	if err != nil {
		return nil, err
	}
	for i := range reqs {
		reqs[i].FileID = id
	}
	batch := svc.RenderBatch(ctx, reqs)
	out := make([]renderResult, len(batch))
	for i, r := range batch {
		out[i] = renderResult{Response: r.Response, Err: r.Err}
	}
	return out, nil
}

type remoteBackend struct {
	client *Client
}

func (b *remoteBackend) Types(ctx context.Context) ([]chart.TypeInfo, error) {
	return b.client.ChartTypes(ctx)
}

func (b *remoteBackend) Describe(ctx context.Context, src *datasetSource) (dataset.Summary, error) {
	id, err := b.client.Upload(ctx, src)
	if err != nil {
		return dataset.Summary{}, err
	}
	defer b.client.Delete(context.WithoutCancel(ctx), id) //nolint:errcheck
	return b.client.Summary(ctx, id)
}

func (b *remoteBackend) Render(ctx context.Context, src *datasetSource, reqs []domain.ChartRequest) ([]renderResult, error) {
	id, err := b.client.Upload(ctx, src)
	if err != nil {
		return nil, err
	}
	defer b.client.Delete(context.WithoutCancel(ctx), id) //nolint:errcheck

	out := make([]renderResult, len(reqs))
	for i, req := range reqs {
		req.FileID = id
		resp, err := b.client.Render(ctx, req)
		out[i] = renderResult{Response: resp, Err: err}
	}
	return out, nil
}
