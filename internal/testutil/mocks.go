// Package testutil provides shared mock implementations of the chart
// service's dependencies for use in tests across the codebase. This follows
// the Go convention of a shared test utility package (like net/http/httptest).
package testutil

import (
	"sync/atomic"
	"testing"

	"github.com/kmmelissat/analisis-al-instante-api/internal/dataset"
	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
)

// === Renderer Mock ===

// MockRenderer implements chartdata.Renderer for testing.
type MockRenderer struct {
	RenderFn func(ds *dataset.Dataset, ct domain.ChartType, params map[string]any) (*domain.ChartResult, error)
	calls    atomic.Int32
}

// Render implements the interface method for testing.
func (m *MockRenderer) Render(ds *dataset.Dataset, ct domain.ChartType, params map[string]any) (*domain.ChartResult, error) {
	m.calls.Add(1)
	if m.RenderFn != nil {
		return m.RenderFn(ds, ct, params)
	}
	panic("unexpected call to MockRenderer.Render")
}

// Calls reports how many times Render ran.
func (m *MockRenderer) Calls() int { return int(m.calls.Load()) }

// BlockingRenderer returns a renderer that blocks every call until release
// is closed, then returns an empty result.
func BlockingRenderer(release <-chan struct{}) *MockRenderer {
	return &MockRenderer{
		RenderFn: func(*dataset.Dataset, domain.ChartType, map[string]any) (*domain.ChartResult, error) {
			<-release
			return &domain.ChartResult{}, nil
		},
	}
}

// === Dataset Store Mock ===

// MockDatasetStore implements chartdata.DatasetStore for testing.
type MockDatasetStore struct {
	DatasetFn func(id string) (*dataset.Dataset, error)
}

// Dataset implements the interface method for testing.
func (m *MockDatasetStore) Dataset(id string) (*dataset.Dataset, error) {
	if m.DatasetFn != nil {
		return m.DatasetFn(id)
	}
	panic("unexpected call to MockDatasetStore.Dataset")
}

// StaticDatasets returns a store serving the given datasets by id. Unknown
// ids produce the registry's not-found error.
func StaticDatasets(byID map[string]*dataset.Dataset) *MockDatasetStore {
	return &MockDatasetStore{
		DatasetFn: func(id string) (*dataset.Dataset, error) {
			if ds, ok := byID[id]; ok {
				return ds, nil
			}
			return nil, domain.ErrNotFound("File %s not found", id)
		},
	}
}

// === Fixtures ===

// SalesDataset returns the three-row region/amt dataset used across tests:
// North 100, South 50, North 25.
func SalesDataset(tb testing.TB) *dataset.Dataset {
	tb.Helper()
	ds, err := dataset.New(
		dataset.Categorical("region", []string{"North", "South", "North"}, nil),
		dataset.Numeric("amt", []float64{100, 50, 25}, nil),
	)
	if err != nil {
		tb.Fatalf("build sales dataset: %v", err)
	}
	return ds
}
