// Package api provides the HTTP handlers for the chart data API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kmmelissat/analisis-al-instante-api/internal/chart"
	"github.com/kmmelissat/analisis-al-instante-api/internal/dataset"
	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
	"github.com/kmmelissat/analisis-al-instante-api/internal/middleware"
	"github.com/kmmelissat/analisis-al-instante-api/internal/registry"
	"github.com/kmmelissat/analisis-al-instante-api/internal/service/chartdata"
)

// ArrowStreamContentType selects Arrow IPC stream decoding on dataset upload.
const ArrowStreamContentType = "application/vnd.apache.arrow.stream"

// MaxBatchRequests caps the number of charts in one batch call.
const MaxBatchRequests = 50

// ChartService renders charts and summarises datasets.
type ChartService interface {
	Render(ctx context.Context, req domain.ChartRequest) (*domain.ChartResponse, error)
	RenderBatch(ctx context.Context, reqs []domain.ChartRequest) []chartdata.BatchResult
	Summary(id string) (dataset.Summary, error)
}

// DatasetStore holds uploaded datasets.
type DatasetStore interface {
	Add(name string, ds *dataset.Dataset) (*registry.Entry, string)
	Delete(id string) error
	List() []*registry.Entry
}

// Handler serves the chart data API.
type Handler struct {
	charts   ChartService
	datasets DatasetStore
	maxBody  int64
	logger   *slog.Logger
}

// NewHandler creates a Handler. maxBody caps request bodies; zero disables
// the cap.
func NewHandler(charts ChartService, datasets DatasetStore, maxBody int64, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		charts:   charts,
		datasets: datasets,
		maxBody:  maxBody,
		logger:   logger.With("component", "api"),
	}
}

// Register mounts every route on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.health)
	r.Get("/chart-types", h.chartTypes)
	r.Get("/datasets", h.listDatasets)
	r.Post("/datasets", h.createDataset)
	r.Get("/files/{file_id}", h.getFile)
	r.Delete("/files/{file_id}", h.deleteFile)
	r.Post("/chart-data", h.chartData)
	r.Post("/chart-data/batch", h.chartDataBatch)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "Chart data API is running",
	})
}

func (h *Handler) chartTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"chart_types": chart.Types()})
}

type datasetInfo struct {
	FileID    string                  `json:"file_id"`
	Name      string                  `json:"name,omitempty"`
	Columns   []string                `json:"columns"`
	DataTypes map[string]dataset.Role `json:"data_types"`
	Shape     [2]int                  `json:"shape"`
	CreatedAt time.Time               `json:"created_at"`
}

func infoFromEntry(e *registry.Entry) datasetInfo {
	info := datasetInfo{
		FileID:    e.ID,
		Name:      e.Name,
		Columns:   e.Dataset.Names(),
		DataTypes: make(map[string]dataset.Role, len(e.Dataset.Columns())),
		Shape:     [2]int{e.Dataset.Rows(), len(e.Dataset.Columns())},
		CreatedAt: e.CreatedAt,
	}
	for _, c := range e.Dataset.Columns() {
		info.DataTypes[c.Name] = c.Role
	}
	return info
}

func (h *Handler) listDatasets(w http.ResponseWriter, _ *http.Request) {
	entries := h.datasets.List()
	out := make([]datasetInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, infoFromEntry(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"datasets": out})
}

func (h *Handler) createDataset(w http.ResponseWriter, r *http.Request) {
	body := h.body(w, r)
	name := r.URL.Query().Get("name")

	var (
		ds  *dataset.Dataset
		err error
	)
	if mediaType(r) == ArrowStreamContentType {
		ds, err = dataset.ReadArrowStream(body)
	} else {
		ds, name, err = decodeDocument(body, name)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	entry, evicted := h.datasets.Add(name, ds)
	if evicted != "" {
		h.logger.Info("dataset evicted", "file_id", evicted)
	}
	h.logger.Info("dataset registered", "file_id", entry.ID,
		"rows", ds.Rows(), "columns", len(ds.Columns()),
		"request_id", middleware.RequestIDFromContext(r.Context()))
	writeJSON(w, http.StatusCreated, infoFromEntry(entry))
}

func decodeDocument(body io.Reader, name string) (*dataset.Dataset, string, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, "", err
	}
	doc, err := dataset.DecodeDocument(raw)
	if err != nil {
		return nil, "", err
	}
	if name == "" {
		name = doc.Name
	}
	ds, err := dataset.FromDocument(doc)
	return ds, name, err
}

func (h *Handler) getFile(w http.ResponseWriter, r *http.Request) {
	sum, err := h.charts.Summary(chi.URLParam(r, "file_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *Handler) deleteFile(w http.ResponseWriter, r *http.Request) {
	if err := h.datasets.Delete(chi.URLParam(r, "file_id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) chartData(w http.ResponseWriter, r *http.Request) {
	var req domain.ChartRequest
	if err := decodeJSON(h.body(w, r), &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	resp, err := h.charts.Render(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type batchRequest struct {
	Requests []domain.ChartRequest `json:"requests"`
}

func (h *Handler) chartDataBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(h.body(w, r), &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	switch {
	case len(req.Requests) == 0:
		h.writeError(w, r, domain.ErrInvalidParameter("requests", "requests must not be empty"))
		return
	case len(req.Requests) > MaxBatchRequests:
		h.writeError(w, r, domain.ErrInvalidParameter("requests", "at most %d requests per batch", MaxBatchRequests))
		return
	}

	results := h.charts.RenderBatch(r.Context(), req.Requests)
	out := make([]any, len(results))
	for i, res := range results {
		if res.Err != nil {
			out[i] = errorBodyFromError(res.Err)
			continue
		}
		out[i] = res.Response
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": out})
}

// body applies the configured size cap to the request body.
func (h *Handler) body(w http.ResponseWriter, r *http.Request) io.Reader {
	if h.maxBody <= 0 {
		return r.Body
	}
	return http.MaxBytesReader(w, r.Body, h.maxBody)
}

func decodeJSON(body io.Reader, v any) error {
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return domain.ErrValidation("invalid request body: %v", err)
	}
	return nil
}

func mediaType(r *http.Request) string {
	ct, _, _ := strings.Cut(r.Header.Get("Content-Type"), ";")
	return strings.TrimSpace(strings.ToLower(ct))
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	body := errorBodyFromError(err)
	if body.Code >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "error", err,
			"request_id", middleware.RequestIDFromContext(r.Context()))
	}
	writeJSON(w, body.Code, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
