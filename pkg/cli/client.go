package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kmmelissat/analisis-al-instante-api/internal/chart"
	"github.com/kmmelissat/analisis-al-instante-api/internal/dataset"
	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
)

// Client talks to a running chart data API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a Client for baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response from the API.
type APIError struct {
	HTTPStatus int
	Code       string
	Message    string
	Field      string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (HTTP %d): %s", e.HTTPStatus, e.Message)
}

// Do sends a request. A nil body sends no payload.
func (c *Client) Do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// CheckError returns an *APIError for non-2xx responses. The body is
// consumed and closed in that case.
func CheckError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer resp.Body.Close() //nolint:errcheck
	raw, _ := io.ReadAll(resp.Body)

	apiErr := &APIError{HTTPStatus: resp.StatusCode}
	var body struct {
		Error   string `json:"error"`
		Detail  string `json:"detail"`
		Message string `json:"message"`
		Field   string `json:"field"`
	}
	if json.Unmarshal(raw, &body) == nil {
		apiErr.Code, apiErr.Field = body.Error, body.Field
		apiErr.Message = body.Detail
		if apiErr.Message == "" {
			apiErr.Message = body.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}

// doJSON sends body and decodes a JSON response into out. out may be nil.
func (c *Client) doJSON(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	resp, err := c.Do(ctx, method, path, contentType, body)
	if err != nil {
		return err
	}
	if err := CheckError(resp); err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// ChartTypes lists the chart types the server supports.
func (c *Client) ChartTypes(ctx context.Context) ([]chart.TypeInfo, error) {
	var out struct {
		ChartTypes []chart.TypeInfo `json:"chart_types"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/chart-types", "", nil, &out)
	return out.ChartTypes, err
}

// Upload registers a dataset and returns its file id.
func (c *Client) Upload(ctx context.Context, src *datasetSource) (string, error) {
	var out struct {
		FileID string `json:"file_id"`
	}
	path := "/datasets"
	if src.Name != "" {
		path += "?name=" + url.QueryEscape(src.Name)
	}
	err := c.doJSON(ctx, http.MethodPost, path, src.ContentType, bytes.NewReader(src.Body), &out)
	return out.FileID, err
}

// Delete removes a dataset.
func (c *Client) Delete(ctx context.Context, fileID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/files/"+fileID, "", nil, nil)
}

// Summary fetches a dataset summary.
func (c *Client) Summary(ctx context.Context, fileID string) (dataset.Summary, error) {
	var out dataset.Summary
	err := c.doJSON(ctx, http.MethodGet, "/files/"+fileID, "", nil, &out)
	return out, err
}

// Render renders one chart.
func (c *Client) Render(ctx context.Context, req domain.ChartRequest) (*domain.ChartResponse, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	var out domain.ChartResponse
	if err := c.doJSON(ctx, http.MethodPost, "/chart-data", "application/json", bytes.NewReader(raw), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
