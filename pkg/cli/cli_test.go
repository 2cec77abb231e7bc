package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmmelissat/analisis-al-instante-api/internal/app"
	"github.com/kmmelissat/analisis-al-instante-api/internal/config"
	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
)

const salesYAML = `name: sales
columns:
  - name: region
    role: categorical
    values: [North, South, North]
  - name: amt
    role: numeric
    values: [100, 50, 25]
`

// isolate points HOME at a temp dir and clears CLI environment overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("CHARTS_HOST", "")
	t.Setenv("CHARTS_OUTPUT", "")
	t.Setenv("CHARTS_TIMEOUT", "")
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTypes(t *testing.T) {
	isolate(t)

	out, err := run(t, "types")
	require.NoError(t, err)
	var types []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &types))
	assert.Len(t, types, len(domain.ChartTypes()))

	out, err = run(t, "types", "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "TYPE")
	assert.Contains(t, out, "stacked_bar")
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)

	t.Setenv("CHARTS_OUTPUT", "table")
	out, err := run(t, "types")
	require.NoError(t, err)
	assert.Contains(t, out, "TYPE")

	out, err = run(t, "types", "-o", "json")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)), "flag must win over environment")

	t.Setenv("CHARTS_TIMEOUT", "soon")
	_, err = run(t, "types")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHARTS_TIMEOUT")
}

func TestRender_Local(t *testing.T) {
	dir := isolate(t)
	data := writeFile(t, dir, "sales.yaml", salesYAML)

	out, err := run(t, "render", "-d", data, "-t", "bar", "--param", "x_axis=region", "--param", "y_axis=amt")
	require.NoError(t, err)

	var resp domain.ChartResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "Bar Chart - region vs amt", resp.Title)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "North", resp.Data[0]["region"])
	assert.InDelta(t, 125, resp.Data[0]["amt"], 1e-9)
}

func TestRender_TableOutput(t *testing.T) {
	dir := isolate(t)
	data := writeFile(t, dir, "sales.yaml", salesYAML)

	out, err := run(t, "render", "-o", "table", "-d", data, "-t", "pie", "--param", "x_axis=region", "--param", "y_axis=amt")
	require.NoError(t, err)
	assert.Contains(t, out, "Pie Chart - region vs amt")
	assert.Contains(t, out, "LABEL")
	assert.Contains(t, out, "total_points:")
}

func TestRender_RequestFileWithOverrides(t *testing.T) {
	dir := isolate(t)
	data := writeFile(t, dir, "sales.yaml", salesYAML)
	req := writeFile(t, dir, "req.yaml", `chart_type: bar
parameters:
  x_axis: region
  y_axis: amt
  aggregation: sum
`)

	out, err := run(t, "render", "-d", data, "-r", req, "--param", "aggregation=mean")
	require.NoError(t, err)
	var resp domain.ChartResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "mean", resp.Metadata["aggregation"])
	assert.InDelta(t, 62.5, resp.Data[0]["amt"], 1e-9)
}

func TestRender_Batch(t *testing.T) {
	dir := isolate(t)
	data := writeFile(t, dir, "sales.yaml", salesYAML)
	req := writeFile(t, dir, "batch.yaml", `requests:
  - chart_type: donut
    parameters: {x_axis: region, y_axis: amt}
  - chart_type: line
    parameters: {x_axis: region}
`)

	out, err := run(t, "render", "-d", data, "-r", req)
	require.EqualError(t, err, "1 of 2 charts failed")

	var body struct {
		Results []map[string]any `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	require.Len(t, body.Results, 2)
	assert.Equal(t, "donut", body.Results[0]["chart_type"])
	assert.Equal(t, domain.CodeMissingParameter, body.Results[1]["code"])
}

func TestRender_Errors(t *testing.T) {
	dir := isolate(t)
	data := writeFile(t, dir, "sales.yaml", salesYAML)
	batch := writeFile(t, dir, "batch.yaml", "requests:\n  - chart_type: bar\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no type", []string{"render", "-d", data}, "chart type is required"},
		{"bad param", []string{"render", "-d", data, "-t", "bar", "--param", "x_axis"}, "expected key=value"},
		{"batch with overrides", []string{"render", "-d", data, "-r", batch, "-t", "bar"}, "cannot be combined"},
		{"missing dataset", []string{"render", "-d", filepath.Join(dir, "nope.yaml"), "-t", "bar"}, "read dataset"},
		{"unknown column", []string{"render", "-d", data, "-t", "bar", "--param", "x_axis=city"}, `"city"`},
		{"bad output", []string{"version", "-o", "xml"}, "unsupported output format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDescribe(t *testing.T) {
	dir := isolate(t)
	data := writeFile(t, dir, "sales.yaml", salesYAML)

	out, err := run(t, "describe", "-d", data, "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "3 rows, 2 columns")
	assert.Contains(t, out, "numeric")

	out, err = run(t, "describe", "-d", data)
	require.NoError(t, err)
	var sum map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	assert.Equal(t, []any{"amt"}, sum["numeric_columns"])
}

func TestRender_Remote(t *testing.T) {
	dir := isolate(t)
	data := writeFile(t, dir, "sales.yaml", salesYAML)

	a, err := app.New(app.Deps{
		Cfg: &config.Config{
			RateLimitRPS:       100,
			RateLimitBurst:     100,
			CORSAllowedOrigins: []string{"*"},
			ChartTimeout:       time.Second,
			BatchConcurrency:   2,
			MaxDatasets:        5,
			MaxBodyBytes:       1 << 20,
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	srv := httptest.NewServer(a.Router)
	t.Cleanup(srv.Close)

	out, err := run(t, "render", "--host", srv.URL, "-d", data, "-t", "bar", "--param", "x_axis=region", "--param", "y_axis=amt")
	require.NoError(t, err)
	var resp domain.ChartResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.InDelta(t, 125, resp.Data[0]["amt"], 1e-9)
	assert.Equal(t, 0, a.Registry.Len(), "uploaded dataset is removed after rendering")

	_, err = run(t, "render", "--host", srv.URL, "-d", data, "-t", "pyramid")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.HTTPStatus)
	assert.Equal(t, "unsupported_chart_type", apiErr.Code)

	t.Setenv("CHARTS_HOST", srv.URL)
	out, err = run(t, "types")
	require.NoError(t, err)
	assert.Contains(t, out, "candlestick")
}

func TestVersion(t *testing.T) {
	isolate(t)
	out, err := run(t, "version", "-o", "table")
	require.NoError(t, err)
	assert.Regexp(t, `(?m)^version:\s+dev$`, out)
	assert.Regexp(t, `(?m)^commit:\s+none$`, out)
	assert.Regexp(t, `(?m)^chart_types:\s+26$`, out)

	out, err = run(t, "version", "-o", "json")
	require.NoError(t, err)
	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "dev", info["version"])
	assert.NotEmpty(t, info["go"])
}

func TestParseParams(t *testing.T) {
	got, err := parseParams([]string{"x_axis=region", "bins=10", "cumulative=true", "bandwidth=0.5", "title=a=b", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"x_axis":     "region",
		"bins":       10,
		"cumulative": true,
		"bandwidth":  0.5,
		"title":      "a=b",
		"empty":      "",
	}, got)

	_, err = parseParams([]string{"=x"})
	assert.Error(t, err)
}

func TestErrorObject(t *testing.T) {
	obj := errorObject(domain.ErrMissingParameter("x_axis", ""))
	assert.Equal(t, "x_axis is required", obj["error"])
	assert.Equal(t, domain.CodeMissingParameter, obj["code"])
	assert.Equal(t, "x_axis", obj["field"])

	obj = errorObject(&APIError{HTTPStatus: 404, Code: "not_found", Message: "File x not found"})
	assert.Equal(t, 404, obj["http_status"])
}
