package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kmmelissat/analisis-al-instante-api/internal/dataset"
	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
)

const arrowStreamContentType = "application/vnd.apache.arrow.stream"

// datasetSource is a dataset file read from disk, kept raw so it can be
// parsed locally or uploaded unchanged.
type datasetSource struct {
	Name        string
	ContentType string
	Body        []byte
}

// readDatasetSource reads a typed dataset document (.json, .yaml, .yml) or an
// Arrow IPC stream (.arrow, .arrows).
func readDatasetSource(path string) (*datasetSource, error) {
	body, err := os.ReadFile(path) //nolint:gosec // path is user-supplied on purpose
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	src := &datasetSource{
		Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Body: body,
	}
	switch ext {
	case ".arrow", ".arrows":
		src.ContentType = arrowStreamContentType
	case ".yaml", ".yml":
		src.ContentType = "application/yaml"
	default:
		src.ContentType = "application/json"
	}
	return src, nil
}

func (s *datasetSource) load() (*dataset.Dataset, error) {
	if s.ContentType == arrowStreamContentType {
		return dataset.ReadArrowStream(bytes.NewReader(s.Body))
	}
	doc, err := dataset.DecodeDocument(s.Body)
	if err != nil {
		return nil, err
	}
	if doc.Name != "" {
		s.Name = doc.Name
	}
	return dataset.FromDocument(doc)
}

// requestFile is either a single chart request or a batch under "requests".
type requestFile struct {
	domain.ChartRequest `yaml:",inline"`
	Requests            []domain.ChartRequest `yaml:"requests"`
}

// readRequests reads a YAML or JSON request file. batch reports whether the
// file used the "requests" list form.
func readRequests(path string) (reqs []domain.ChartRequest, batch bool, err error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path is user-supplied on purpose
	if err != nil {
		return nil, false, fmt.Errorf("read request: %w", err)
	}
	var f requestFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, false, fmt.Errorf("parse request %s: %w", path, err)
	}
	if len(f.Requests) > 0 {
		return f.Requests, true, nil
	}
	return []domain.ChartRequest{f.ChartRequest}, false, nil
}

// parseParams turns key=value pairs into a parameter map. Values are parsed
// as YAML scalars so numbers and booleans keep their types.
func parseParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q: expected key=value", pair)
		}
		var v any
		if err := yaml.Unmarshal([]byte(value), &v); err != nil || v == nil {
			v = value
		}
		params[key] = v
	}
	return params, nil
}
