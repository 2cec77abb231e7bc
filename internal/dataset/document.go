package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
)

// Document is the typed columnar wire format for datasets. Roles are
// declared by the caller; values are never sniffed.
type Document struct {
	Name    string           `json:"name,omitempty" yaml:"name,omitempty"`
	Columns []DocumentColumn `json:"columns" yaml:"columns"`
}

// DocumentColumn is one column of a Document. A null value is missing.
type DocumentColumn struct {
	Name   string `json:"name" yaml:"name"`
	Role   string `json:"role" yaml:"role"`
	Values []any  `json:"values" yaml:"values"`
}

// DecodeDocument parses a JSON or YAML document. JSON is tried first when the
// payload looks like an object.
func DecodeDocument(data []byte) (Document, error) {
	var doc Document
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return Document{}, domain.ErrValidation("invalid dataset document: %v", err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, domain.ErrValidation("invalid dataset document: %v", err)
	}
	return doc, nil
}

// FromDocument builds a Dataset from a typed columnar document.
func FromDocument(doc Document) (*Dataset, error) {
	if len(doc.Columns) == 0 {
		return nil, domain.ErrValidation("dataset has no columns")
	}
	cols := make([]*Column, 0, len(doc.Columns))
	for _, dc := range doc.Columns {
		role, ok := ParseRole(strings.ToLower(strings.TrimSpace(dc.Role)))
		if !ok {
			return nil, domain.ErrValidation("column %q has unknown role %q", dc.Name, dc.Role)
		}
		c, err := documentColumn(dc.Name, role, dc.Values)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return New(cols...)
}

func documentColumn(name string, role Role, values []any) (*Column, error) {
	valid := make([]bool, len(values))
	switch role {
	case RoleNumeric:
		nums := make([]float64, len(values))
		for i, v := range values {
			if v == nil {
				continue
			}
			f, err := toFloat(v)
			if err != nil {
				return nil, domain.ErrValidation("column %q row %d: %v", name, i, err)
			}
			nums[i], valid[i] = f, true
		}
		return Numeric(name, nums, valid), nil
	case RoleTemporal:
		times := make([]time.Time, len(values))
		for i, v := range values {
			if v == nil {
				continue
			}
			t, err := toTime(v)
			if err != nil {
				return nil, domain.ErrValidation("column %q row %d: %v", name, i, err)
			}
			times[i], valid[i] = t, true
		}
		return Temporal(name, times, valid), nil
	default:
		strs := make([]string, len(values))
		for i, v := range values {
			if v == nil {
				continue
			}
			switch x := v.(type) {
			case string:
				strs[i] = x
			case bool:
				strs[i] = strconv.FormatBool(x)
			case float64:
				strs[i] = FormatNumber(x)
			case int:
				strs[i] = strconv.Itoa(x)
			default:
				return nil, domain.ErrValidation("column %q row %d: unsupported categorical value %T", name, i, v)
			}
			valid[i] = true
		}
		return Categorical(name, strs, valid), nil
	}
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, fmt.Errorf("non-finite number")
		}
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	case string:
		return 0, fmt.Errorf("expected number, got string %q", x)
	}
	return 0, fmt.Errorf("expected number, got %T", v)
}

var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

func toTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, x); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unparseable time %q", x)
	}
	return time.Time{}, fmt.Errorf("expected time string, got %T", v)
}
