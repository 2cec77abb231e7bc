package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintTable(t *testing.T) {
	tests := []struct {
		name      string
		columns   []string
		rows      [][]string
		wantLines []string
	}{
		{
			name:      "aligned",
			columns:   []string{"name", "age"},
			rows:      [][]string{{"Alice", "30"}, {"Bob", "25"}},
			wantLines: []string{"NAME   AGE", "Alice  30", "Bob    25"},
		},
		{
			name:      "header only",
			columns:   []string{"id", "value"},
			wantLines: []string{"ID  VALUE"},
		},
		{
			name:      "short rows padded",
			columns:   []string{"a", "b"},
			rows:      [][]string{{"1"}},
			wantLines: []string{"A  B", "1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			PrintTable(&buf, tt.columns, tt.rows)
			assert.Equal(t, tt.wantLines, strings.Split(strings.TrimRight(buf.String(), "\n"), "\n"))
		})
	}
}

func TestPrintTable_EmptyColumns(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, []string{}, [][]string{{"a"}})
	assert.Empty(t, buf.String())
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, map[string]string{"hello": "world"}))

	var parsed map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, "world", parsed["hello"])
	assert.Contains(t, buf.String(), "\n  ")

	buf.Reset()
	require.NoError(t, PrintJSON(&buf, nil))
	assert.Equal(t, "null\n", buf.String())
}

func TestPrintDetail(t *testing.T) {
	var buf bytes.Buffer
	PrintDetail(&buf, map[string]any{
		"id":          "123",
		"description": "some text",
		"nested":      map[string]any{"k": "v"},
		"missing":     nil,
	})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "description:"))
	assert.Equal(t, "id:"+strings.Repeat(" ", 9)+"  123", lines[1])
	assert.Equal(t, "missing:", strings.TrimRight(lines[2], " "))
	assert.Contains(t, lines[3], `{"k":"v"}`)
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{42.0, "42"},
		{0.125, "0.125"},
		{7, "7"},
		{true, "true"},
		{[]any{"a", "b"}, `["a","b"]`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatValue(tt.in))
	}
}

func TestRecordTable(t *testing.T) {
	columns, rows := recordTable([]map[string]any{
		{"region": "North", "amt": 125.0},
		{"region": "Other", "amt": 5.0, "extra": true},
	})
	assert.Equal(t, []string{"amt", "region", "extra"}, columns)
	assert.Equal(t, [][]string{{"125", "North", ""}, {"5", "Other", "true"}}, rows)
}

func TestDefaultOutputFormat_NonTerminal(t *testing.T) {
	assert.Equal(t, OutputJSON, defaultOutputFormat(&bytes.Buffer{}))
}
