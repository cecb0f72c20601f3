package output

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadSchema(t *testing.T) *jsonschema.Schema {
	t.Helper()
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile(filepath.Join("testdata", "schema", "result.schema.json"))
	require.NoError(t, err, "не удалось загрузить JSON Schema")
	return schema
}

func TestJSONWriter_Write_Exact(t *testing.T) {
	result := NewSuccessResult("version", map[string]string{"version": "1.0.0"},
		&Metadata{DurationMs: 150, APIVersion: "v1"})

	var buf bytes.Buffer
	require.NoError(t, NewJSONWriter().Write(&buf, result))

	expected := `{
  "status": "success",
  "command": "version",
  "data": {
    "version": "1.0.0"
  },
  "metadata": {
    "duration_ms": 150,
    "api_version": "v1"
  }
}
`
	assert.Equal(t, expected, buf.String())
}

func TestJSONWriter_Write_SummaryMovedToMetadata(t *testing.T) {
	summary := NewSummaryInfo()
	summary.AddMetric("Страниц проверено", "12", "шт")
	summary.AddWarning("приложение вывело ошибку в консоль")
	meta := &Metadata{DurationMs: 10, APIVersion: "v1"}
	result := NewSuccessResult("smoke-pages", nil, meta)
	result.Summary = summary

	var buf bytes.Buffer
	require.NoError(t, NewJSONWriter().Write(&buf, result))

	var parsed struct {
		Summary  any `json:"summary"`
		Metadata struct {
			Summary SummaryInfo `json:"summary"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Nil(t, parsed.Summary, "summary не сериализуется на верхнем уровне")
	assert.Equal(t, 1, parsed.Metadata.Summary.WarningsCount)
	assert.Equal(t, "12", parsed.Metadata.Summary.KeyMetrics[0].Value)
	assert.Nil(t, meta.Summary, "входной Metadata не мутируется")
}

func TestJSONWriter_Write_Nil(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONWriter().Write(&buf, nil))
	assert.Equal(t, "null\n", buf.String())
}

func TestJSONWriter_SchemaValidation(t *testing.T) {
	schema := loadSchema(t)
	traceID := "0123456789abcdef0123456789abcdef"
	start := time.Now()

	withSummary := NewSuccessResult("smoke-pages", map[string]int{"visited": 12}, NewMetadata(start, traceID, "v1"))
	withSummary.Summary = NewSummaryInfo()
	withSummary.Summary.AddMetric("Страниц проверено", "12", "шт")

	tests := []struct {
		name   string
		result *Result
	}{
		{"успех", NewSuccessResult("version", map[string]string{"version": "1.0.0"}, NewMetadata(start, traceID, "v1"))},
		{"ошибка", NewErrorResult("check-migrations", "MIGRATIONS.PENDING_CHANGES", "есть изменения", nil, NewMetadata(start, "", "v1"))},
		{"минимальный", &Result{Status: StatusSuccess, Command: "help"}},
		{"со сводкой", withSummary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewJSONWriter().Write(&buf, tt.result))

			doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			assert.NoError(t, schema.Validate(doc))
		})
	}
}

func TestJSONWriter_SchemaRejectsErrorWithoutInfo(t *testing.T) {
	schema := loadSchema(t)
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(`{"status":"error","command":"smoke-pages"}`)))
	require.NoError(t, err)
	assert.Error(t, schema.Validate(doc))
}

func TestNewWriter(t *testing.T) {
	tests := []struct {
		format   string
		wantJSON bool
	}{
		{"json", true},
		{"JSON", true},
		{"text", false},
		{"", false},
		{"yaml", false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			_, isJSON := NewWriter(tt.format).(*JSONWriter)
			assert.Equal(t, tt.wantJSON, isJSON)
		})
	}
}
