package services

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renato0307/sqldesk/internal/domain"
)

func sampleResult() domain.QueryResult {
	return domain.QueryResult{
		Columns: []domain.QueryColumn{
			{DataType: "varchar", Name: "service_name"},
			{DataType: "decimal", Name: "cost", Nullable: true},
		},
		RowCount: 2,
		Rows: [][]any{
			{"AmazonEC2", 12.5},
			{"AWS, Lambda", nil},
		},
	}
}

func TestExportService_WriteCSV(t *testing.T) {
	var buf bytes.Buffer
	svc := NewExportService(t.TempDir())

	require.NoError(t, svc.Write(&buf, sampleResult(), ExportCSV))

	assert.Equal(t, "service_name,cost\nAmazonEC2,12.5\n\"AWS, Lambda\",\n", buf.String())
}

func TestExportService_WriteJSON(t *testing.T) {
	var buf bytes.Buffer
	svc := NewExportService(t.TempDir())

	require.NoError(t, svc.Write(&buf, sampleResult(), ExportJSON))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "AmazonEC2", got[0]["service_name"])
	assert.InDelta(t, 12.5, got[0]["cost"], 0.0001)
	assert.Nil(t, got[1]["cost"])
}

func TestExportService_Errors(t *testing.T) {
	svc := NewExportService(t.TempDir())
	var buf bytes.Buffer

	err := svc.Write(&buf, domain.NewErrorResult("boom"), ExportCSV)
	assert.ErrorIs(t, err, ErrNothingToExport)

	err = svc.Write(&buf, sampleResult(), ExportFormat("xml"))
	assert.Error(t, err)

	_, err = svc.ExportTab(domain.QueryTab{Title: "Query 1"}, ExportCSV)
	assert.ErrorIs(t, err, ErrNothingToExport)
}

func TestExportService_ExportTab(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	svc := NewExportService(dir)
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	res := sampleResult()
	path, err := svc.ExportTab(domain.QueryTab{ID: "t1", Result: &res, Title: "Query 1"}, ExportJSON)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "query-1-20260102-030405.json"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "AmazonEC2")
}

func TestFileSlug(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Query 1", "query-1"},
		{"  Costs/2025 ", "costs-2025"},
		{"***", "result"},
		{"", "result"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, fileSlug(tt.title))
		})
	}
}
