package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renato0307/sqldesk/internal/domain"
)

func costResult(rows int) domain.QueryResult {
	res := domain.QueryResult{
		Columns: []domain.QueryColumn{
			{DataType: "VARCHAR", Name: "service"},
			{DataType: "DECIMAL", Name: "cost", Nullable: true},
		},
		ExecutionTimeMs: 12,
		RowCount:        int64(rows),
	}
	for i := 0; i < rows; i++ {
		res.Rows = append(res.Rows, []any{"AmazonEC2", nil})
	}
	return res
}

func TestBuildTable(t *testing.T) {
	columns, rows := buildTable(costResult(3), 2)

	require.Len(t, columns, 2)
	assert.Equal(t, "service", columns[0].Title)
	assert.Equal(t, len("AmazonEC2"), columns[0].Width)
	assert.Equal(t, 4, columns[1].Width)

	require.Len(t, rows, 2)
	assert.Equal(t, "AmazonEC2", rows[0][0])
	assert.Equal(t, domain.FormatValue(nil), rows[0][1])
}

func TestBuildTable_CapsColumnWidth(t *testing.T) {
	res := costResult(1)
	res.Rows[0][0] = strings.Repeat("x", 200)

	columns, _ := buildTable(res, 10)
	assert.Equal(t, maxColumnWidth, columns[0].Width)
}

func TestBuildTable_ShortRowsArePadded(t *testing.T) {
	res := costResult(1)
	res.Rows[0] = []any{"S3"}

	_, rows := buildTable(res, 10)
	require.Len(t, rows[0], 2)
	assert.Equal(t, "", rows[0][1])
}

func TestSummaryLine(t *testing.T) {
	assert.Contains(t, summaryLine(costResult(3), 10), "3 rows · 12 ms")
	assert.Contains(t, summaryLine(costResult(3), 2), "showing first 2")

	truncated := costResult(2)
	truncated.RowCount = 5000
	assert.Contains(t, summaryLine(truncated, 10), "showing first 2")

	affected := domain.QueryResult{RowCount: 4, ExecutionTimeMs: 3}
	line := summaryLine(affected, 10)
	assert.Contains(t, line, "4 rows affected · 3 ms")
	assert.NotContains(t, line, "showing first")
}

func TestResultView_States(t *testing.T) {
	view := NewResultView(0)
	view.SetSize(80, 20)

	view.SetTab(domain.QueryTab{ID: "t1"}, true)
	assert.Contains(t, view.View("*"), "Run a query")

	view.SetTab(domain.QueryTab{ID: "t1", IsRunning: true}, false)
	assert.Contains(t, view.View("*"), "Running query")

	failed := domain.NewErrorResult("syntax error near FROM")
	view.SetTab(domain.QueryTab{ID: "t1", Result: &failed}, true)
	assert.Contains(t, view.View("*"), "syntax error near FROM")

	ok := costResult(2)
	view.SetTab(domain.QueryTab{ID: "t1", Result: &ok}, true)
	out := view.View("*")
	assert.Contains(t, out, "2 rows")
	assert.Contains(t, out, "AmazonEC2")
}
