package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/renato0307/sqldesk/internal/domain"
	"github.com/renato0307/sqldesk/internal/ports"
)

// DefaultMockDelay is the simulated backend latency
const DefaultMockDelay = 50 * time.Millisecond

const (
	mockExecutionTimeMs = 23
	mockRowCount        = 25
)

var (
	mockServices   = []string{"EC2", "S3", "RDS", "Lambda", "CloudFront"}
	mockUsageTypes = []string{"BoxUsage", "DataTransfer", "Requests", "Storage"}
	mockRegions    = []string{"us-east-1", "eu-west-1", "ap-northeast-1"}
)

// MockExecutor returns canned cost-and-usage rows for any non-blank SQL
type MockExecutor struct {
	delay time.Duration
}

// Verify interface compliance at compile time
var _ ports.QueryExecutor = (*MockExecutor)(nil)

// NewMockExecutor creates a MockExecutor with the given latency
func NewMockExecutor(delay time.Duration) *MockExecutor {
	return &MockExecutor{delay: delay}
}

// Execute implements ports.QueryExecutor
func (m *MockExecutor) Execute(ctx context.Context, sql, database string) (*domain.QueryResult, error) {
	if m.delay > 0 {
		timer := time.NewTimer(m.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if domain.IsBlankSQL(sql) {
		res := domain.NewErrorResult(domain.EmptyQueryMessage)
		return &res, nil
	}

	rows := make([][]any, mockRowCount)
	for i := range rows {
		rows[i] = []any{
			fmt.Sprintf("li-%06d", i),
			"123456789012",
			mockServices[i%len(mockServices)],
			mockUsageTypes[i%len(mockUsageTypes)],
			fmt.Sprintf("%.2f", float64(i)*12.34+5.67),
			mockRegions[i%len(mockRegions)],
			"2026-02-01",
		}
	}

	return &domain.QueryResult{
		Columns: []domain.QueryColumn{
			{DataType: "VARCHAR", Name: "line_item_id"},
			{DataType: "VARCHAR", Name: "account_id"},
			{DataType: "VARCHAR", Name: "service_name"},
			{DataType: "VARCHAR", Name: "usage_type", Nullable: true},
			{DataType: "DECIMAL(18,6)", Name: "cost"},
			{DataType: "VARCHAR", Name: "region", Nullable: true},
			{DataType: "DATE", Name: "billing_period"},
		},
		ExecutionTimeMs: mockExecutionTimeMs,
		RowCount:        mockRowCount,
		Rows:            rows,
	}, nil
}
