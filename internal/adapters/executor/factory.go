package executor

import (
	"github.com/renato0307/sqldesk/internal/domain"
	"github.com/renato0307/sqldesk/internal/ports"
)

// nopCloser adapts executors without resources to ports.ClosableQueryExecutor
type nopCloser struct {
	ports.QueryExecutor
}

func (nopCloser) Close() error { return nil }

// New builds the executor for a connection profile
func New(conn domain.Connection, maxRows int) (ports.ClosableQueryExecutor, error) {
	if conn.Driver == domain.DriverMock || conn.Driver == "" {
		return nopCloser{NewMockExecutor(DefaultMockDelay)}, nil
	}
	return NewSQLExecutor(conn.Driver, conn.DSN, maxRows)
}
