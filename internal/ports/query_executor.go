package ports

import (
	"context"

	"github.com/renato0307/sqldesk/internal/domain"
)

// QueryExecutor runs SQL against a backend.
// It returns a well-formed result or an error; an error is a transport or backend
// failure, while a result with Error set is a query-level failure.
type QueryExecutor interface {
	Execute(ctx context.Context, sql, database string) (*domain.QueryResult, error)
}

// ClosableQueryExecutor is a QueryExecutor holding resources such as a connection pool
type ClosableQueryExecutor interface {
	QueryExecutor
	Close() error
}
