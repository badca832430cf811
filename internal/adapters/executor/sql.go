package executor

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	// Database drivers selectable through connection profiles
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/renato0307/sqldesk/internal/domain"
	"github.com/renato0307/sqldesk/internal/logging"
	"github.com/renato0307/sqldesk/internal/ports"
)

// driverNames maps connection drivers to database/sql driver names
var driverNames = map[string]string{
	domain.DriverMySQL:    "mysql",
	domain.DriverPostgres: "postgres",
	domain.DriverSQLite:   "sqlite",
}

// rowKeywords start statements that produce a result set
var rowKeywords = map[string]bool{
	"DESC":     true,
	"DESCRIBE": true,
	"EXPLAIN":  true,
	"PRAGMA":   true,
	"SELECT":   true,
	"SHOW":     true,
	"TABLE":    true,
	"VALUES":   true,
	"WITH":     true,
}

var returningClause = regexp.MustCompile(`(?i)\bRETURNING\b`)

// SQLExecutor runs statements against a database/sql connection pool
type SQLExecutor struct {
	db      *sql.DB
	driver  string
	maxRows int
}

// Verify interface compliance at compile time
var _ ports.ClosableQueryExecutor = (*SQLExecutor)(nil)

// NewSQLExecutor opens a pool for the given driver and DSN.
// maxRows caps the rows read per statement; 0 reads everything.
func NewSQLExecutor(driver, dsn string, maxRows int) (*SQLExecutor, error) {
	name, ok := driverNames[driver]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownDriver, driver)
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", driver, err)
	}

	if driver == domain.DriverSQLite {
		// database/sql would otherwise hand each statement a fresh in-memory database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}

	logging.Logger.Info("SQL executor opened", "driver", driver)
	return &SQLExecutor{db: db, driver: driver, maxRows: maxRows}, nil
}

// Close releases the connection pool
func (e *SQLExecutor) Close() error {
	return e.db.Close()
}

// Ping checks that the database is reachable
func (e *SQLExecutor) Ping(ctx context.Context) error {
	if err := e.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to reach %s database: %w", e.driver, err)
	}
	return nil
}

// Execute implements ports.QueryExecutor.
// Statements that produce no result set report RowsAffected as the row count.
// The database argument is informational; the DSN selects the database.
func (e *SQLExecutor) Execute(ctx context.Context, query, database string) (*domain.QueryResult, error) {
	if domain.IsBlankSQL(query) {
		res := domain.NewErrorResult(domain.EmptyQueryMessage)
		return &res, nil
	}

	start := time.Now()
	if !returnsRows(query) {
		return e.exec(ctx, query, database, start)
	}

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := scanColumns(rows)
	if err != nil {
		return nil, err
	}

	result := &domain.QueryResult{
		Columns: columns,
		Rows:    [][]any{},
	}

	if len(columns) == 0 {
		// Statement without a result set; drain so the driver reports errors
		for rows.Next() {
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		result.ExecutionTimeMs = time.Since(start).Milliseconds()
		return result, nil
	}

	for rows.Next() {
		row, err := scanRow(rows, len(columns))
		if err != nil {
			return nil, err
		}
		result.RowCount++
		if e.maxRows == 0 || len(result.Rows) < e.maxRows {
			result.Rows = append(result.Rows, row)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	result.ExecutionTimeMs = time.Since(start).Milliseconds()
	logging.Logger.Debug("Statement executed",
		"driver", e.driver,
		"database", database,
		"rows", result.RowCount,
		"duration_ms", result.ExecutionTimeMs)
	return result, nil
}

// exec runs a statement without a result set
func (e *SQLExecutor) exec(ctx context.Context, query, database string, start time.Time) (*domain.QueryResult, error) {
	res, err := e.db.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		logging.Logger.Debug("Driver does not report affected rows", "driver", e.driver, "error", err)
		affected = 0
	}

	result := &domain.QueryResult{
		Columns:         []domain.QueryColumn{},
		ExecutionTimeMs: time.Since(start).Milliseconds(),
		RowCount:        affected,
		Rows:            [][]any{},
	}
	logging.Logger.Debug("Statement executed",
		"driver", e.driver,
		"database", database,
		"affected", affected,
		"duration_ms", result.ExecutionTimeMs)
	return result, nil
}

// returnsRows guesses from the leading keyword whether a statement produces rows.
// Anything with a RETURNING clause is read as a query.
func returnsRows(query string) bool {
	if returningClause.MatchString(query) {
		return true
	}
	return rowKeywords[leadingKeyword(query)]
}

// leadingKeyword returns the first word of a statement, upper-cased,
// skipping comments and opening parentheses.
func leadingKeyword(query string) string {
	q := strings.TrimSpace(query)
	for {
		switch {
		case strings.HasPrefix(q, "--"):
			i := strings.IndexByte(q, '\n')
			if i < 0 {
				return ""
			}
			q = strings.TrimSpace(q[i+1:])
		case strings.HasPrefix(q, "/*"):
			i := strings.Index(q, "*/")
			if i < 0 {
				return ""
			}
			q = strings.TrimSpace(q[i+2:])
		case strings.HasPrefix(q, "("):
			q = strings.TrimSpace(q[1:])
		default:
			end := strings.IndexFunc(q, func(r rune) bool { return !unicode.IsLetter(r) })
			if end < 0 {
				end = len(q)
			}
			return strings.ToUpper(q[:end])
		}
	}
}

func scanColumns(rows *sql.Rows) ([]domain.QueryColumn, error) {
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("get column types: %w", err)
	}

	columns := make([]domain.QueryColumn, len(colTypes))
	for i, ct := range colTypes {
		nullable, ok := ct.Nullable()
		columns[i] = domain.QueryColumn{
			DataType: strings.ToUpper(ct.DatabaseTypeName()),
			Name:     ct.Name(),
			Nullable: nullable || !ok,
		}
	}
	return columns, nil
}

func scanRow(rows *sql.Rows, width int) ([]any, error) {
	values := make([]any, width)
	targets := make([]any, width)
	for i := range values {
		targets[i] = &values[i]
	}

	if err := rows.Scan(targets...); err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}

	for i, v := range values {
		values[i] = normalizeValue(v)
	}
	return values, nil
}

// normalizeValue narrows driver values to the scalar set results carry:
// nil, string, int64, float64 and bool.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	case int64, float64, bool, string:
		return val
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case uint64:
		return float64(val)
	case float32:
		return float64(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
