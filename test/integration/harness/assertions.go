package harness

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AssertSuccess checks sqldesk exited with 0
func AssertSuccess(tb testing.TB, result CommandResult) {
	tb.Helper()
	assert.Equal(tb, 0, result.ExitCode,
		"sqldesk %v exited with %d\nstdout: %s\nstderr: %s",
		result.Args, result.ExitCode, result.Stdout, result.Stderr)
}

// AssertFailure checks sqldesk exited with a non-zero code
func AssertFailure(tb testing.TB, result CommandResult) {
	tb.Helper()
	assert.NotEqual(tb, 0, result.ExitCode,
		"sqldesk %v succeeded but was expected to fail\nstdout: %s",
		result.Args, result.Stdout)
}

// AssertExitCode checks sqldesk exited with want
func AssertExitCode(tb testing.TB, result CommandResult, want int) {
	tb.Helper()
	assert.Equal(tb, want, result.ExitCode,
		"sqldesk %v exit code\nstdout: %s\nstderr: %s",
		result.Args, result.Stdout, result.Stderr)
}

// AssertStdoutContains checks stdout contains want
func AssertStdoutContains(tb testing.TB, result CommandResult, want string) {
	tb.Helper()
	assert.Contains(tb, result.Stdout, want, "stdout of sqldesk %v", result.Args)
}

// AssertStdoutNotContains checks stdout never mentions unwanted
func AssertStdoutNotContains(tb testing.TB, result CommandResult, unwanted string) {
	tb.Helper()
	assert.NotContains(tb, result.Stdout, unwanted, "stdout of sqldesk %v", result.Args)
}

// AssertStderrContains checks stderr contains want
func AssertStderrContains(tb testing.TB, result CommandResult, want string) {
	tb.Helper()
	assert.Contains(tb, result.Stderr, want, "stderr of sqldesk %v", result.Args)
}

// AssertValidJSON decodes stdout into target, failing the test on invalid JSON
func AssertValidJSON(tb testing.TB, result CommandResult, target any) {
	tb.Helper()
	err := json.Unmarshal([]byte(result.Stdout), target)
	require.NoError(tb, err, "stdout of sqldesk %v is not JSON:\n%s", result.Args, result.Stdout)
}

// HistoryRow is a persisted history entry as stored in history.db
type HistoryRow struct {
	Database string `gorm:"column:database_name"`
	Seq      uint64 `gorm:"column:seq"`
	SQL      string `gorm:"column:sql_text"`
	Success  bool   `gorm:"column:success"`
}

// PersistedHistory reads the history database of env directly, oldest first.
// A database that was never created reads as empty.
func PersistedHistory(tb testing.TB, env *TestEnvironment) []HistoryRow {
	tb.Helper()

	if _, err := os.Stat(env.DBPath()); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	db, err := gorm.Open(sqlite.Open(env.DBPath()), &gorm.Config{Logger: logger.Discard})
	require.NoError(tb, err, "open %s", env.DBPath())
	sqlDB, err := db.DB()
	require.NoError(tb, err)
	defer sqlDB.Close()

	var rows []HistoryRow
	err = db.Table("query_history").
		Select("database_name", "seq", "sql_text", "success").
		Order("seq").
		Scan(&rows).Error
	require.NoError(tb, err, "read query_history")
	return rows
}

// AssertHistory checks the persisted history holds exactly want, oldest first
func AssertHistory(tb testing.TB, env *TestEnvironment, want ...string) {
	tb.Helper()

	var got []string
	for _, row := range PersistedHistory(tb, env) {
		got = append(got, row.SQL)
	}
	if len(want) == 0 {
		assert.Empty(tb, got, "persisted history of %s", env.DBPath())
		return
	}
	assert.Equal(tb, want, got, "persisted history of %s", env.DBPath())
}
