package integration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renato0307/sqldesk/test/integration/harness"
)

func TestHistoryList(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, env *harness.TestEnvironment)
		args     []string
		validate func(t *testing.T, env *harness.TestEnvironment, result harness.CommandResult)
	}{
		{
			name: "empty history",
			args: []string{"history", "list"},
			validate: func(t *testing.T, env *harness.TestEnvironment, result harness.CommandResult) {
				harness.AssertStdoutContains(t, result, "No queries executed yet")
			},
		},
		{
			name: "executions are persisted across runs",
			setup: func(t *testing.T, env *harness.TestEnvironment) {
				harness.AssertSuccess(t, harness.Exec(t, env, "SELECT * FROM cur"))
				harness.AssertFailure(t, harness.Exec(t, env, " "))
			},
			args: []string{"history", "list"},
			validate: func(t *testing.T, env *harness.TestEnvironment, result harness.CommandResult) {
				harness.AssertStdoutContains(t, result, "SELECT * FROM cur")
				harness.AssertStdoutContains(t, result, "ok")
				harness.AssertStdoutContains(t, result, "failed")
				harness.AssertStdoutContains(t, result, "megadb")

				rows := harness.PersistedHistory(t, env)
				require.Len(t, rows, 2)
				assert.Equal(t, "SELECT * FROM cur", rows[0].SQL)
				assert.True(t, rows[0].Success)
				assert.Equal(t, "megadb", rows[0].Database)
				assert.False(t, rows[1].Success)
			},
		},
		{
			name: "json format honours the limit",
			setup: func(t *testing.T, env *harness.TestEnvironment) {
				harness.AssertSuccess(t, harness.Exec(t, env, "SELECT 1", "SELECT 2", "SELECT 3"))
			},
			args: []string{"history", "list", "--format", "json", "-n", "2"},
			validate: func(t *testing.T, env *harness.TestEnvironment, result harness.CommandResult) {
				var entries []map[string]any
				harness.AssertValidJSON(t, result, &entries)
				assert.Len(t, entries, 2)
			},
		},
		{
			name: "persistence disabled",
			setup: func(t *testing.T, env *harness.TestEnvironment) {
				env.WriteSettings(map[string]any{"persist_history": false})
				harness.AssertSuccess(t, harness.Exec(t, env, "SELECT 1"))
			},
			args: []string{"history", "list"},
			validate: func(t *testing.T, env *harness.TestEnvironment, result harness.CommandResult) {
				harness.AssertStdoutContains(t, result, "No queries executed yet")
				harness.AssertHistory(t, env)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := harness.NewTestEnvironment(t)
			if tt.setup != nil {
				tt.setup(t, env)
			}

			result := harness.RunCommand(t, env, tt.args...)

			harness.AssertSuccess(t, result)
			tt.validate(t, env, result)
		})
	}
}

func TestHistoryPersistsAcrossRunsInOrder(t *testing.T) {
	env := harness.NewTestEnvironment(t)

	harness.AssertSuccess(t, harness.Exec(t, env, "SELECT 'first'"))
	harness.AssertSuccess(t, harness.Exec(t, env, "SELECT 'second'"))
	harness.AssertSuccess(t, harness.Exec(t, env, "SELECT 'third'"))

	harness.AssertHistory(t, env, "SELECT 'first'", "SELECT 'second'", "SELECT 'third'")
}

func TestHistoryClear(t *testing.T) {
	env := harness.NewTestEnvironment(t)
	harness.AssertSuccess(t, harness.Exec(t, env, "SELECT 1"))
	harness.AssertHistory(t, env, "SELECT 1")

	result := harness.RunCommand(t, env, "history", "clear", "--force")
	harness.AssertSuccess(t, result)
	harness.AssertStdoutContains(t, result, "Query history cleared")

	result = harness.RunCommand(t, env, "history", "list", "--format", "json")
	harness.AssertSuccess(t, result)
	var entries []map[string]any
	harness.AssertValidJSON(t, result, &entries)
	require.Empty(t, entries)
	harness.AssertHistory(t, env)
}
