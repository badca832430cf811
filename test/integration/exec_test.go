package integration_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renato0307/sqldesk/test/integration/harness"
)

func TestExec(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		wantExitCode int
		validate     func(t *testing.T, result harness.CommandResult)
	}{
		{
			name:         "table output against the mock backend",
			args:         []string{"exec", "-e", "SELECT * FROM cur"},
			wantExitCode: 0,
			validate: func(t *testing.T, result harness.CommandResult) {
				harness.AssertStdoutContains(t, result, "Query 1")
				harness.AssertStdoutContains(t, result, "25 rows")
				harness.AssertStdoutContains(t, result, "line_item_id")
			},
		},
		{
			name:         "json output",
			args:         []string{"exec", "-e", "SELECT * FROM cur", "--format", "json"},
			wantExitCode: 0,
			validate: func(t *testing.T, result harness.CommandResult) {
				var rows []map[string]any
				harness.AssertValidJSON(t, result, &rows)
				require.Len(t, rows, 25)
				assert.Equal(t, "EC2", rows[0]["service_name"])
			},
		},
		{
			name:         "csv output",
			args:         []string{"exec", "-e", "SELECT * FROM cur", "-f", "csv"},
			wantExitCode: 0,
			validate: func(t *testing.T, result harness.CommandResult) {
				lines := strings.Split(strings.TrimSpace(result.Stdout), "\n")
				require.Len(t, lines, 26)
				assert.True(t, strings.HasPrefix(lines[0], "line_item_id,account_id,service_name"))
			},
		},
		{
			name:         "several statements run in their own tabs",
			args:         []string{"exec", "-e", "SELECT 1", "-e", "SELECT 2"},
			wantExitCode: 0,
			validate: func(t *testing.T, result harness.CommandResult) {
				harness.AssertStdoutContains(t, result, "Query 1")
				harness.AssertStdoutContains(t, result, "Query 2")
			},
		},
		{
			name:         "blank statement fails",
			args:         []string{"exec", "-e", "   "},
			wantExitCode: 1,
			validate: func(t *testing.T, result harness.CommandResult) {
				harness.AssertStdoutContains(t, result, "Empty query")
				harness.AssertStderrContains(t, result, "1 of 1 queries failed")
			},
		},
		{
			name:         "unknown connection fails",
			args:         []string{"-c", "prod", "exec", "-e", "SELECT 1"},
			wantExitCode: 1,
			validate: func(t *testing.T, result harness.CommandResult) {
				harness.AssertStderrContains(t, result, "prod")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := harness.NewTestEnvironment(t)

			result := harness.RunCommand(t, env, tt.args...)

			if tt.wantExitCode == 0 {
				harness.AssertSuccess(t, result)
			} else {
				harness.AssertFailure(t, result)
			}
			if tt.validate != nil {
				tt.validate(t, result)
			}
		})
	}
}

func TestExec_SQLiteConnection(t *testing.T) {
	env := harness.NewTestEnvironment(t)
	env.WriteSettings(map[string]any{
		"connections": []map[string]any{{
			"name":     "scratch",
			"driver":   "sqlite",
			"dsn":      filepath.Join(env.Home, "scratch.db"),
			"database": "main",
		}},
	})

	result := harness.RunCommand(t, env, "exec",
		"-e", "CREATE TABLE services (name TEXT, cost REAL)")
	harness.AssertSuccess(t, result)

	result = harness.RunCommand(t, env, "exec",
		"-e", "INSERT INTO services VALUES ('S3', 1.5), ('EC2', NULL)")
	harness.AssertSuccess(t, result)
	harness.AssertStdoutContains(t, result, "2 rows affected")

	result = harness.RunCommand(t, env, "exec", "--format", "csv",
		"-e", "SELECT name, cost FROM services ORDER BY name")
	harness.AssertSuccess(t, result)
	assert.Equal(t, "name,cost\nEC2,\nS3,1.5\n", result.Stdout)
}
