package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorResult(t *testing.T) {
	res := NewErrorResult("no such table: cur")
	assert.True(t, res.Failed())
	assert.Empty(t, res.Columns)
	assert.Empty(t, res.Rows)
	assert.Zero(t, res.RowCount)

	assert.Equal(t, "unknown error", NewErrorResult("").Error)
}

func TestQueryTab_CloneIsDetached(t *testing.T) {
	res := QueryResult{
		Columns:  []QueryColumn{{Name: "n"}},
		RowCount: 1,
		Rows:     [][]any{{int64(1)}},
	}
	tab := QueryTab{ID: "t1", Result: &res, Title: "Query 1"}

	clone := tab.Clone()
	clone.Result.Rows[0][0] = int64(2)
	clone.Result.Columns[0].Name = "m"

	assert.Equal(t, int64(1), res.Rows[0][0])
	assert.Equal(t, "n", res.Columns[0].Name)
	assert.Nil(t, QueryTab{ID: "t2"}.Clone().Result)
}

func TestFormatValue(t *testing.T) {
	ts := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "NULL"},
		{"string", "S3", "S3"},
		{"bytes", []byte("EC2"), "EC2"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"int", int64(42), "42"},
		{"float", 18.01, "18.01"},
		{"time", ts, "2026-02-01T10:00:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.in))
		})
	}
}

func TestIsBlankSQL(t *testing.T) {
	assert.True(t, IsBlankSQL(""))
	assert.True(t, IsBlankSQL(" \n\t "))
	assert.False(t, IsBlankSQL(" SELECT 1 "))
}

func TestSQLPreview(t *testing.T) {
	e := QueryHistoryEntry{SQL: "SELECT *\n  FROM cur\n  WHERE cost > 10"}

	assert.Equal(t, "SELECT * FROM cur WHERE cost > 10", e.SQLPreview(100))
	assert.Equal(t, "SELECT * FROM ...", e.SQLPreview(17))
}

func TestSessionSnapshot_ActiveTab(t *testing.T) {
	snap := SessionSnapshot{
		ActiveTabIndex: 1,
		Tabs:           []QueryTab{{ID: "t1"}, {ID: "t2"}},
	}
	assert.Equal(t, "t2", snap.ActiveTab().ID)
}

func TestParsePolicies(t *testing.T) {
	overlap, err := ParseOverlapPolicy("")
	require.NoError(t, err)
	assert.Equal(t, LastResolutionWins, overlap)

	overlap, err = ParseOverlapPolicy("latest_dispatch")
	require.NoError(t, err)
	assert.Equal(t, LatestDispatchWins, overlap)

	_, err = ParseOverlapPolicy("first")
	assert.Error(t, err)

	closePolicy, err := ParseClosePolicy("cancel")
	require.NoError(t, err)
	assert.Equal(t, CancelOnClose, closePolicy)

	_, err = ParseClosePolicy("detach")
	assert.Error(t, err)
}

func TestFindConnection(t *testing.T) {
	conns := []Connection{{Name: "local"}, {Name: "warehouse", Driver: DriverPostgres}}

	conn, err := FindConnection(conns, "warehouse")
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, conn.Driver)

	_, err = FindConnection(conns, "prod")
	assert.ErrorIs(t, err, ErrConnectionNotFound)
}
