package state

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renato0307/sqldesk/internal/domain"
)

// sequentialIDs returns a generator producing t1, t2, t3, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("t%d", n)
	}
}

func newTestStore(opts ...Option) *Store {
	return NewStore(append([]Option{WithIDGenerator(sequentialIDs())}, opts...)...)
}

func TestNewStore_StartsWithOneDefaultTab(t *testing.T) {
	s := newTestStore()

	tabs := s.Tabs()
	require.Len(t, tabs, 1)
	assert.Equal(t, "t1", tabs[0].ID)
	assert.Equal(t, "Query 1", tabs[0].Title)
	assert.Empty(t, tabs[0].SQL)
	assert.Nil(t, tabs[0].Result)
	assert.False(t, tabs[0].IsRunning)
	assert.Equal(t, 0, s.ActiveTabIndex())
	assert.Empty(t, s.History())
}

func TestAddTab_NewTabBecomesActive(t *testing.T) {
	s := newTestStore()

	tab := s.AddTab()

	assert.Equal(t, "t2", tab.ID)
	assert.Equal(t, "Query 2", tab.Title)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, s.ActiveTabIndex())
	assert.Equal(t, "t2", s.ActiveTab().ID)
}

func TestAddTab_TitlesKeepCountingAfterClose(t *testing.T) {
	s := newTestStore()
	s.AddTab()
	_, ok, err := s.CloseTab(1)
	require.NoError(t, err)
	require.True(t, ok)

	tab := s.AddTab()

	assert.Equal(t, "Query 3", tab.Title)
}

func TestCloseTab_Scenario(t *testing.T) {
	s := newTestStore()

	s.AddTab()
	require.Equal(t, 2, s.Len())
	require.Equal(t, 1, s.ActiveTabIndex())

	closed, ok, err := s.CloseTab(0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "t1", closed.ID)
	require.Equal(t, 1, s.Len())
	assert.Equal(t, "t2", s.Tabs()[0].ID)
	assert.Equal(t, 0, s.ActiveTabIndex(), "active index should be clamped")

	_, ok, err = s.CloseTab(0)
	require.NoError(t, err)
	assert.False(t, ok, "closing the last tab must be a no-op")
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "t2", s.Tabs()[0].ID)
}

func TestCloseTab_IdempotentAtFloor(t *testing.T) {
	s := newTestStore()
	before := s.Snapshot()

	for i := 0; i < 5; i++ {
		_, ok, err := s.CloseTab(0)
		require.NoError(t, err)
		assert.False(t, ok)
	}

	after := s.Snapshot()
	assert.Equal(t, before.Tabs, after.Tabs)
	assert.Equal(t, before.ActiveTabIndex, after.ActiveTabIndex)
	assert.Equal(t, before.Revision, after.Revision, "no-op close must not bump the revision")
}

func TestCloseTab_KeepsActiveIndexWhenStillValid(t *testing.T) {
	s := newTestStore()
	s.AddTab()
	s.AddTab()
	require.NoError(t, s.SelectTab(0))

	_, ok, err := s.CloseTab(2)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, 0, s.ActiveTabIndex())
	assert.Equal(t, "t1", s.ActiveTab().ID)
}

func TestCloseTab_OutOfRange(t *testing.T) {
	s := newTestStore()
	s.AddTab()

	tests := []struct {
		name  string
		index int
	}{
		{"negative", -1},
		{"past end", 2},
		{"far past end", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := s.CloseTab(tt.index)
			assert.ErrorIs(t, err, domain.ErrTabIndexOutOfRange)
			assert.False(t, ok)
			assert.Equal(t, 2, s.Len())
		})
	}
}

func TestSelectTab(t *testing.T) {
	s := newTestStore()
	s.AddTab()
	s.AddTab()

	require.NoError(t, s.SelectTab(1))
	assert.Equal(t, 1, s.ActiveTabIndex())
	assert.Equal(t, "t2", s.ActiveTab().ID)

	err := s.SelectTab(3)
	assert.ErrorIs(t, err, domain.ErrTabIndexOutOfRange)
	assert.Equal(t, 1, s.ActiveTabIndex(), "failed select must not change state")

	err = s.SelectTab(-1)
	assert.ErrorIs(t, err, domain.ErrTabIndexOutOfRange)
}

func TestSetTabSQL(t *testing.T) {
	s := newTestStore()

	assert.True(t, s.SetTabSQL("t1", "SELECT 1"))
	tab, ok := s.Tab("t1")
	require.True(t, ok)
	assert.Equal(t, "SELECT 1", tab.SQL)

	assert.False(t, s.SetTabSQL("missing", "SELECT 2"), "edit for a closed tab is ignored")
}

func TestRenameTab(t *testing.T) {
	s := newTestStore()

	assert.True(t, s.RenameTab("t1", "  costs by region "))
	assert.Equal(t, "costs by region", s.ActiveTab().Title)

	assert.False(t, s.RenameTab("t1", "   "))
	assert.Equal(t, "costs by region", s.ActiveTab().Title)

	assert.False(t, s.RenameTab("nope", "x"))
}

func TestRestoreIntoActive(t *testing.T) {
	s := newTestStore()
	s.AddTab()
	require.NoError(t, s.SelectTab(0))

	id := s.RestoreIntoActive("SELECT * FROM cur")

	assert.Equal(t, "t1", id)
	assert.Equal(t, "SELECT * FROM cur", s.ActiveTab().SQL)
	second, _ := s.Tab("t2")
	assert.Empty(t, second.SQL)
}

func TestMarkRunningAndApplyResolution(t *testing.T) {
	s := newTestStore()

	seq, ok := s.MarkRunning("t1", "SELECT 1")
	require.True(t, ok)
	assert.Equal(t, uint64(1), seq)

	tab := s.ActiveTab()
	assert.True(t, tab.IsRunning)
	assert.Equal(t, "SELECT 1", tab.SQL)

	out := s.ApplyResolution("t1", seq, domain.QueryResult{RowCount: 1}, domain.LastResolutionWins)
	assert.True(t, out.TabFound)
	assert.True(t, out.Applied)

	tab = s.ActiveTab()
	assert.False(t, tab.IsRunning)
	require.NotNil(t, tab.Result)
	assert.Equal(t, int64(1), tab.Result.RowCount)
}

func TestMarkRunning_MissingTab(t *testing.T) {
	s := newTestStore()

	_, ok := s.MarkRunning("gone", "SELECT 1")

	assert.False(t, ok)
}

func TestApplyResolution_MissingTabIsHarmless(t *testing.T) {
	s := newTestStore()
	before := s.Snapshot()

	out := s.ApplyResolution("gone", 1, domain.QueryResult{RowCount: 3}, domain.LastResolutionWins)

	assert.False(t, out.TabFound)
	assert.False(t, out.Applied)
	assert.Equal(t, before.Tabs, s.Tabs())
}

func TestApplyResolution_OverlappingDispatches(t *testing.T) {
	tests := []struct {
		name         string
		policy       domain.OverlapPolicy
		wantRowCount int64
		wantApplied  bool
	}{
		{"last resolution wins keeps the slower first call", domain.LastResolutionWins, 1, true},
		{"latest dispatch wins ignores the stale call", domain.LatestDispatchWins, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore()
			first, _ := s.MarkRunning("t1", "SELECT 1")
			second, _ := s.MarkRunning("t1", "SELECT 2")

			// second dispatch resolves first
			s.ApplyResolution("t1", second, domain.QueryResult{RowCount: 2}, tt.policy)
			assert.True(t, s.ActiveTab().IsRunning, "first dispatch is still in flight")

			out := s.ApplyResolution("t1", first, domain.QueryResult{RowCount: 1}, tt.policy)
			assert.Equal(t, tt.wantApplied, out.Applied)

			tab := s.ActiveTab()
			assert.False(t, tab.IsRunning)
			require.NotNil(t, tab.Result)
			assert.Equal(t, tt.wantRowCount, tab.Result.RowCount)
		})
	}
}

func TestHistoryOrderIsAppendOrder(t *testing.T) {
	s := newTestStore()

	s.PushHistory(domain.QueryHistoryEntry{ID: "h1", SQL: "SELECT 1"})
	s.PushHistory(domain.QueryHistoryEntry{ID: "h2", SQL: "SELECT 2"})
	s.PushHistory(domain.QueryHistoryEntry{ID: "h3", SQL: "SELECT 3"})

	history := s.History()
	require.Len(t, history, 3)
	assert.Equal(t, "h1", history[0].ID, "oldest first")
	assert.Equal(t, "h3", history[2].ID, "newest last")
}

func TestHistoryLimitEvictsOldest(t *testing.T) {
	s := newTestStore(WithHistoryLimit(2))

	s.PushHistory(domain.QueryHistoryEntry{ID: "h1"})
	s.PushHistory(domain.QueryHistoryEntry{ID: "h2"})
	s.PushHistory(domain.QueryHistoryEntry{ID: "h3"})

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, "h2", history[0].ID)
	assert.Equal(t, "h3", history[1].ID)
	assert.Equal(t, 2, s.HistoryLimit())
}

func TestLoadAndClearHistory(t *testing.T) {
	s := newTestStore(WithHistoryLimit(2))

	s.LoadHistory([]domain.QueryHistoryEntry{{ID: "a"}, {ID: "b"}, {ID: "c"}})
	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, "b", history[0].ID)

	s.ClearHistory()
	assert.Empty(t, s.History())
}

func TestSnapshotIsDetached(t *testing.T) {
	s := newTestStore()
	seq, _ := s.MarkRunning("t1", "SELECT 1")
	s.ApplyResolution("t1", seq, domain.QueryResult{
		Columns:  []domain.QueryColumn{{Name: "a", DataType: "INT"}},
		Rows:     [][]any{{int64(1)}},
		RowCount: 1,
	}, domain.LastResolutionWins)

	snap := s.Snapshot()
	snap.Tabs[0].Title = "changed"
	snap.Tabs[0].Result.Rows[0][0] = int64(99)

	tab := s.ActiveTab()
	assert.Equal(t, "Query 1", tab.Title)
	assert.Equal(t, int64(1), tab.Result.Rows[0][0])
}

func TestTabBar(t *testing.T) {
	s := newTestStore()

	bar := s.TabBar()
	require.Len(t, bar, 1)
	assert.False(t, bar[0].Closeable, "a lone tab cannot be closed")
	assert.True(t, bar[0].Active)

	s.AddTab()
	s.MarkRunning("t1", "SELECT 1")

	bar = s.TabBar()
	require.Len(t, bar, 2)
	assert.True(t, bar[0].Closeable)
	assert.True(t, bar[1].Closeable)
	assert.True(t, bar[0].Running)
	assert.False(t, bar[0].Active)
	assert.True(t, bar[1].Active)
	assert.Equal(t, "Query 2", bar[1].Title)
}

func TestSubscribe_ReceivesEvents(t *testing.T) {
	s := newTestStore()
	events, unsubscribe := s.Subscribe()
	defer unsubscribe()

	tab := s.AddTab()

	select {
	case ev := <-events:
		assert.Equal(t, EventTabAdded, ev.Kind)
		assert.Equal(t, tab.ID, ev.TabID)
		assert.Equal(t, s.Revision(), ev.Revision)
	case <-time.After(time.Second):
		t.Fatal("expected an event")
	}
}

func TestSubscribe_SlowSubscriberNeverBlocks(t *testing.T) {
	s := newTestStore()
	_, unsubscribe := s.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			s.SetTabSQL("t1", fmt.Sprintf("SELECT %d", i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("mutations blocked on an undrained subscriber")
	}
}

func TestSubscribe_RevisionsArriveInOrder(t *testing.T) {
	s := newTestStore()
	events, unsubscribe := s.Subscribe()

	received := make(chan []uint64)
	go func() {
		var revs []uint64
		for ev := range events {
			revs = append(revs, ev.Revision)
		}
		received <- revs
	}()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				s.SetTabSQL("t1", fmt.Sprintf("SELECT %d", i))
			}
		}()
	}
	wg.Wait()
	unsubscribe()

	revs := <-received
	require.NotEmpty(t, revs)
	for i := 1; i < len(revs); i++ {
		require.Greater(t, revs[i], revs[i-1], "revision %d delivered after %d", revs[i], revs[i-1])
	}
}

func TestSubscribe_UnsubscribeClosesChannel(t *testing.T) {
	s := newTestStore()
	events, unsubscribe := s.Subscribe()

	unsubscribe()
	unsubscribe()

	_, open := <-events
	assert.False(t, open)
	s.AddTab() // must not panic on a closed channel
}

func TestInvariants_RandomTabOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := newTestStore()

	for i := 0; i < 2000; i++ {
		n := s.Len()
		switch rng.Intn(3) {
		case 0:
			s.AddTab()
		case 1:
			_, _, err := s.CloseTab(rng.Intn(n))
			require.NoError(t, err)
		case 2:
			require.NoError(t, s.SelectTab(rng.Intn(n)))
		}

		snap := s.Snapshot()
		require.GreaterOrEqual(t, len(snap.Tabs), 1, "session must never be tab-less")
		require.GreaterOrEqual(t, snap.ActiveTabIndex, 0)
		require.Less(t, snap.ActiveTabIndex, len(snap.Tabs))
	}
}
