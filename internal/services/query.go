package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/renato0307/sqldesk/internal/domain"
	"github.com/renato0307/sqldesk/internal/logging"
	"github.com/renato0307/sqldesk/internal/ports"
	"github.com/renato0307/sqldesk/internal/state"
)

// Dispatch is one execution request in flight.
// TabID, SQL and Database are captured at dispatch time and never change.
type Dispatch struct {
	Database     string
	DispatchedAt time.Time
	ID           uint64
	SQL          string
	Seq          uint64
	TabID        string

	cancel     context.CancelFunc
	ctx        context.Context
	discarded  bool // guarded by QueryService.mu
	done       chan struct{}
	once       sync.Once
	resolution Resolution
}

// Done is closed once the dispatch has resolved
func (d *Dispatch) Done() <-chan struct{} {
	return d.done
}

// Resolution is the applied outcome of a dispatch
type Resolution struct {
	Applied    bool                      // result replaced the tab's result
	DispatchID uint64                    // dispatch that produced it
	Entry      *domain.QueryHistoryEntry // nil when the history entry was dropped
	Result     domain.QueryResult        // normalized result, Error set on failure
	TabFound   bool                      // originating tab still existed
	TabID      string
}

// QueryServiceOptions configures a QueryService
type QueryServiceOptions struct {
	ClosePolicy   domain.ClosePolicy
	Database      string
	History       ports.HistoryWriter // optional persistence of history entries
	NewID         func() string
	Now           func() time.Time
	OverlapPolicy domain.OverlapPolicy
}

// QueryService coordinates query executions between the session store and the backend.
// It never returns backend failures as errors: every failure becomes QueryResult.Error.
type QueryService struct {
	closePolicy   domain.ClosePolicy
	database      string
	executor      ports.QueryExecutor
	history       ports.HistoryWriter
	mu            sync.Mutex
	newID         func() string
	nextID        atomic.Uint64
	now           func() time.Time
	outstanding   map[uint64]*Dispatch
	overlapPolicy domain.OverlapPolicy
	persistMu     sync.Mutex                 // serializes history writes
	pending       []domain.QueryHistoryEntry // resolved entries not yet persisted, guarded by mu
	store         *state.Store
	wg            sync.WaitGroup
}

// NewQueryService creates a new QueryService
func NewQueryService(
	store *state.Store,
	executor ports.QueryExecutor,
	opts QueryServiceOptions,
) *QueryService {
	s := &QueryService{
		closePolicy:   opts.ClosePolicy,
		database:      opts.Database,
		executor:      executor,
		history:       opts.History,
		newID:         opts.NewID,
		now:           opts.Now,
		outstanding:   make(map[uint64]*Dispatch),
		overlapPolicy: opts.OverlapPolicy,
		store:         store,
	}
	if s.closePolicy == "" {
		s.closePolicy = domain.KeepRunningOnClose
	}
	if s.overlapPolicy == "" {
		s.overlapPolicy = domain.LastResolutionWins
	}
	if s.newID == nil {
		s.newID = func() string { return uuid.New().String() }
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Store returns the session store the service operates on
func (s *QueryService) Store() *state.Store {
	return s.store
}

// Database returns the database name sent with new dispatches
func (s *QueryService) Database() string {
	return s.database
}


// Dispatch marks the tab as running and registers an execution.
// It does not call the backend; pass the result to Await (typically in another
// goroutine) to run and resolve it. Blank SQL and missing tabs resolve immediately.
func (s *QueryService) Dispatch(ctx context.Context, tabID, sql string) *Dispatch {
	d := &Dispatch{
		Database:     s.Database(),
		DispatchedAt: s.now(),
		ID:           s.nextID.Add(1),
		SQL:          sql,
		TabID:        tabID,
		done:         make(chan struct{}),
	}

	seq, ok := s.store.MarkRunning(tabID, sql)
	if !ok {
		logging.Logger.Warn("Execute requested for unknown tab", "tab_id", tabID)
		d.resolution = Resolution{
			DispatchID: d.ID,
			Result:     domain.NewErrorResult(domain.ErrTabNotFound.Error()),
			TabID:      tabID,
		}
		d.once.Do(func() {})
		close(d.done)
		return d
	}
	d.Seq = seq
	d.ctx, d.cancel = context.WithCancel(ctx)

	s.mu.Lock()
	s.outstanding[d.ID] = d
	s.wg.Add(1)
	s.mu.Unlock()

	logging.Logger.Debug("Query dispatched",
		"dispatch_id", d.ID,
		"tab_id", tabID,
		"seq", seq,
		"database", d.Database)

	if domain.IsBlankSQL(sql) {
		d.once.Do(func() {
			s.resolve(d, domain.NewErrorResult(domain.EmptyQueryMessage))
		})
	}

	return d
}

// Await runs the backend call for a dispatch and applies its resolution.
// It is safe to call more than once; the backend is invoked at most once.
func (s *QueryService) Await(d *Dispatch) Resolution {
	d.once.Do(func() {
		s.resolve(d, s.call(d))
	})
	<-d.done
	return d.resolution
}

// Execute dispatches and awaits in the calling goroutine
func (s *QueryService) Execute(ctx context.Context, tabID, sql string) Resolution {
	return s.Await(s.Dispatch(ctx, tabID, sql))
}

// CloseTab closes a tab and applies the close policy to its in-flight dispatches
func (s *QueryService) CloseTab(index int) (domain.QueryTab, bool, error) {
	s.mu.Lock()
	closed, ok, err := s.store.CloseTab(index)
	if err != nil || !ok {
		s.mu.Unlock()
		return closed, ok, err
	}

	var cancelled int
	if s.closePolicy == domain.CancelOnClose {
		for _, d := range s.outstanding {
			if d.TabID == closed.ID && !d.discarded {
				d.discarded = true
				d.cancel()
				cancelled++
			}
		}
	}
	s.mu.Unlock()

	logging.Logger.Info("Tab closed",
		"tab_id", closed.ID,
		"was_running", closed.IsRunning,
		"cancelled_dispatches", cancelled)
	return closed, true, nil
}

// Restore copies SQL from history into the active tab without executing it
func (s *QueryService) Restore(sql string) string {
	tabID := s.store.RestoreIntoActive(sql)
	logging.Logger.Debug("History restored into tab", "tab_id", tabID)
	return tabID
}

// Outstanding returns the number of unresolved dispatches
func (s *QueryService) Outstanding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.outstanding)
}

// Wait blocks until every dispatch registered so far has resolved
func (s *QueryService) Wait() {
	s.wg.Wait()
}

// call invokes the backend and normalizes whatever it returns.
// A panicking backend is reported like any other backend failure.
func (s *QueryService) call(d *Dispatch) (result domain.QueryResult) {
	defer func() {
		if r := recover(); r != nil {
			logging.Logger.Error("Query backend panicked", "dispatch_id", d.ID, "panic", r)
			result = domain.NewErrorResult(fmt.Sprintf("backend failure: %v", r))
		}
	}()

	start := s.now()
	res, err := s.executor.Execute(d.ctx, d.SQL, d.Database)
	if err != nil {
		logging.Logger.Warn("Query backend error",
			"dispatch_id", d.ID,
			"tab_id", d.TabID,
			"duration", s.now().Sub(start),
			"error", err)
	}
	return normalizeResult(res, err)
}

// resolve applies a result exactly once: tab update (if the tab still exists),
// history append and persistence. It releases the dispatch bookkeeping.
func (s *QueryService) resolve(d *Dispatch, result domain.QueryResult) {
	defer func() {
		d.cancel()
		s.mu.Lock()
		delete(s.outstanding, d.ID)
		s.mu.Unlock()
		s.wg.Done()
		close(d.done)
	}()

	res := Resolution{
		DispatchID: d.ID,
		Result:     result,
		TabID:      d.TabID,
	}

	s.mu.Lock()
	if d.discarded {
		s.mu.Unlock()
		d.resolution = res
		logging.Logger.Info("Dropped resolution of cancelled dispatch", "dispatch_id", d.ID, "tab_id", d.TabID)
		return
	}

	outcome := s.store.ApplyResolution(d.TabID, d.Seq, result, s.overlapPolicy)
	entry := domain.QueryHistoryEntry{
		Database:        d.Database,
		Error:           result.Error,
		ExecutedAt:      s.now(),
		ExecutionTimeMs: result.ExecutionTimeMs,
		ID:              s.newID(),
		RowCount:        result.RowCount,
		SQL:             d.SQL,
		Success:         !result.Failed(),
		TabID:           d.TabID,
	}
	s.store.PushHistory(entry)
	if s.history != nil {
		s.pending = append(s.pending, entry)
	}
	s.mu.Unlock()

	res.Applied = outcome.Applied
	res.Entry = &entry
	res.TabFound = outcome.TabFound
	d.resolution = res

	logging.Logger.Info("Query resolved",
		"dispatch_id", d.ID,
		"tab_id", d.TabID,
		"success", entry.Success,
		"rows", entry.RowCount,
		"execution_time_ms", entry.ExecutionTimeMs,
		"tab_found", outcome.TabFound,
		"applied", outcome.Applied)

	if s.history != nil {
		s.persistPending()
	}
}

// persistPending writes queued history entries in the order they were resolved.
// Whichever resolver holds persistMu drains the queue, so a slow write delays
// later entries instead of letting them overtake it.
func (s *QueryService) persistPending() {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.mu.Unlock()
			return
		}
		entry := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		if err := s.history.Append(context.Background(), entry); err != nil {
			logging.Logger.Error("Failed to persist history entry", "entry_id", entry.ID, "error", err)
		}
	}
}

// normalizeResult turns a backend response into a displayable result
func normalizeResult(res *domain.QueryResult, err error) domain.QueryResult {
	if err != nil {
		return domain.NewErrorResult(err.Error())
	}
	if res == nil {
		return domain.NewErrorResult("backend returned no result")
	}
	if res.Failed() {
		return domain.NewErrorResult(res.Error)
	}

	out := res.Clone()
	if out.RowCount < 0 {
		out.RowCount = 0
	}
	if out.ExecutionTimeMs < 0 {
		out.ExecutionTimeMs = 0
	}
	return out
}
