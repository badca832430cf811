package state

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/renato0307/sqldesk/internal/domain"
)

// EventKind identifies what changed in the store
type EventKind string

const (
	EventActiveChanged  EventKind = "active_changed"
	EventHistoryChanged EventKind = "history_changed"
	EventTabAdded       EventKind = "tab_added"
	EventTabClosed      EventKind = "tab_closed"
	EventTabUpdated     EventKind = "tab_updated"
)

// Event is a change notification delivered to subscribers.
// Events carry no state: subscribers read a Snapshot to render.
type Event struct {
	Kind     EventKind
	Revision uint64
	TabID    string
}

// ApplyOutcome reports what a resolution did to the session
type ApplyOutcome struct {
	Applied  bool // tab result was replaced
	TabFound bool // originating tab still exists
}

// tabState is a tab plus the dispatch bookkeeping the store keeps for it
type tabState struct {
	inFlight int
	lastSeq  uint64
	tab      domain.QueryTab
}

// Store owns the query session: tabs, the active tab pointer and the history log.
// All mutations are serialized; readers receive detached copies.
type Store struct {
	active      int
	history     *History
	mu          sync.Mutex
	newID       func() string
	nextSubID   int
	revision    uint64
	subscribers map[int]chan Event
	tabCounter  int
	tabs        []*tabState
}

// Option configures a Store
type Option func(*Store)

// WithHistoryLimit caps the history log; limit <= 0 keeps it unbounded
func WithHistoryLimit(limit int) Option {
	return func(s *Store) {
		s.history = NewHistory(limit)
	}
}

// WithIDGenerator replaces the uuid based tab identifier generator
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// NewStore creates a session with exactly one empty tab
func NewStore(opts ...Option) *Store {
	s := &Store{
		history:     NewHistory(DefaultHistoryLimit),
		newID:       func() string { return uuid.New().String() },
		subscribers: make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tabs = []*tabState{s.newTab()}
	return s
}

// newTab must be called with mu held (or before the store is shared)
func (s *Store) newTab() *tabState {
	s.tabCounter++
	return &tabState{
		tab: domain.QueryTab{
			ID:    s.newID(),
			Title: domain.DefaultTabTitle(s.tabCounter),
		},
	}
}

// AddTab appends a fresh tab and makes it active
func (s *Store) AddTab() domain.QueryTab {
	s.mu.Lock()
	ts := s.newTab()
	s.tabs = append(s.tabs, ts)
	s.active = len(s.tabs) - 1
	tab := ts.tab.Clone()
	s.notifyLocked(EventTabAdded, tab.ID)
	s.mu.Unlock()
	return tab
}

// CloseTab removes the tab at index and returns it.
// Closing the last remaining tab is a no-op (ok is false, err is nil).
// An out of range index is a caller bug and returns ErrTabIndexOutOfRange.
func (s *Store) CloseTab(index int) (closed domain.QueryTab, ok bool, err error) {
	s.mu.Lock()
	if len(s.tabs) <= 1 {
		s.mu.Unlock()
		return domain.QueryTab{}, false, nil
	}
	if index < 0 || index >= len(s.tabs) {
		s.mu.Unlock()
		return domain.QueryTab{}, false, domain.ErrTabIndexOutOfRange
	}

	removed := s.tabs[index]
	s.tabs = append(s.tabs[:index], s.tabs[index+1:]...)
	if s.active >= len(s.tabs) {
		s.active = len(s.tabs) - 1
	}
	s.notifyLocked(EventTabClosed, removed.tab.ID)
	s.mu.Unlock()
	return removed.tab.Clone(), true, nil
}

// SelectTab makes the tab at index active
func (s *Store) SelectTab(index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.tabs) {
		s.mu.Unlock()
		return domain.ErrTabIndexOutOfRange
	}
	if s.active == index {
		s.mu.Unlock()
		return nil
	}
	s.active = index
	s.notifyLocked(EventActiveChanged, s.tabs[index].tab.ID)
	s.mu.Unlock()
	return nil
}

// SetTabSQL replaces the editor text of a tab. Returns false if the tab is gone.
func (s *Store) SetTabSQL(tabID, text string) bool {
	s.mu.Lock()
	ts := s.findLocked(tabID)
	if ts == nil {
		s.mu.Unlock()
		return false
	}
	if ts.tab.SQL == text {
		s.mu.Unlock()
		return true
	}
	ts.tab.SQL = text
	s.notifyLocked(EventTabUpdated, tabID)
	s.mu.Unlock()
	return true
}

// RenameTab changes a tab title. Blank titles and missing tabs are ignored.
func (s *Store) RenameTab(tabID, title string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return false
	}

	s.mu.Lock()
	ts := s.findLocked(tabID)
	if ts == nil {
		s.mu.Unlock()
		return false
	}
	ts.tab.Title = title
	s.notifyLocked(EventTabUpdated, tabID)
	s.mu.Unlock()
	return true
}

// RestoreIntoActive copies sql into the active tab and returns that tab's ID.
// Nothing is executed.
func (s *Store) RestoreIntoActive(sql string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := s.tabs[s.active]
	ts.tab.SQL = sql
	s.notifyLocked(EventTabUpdated, ts.tab.ID)
	return ts.tab.ID
}

// MarkRunning records a new dispatch for a tab: the tab becomes running and its SQL
// is set to the dispatched text. It returns the dispatch sequence number for the tab.
func (s *Store) MarkRunning(tabID, sql string) (uint64, bool) {
	s.mu.Lock()
	ts := s.findLocked(tabID)
	if ts == nil {
		s.mu.Unlock()
		return 0, false
	}
	ts.lastSeq++
	ts.inFlight++
	ts.tab.SQL = sql
	ts.tab.IsRunning = true
	seq := ts.lastSeq
	s.notifyLocked(EventTabUpdated, tabID)
	s.mu.Unlock()
	return seq, true
}

// ApplyResolution applies a resolved dispatch to its originating tab, looked up by ID.
// A missing tab is not an error: the outcome reports TabFound=false and nothing changes.
// Under LatestDispatchWins a resolution older than the tab's latest dispatch only
// releases its running slot and keeps the current result.
func (s *Store) ApplyResolution(tabID string, seq uint64, result domain.QueryResult, policy domain.OverlapPolicy) ApplyOutcome {
	s.mu.Lock()
	ts := s.findLocked(tabID)
	if ts == nil {
		s.mu.Unlock()
		return ApplyOutcome{}
	}

	if ts.inFlight > 0 {
		ts.inFlight--
	}
	ts.tab.IsRunning = ts.inFlight > 0

	applied := true
	if policy == domain.LatestDispatchWins && seq < ts.lastSeq {
		applied = false
	}
	if applied {
		res := result.Clone()
		ts.tab.Result = &res
	}
	s.notifyLocked(EventTabUpdated, tabID)
	s.mu.Unlock()
	return ApplyOutcome{Applied: applied, TabFound: true}
}

// PushHistory appends an entry to the history log, evicting the oldest when full
func (s *Store) PushHistory(entry domain.QueryHistoryEntry) {
	s.mu.Lock()
	s.history.Append(entry)
	s.notifyLocked(EventHistoryChanged, entry.TabID)
	s.mu.Unlock()
}

// LoadHistory seeds the log with previously persisted entries (oldest first)
func (s *Store) LoadHistory(entries []domain.QueryHistoryEntry) {
	if len(entries) == 0 {
		return
	}

	s.mu.Lock()
	for _, e := range entries {
		s.history.Append(e)
	}
	s.notifyLocked(EventHistoryChanged, "")
	s.mu.Unlock()
}

// ClearHistory drops the whole history log
func (s *Store) ClearHistory() {
	s.mu.Lock()
	s.history.Clear()
	s.notifyLocked(EventHistoryChanged, "")
	s.mu.Unlock()
}

// ActiveTab returns the active tab
func (s *Store) ActiveTab() domain.QueryTab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabs[s.active].tab.Clone()
}

// ActiveTabIndex returns the index of the active tab
func (s *Store) ActiveTabIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Tab returns the tab with the given ID
func (s *Store) Tab(tabID string) (domain.QueryTab, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := s.findLocked(tabID)
	if ts == nil {
		return domain.QueryTab{}, false
	}
	return ts.tab.Clone(), true
}

// Tabs returns copies of all tabs in order
func (s *Store) Tabs() []domain.QueryTab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabsLocked()
}

// Len returns the number of open tabs
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tabs)
}

// History returns the history log, oldest first
func (s *Store) History() []domain.QueryHistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Entries()
}

// HistoryLimit returns the history capacity (0 for unbounded)
func (s *Store) HistoryLimit() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Limit()
}

// Snapshot returns a consistent copy of the whole session
func (s *Store) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.SessionSnapshot{
		ActiveTabIndex: s.active,
		History:        s.history.Entries(),
		Revision:       s.revision,
		Tabs:           s.tabsLocked(),
	}
}

// TabBar projects the tabs for display; it is recomputed on every call
func (s *Store) TabBar() []domain.TabView {
	s.mu.Lock()
	defer s.mu.Unlock()
	closeable := len(s.tabs) > 1
	views := make([]domain.TabView, len(s.tabs))
	for i, ts := range s.tabs {
		views[i] = domain.TabView{
			Active:    i == s.active,
			Closeable: closeable,
			ID:        ts.tab.ID,
			Running:   ts.tab.IsRunning,
			Title:     ts.tab.Title,
		}
	}
	return views
}

// Revision returns a counter incremented by every mutation
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Subscribe registers for change notifications.
// Delivery never blocks a mutation: a subscriber that has not drained its
// pending event misses intermediate ones and should re-read a Snapshot.
// Revisions received on one channel are strictly increasing.
func (s *Store) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan Event, 1)
	s.subscribers[id] = ch

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, unsubscribe
}

func (s *Store) findLocked(tabID string) *tabState {
	for _, ts := range s.tabs {
		if ts.tab.ID == tabID {
			return ts
		}
	}
	return nil
}

func (s *Store) tabsLocked() []domain.QueryTab {
	out := make([]domain.QueryTab, len(s.tabs))
	for i, ts := range s.tabs {
		out[i] = ts.tab.Clone()
	}
	return out
}

// notifyLocked bumps the revision and offers the event to every subscriber.
// Sends happen under mu so each subscriber sees revisions in increasing order.
func (s *Store) notifyLocked(kind EventKind, tabID string) {
	s.revision++
	ev := Event{Kind: kind, Revision: s.revision, TabID: tabID}
	for _, ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}
