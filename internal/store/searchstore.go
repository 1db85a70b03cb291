package store

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/Ingramml/ca-lobby-mono/internal/models"
)

// Filters narrow a search. The zero value means "no filter".
type Filters struct {
	Organization string  `json:"organization,omitempty"`
	Lobbyist     string  `json:"lobbyist,omitempty"`
	Category     string  `json:"category,omitempty"`
	DateFrom     string  `json:"date_from,omitempty"`
	DateTo       string  `json:"date_to,omitempty"`
	AmountMin    float64 `json:"amount_min,omitempty"`
	AmountMax    float64 `json:"amount_max,omitempty"`
}

// FilterPatch is a partial filter update. Nil fields leave the existing
// value alone, so a patch never erases filters it does not mention.
type FilterPatch struct {
	Organization *string
	Lobbyist     *string
	Category     *string
	DateFrom     *string
	DateTo       *string
	AmountMin    *float64
	AmountMax    *float64
}

// HistoryEntry is one remembered search.
type HistoryEntry struct {
	Query   string    `json:"query"`
	Filters Filters   `json:"filters"`
	At      time.Time `json:"at"`
}

// SearchStore holds the current query, filters, raw result rows, and a
// bounded most-recent-first search history. The history's only removal
// mechanisms are cap eviction and an explicit clear.
type SearchStore struct {
	mu sync.Mutex

	query      string
	filters    Filters
	results    []models.Activity
	loading    bool
	errMsg     string
	history    []HistoryEntry
	historyCap int
	lastSearch time.Time
	now        func() time.Time

	subMu sync.Mutex
	subs  map[int]func()
	nextS int
}

// NewSearchStore builds an empty store whose history holds at most cap
// entries.
func NewSearchStore(cap int) *SearchStore {
	if cap <= 0 {
		cap = 10
	}
	return &SearchStore{
		historyCap: cap,
		now:        time.Now,
		subs:       make(map[int]func()),
	}
}

// SetQuery replaces the current query text.
func (s *SearchStore) SetQuery(q string) {
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()
	s.notify()
}

// UpdateFilters shallow-merges a partial update into the current filters.
func (s *SearchStore) UpdateFilters(p FilterPatch) {
	s.mu.Lock()
	if p.Organization != nil {
		s.filters.Organization = *p.Organization
	}
	if p.Lobbyist != nil {
		s.filters.Lobbyist = *p.Lobbyist
	}
	if p.Category != nil {
		s.filters.Category = *p.Category
	}
	if p.DateFrom != nil {
		s.filters.DateFrom = *p.DateFrom
	}
	if p.DateTo != nil {
		s.filters.DateTo = *p.DateTo
	}
	if p.AmountMin != nil {
		s.filters.AmountMin = *p.AmountMin
	}
	if p.AmountMax != nil {
		s.filters.AmountMax = *p.AmountMax
	}
	s.mu.Unlock()
	s.notify()
}

// StartSearch marks a search in flight and records the query and filters at
// the head of the history, evicting the oldest entry past the cap.
func (s *SearchStore) StartSearch() {
	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	entry := HistoryEntry{Query: s.query, Filters: s.filters, At: s.now()}
	s.history = append([]HistoryEntry{entry}, s.history...)
	if len(s.history) > s.historyCap {
		s.history = s.history[:s.historyCap]
	}
	s.mu.Unlock()
	s.notify()
}

// SetResults stores the raw rows for the current search, clears the loading
// flag and stamps the last-search time.
func (s *SearchStore) SetResults(rows []models.Activity) {
	s.mu.Lock()
	s.results = rows
	s.loading = false
	s.errMsg = ""
	s.lastSearch = s.now()
	s.mu.Unlock()
	s.notify()
}

// SetError records a failed search.
func (s *SearchStore) SetError(msg string) {
	s.mu.Lock()
	s.loading = false
	s.errMsg = msg
	s.mu.Unlock()
	s.notify()
}

// ClearHistory drops all remembered searches.
func (s *SearchStore) ClearHistory() {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
	s.notify()
}

// Query returns the current query text.
func (s *SearchStore) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// CurrentFilters returns the active filter set.
func (s *SearchStore) CurrentFilters() Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// Results returns the raw rows from the last completed search.
func (s *SearchStore) Results() []models.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Activity(nil), s.results...)
}

// Loading reports whether a search is in flight.
func (s *SearchStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Error returns the last search error, empty when none.
func (s *SearchStore) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// History returns the remembered searches, most recent first.
func (s *SearchStore) History() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]HistoryEntry(nil), s.history...)
}

// LastSearch returns when results last arrived.
func (s *SearchStore) LastSearch() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSearch
}

// persistedSearchState is the serialization allow-list: query, filters and
// history survive a reload; results, loading and error never do.
type persistedSearchState struct {
	Query   string         `json:"query"`
	Filters Filters        `json:"filters"`
	History []HistoryEntry `json:"history"`
}

// Snapshot serializes the persisted subset of the store's state.
func (s *SearchStore) Snapshot() ([]byte, error) {
	s.mu.Lock()
	state := persistedSearchState{
		Query:   s.query,
		Filters: s.filters,
		History: append([]HistoryEntry(nil), s.history...),
	}
	s.mu.Unlock()
	return json.Marshal(state)
}

// Restore loads a snapshot produced by Snapshot. Fields outside the
// allow-list keep their zero values; history is re-capped in case the cap
// shrank between runs.
func (s *SearchStore) Restore(data []byte) error {
	var state persistedSearchState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	s.mu.Lock()
	s.query = state.Query
	s.filters = state.Filters
	s.history = state.History
	if len(s.history) > s.historyCap {
		s.history = s.history[:s.historyCap]
	}
	s.results = nil
	s.loading = false
	s.errMsg = ""
	s.mu.Unlock()
	s.notify()
	return nil
}

// Subscribe registers fn to run after every state change and returns an
// unsubscribe func.
func (s *SearchStore) Subscribe(fn func()) func() {
	s.subMu.Lock()
	id := s.nextS
	s.nextS++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *SearchStore) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
