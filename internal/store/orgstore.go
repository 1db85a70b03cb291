// Package store holds the derived-state containers the dashboard views read
// from. Stores are plain constructor-built objects with a subscribe/notify
// interface; there are no package-level singletons, so tests and callers can
// run isolated instances.
package store

import (
	"sync"

	"github.com/Ingramml/ca-lobby-mono/internal/analytics"
	"github.com/Ingramml/ca-lobby-mono/internal/models"
)

// OrgState is the load state of the organization profile store.
type OrgState int

const (
	OrgEmpty OrgState = iota
	OrgLoading
	OrgReady
	OrgError
)

func (s OrgState) String() string {
	switch s {
	case OrgLoading:
		return "loading"
	case OrgReady:
		return "ready"
	case OrgError:
		return "error"
	default:
		return "empty"
	}
}

// OrgStore holds the currently selected organization, its raw activities and
// every derived projection of them. Select hands back a generation token;
// results delivered with an older token are dropped, so a slow fetch can
// never overwrite the state of a newer selection.
type OrgStore struct {
	mu sync.Mutex

	state        OrgState
	selected     string
	gen          uint64
	errMsg       string
	activities   []models.Activity
	metrics      models.Metrics
	network      []models.LobbyistEntry
	trends       []models.TrendBucket
	related      []models.RelatedOrg
	page         int
	pageSize     int
	relatedLimit int
	period       analytics.Period

	subMu sync.Mutex
	subs  map[int]func()
	nextS int
}

// NewOrgStore builds an empty store. pageSize bounds client-side pagination
// over the loaded activity list; relatedLimit and period parameterize the
// derived collections.
func NewOrgStore(pageSize, relatedLimit int, period analytics.Period) *OrgStore {
	if pageSize <= 0 {
		pageSize = 25
	}
	if relatedLimit <= 0 {
		relatedLimit = 5
	}
	return &OrgStore{
		pageSize:     pageSize,
		relatedLimit: relatedLimit,
		period:       period,
		subs:         make(map[int]func()),
	}
}

// Select begins loading an organization and returns the generation token the
// caller must present with the load's outcome. A second Select before the
// first resolves supersedes it: last select wins.
func (s *OrgStore) Select(org string) uint64 {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.selected = org
	s.state = OrgLoading
	s.errMsg = ""
	s.mu.Unlock()

	s.notify()
	return gen
}

// SetActivities resolves the load for the given generation and recomputes
// every derived collection. Results tagged with a superseded generation are
// silently discarded. pool is the full raw-row set used to rank related
// organizations; it may be nil, in which case the organization's own
// activities stand in.
func (s *OrgStore) SetActivities(gen uint64, activities, pool []models.Activity) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	if pool == nil {
		pool = activities
	}
	s.activities = activities
	s.metrics = analytics.AggregateMetrics(activities)
	s.network = analytics.ExtractLobbyistNetwork(activities)
	s.trends = analytics.CalculateSpendingTrends(activities, s.period)
	s.related = analytics.FindRelatedOrganizations(s.selected, pool, s.relatedLimit)
	s.page = 0
	s.state = OrgReady
	s.errMsg = ""
	s.mu.Unlock()

	s.notify()
}

// SetError moves the store to the error state. Previously loaded data is
// cleared rather than kept stale; that trade of resilience for simplicity is
// deliberate.
func (s *OrgStore) SetError(gen uint64, msg string) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.state = OrgError
	s.errMsg = msg
	s.clearDerivedLocked()
	s.mu.Unlock()

	s.notify()
}

// Clear resets the store to its initial empty state.
func (s *OrgStore) Clear() {
	s.mu.Lock()
	s.gen++
	s.state = OrgEmpty
	s.selected = ""
	s.errMsg = ""
	s.clearDerivedLocked()
	s.mu.Unlock()

	s.notify()
}

func (s *OrgStore) clearDerivedLocked() {
	s.activities = nil
	s.metrics = models.Metrics{}
	s.network = nil
	s.trends = nil
	s.related = nil
	s.page = 0
}

// State reports the current load state and error message, if any.
func (s *OrgStore) State() (OrgState, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.errMsg
}

// Selected returns the organization the store currently tracks.
func (s *OrgStore) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Metrics returns the aggregated metrics for the loaded organization.
func (s *OrgStore) Metrics() models.Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}

// Network returns the lobbyist network entries.
func (s *OrgStore) Network() []models.LobbyistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.LobbyistEntry(nil), s.network...)
}

// Trends returns the spending trend buckets.
func (s *OrgStore) Trends() []models.TrendBucket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.TrendBucket(nil), s.trends...)
}

// Related returns the similarity-ranked related organizations.
func (s *OrgStore) Related() []models.RelatedOrg {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.RelatedOrg(nil), s.related...)
}

// Page returns the zero-based current page index.
func (s *OrgStore) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// PageCount reports how many pages the loaded activity list spans.
func (s *OrgStore) PageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.activities) == 0 {
		return 0
	}
	return (len(s.activities) + s.pageSize - 1) / s.pageSize
}

// SetPage moves the pagination window. Out-of-range values clamp. Changing
// page never refetches or re-aggregates; the derived collections cover the
// full set regardless of the visible page.
func (s *OrgStore) SetPage(page int) {
	s.mu.Lock()
	max := 0
	if len(s.activities) > 0 {
		max = (len(s.activities)+s.pageSize-1)/s.pageSize - 1
	}
	if page < 0 {
		page = 0
	}
	if page > max {
		page = max
	}
	changed := page != s.page
	s.page = page
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// PageActivities returns the slice of activities on the current page.
func (s *OrgStore) PageActivities() []models.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := s.page * s.pageSize
	if start >= len(s.activities) {
		return nil
	}
	end := start + s.pageSize
	if end > len(s.activities) {
		end = len(s.activities)
	}
	return append([]models.Activity(nil), s.activities[start:end]...)
}

// Subscribe registers fn to run after every state change and returns an
// unsubscribe func.
func (s *OrgStore) Subscribe(fn func()) func() {
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

func (s *OrgStore) notify() {
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
