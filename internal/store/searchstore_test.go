package store

import (
	"testing"
	"time"

	"github.com/Ingramml/ca-lobby-mono/internal/models"
)

func strp(s string) *string   { return &s }
func f64p(v float64) *float64 { return &v }

func TestSearchStoreFiltersShallowMerge(t *testing.T) {
	s := NewSearchStore(5)

	s.UpdateFilters(FilterPatch{Organization: strp("ACME"), AmountMin: f64p(100)})
	s.UpdateFilters(FilterPatch{Category: strp("Health")})

	f := s.CurrentFilters()
	if f.Organization != "ACME" {
		t.Errorf("partial update erased organization: %+v", f)
	}
	if f.AmountMin != 100 || f.Category != "Health" {
		t.Errorf("filters = %+v", f)
	}

	// Explicitly clearing one field must not touch the others.
	s.UpdateFilters(FilterPatch{Organization: strp("")})
	f = s.CurrentFilters()
	if f.Organization != "" || f.Category != "Health" {
		t.Errorf("filters after clear = %+v", f)
	}
}

func TestSearchStoreResultsClearLoading(t *testing.T) {
	s := NewSearchStore(5)

	s.SetQuery("health")
	s.StartSearch()
	if !s.Loading() {
		t.Fatal("StartSearch must set loading")
	}

	s.SetResults([]models.Activity{{Organization: "ACME", Amount: 1}})
	if s.Loading() {
		t.Error("SetResults must clear loading")
	}
	if s.LastSearch().IsZero() {
		t.Error("SetResults must stamp the last-search time")
	}
	if len(s.Results()) != 1 {
		t.Errorf("results = %v", s.Results())
	}
}

func TestSearchStoreHistoryEviction(t *testing.T) {
	s := NewSearchStore(3)

	for _, q := range []string{"a", "b", "c", "d"} {
		s.SetQuery(q)
		s.StartSearch()
	}

	h := s.History()
	if len(h) != 3 {
		t.Fatalf("history length = %d, want cap of 3", len(h))
	}
	if h[0].Query != "d" || h[2].Query != "b" {
		t.Errorf("history order = %v, want most-recent-first with oldest evicted", h)
	}

	s.ClearHistory()
	if len(s.History()) != 0 {
		t.Error("ClearHistory left entries behind")
	}
}

func TestSearchStoreSnapshotAllowList(t *testing.T) {
	s := NewSearchStore(5)
	s.now = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }

	s.SetQuery("teachers union")
	s.UpdateFilters(FilterPatch{Category: strp("Education")})
	s.StartSearch()
	s.SetResults([]models.Activity{{Organization: "CTA", Amount: 2}})
	s.SetError("late failure")

	data, err := s.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	restored := NewSearchStore(5)
	if err := restored.Restore(data); err != nil {
		t.Fatal(err)
	}

	if restored.Query() != "teachers union" {
		t.Errorf("query = %q", restored.Query())
	}
	if restored.CurrentFilters().Category != "Education" {
		t.Errorf("filters = %+v", restored.CurrentFilters())
	}
	if len(restored.History()) != 1 {
		t.Errorf("history = %v", restored.History())
	}
	// Results, loading and error are outside the persistence allow-list.
	if len(restored.Results()) != 0 || restored.Loading() || restored.Error() != "" {
		t.Error("transient state leaked through the snapshot")
	}
}

func TestSearchStoreRestoreRecapsHistory(t *testing.T) {
	big := NewSearchStore(10)
	for _, q := range []string{"a", "b", "c", "d", "e"} {
		big.SetQuery(q)
		big.StartSearch()
	}
	data, err := big.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	small := NewSearchStore(2)
	if err := small.Restore(data); err != nil {
		t.Fatal(err)
	}
	if got := len(small.History()); got != 2 {
		t.Errorf("restored history length = %d, want re-capped 2", got)
	}
}

func TestSearchStoreSubscribe(t *testing.T) {
	s := NewSearchStore(5)

	calls := 0
	unsub := s.Subscribe(func() { calls++ })

	s.SetQuery("x")
	s.StartSearch()
	s.SetResults(nil)
	if calls != 3 {
		t.Errorf("subscriber ran %d times, want 3", calls)
	}

	unsub()
	s.SetQuery("y")
	if calls != 3 {
		t.Error("subscriber ran after unsubscribe")
	}
}
