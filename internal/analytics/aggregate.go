// Package analytics turns raw disclosure records into the derived numbers
// the dashboard views display. Every function here is pure: inputs are never
// mutated, outputs are deterministic, and empty or malformed input produces
// zero-valued defaults instead of errors.
package analytics

import (
	"sort"

	"github.com/Ingramml/ca-lobby-mono/internal/models"
)

// AggregateMetrics computes the headline metrics for a record set.
// An empty input yields the all-zero defaults with "N/A" dates and category.
func AggregateMetrics(activities []models.Activity) models.Metrics {
	if len(activities) == 0 {
		return models.Metrics{FirstActivity: "N/A", LastActivity: "N/A", TopCategory: "N/A"}
	}

	var total float64
	for _, a := range activities {
		total += a.Amount
	}

	m := models.Metrics{
		TotalSpending:   total,
		TotalActivities: len(activities),
		AverageAmount:   total / float64(len(activities)),
		FirstActivity:   "N/A",
		LastActivity:    "N/A",
		TopCategory:     topCategory(activities),
	}

	// Sort a copy by parsed date; the caller's slice stays untouched.
	dated := make([]models.Activity, 0, len(activities))
	for _, a := range activities {
		if _, ok := a.When(); ok {
			dated = append(dated, a)
		}
	}
	sort.SliceStable(dated, func(i, j int) bool {
		ti, _ := dated[i].When()
		tj, _ := dated[j].When()
		return ti.Before(tj)
	})
	if len(dated) > 0 {
		m.FirstActivity = dated[0].DateString()
		m.LastActivity = dated[len(dated)-1].DateString()
	}

	return m
}

// topCategory returns the most frequent non-empty category, breaking ties in
// favor of the category seen first.
func topCategory(activities []models.Activity) string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0
	for _, a := range activities {
		if a.Category == "" {
			continue
		}
		if _, ok := counts[a.Category]; !ok {
			firstSeen[a.Category] = order
			order++
		}
		counts[a.Category]++
	}
	if len(counts) == 0 {
		return "N/A"
	}

	best := ""
	for cat, n := range counts {
		if best == "" || n > counts[best] || (n == counts[best] && firstSeen[cat] < firstSeen[best]) {
			best = cat
		}
	}
	return best
}
