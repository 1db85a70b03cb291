package analytics

import (
	"sort"

	"github.com/Ingramml/ca-lobby-mono/internal/models"
)

// Weights for the blended similarity score. Spending closeness uses a
// diminishing-return curve: differences beyond ~$1M barely move the score.
const (
	spendingWeight    = 0.4
	categoryWeight    = 0.6
	spendingNormalize = 1_000_000.0
)

// FindRelatedOrganizations ranks every organization other than subject by a
// blend of spending closeness and category overlap, and returns the top
// limit entries. A subject with no categorized activity gets a category term
// of zero; the score is always a real number, never NaN.
func FindRelatedOrganizations(subject string, all []models.Activity, limit int) []models.RelatedOrg {
	var subjectSpending float64
	subjectCats := make(map[string]bool)

	index := make(map[string]int)
	var others []models.RelatedOrg
	otherCats := make(map[string]map[string]bool)

	for _, a := range all {
		if a.Organization == subject {
			subjectSpending += a.Amount
			if a.Category != "" {
				subjectCats[a.Category] = true
			}
			continue
		}
		if a.Organization == "" {
			continue
		}
		i, ok := index[a.Organization]
		if !ok {
			i = len(others)
			index[a.Organization] = i
			others = append(others, models.RelatedOrg{Name: a.Organization})
			otherCats[a.Organization] = make(map[string]bool)
		}
		others[i].TotalSpending += a.Amount
		others[i].ActivityCount++
		if a.Category != "" && !otherCats[a.Organization][a.Category] {
			otherCats[a.Organization][a.Category] = true
			others[i].Categories = append(others[i].Categories, a.Category)
		}
	}

	for _, a := range all {
		if a.Organization == subject || a.Organization == "" {
			continue
		}
		if a.Category != "" && subjectCats[a.Category] {
			others[index[a.Organization]].SharedCategories++
		}
	}

	for i := range others {
		diff := others[i].TotalSpending - subjectSpending
		if diff < 0 {
			diff = -diff
		}
		spendingSim := 1 / (1 + diff/spendingNormalize)

		categorySim := 0.0
		if len(subjectCats) > 0 {
			categorySim = float64(others[i].SharedCategories) / float64(len(subjectCats))
		}

		others[i].SimilarityScore = spendingWeight*spendingSim + categoryWeight*categorySim
	}

	sort.SliceStable(others, func(i, j int) bool {
		return others[i].SimilarityScore > others[j].SimilarityScore
	})
	if limit > 0 && len(others) > limit {
		others = others[:limit]
	}
	return others
}
