package analytics

import (
	"sort"

	"github.com/Ingramml/ca-lobby-mono/internal/models"
)

// ProcessOrganizationData groups activity by organization, sums amounts and
// counts records, and returns the top limit rows by summed amount.
func ProcessOrganizationData(activities []models.Activity, limit int) []models.NameAmount {
	rows := groupByName(activities, func(a models.Activity) string { return a.Organization })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// ProcessCategoryData groups activity by category, highest spending first.
func ProcessCategoryData(activities []models.Activity) []models.NameAmount {
	return groupByName(activities, func(a models.Activity) string { return a.Category })
}

func groupByName(activities []models.Activity, key func(models.Activity) string) []models.NameAmount {
	index := make(map[string]int)
	var rows []models.NameAmount
	for _, a := range activities {
		name := key(a)
		if name == "" {
			continue
		}
		i, ok := index[name]
		if !ok {
			i = len(rows)
			index[name] = i
			rows = append(rows, models.NameAmount{Name: name})
		}
		rows[i].Amount += a.Amount
		rows[i].Count++
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Amount > rows[j].Amount
	})
	return rows
}
