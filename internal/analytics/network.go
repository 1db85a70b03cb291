package analytics

import (
	"sort"

	"github.com/Ingramml/ca-lobby-mono/internal/models"
)

// ExtractLobbyistNetwork groups activity by lobbyist name (exact,
// case-sensitive match) and returns entries sorted by total amount,
// highest first. Records without a lobbyist are skipped. Ties keep the
// order in which the lobbyists first appeared in the input.
func ExtractLobbyistNetwork(activities []models.Activity) []models.LobbyistEntry {
	index := make(map[string]int)
	var entries []models.LobbyistEntry
	seenCats := make(map[string]map[string]bool)

	for _, a := range activities {
		if a.Lobbyist == "" {
			continue
		}
		i, ok := index[a.Lobbyist]
		if !ok {
			i = len(entries)
			index[a.Lobbyist] = i
			entries = append(entries, models.LobbyistEntry{Name: a.Lobbyist})
			seenCats[a.Lobbyist] = make(map[string]bool)
		}
		entries[i].ActivityCount++
		entries[i].TotalAmount += a.Amount
		if a.Category != "" && !seenCats[a.Lobbyist][a.Category] {
			seenCats[a.Lobbyist][a.Category] = true
			entries[i].Categories = append(entries[i].Categories, a.Category)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalAmount > entries[j].TotalAmount
	})
	return entries
}
