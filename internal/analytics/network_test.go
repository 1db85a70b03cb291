package analytics

import (
	"testing"

	"github.com/Ingramml/ca-lobby-mono/internal/models"
)

func TestExtractLobbyistNetwork(t *testing.T) {
	activities := []models.Activity{
		{Lobbyist: "Smith", Category: "Health", Amount: 100},
		{Lobbyist: "Jones", Category: "Energy", Amount: 5000},
		{Lobbyist: "Smith", Category: "Energy", Amount: 300},
		{Lobbyist: "", Category: "Health", Amount: 9999},
		{Lobbyist: "Smith", Category: "Health", Amount: 50},
	}

	entries := ExtractLobbyistNetwork(activities)

	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 (record without lobbyist skipped)", len(entries))
	}
	if entries[0].Name != "Jones" || entries[0].TotalAmount != 5000 {
		t.Errorf("first entry = %+v, want Jones with 5000", entries[0])
	}
	smith := entries[1]
	if smith.ActivityCount != 3 || smith.TotalAmount != 450 {
		t.Errorf("Smith = %+v, want 3 activities totaling 450", smith)
	}
	if len(smith.Categories) != 2 {
		t.Errorf("Smith categories = %v, want a two-element union", smith.Categories)
	}
}

func TestExtractLobbyistNetworkSortedAndStable(t *testing.T) {
	activities := []models.Activity{
		{Lobbyist: "A", Amount: 100},
		{Lobbyist: "B", Amount: 100},
		{Lobbyist: "C", Amount: 200},
	}

	entries := ExtractLobbyistNetwork(activities)

	for i := 1; i < len(entries); i++ {
		if entries[i].TotalAmount > entries[i-1].TotalAmount {
			t.Fatalf("entries not sorted descending: %+v", entries)
		}
	}
	// A and B tie at 100; input order must hold.
	if entries[1].Name != "A" || entries[2].Name != "B" {
		t.Errorf("tie order = %s, %s, want A then B", entries[1].Name, entries[2].Name)
	}
}

func TestExtractLobbyistNetworkCaseSensitive(t *testing.T) {
	activities := []models.Activity{
		{Lobbyist: "smith", Amount: 1},
		{Lobbyist: "Smith", Amount: 1},
	}

	if entries := ExtractLobbyistNetwork(activities); len(entries) != 2 {
		t.Errorf("got %d entries, want 2: names match exactly, no alias folding", len(entries))
	}
}
