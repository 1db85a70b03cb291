package analytics

import (
	"testing"

	"github.com/Ingramml/ca-lobby-mono/internal/models"
)

func TestProcessOrganizationData(t *testing.T) {
	activities := []models.Activity{
		{Organization: "A", Amount: 100},
		{Organization: "B", Amount: 900},
		{Organization: "A", Amount: 200},
		{Organization: "C", Amount: 50},
	}

	rows := ProcessOrganizationData(activities, 2)

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want limit of 2", len(rows))
	}
	if rows[0].Name != "B" || rows[0].Amount != 900 || rows[0].Count != 1 {
		t.Errorf("rows[0] = %+v, want B/900/1", rows[0])
	}
	if rows[1].Name != "A" || rows[1].Amount != 300 || rows[1].Count != 2 {
		t.Errorf("rows[1] = %+v, want A/300/2", rows[1])
	}
}

func TestProcessCategoryData(t *testing.T) {
	activities := []models.Activity{
		{Category: "Health", Amount: 10},
		{Category: "", Amount: 999},
		{Category: "Energy", Amount: 30},
		{Category: "Health", Amount: 5},
	}

	rows := ProcessCategoryData(activities)

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (empty category skipped, no truncation)", len(rows))
	}
	if rows[0].Name != "Energy" || rows[1].Name != "Health" {
		t.Errorf("order = %s, %s, want Energy then Health", rows[0].Name, rows[1].Name)
	}
	if rows[1].Amount != 15 {
		t.Errorf("Health amount = %v, want 15", rows[1].Amount)
	}
}
