package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Ingramml/ca-lobby-mono/internal/models"
)

func TestActivitiesCSVRoundTrip(t *testing.T) {
	activities := []models.Activity{
		{Date: "2024-01-15", Organization: `Smith, Jones & "Partners"`, Lobbyist: "Lee", Category: "Health", FirmName: "Capitol\nAdvocates", Amount: 1234.5},
		{Date: "2024-02-01", Organization: "Plain Org", Amount: 0},
	}

	var buf bytes.Buffer
	if err := ActivitiesCSV(&buf, activities); err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("standard parser rejected output: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[1][1] != `Smith, Jones & "Partners"` {
		t.Errorf("organization did not round-trip: %q", rows[1][1])
	}
	if rows[1][4] != "Capitol\nAdvocates" {
		t.Errorf("embedded newline did not round-trip: %q", rows[1][4])
	}
	if rows[1][5] != "1234.5" {
		t.Errorf("amount = %q", rows[1][5])
	}
	if rows[2][5] != "0" {
		t.Errorf("zero amount = %q", rows[2][5])
	}
}

func TestSummaryJSONIndented(t *testing.T) {
	var buf bytes.Buffer
	err := SummaryJSON(&buf, Summary{
		Organization: "ACME",
		Metrics:      models.Metrics{TotalSpending: 3000, TotalActivities: 2, AverageAmount: 1500, FirstActivity: "2024-01-15", LastActivity: "2024-02-01", TopCategory: "Health"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("output is not indented")
	}

	var back Summary
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatal(err)
	}
	if back.Organization != "ACME" || back.Metrics.TotalSpending != 3000 {
		t.Errorf("round-trip = %+v", back)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"California Teachers Association", "california_teachers_association"},
		{"Smith, Jones & Partners!!", "smith_jones_partners"},
		{"  already_ok  ", "already_ok"},
		{"ACME-2024 (final)", "acme_2024_final"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
