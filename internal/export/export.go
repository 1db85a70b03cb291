// Package export serializes derived summaries and raw activities for
// client-side file download.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/Ingramml/ca-lobby-mono/internal/models"
)

var csvHeader = []string{"date", "organization", "lobbyist", "category", "firm_name", "amount"}

// ActivitiesCSV writes the records as RFC 4180 CSV: fields containing a
// comma, quote or newline are quoted with embedded quotes doubled.
func ActivitiesCSV(w io.Writer, activities []models.Activity) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, a := range activities {
		row := []string{
			a.DateString(),
			a.Organization,
			a.Lobbyist,
			a.Category,
			a.FirmName,
			strconv.FormatFloat(a.Amount, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Summary bundles an organization's derived state for structured export.
type Summary struct {
	Organization string                 `json:"organization"`
	Metrics      models.Metrics         `json:"metrics"`
	Network      []models.LobbyistEntry `json:"lobbyist_network,omitempty"`
	Trends       []models.TrendBucket   `json:"spending_trends,omitempty"`
	Related      []models.RelatedOrg    `json:"related_organizations,omitempty"`
	Activities   []models.Activity      `json:"activities,omitempty"`
}

// SummaryJSON writes the summary as indented JSON.
func SummaryJSON(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// SanitizeFilename collapses every non-alphanumeric run to a single
// underscore and lower-cases the result. Leading and trailing underscores
// are trimmed so callers can append suffixes like "_activities.csv" without
// doubling separators.
func SanitizeFilename(name string) string {
	return strings.ToLower(strings.Trim(nonAlnum.ReplaceAllString(name, "_"), "_"))
}
