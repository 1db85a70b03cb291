package ingest

import (
	"errors"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/Ingramml/ca-lobby-mono/internal/models"
)

var errNoOrganization = errors.New("row has no organization")

// stripPolicy removes every tag; free-text fields in the export sometimes
// carry stray markup from the filing software.
var stripPolicy = bluemonday.StrictPolicy()

// dateFormats covers the spellings seen across CAL-ACCESS export vintages.
var dateFormats = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"1/2/2006 15:04:05 PM",
	"2006-01-02 15:04:05",
	"Jan 2, 2006",
}

// NormalizeRow coerces one CSV row, keyed by header name, into an activity
// record. Rows without an organization are rejected; a bad amount or date
// degrades to zero/empty rather than dropping the row.
func NormalizeRow(cols map[string]string, m ColumnMap) (models.Activity, error) {
	org := cleanText(cols[m.Organization])
	if org == "" {
		return models.Activity{}, errNoOrganization
	}

	return models.Activity{
		FilingID:     strings.TrimSpace(cols[m.FilingID]),
		FilerID:      strings.TrimSpace(cols[m.FilerID]),
		Organization: org,
		Lobbyist:     cleanText(cols[m.Lobbyist]),
		FirmName:     cleanText(cols[m.FirmName]),
		Employer:     cleanText(cols[m.Employer]),
		Category:     cleanText(cols[m.Category]),
		Description:  cleanText(cols[m.Description]),
		Amount:       parseAmount(cols[m.Amount]),
		Date:         parseDate(cols[m.Date]),
	}, nil
}

// parseAmount reads a dollar figure, tolerating $ signs, thousands commas
// and parenthesized negatives. Anything unreadable or negative is 0.
func parseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	neg := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
	s = strings.Trim(s, "()")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || neg || v < 0 {
		return 0
	}
	return v
}

// parseDate normalizes a date to ISO YYYY-MM-DD, or empty when unparsable.
func parseDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

func cleanText(s string) string {
	s = stripPolicy.Sanitize(s)
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}
