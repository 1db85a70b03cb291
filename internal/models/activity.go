package models

import "time"

// Activity is one lobbying-disclosure line item as returned by the data API.
// Records are read-only inputs to the analytics layer; no field is ever
// mutated after a row leaves the warehouse.
type Activity struct {
	FilingID     string  `json:"filing_id,omitempty"`
	FilerID      string  `json:"filer_id,omitempty"`
	Date         string  `json:"date,omitempty"`
	FilingDate   string  `json:"filing_date,omitempty"`
	Amount       float64 `json:"amount"`
	Organization string  `json:"organization"`
	Lobbyist     string  `json:"lobbyist,omitempty"`
	Category     string  `json:"category,omitempty"`
	FirmName     string  `json:"firm_name,omitempty"`
	Employer     string  `json:"employer,omitempty"`
	Description  string  `json:"description,omitempty"`
}

// DateString returns the record's date field, falling back to filing_date
// when the primary date is absent.
func (a Activity) DateString() string {
	if a.Date != "" {
		return a.Date
	}
	return a.FilingDate
}

// When parses the record's date. The second return is false when the record
// carries no parsable date; such records are excluded from chronological
// aggregation rather than bucketed under a bogus label.
func (a Activity) When() (time.Time, bool) {
	s := a.DateString()
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
