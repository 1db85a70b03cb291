package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ingramml/ca-lobby-mono/internal/models"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// govtTypeCase classifies an employer/organization name as city, county or
// other. Kept as a single SQL fragment so every query classifies the same
// way.
const govtTypeCase = `CASE
	WHEN UPPER(%[1]s) LIKE '%%CITY OF%%' OR UPPER(%[1]s) LIKE '%%LEAGUE%%CITIES%%' THEN 'city'
	WHEN UPPER(%[1]s) LIKE '%%COUNTY%%' OR UPPER(%[1]s) LIKE '%%CSAC%%' OR UPPER(%[1]s) LIKE '%%ASSOCIATION OF COUNTIES%%' THEN 'county'
	ELSE 'other'
END`

// OrgSearchRow is one organization in paginated search results.
type OrgSearchRow struct {
	Organization     string  `json:"organization_name"`
	FilingCount      int     `json:"filing_count"`
	FirstFilingDate  string  `json:"first_filing_date"`
	LatestFilingDate string  `json:"latest_filing_date"`
	TotalSpending    float64 `json:"total_spending"`
}

// SearchOrganizations returns one row per organization matching q
// (case-insensitive substring; empty matches all), newest activity first,
// plus the total match count for pagination.
func (s *Store) SearchOrganizations(ctx context.Context, q string, page, limit int) ([]OrgSearchRow, int, error) {
	if limit <= 0 {
		limit = 25
	}
	if limit > 100 {
		limit = 100
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit
	pattern := "%" + q + "%"

	rows, err := s.pool.Query(ctx, `
		SELECT organization,
		       COUNT(DISTINCT filing_id) AS filing_count,
		       MIN(filing_date) AS first_filing_date,
		       MAX(filing_date) AS latest_filing_date,
		       COALESCE(SUM(amount), 0) AS total_spending
		FROM activities
		WHERE organization ILIKE $1 AND filing_date IS NOT NULL
		GROUP BY organization
		ORDER BY latest_filing_date DESC
		LIMIT $2 OFFSET $3
	`, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("search query failed: %w", err)
	}
	defer rows.Close()

	var results []OrgSearchRow
	for rows.Next() {
		var r OrgSearchRow
		var first, latest *time.Time
		if err := rows.Scan(&r.Organization, &r.FilingCount, &first, &latest, &r.TotalSpending); err != nil {
			return nil, 0, err
		}
		r.FirstFilingDate = isoDate(first)
		r.LatestFilingDate = isoDate(latest)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = s.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT organization) FROM activities
		WHERE organization ILIKE $1 AND filing_date IS NOT NULL
	`, pattern).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count query failed: %w", err)
	}

	return results, total, nil
}

// FilingRow is one disclosure filing for an organization, with its quarter
// label precomputed.
type FilingRow struct {
	FilingID     string `json:"filing_id"`
	FilerID      string `json:"filer_id"`
	Organization string `json:"organization_name"`
	FilingDate   string `json:"filing_date"`
	Year         int    `json:"year"`
	Period       string `json:"period"`
}

// OrganizationFilings lists an organization's filings, newest first. The
// name matches case-insensitively as a substring, mirroring how profile
// links arrive from search results.
func (s *Store) OrganizationFilings(ctx context.Context, org string) ([]FilingRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT filing_id,
		       COALESCE(filer_id, '') AS filer_id,
		       organization,
		       filing_date,
		       EXTRACT(YEAR FROM filing_date)::int AS year,
		       'Q' || EXTRACT(QUARTER FROM filing_date)::int || ' ' || EXTRACT(YEAR FROM filing_date)::int AS period
		FROM activities
		WHERE organization ILIKE $1 AND filing_date IS NOT NULL
		ORDER BY filing_date DESC
	`, "%"+org+"%")
	if err != nil {
		return nil, fmt.Errorf("organization filings query failed: %w", err)
	}
	defer rows.Close()

	var filings []FilingRow
	for rows.Next() {
		var f FilingRow
		var d time.Time
		if err := rows.Scan(&f.FilingID, &f.FilerID, &f.Organization, &d, &f.Year, &f.Period); err != nil {
			return nil, err
		}
		f.FilingDate = d.Format("2006-01-02")
		filings = append(filings, f)
	}
	return filings, rows.Err()
}

// OrganizationActivities returns the raw activity records for one
// organization, the input the analytics layer aggregates over.
func (s *Store) OrganizationActivities(ctx context.Context, org string) ([]models.Activity, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT filing_id, COALESCE(filer_id, ''), organization, COALESCE(lobbyist, ''),
		       COALESCE(firm_name, ''), COALESCE(employer, ''), COALESCE(category, ''),
		       COALESCE(description, ''), amount, filing_date
		FROM activities
		WHERE organization ILIKE $1
		ORDER BY filing_date DESC NULLS LAST
	`, "%"+org+"%")
	if err != nil {
		return nil, fmt.Errorf("organization activities query failed: %w", err)
	}
	defer rows.Close()
	return scanActivities(rows)
}

// RecentActivities returns up to limit of the newest records across all
// organizations. The profile view feeds this pool to the related-organization
// ranking.
func (s *Store) RecentActivities(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = 5000
	}
	rows, err := s.pool.Query(ctx, `
		SELECT filing_id, COALESCE(filer_id, ''), organization, COALESCE(lobbyist, ''),
		       COALESCE(firm_name, ''), COALESCE(employer, ''), COALESCE(category, ''),
		       COALESCE(description, ''), amount, filing_date
		FROM activities
		WHERE filing_date IS NOT NULL
		ORDER BY filing_date DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent activities query failed: %w", err)
	}
	defer rows.Close()
	return scanActivities(rows)
}

func scanActivities(rows pgx.Rows) ([]models.Activity, error) {
	var activities []models.Activity
	for rows.Next() {
		var a models.Activity
		var d *time.Time
		err := rows.Scan(&a.FilingID, &a.FilerID, &a.Organization, &a.Lobbyist,
			&a.FirmName, &a.Employer, &a.Category, &a.Description, &a.Amount, &d)
		if err != nil {
			return nil, err
		}
		a.Date = isoDate(d)
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// SummaryStats are the headline KPIs for the whole dataset.
type SummaryStats struct {
	TotalOrganizations int    `json:"total_organizations"`
	TotalFilings       int    `json:"total_filings"`
	LatestFiling       string `json:"latest_filing"`
}

func (s *Store) SummaryStats(ctx context.Context) (SummaryStats, error) {
	var stats SummaryStats
	var latest *time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT organization),
		       COUNT(DISTINCT filing_id),
		       MAX(filing_date)
		FROM activities
		WHERE filing_date IS NOT NULL AND filing_date <= CURRENT_DATE
	`).Scan(&stats.TotalOrganizations, &stats.TotalFilings, &latest)
	if err != nil {
		return stats, fmt.Errorf("summary stats query failed: %w", err)
	}
	stats.LatestFiling = isoDate(latest)
	return stats, nil
}

// FilingTrendRow is one period in the filing-volume trend.
type FilingTrendRow struct {
	Year        int    `json:"year"`
	Period      string `json:"period"`
	FilingCount int    `json:"filing_count"`
}

// FilingTrends returns filing counts for the most recent 12 quarters.
func (s *Store) FilingTrends(ctx context.Context) ([]FilingTrendRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT EXTRACT(YEAR FROM filing_date)::int AS year,
		       'Q' || EXTRACT(QUARTER FROM filing_date)::int || ' ' || EXTRACT(YEAR FROM filing_date)::int AS period,
		       COUNT(DISTINCT filing_id) AS filing_count
		FROM activities
		WHERE filing_date IS NOT NULL AND filing_date <= CURRENT_DATE
		GROUP BY 1, EXTRACT(QUARTER FROM filing_date), 2
		ORDER BY 1 DESC, EXTRACT(QUARTER FROM filing_date) DESC
		LIMIT 12
	`)
	if err != nil {
		return nil, fmt.Errorf("filing trends query failed: %w", err)
	}
	defer rows.Close()

	var trends []FilingTrendRow
	for rows.Next() {
		var t FilingTrendRow
		if err := rows.Scan(&t.Year, &t.Period, &t.FilingCount); err != nil {
			return nil, err
		}
		trends = append(trends, t)
	}
	return trends, rows.Err()
}

// TopOrganizations returns the biggest spenders.
func (s *Store) TopOrganizations(ctx context.Context, limit int) ([]models.NameAmount, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx, `
		SELECT organization, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS n
		FROM activities
		WHERE amount > 0
		GROUP BY organization
		ORDER BY total DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("top organizations query failed: %w", err)
	}
	defer rows.Close()

	var top []models.NameAmount
	for rows.Next() {
		var r models.NameAmount
		if err := rows.Scan(&r.Name, &r.Amount, &r.Count); err != nil {
			return nil, err
		}
		top = append(top, r)
	}
	return top, rows.Err()
}

// YearlySpendingRow splits a year's spending by government type.
type YearlySpendingRow struct {
	Year           int     `json:"year"`
	TotalSpending  float64 `json:"total_spending"`
	CitySpending   float64 `json:"city_spending"`
	CountySpending float64 `json:"county_spending"`
	CityCount      int     `json:"city_count"`
	CountyCount    int     `json:"county_count"`
}

// YearlySpending returns per-year totals since fromYear with a city/county
// split of the employers who paid for the lobbying.
func (s *Store) YearlySpending(ctx context.Context, fromYear int) ([]YearlySpendingRow, error) {
	if fromYear <= 0 {
		fromYear = 2015
	}
	query := fmt.Sprintf(`
		WITH classified AS (
			SELECT EXTRACT(YEAR FROM filing_date)::int AS year,
			       organization,
			       amount,
			       %s AS govt_type
			FROM activities
			WHERE filing_date IS NOT NULL
			  AND filing_date <= CURRENT_DATE
			  AND EXTRACT(YEAR FROM filing_date)::int >= $1
			  AND amount > 0
		)
		SELECT year,
		       SUM(amount) AS total_spending,
		       SUM(CASE WHEN govt_type = 'city' THEN amount ELSE 0 END) AS city_spending,
		       SUM(CASE WHEN govt_type = 'county' THEN amount ELSE 0 END) AS county_spending,
		       COUNT(DISTINCT CASE WHEN govt_type = 'city' THEN organization END) AS city_count,
		       COUNT(DISTINCT CASE WHEN govt_type = 'county' THEN organization END) AS county_count
		FROM classified
		GROUP BY year
		ORDER BY year ASC
	`, fmt.Sprintf(govtTypeCase, "COALESCE(employer, '')"))

	rows, err := s.pool.Query(ctx, query, fromYear)
	if err != nil {
		return nil, fmt.Errorf("yearly spending query failed: %w", err)
	}
	defer rows.Close()

	var out []YearlySpendingRow
	for rows.Next() {
		var r YearlySpendingRow
		if err := rows.Scan(&r.Year, &r.TotalSpending, &r.CitySpending, &r.CountySpending, &r.CityCount, &r.CountyCount); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// BreakdownRow is one cell of the government-type / spending-category grid.
type BreakdownRow struct {
	GovtType         string  `json:"govt_type"`
	SpendingCategory string  `json:"spending_category"`
	TotalAmount      float64 `json:"total_amount"`
	FilerCount       int     `json:"filer_count"`
}

// SpendingBreakdown splits a single year's city/county spending into
// membership vs other lobbying.
func (s *Store) SpendingBreakdown(ctx context.Context, year int) ([]BreakdownRow, error) {
	query := fmt.Sprintf(`
		WITH classified AS (
			SELECT COALESCE(employer, '') AS payer,
			       organization,
			       amount,
			       %s AS govt_type
			FROM activities
			WHERE filing_date IS NOT NULL
			  AND EXTRACT(YEAR FROM filing_date)::int = $1
			  AND amount > 0
		)
		SELECT govt_type,
		       CASE
		           WHEN UPPER(payer) LIKE '%%LEAGUE%%' OR UPPER(payer) LIKE '%%ASSOCIATION%%' OR UPPER(payer) LIKE '%%COALITION%%'
		           THEN 'membership' ELSE 'other_lobbying'
		       END AS spending_category,
		       SUM(amount) AS total_amount,
		       COUNT(DISTINCT organization) AS filer_count
		FROM classified
		WHERE govt_type IN ('city', 'county')
		GROUP BY 1, 2
		HAVING SUM(amount) > 0
		ORDER BY 1, 2
	`, fmt.Sprintf(govtTypeCase, "payer"))

	rows, err := s.pool.Query(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("spending breakdown query failed: %w", err)
	}
	defer rows.Close()

	var out []BreakdownRow
	for rows.Next() {
		var r BreakdownRow
		if err := rows.Scan(&r.GovtType, &r.SpendingCategory, &r.TotalAmount, &r.FilerCount); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FirmGovtRow is one lobbying firm with spending split by the government
// type of its paying clients.
type FirmGovtRow struct {
	Name           string  `json:"organization_name"`
	CitySpending   float64 `json:"city_spending"`
	CountySpending float64 `json:"county_spending"`
	TotalSpending  float64 `json:"total_spending"`
}

// FirmSpendingByGovt returns the top firms paid by city or county clients in
// the given year, for the stacked-bar view.
func (s *Store) FirmSpendingByGovt(ctx context.Context, year, limit int) ([]FirmGovtRow, error) {
	if limit <= 0 {
		limit = 10
	}
	query := fmt.Sprintf(`
		WITH classified AS (
			SELECT firm_name,
			       amount,
			       %s AS govt_type
			FROM activities
			WHERE filing_date IS NOT NULL
			  AND EXTRACT(YEAR FROM filing_date)::int = $1
			  AND amount > 0
			  AND firm_name IS NOT NULL AND firm_name <> ''
		)
		SELECT firm_name,
		       SUM(CASE WHEN govt_type = 'city' THEN amount ELSE 0 END) AS city_spending,
		       SUM(CASE WHEN govt_type = 'county' THEN amount ELSE 0 END) AS county_spending,
		       SUM(amount) AS total_spending
		FROM classified
		WHERE govt_type IN ('city', 'county')
		GROUP BY firm_name
		HAVING SUM(amount) > 0
		ORDER BY total_spending DESC
		LIMIT $2
	`, fmt.Sprintf(govtTypeCase, "COALESCE(employer, '')"))

	rows, err := s.pool.Query(ctx, query, year, limit)
	if err != nil {
		return nil, fmt.Errorf("firm spending query failed: %w", err)
	}
	defer rows.Close()

	var out []FirmGovtRow
	for rows.Next() {
		var r FirmGovtRow
		if err := rows.Scan(&r.Name, &r.CitySpending, &r.CountySpending, &r.TotalSpending); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// TopRecipients returns the firms paid the most by city or county clients
// over the last three years. govt must be "city" or "county".
func (s *Store) TopRecipients(ctx context.Context, govt string, limit int) ([]models.NameAmount, error) {
	if govt != "city" && govt != "county" {
		return nil, fmt.Errorf("unknown government type %q", govt)
	}
	if limit <= 0 {
		limit = 10
	}
	query := fmt.Sprintf(`
		WITH classified AS (
			SELECT firm_name,
			       amount,
			       %s AS govt_type
			FROM activities
			WHERE filing_date IS NOT NULL
			  AND filing_date >= CURRENT_DATE - INTERVAL '3 years'
			  AND amount > 0
			  AND firm_name IS NOT NULL AND firm_name <> ''
		)
		SELECT firm_name, SUM(amount) AS total, COUNT(*) AS n
		FROM classified
		WHERE govt_type = $1
		GROUP BY firm_name
		HAVING SUM(amount) > 0
		ORDER BY total DESC
		LIMIT $2
	`, fmt.Sprintf(govtTypeCase, "COALESCE(employer, '')"))

	rows, err := s.pool.Query(ctx, query, govt, limit)
	if err != nil {
		return nil, fmt.Errorf("top recipients query failed: %w", err)
	}
	defer rows.Close()

	var out []models.NameAmount
	for rows.Next() {
		var r models.NameAmount
		if err := rows.Scan(&r.Name, &r.Amount, &r.Count); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DatabaseStats is the full statistics block served by the stats endpoint
// and the dbstats CLI.
type DatabaseStats struct {
	Summary struct {
		TotalOrganizations int    `json:"total_organizations"`
		TotalFilings       int    `json:"total_filings"`
		EarliestFiling     string `json:"earliest_filing"`
		LatestFiling       string `json:"latest_filing"`
		YearsCovered       int    `json:"years_covered"`
	} `json:"summary"`
	Payments struct {
		TotalPayments  int     `json:"total_payments"`
		TotalAmount    float64 `json:"total_amount"`
		AveragePayment float64 `json:"average_payment"`
	} `json:"payments"`
	Yearly           []YearlyCountRow    `json:"yearly"`
	GovtTypes        []GovtTypeRow       `json:"govt_types"`
	TopOrganizations []models.NameAmount `json:"top_organizations"`
}

type YearlyCountRow struct {
	Year          int `json:"year"`
	Organizations int `json:"organizations"`
	Filings       int `json:"filings"`
}

type GovtTypeRow struct {
	GovtType      string  `json:"govt_type"`
	OrgCount      int     `json:"org_count"`
	TotalSpending float64 `json:"total_spending"`
}

func (s *Store) DatabaseStats(ctx context.Context) (DatabaseStats, error) {
	var stats DatabaseStats

	var earliest, latest *time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT organization),
		       COUNT(DISTINCT filing_id),
		       MIN(filing_date),
		       MAX(filing_date),
		       COUNT(DISTINCT EXTRACT(YEAR FROM filing_date))
		FROM activities
		WHERE filing_date IS NOT NULL AND filing_date <= CURRENT_DATE
	`).Scan(&stats.Summary.TotalOrganizations, &stats.Summary.TotalFilings,
		&earliest, &latest, &stats.Summary.YearsCovered)
	if err != nil {
		return stats, fmt.Errorf("stats summary query failed: %w", err)
	}
	stats.Summary.EarliestFiling = isoDate(earliest)
	stats.Summary.LatestFiling = isoDate(latest)

	err = s.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(amount), 0), COALESCE(AVG(amount), 0)
		FROM activities
		WHERE amount > 0
	`).Scan(&stats.Payments.TotalPayments, &stats.Payments.TotalAmount, &stats.Payments.AveragePayment)
	if err != nil {
		return stats, fmt.Errorf("stats payments query failed: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT EXTRACT(YEAR FROM filing_date)::int AS year,
		       COUNT(DISTINCT organization),
		       COUNT(DISTINCT filing_id)
		FROM activities
		WHERE filing_date IS NOT NULL
		  AND EXTRACT(YEAR FROM filing_date)::int >= 2015
		  AND filing_date <= CURRENT_DATE
		GROUP BY year
		ORDER BY year DESC
		LIMIT 10
	`)
	if err != nil {
		return stats, fmt.Errorf("stats yearly query failed: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var r YearlyCountRow
		if err := rows.Scan(&r.Year, &r.Organizations, &r.Filings); err != nil {
			return stats, err
		}
		stats.Yearly = append(stats.Yearly, r)
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	govtQuery := fmt.Sprintf(`
		SELECT %s AS govt_type, COUNT(DISTINCT organization), COALESCE(SUM(amount), 0)
		FROM activities
		WHERE amount > 0
		GROUP BY 1
	`, fmt.Sprintf(govtTypeCase, "organization"))
	gr, err := s.pool.Query(ctx, govtQuery)
	if err != nil {
		return stats, fmt.Errorf("stats govt-type query failed: %w", err)
	}
	defer gr.Close()
	for gr.Next() {
		var r GovtTypeRow
		if err := gr.Scan(&r.GovtType, &r.OrgCount, &r.TotalSpending); err != nil {
			return stats, err
		}
		stats.GovtTypes = append(stats.GovtTypes, r)
	}
	if err := gr.Err(); err != nil {
		return stats, err
	}

	stats.TopOrganizations, err = s.TopOrganizations(ctx, 10)
	return stats, err
}

// activityColumns is the COPY column list for bulk loads. activityRow must
// produce values in the same order.
var activityColumns = []string{
	"filing_id", "filer_id", "organization", "lobbyist",
	"firm_name", "employer", "category", "description",
	"amount", "filing_date",
}

func activityRow(a models.Activity) []any {
	var date *time.Time
	if t, ok := a.When(); ok {
		date = &t
	}
	return []any{
		a.FilingID, nullable(a.FilerID), a.Organization, nullable(a.Lobbyist),
		nullable(a.FirmName), nullable(a.Employer), nullable(a.Category), nullable(a.Description),
		a.Amount, date,
	}
}

// InsertActivities bulk-loads records via COPY and reports how many landed.
func (s *Store) InsertActivities(ctx context.Context, activities []models.Activity) (int, error) {
	rows := make([][]any, 0, len(activities))
	for _, a := range activities {
		rows = append(rows, activityRow(a))
	}

	n, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"activities"},
		activityColumns,
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return int(n), fmt.Errorf("copy activities failed: %w", err)
	}
	return int(n), nil
}

// StartRun records the beginning of an ingest run.
func (s *Store) StartRun(ctx context.Context, sourceID string) (uuid.UUID, error) {
	runID := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO ingest_runs (run_id, source_id, status) VALUES ($1, $2, 'running')
	`, runID, sourceID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("start run failed: %w", err)
	}
	return runID, nil
}

// FinishRun closes out an ingest run with its counters.
func (s *Store) FinishRun(ctx context.Context, runID uuid.UUID, status string, found, saved, errs int) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE ingest_runs
		SET status = $2, items_found = $3, items_saved = $4, errors = $5, completed_at = NOW()
		WHERE run_id = $1
	`, runID, status, found, saved, errs)
	return err
}

// Ping verifies warehouse connectivity for the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	var one int
	if err := s.pool.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("warehouse unreachable: %w", err)
	}
	return nil
}

func isoDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
