package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/Ingramml/ca-lobby-mono/internal/models"
	"github.com/Ingramml/ca-lobby-mono/internal/warehouse"
)

// stubWarehouse serves canned rows so handlers can be exercised without a
// database.
type stubWarehouse struct {
	activities []models.Activity
	pool       []models.Activity
	searchRows []warehouse.OrgSearchRow
	total      int
	pingErr    error
}

func (s *stubWarehouse) SearchOrganizations(_ context.Context, q string, page, limit int) ([]warehouse.OrgSearchRow, int, error) {
	return s.searchRows, s.total, nil
}

func (s *stubWarehouse) OrganizationFilings(context.Context, string) ([]warehouse.FilingRow, error) {
	return []warehouse.FilingRow{{FilingID: "F1", Organization: "ACME", FilingDate: "2024-01-15", Year: 2024, Period: "Q1 2024"}}, nil
}

func (s *stubWarehouse) OrganizationActivities(context.Context, string) ([]models.Activity, error) {
	return s.activities, nil
}

func (s *stubWarehouse) RecentActivities(context.Context, int) ([]models.Activity, error) {
	return s.pool, nil
}

func (s *stubWarehouse) SummaryStats(context.Context) (warehouse.SummaryStats, error) {
	return warehouse.SummaryStats{TotalOrganizations: 2, TotalFilings: 3, LatestFiling: "2024-02-01"}, nil
}

func (s *stubWarehouse) FilingTrends(context.Context) ([]warehouse.FilingTrendRow, error) {
	return nil, nil
}

func (s *stubWarehouse) TopOrganizations(context.Context, int) ([]models.NameAmount, error) {
	return nil, nil
}

func (s *stubWarehouse) YearlySpending(context.Context, int) ([]warehouse.YearlySpendingRow, error) {
	return nil, nil
}

func (s *stubWarehouse) SpendingBreakdown(context.Context, int) ([]warehouse.BreakdownRow, error) {
	return nil, nil
}

func (s *stubWarehouse) FirmSpendingByGovt(context.Context, int, int) ([]warehouse.FirmGovtRow, error) {
	return nil, nil
}

func (s *stubWarehouse) TopRecipients(context.Context, string, int) ([]models.NameAmount, error) {
	return nil, nil
}

func (s *stubWarehouse) DatabaseStats(context.Context) (warehouse.DatabaseStats, error) {
	return warehouse.DatabaseStats{}, nil
}

func (s *stubWarehouse) Ping(context.Context) error { return s.pingErr }

func newTestServer(wh Warehouse) *Server {
	s := &Server{Warehouse: wh, Echo: echo.New()}
	s.routes()
	return s
}

func doRequest(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid envelope: %v\n%s", err, rec.Body.String())
	}
	return env
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(&stubWarehouse{})

	rec := doRequest(t, s, http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); !env.Success || env.Timestamp == "" {
		t.Errorf("envelope = %+v", env)
	}
}

func TestHandleHealthWarehouseDown(t *testing.T) {
	s := newTestServer(&stubWarehouse{pingErr: errors.New("connection refused")})

	rec := doRequest(t, s, http.MethodGet, "/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Success || env.Error == nil || env.Error.Type != "HealthError" {
		t.Errorf("envelope = %+v", env)
	}
}

func TestHandleSearchPaginated(t *testing.T) {
	s := newTestServer(&stubWarehouse{
		searchRows: []warehouse.OrgSearchRow{{Organization: "ACME", FilingCount: 3}},
		total:      42,
	})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/search?q=acme&page=2&limit=10")
	env := decodeEnvelope(t, rec)
	if !env.Success || env.Pagination == nil {
		t.Fatalf("envelope = %+v", env)
	}
	p := env.Pagination
	if p.Page != 2 || p.Limit != 10 || p.TotalCount != 42 || p.TotalPages != 5 {
		t.Errorf("pagination = %+v", p)
	}
	if !p.HasNext || !p.HasPrevious {
		t.Errorf("pagination flags = %+v", p)
	}
}

func TestHandleSearchOrganizationFilings(t *testing.T) {
	s := newTestServer(&stubWarehouse{})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/search?organization=ACME")
	env := decodeEnvelope(t, rec)
	if !env.Success || env.Pagination != nil {
		t.Fatalf("filings response must not paginate: %+v", env)
	}
	if !strings.Contains(rec.Body.String(), "Q1 2024") {
		t.Errorf("body missing period label: %s", rec.Body.String())
	}
}

func TestHandleAnalyticsUnknownType(t *testing.T) {
	s := newTestServer(&stubWarehouse{})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/analytics?type=nonsense")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Type != "AnalyticsError" {
		t.Errorf("envelope = %+v", env)
	}
}

func TestHandleAnalyticsSummary(t *testing.T) {
	s := newTestServer(&stubWarehouse{})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/analytics")
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Fatalf("envelope = %+v", env)
	}
	if !strings.Contains(rec.Body.String(), "total_organizations") {
		t.Errorf("summary missing KPIs: %s", rec.Body.String())
	}
}

func TestHandleOrganizationProfile(t *testing.T) {
	own := []models.Activity{
		{Organization: "ACME", Category: "Health", Lobbyist: "Lee", Amount: 1000, Date: "2024-01-15"},
		{Organization: "ACME", Category: "Health", Lobbyist: "Lee", Amount: 2000, Date: "2024-02-01"},
	}
	pool := append(own, models.Activity{Organization: "Rival", Category: "Health", Amount: 1500, Date: "2024-01-20"})
	s := newTestServer(&stubWarehouse{activities: own, pool: pool})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/organizations/ACME/profile")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var env struct {
		Data organizationProfile `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	p := env.Data
	if p.Metrics.TotalSpending != 3000 || p.Metrics.AverageAmount != 1500 {
		t.Errorf("metrics = %+v", p.Metrics)
	}
	if p.SpendingDisplay != "$3.0K" {
		t.Errorf("SpendingDisplay = %q", p.SpendingDisplay)
	}
	if len(p.RelatedOrgs) != 1 || p.RelatedOrgs[0].Name != "Rival" {
		t.Errorf("related = %+v", p.RelatedOrgs)
	}
	if len(p.LobbyistNetwork) != 1 || p.LobbyistNetwork[0].ActivityCount != 2 {
		t.Errorf("network = %+v", p.LobbyistNetwork)
	}
}

func TestHandleOrganizationProfileNotFound(t *testing.T) {
	s := newTestServer(&stubWarehouse{})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/organizations/nobody/profile")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleExportActivitiesCSV(t *testing.T) {
	s := newTestServer(&stubWarehouse{activities: []models.Activity{
		{Organization: "Smith, Jones & Partners", Amount: 100, Date: "2024-01-01"},
	}})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/export/activities?organization=Smith,+Jones+%26+Partners")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(got, "smith_jones_partners_activities.csv") {
		t.Errorf("Content-Disposition = %q", got)
	}

	rows, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1][1] != "Smith, Jones & Partners" {
		t.Errorf("rows = %v", rows)
	}
}

func TestHandleExportMissingOrganization(t *testing.T) {
	s := newTestServer(&stubWarehouse{})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/export/activities")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
