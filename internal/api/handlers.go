package api

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Ingramml/ca-lobby-mono/internal/analytics"
	"github.com/Ingramml/ca-lobby-mono/internal/auth"
	"github.com/Ingramml/ca-lobby-mono/internal/export"
	"github.com/Ingramml/ca-lobby-mono/internal/format"
	"github.com/Ingramml/ca-lobby-mono/internal/models"
)

func (s *Server) handleHealth(c echo.Context) error {
	if err := s.Warehouse.Ping(c.Request().Context()); err != nil {
		return errorResponse(c, http.StatusServiceUnavailable, "HealthError", err.Error())
	}
	return successResponse(c, map[string]string{"status": "healthy"})
}

// handleSearch serves paginated organization search, or an organization's
// filing list when the organization parameter is present.
func (s *Server) handleSearch(c echo.Context) error {
	ctx := c.Request().Context()

	if org := c.QueryParam("organization"); org != "" {
		filings, err := s.Warehouse.OrganizationFilings(ctx, org)
		if err != nil {
			return errorResponse(c, http.StatusInternalServerError, "OrganizationFilingsError", err.Error())
		}
		return successResponse(c, filings)
	}

	q := c.QueryParam("q")
	page := 1
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	limit := 25
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > 100 {
		limit = 100
	}

	results, total, err := s.Warehouse.SearchOrganizations(ctx, q, page, limit)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "SearchError", err.Error())
	}
	return paginatedResponse(c, results, page, limit, total)
}

func (s *Server) handleAnalytics(c echo.Context) error {
	ctx := c.Request().Context()

	year := time.Now().Year()
	if v, err := strconv.Atoi(c.QueryParam("year")); err == nil && v > 0 {
		year = v
	}

	analyticsType := c.QueryParam("type")
	if analyticsType == "" {
		analyticsType = "summary"
	}

	var (
		data interface{}
		err  error
	)
	switch analyticsType {
	case "summary":
		data, err = s.Warehouse.SummaryStats(ctx)
	case "trends":
		data, err = s.Warehouse.FilingTrends(ctx)
	case "top_organizations":
		data, err = s.Warehouse.TopOrganizations(ctx, 10)
	case "spending":
		data, err = s.Warehouse.YearlySpending(ctx, 2015)
	case "spending_breakdown":
		data, err = s.Warehouse.SpendingBreakdown(ctx, year)
	case "org_spending_by_govt":
		data, err = s.Warehouse.FirmSpendingByGovt(ctx, year, 10)
	case "top_city_recipients":
		data, err = s.Warehouse.TopRecipients(ctx, "city", 10)
	case "top_county_recipients":
		data, err = s.Warehouse.TopRecipients(ctx, "county", 10)
	default:
		return errorResponse(c, http.StatusBadRequest, "AnalyticsError", "unknown analytics type: "+analyticsType)
	}
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "AnalyticsError", err.Error())
	}
	return successResponse(c, data)
}

func (s *Server) handleStats(c echo.Context) error {
	stats, err := s.Warehouse.DatabaseStats(c.Request().Context())
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "DatabaseStatsError", err.Error())
	}
	return successResponse(c, stats)
}

// organizationProfile is the derived view of one organization: the raw rows
// run through the analytics layer, plus display-formatted headline numbers.
type organizationProfile struct {
	Organization    string                 `json:"organization"`
	Metrics         models.Metrics         `json:"metrics"`
	SpendingDisplay string                 `json:"total_spending_display"`
	AverageDisplay  string                 `json:"average_amount_display"`
	FirstDisplay    string                 `json:"first_activity_display"`
	LastDisplay     string                 `json:"last_activity_display"`
	LobbyistNetwork []models.LobbyistEntry `json:"lobbyist_network"`
	SpendingTrends  []models.TrendBucket   `json:"spending_trends"`
	RelatedOrgs     []models.RelatedOrg    `json:"related_organizations"`
	TopCategories   []models.NameAmount    `json:"top_categories"`
	ActivityCount   int                    `json:"activity_count"`
}

func (s *Server) handleOrganizationProfile(c echo.Context) error {
	ctx := c.Request().Context()
	name := c.Param("name")

	activities, err := s.Warehouse.OrganizationActivities(ctx, name)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "OrganizationProfileError", err.Error())
	}
	if len(activities) == 0 {
		return errorResponse(c, http.StatusNotFound, "OrganizationProfileError", "no activity found for organization")
	}
	// Ranking related organizations needs rows beyond the subject's own.
	pool, err := s.Warehouse.RecentActivities(ctx, 5000)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "OrganizationProfileError", err.Error())
	}

	period := analytics.Period(c.QueryParam("period"))
	subject := activities[0].Organization
	metrics := analytics.AggregateMetrics(activities)

	profile := organizationProfile{
		Organization:    subject,
		Metrics:         metrics,
		SpendingDisplay: format.Currency(metrics.TotalSpending, true),
		AverageDisplay:  format.Currency(metrics.AverageAmount, false),
		FirstDisplay:    format.Date(metrics.FirstActivity),
		LastDisplay:     format.Date(metrics.LastActivity),
		LobbyistNetwork: analytics.ExtractLobbyistNetwork(activities),
		SpendingTrends:  analytics.CalculateSpendingTrends(activities, period),
		RelatedOrgs:     analytics.FindRelatedOrganizations(subject, pool, 5),
		TopCategories:   analytics.ProcessCategoryData(activities),
		ActivityCount:   len(activities),
	}
	return successResponse(c, profile)
}

func (s *Server) handleExportActivitiesCSV(c echo.Context) error {
	org := c.QueryParam("organization")
	if org == "" {
		return errorResponse(c, http.StatusBadRequest, "ExportError", "organization parameter is required")
	}

	activities, err := s.Warehouse.OrganizationActivities(c.Request().Context(), org)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "ExportError", err.Error())
	}

	var buf bytes.Buffer
	if err := export.ActivitiesCSV(&buf, activities); err != nil {
		return errorResponse(c, http.StatusInternalServerError, "ExportError", err.Error())
	}

	filename := export.SanitizeFilename(org) + "_activities.csv"
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}

func (s *Server) handleExportSummaryJSON(c echo.Context) error {
	org := c.QueryParam("organization")
	if org == "" {
		return errorResponse(c, http.StatusBadRequest, "ExportError", "organization parameter is required")
	}

	ctx := c.Request().Context()
	activities, err := s.Warehouse.OrganizationActivities(ctx, org)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "ExportError", err.Error())
	}
	pool, err := s.Warehouse.RecentActivities(ctx, 5000)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "ExportError", err.Error())
	}

	subject := org
	if len(activities) > 0 {
		subject = activities[0].Organization
	}
	summary := export.Summary{
		Organization: subject,
		Metrics:      analytics.AggregateMetrics(activities),
		Network:      analytics.ExtractLobbyistNetwork(activities),
		Trends:       analytics.CalculateSpendingTrends(activities, analytics.PeriodQuarter),
		Related:      analytics.FindRelatedOrganizations(subject, pool, 5),
		Activities:   activities,
	}

	var buf bytes.Buffer
	if err := export.SummaryJSON(&buf, summary); err != nil {
		return errorResponse(c, http.StatusInternalServerError, "ExportError", err.Error())
	}

	filename := export.SanitizeFilename(org) + "_summary.json"
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, buf.Bytes())
}

func (s *Server) handleSignup(c echo.Context) error {
	var req auth.SignupRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "AuthError", "Invalid request")
	}

	resp, err := s.AuthService.Signup(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrUserExists {
			return errorResponse(c, http.StatusConflict, "AuthError", err.Error())
		}
		return errorResponse(c, http.StatusInternalServerError, "AuthError", err.Error())
	}
	return c.JSON(http.StatusCreated, envelope{Success: true, Data: resp, Timestamp: stamp()})
}

func (s *Server) handleLogin(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "AuthError", "Invalid request")
	}

	resp, err := s.AuthService.Login(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrInvalidCreds {
			return errorResponse(c, http.StatusUnauthorized, "AuthError", "Invalid credentials")
		}
		return errorResponse(c, http.StatusInternalServerError, "AuthError", err.Error())
	}
	return successResponse(c, resp)
}

func (s *Server) handleMe(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return errorResponse(c, http.StatusUnauthorized, "AuthError", err.Error())
	}

	profile, err := s.AuthService.Profile(c.Request().Context(), userID)
	if err != nil {
		if err == auth.ErrUserNotFound {
			return errorResponse(c, http.StatusNotFound, "AuthError", err.Error())
		}
		return errorResponse(c, http.StatusInternalServerError, "AuthError", err.Error())
	}
	return successResponse(c, profile)
}
