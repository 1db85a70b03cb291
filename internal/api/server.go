package api

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/Ingramml/ca-lobby-mono/internal/auth"
	"github.com/Ingramml/ca-lobby-mono/internal/models"
	"github.com/Ingramml/ca-lobby-mono/internal/warehouse"
)

// Warehouse is the read surface the handlers serve from. The concrete
// implementation is *warehouse.Store; tests substitute a stub.
type Warehouse interface {
	SearchOrganizations(ctx context.Context, q string, page, limit int) ([]warehouse.OrgSearchRow, int, error)
	OrganizationFilings(ctx context.Context, org string) ([]warehouse.FilingRow, error)
	OrganizationActivities(ctx context.Context, org string) ([]models.Activity, error)
	RecentActivities(ctx context.Context, limit int) ([]models.Activity, error)
	SummaryStats(ctx context.Context) (warehouse.SummaryStats, error)
	FilingTrends(ctx context.Context) ([]warehouse.FilingTrendRow, error)
	TopOrganizations(ctx context.Context, limit int) ([]models.NameAmount, error)
	YearlySpending(ctx context.Context, fromYear int) ([]warehouse.YearlySpendingRow, error)
	SpendingBreakdown(ctx context.Context, year int) ([]warehouse.BreakdownRow, error)
	FirmSpendingByGovt(ctx context.Context, year, limit int) ([]warehouse.FirmGovtRow, error)
	TopRecipients(ctx context.Context, govt string, limit int) ([]models.NameAmount, error)
	DatabaseStats(ctx context.Context) (warehouse.DatabaseStats, error)
	Ping(ctx context.Context) error
}

type Server struct {
	Warehouse   Warehouse
	AuthService *auth.Service
	Echo        *echo.Echo
}

func NewServer(pool *pgxpool.Pool) *Server {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// CORS: allow frontend origins from env or default to localhost
	allowedOrigins := []string{"http://localhost:3000"}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// 60 requests per minute per client IP.
	e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(1),
			Burst:     60,
			ExpiresIn: 3 * time.Minute,
		}),
	}))

	s := &Server{
		Warehouse:   warehouse.NewStore(pool),
		AuthService: auth.NewService(pool),
		Echo:        e,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)

	api := s.Echo.Group("/api/v1")
	api.GET("/search", s.handleSearch)
	api.GET("/analytics", s.handleAnalytics)
	api.GET("/stats", s.handleStats)
	api.GET("/organizations/:name/profile", s.handleOrganizationProfile)
	api.GET("/export/activities", s.handleExportActivitiesCSV)
	api.GET("/export/summary", s.handleExportSummaryJSON)

	api.POST("/auth/signup", s.handleSignup)
	api.POST("/auth/login", s.handleLogin)

	me := api.Group("/auth")
	me.Use(auth.Middleware)
	me.GET("/me", s.handleMe)
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}
