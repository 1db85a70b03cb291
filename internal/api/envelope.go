package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Response envelopes follow the dashboard API convention: every payload
// carries a success flag and a UTC timestamp, errors carry a type and a
// human-readable message.

type errorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Error      *errorBody  `json:"error,omitempty"`
	Pagination *pagination `json:"pagination,omitempty"`
	Timestamp  string      `json:"timestamp"`
}

type pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalCount  int  `json:"total_count"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

func stamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func successResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Data: data, Timestamp: stamp()})
}

func errorResponse(c echo.Context, status int, errType, message string) error {
	return c.JSON(status, envelope{
		Success:   false,
		Error:     &errorBody{Type: errType, Message: message},
		Timestamp: stamp(),
	})
}

func paginatedResponse(c echo.Context, data interface{}, page, limit, total int) error {
	totalPages := (total + limit - 1) / limit
	return c.JSON(http.StatusOK, envelope{
		Success: true,
		Data:    data,
		Pagination: &pagination{
			Page:        page,
			Limit:       limit,
			TotalCount:  total,
			TotalPages:  totalPages,
			HasNext:     page < totalPages,
			HasPrevious: page > 1,
		},
		Timestamp: stamp(),
	})
}
