package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestRequestID_GeneratesUUID(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/api/v1/teams", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/teams", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	id := rec.Header().Get(echo.HeaderXRequestID)
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("X-Request-Id = %q, want a UUID: %v", id, err)
	}
}

func TestRequestID_KeepsInboundID(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/api/v1/teams", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/teams", http.NoBody)
	req.Header.Set(echo.HeaderXRequestID, "ui-trace-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if id := rec.Header().Get(echo.HeaderXRequestID); id != "ui-trace-1" {
		t.Errorf("X-Request-Id = %q, want %q", id, "ui-trace-1")
	}
}

func TestRequestID_SkipsUpgrade(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/live", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/live", http.NoBody)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if id := rec.Header().Get(echo.HeaderXRequestID); id != "" {
		t.Errorf("X-Request-Id = %q, want none on upgrade responses", id)
	}
}
