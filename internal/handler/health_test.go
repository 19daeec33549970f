package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"sportsdata-proxy/internal/config"
)

func TestHealthz(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/proxy/healthz", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewHealthHandler(&config.Config{}, "test")
	if err := h.Healthz(c); err != nil {
		t.Fatalf("Healthz() error = %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want %q", body["status"], "ok")
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
		want statusResponse
	}{
		{
			name: "defaults",
			cfg: &config.Config{
				Upstream: config.UpstreamConfig{Host: "api.sportsdata.example", TimeoutSeconds: 120, MaxRedirects: 10},
			},
			want: statusResponse{
				Status:         "ok",
				Version:        "1.2.3",
				UpstreamURL:    "https://api.sportsdata.example",
				TimeoutSeconds: 120,
				MaxRedirects:   10,
			},
		},
		{
			name: "dev upstream with metrics and rate limit",
			cfg: &config.Config{
				Server:   config.ServerConfig{RateLimit: config.RateLimitConfig{Enabled: true, RequestsPerSecond: 5}},
				Upstream: config.UpstreamConfig{Host: "localhost:8443", TimeoutSeconds: 30, MaxRedirects: 3, InsecureSkipVerify: true},
				Metrics:  config.MetricsConfig{Enabled: true, Path: "/proxy/metrics"},
			},
			want: statusResponse{
				Status:          "ok",
				Version:         "1.2.3",
				UpstreamURL:     "https://localhost:8443",
				TimeoutSeconds:  30,
				MaxRedirects:    3,
				InsecureTLS:     true,
				MetricsEnabled:  true,
				RateLimitActive: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/proxy/status", http.NoBody)
			rec := httptest.NewRecorder()

			if err := NewHealthHandler(tt.cfg, "1.2.3").Status(e.NewContext(req, rec)); err != nil {
				t.Fatalf("Status() error = %v", err)
			}
			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
			}

			var got statusResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got != tt.want {
				t.Errorf("Status() body = %+v, want %+v", got, tt.want)
			}
		})
	}
}
