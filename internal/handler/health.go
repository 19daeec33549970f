// Package handler contains the echo handlers for relayed and local routes.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sportsdata-proxy/internal/config"
)

// Version is a string type for dependency injection of the build version.
type Version string

// HealthHandler serves health and status endpoints.
type HealthHandler struct {
	cfg     *config.Config
	version Version
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(cfg *config.Config, v Version) *HealthHandler {
	return &HealthHandler{cfg: cfg, version: v}
}

// Healthz answers liveness checks without touching the upstream.
func (h *HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// statusResponse describes where and how requests are relayed.
type statusResponse struct {
	Status          string `json:"status"`
	Version         string `json:"version"`
	UpstreamURL     string `json:"upstream_url"`
	TimeoutSeconds  int    `json:"upstream_timeout_seconds"`
	MaxRedirects    int    `json:"max_redirects"`
	InsecureTLS     bool   `json:"insecure_skip_verify"`
	MetricsEnabled  bool   `json:"metrics_enabled"`
	RateLimitActive bool   `json:"rate_limit_enabled"`
}

// Status reports the relay target and the settings that shape relayed traffic.
func (h *HealthHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, statusResponse{
		Status:          "ok",
		Version:         string(h.version),
		UpstreamURL:     h.cfg.Upstream.BaseURL(),
		TimeoutSeconds:  h.cfg.Upstream.TimeoutSeconds,
		MaxRedirects:    h.cfg.Upstream.MaxRedirects,
		InsecureTLS:     h.cfg.Upstream.InsecureSkipVerify,
		MetricsEnabled:  h.cfg.Metrics.Enabled,
		RateLimitActive: h.cfg.Server.RateLimit.Enabled,
	})
}
