// Package service implements the core proxy forwarding logic.
package service

import (
	"fmt"
	"log/slog"
	"net/http"

	"sportsdata-proxy/internal/client"
	"sportsdata-proxy/internal/config"
	"sportsdata-proxy/internal/metrics"
	"sportsdata-proxy/internal/model"
)

// allowOriginHeader is set on every relayed non-upgrade response.
const allowOriginHeader = "Access-Control-Allow-Origin"

// ProxyService handles the forwarding logic for proxy requests.
type ProxyService struct {
	client  *client.UpstreamClient
	host    string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewProxyService creates a ProxyService bound to the configured upstream host.
// The metrics parameter is optional.
func NewProxyService(c *client.UpstreamClient, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*ProxyService, error) {
	if cfg.Upstream.Host == "" {
		return nil, fmt.Errorf("upstream host is not configured")
	}

	return &ProxyService{
		client:  c,
		host:    cfg.Upstream.Host,
		logger:  logger.With("component", "proxy_service"),
		metrics: m,
	}, nil
}

// Host returns the upstream host every request is forwarded to.
func (s *ProxyService) Host() string {
	return s.host
}

// TargetURL returns the upstream URL for an inbound escaped path and raw query.
// Only scheme and authority are substituted; path and query are reused verbatim.
func (s *ProxyService) TargetURL(path, rawQuery string) string {
	target := "https://" + s.host + path
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	return target
}

// Forward sends a ProxyRequest to the upstream and returns the final response
// after redirects, with a permissive CORS origin added.
// The caller is responsible for closing the response body.
func (s *ProxyService) Forward(pr *model.ProxyRequest) (*model.ProxyResponse, error) {
	req, err := s.newUpstreamRequest(pr)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("forwarding request",
		"method", pr.Method,
		"path", pr.Path,
	)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forward to upstream: %w", err)
	}

	header := resp.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	header.Set(allowOriginHeader, "*")
	resp.Header = header

	return resp, nil
}

func (s *ProxyService) newUpstreamRequest(pr *model.ProxyRequest) (*http.Request, error) {
	body := pr.Body
	if body == nil || pr.ContentLength == 0 {
		body = http.NoBody
	}

	req, err := http.NewRequestWithContext(pr.Ctx, pr.Method, s.TargetURL(pr.Path, pr.RawQuery), body)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}

	model.PinPath(req.URL, pr.Path)

	header := pr.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	if _, ok := header["User-Agent"]; !ok {
		// Keep the Go default User-Agent off the wire.
		header["User-Agent"] = []string{""}
	}
	header.Set("Host", s.host)
	req.Header = header
	req.Host = s.host
	req.ContentLength = pr.ContentLength

	return req, nil
}
