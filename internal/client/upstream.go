// Package client provides the pooled HTTP client used to reach the upstream host.
package client

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"sportsdata-proxy/internal/config"
	"sportsdata-proxy/internal/metrics"
	"sportsdata-proxy/internal/model"
)

// UpstreamClient sends requests to the upstream host.
type UpstreamClient struct {
	httpClient *http.Client
	transport  *http.Transport
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewUpstreamClient creates an UpstreamClient with connection pooling, timeouts
// and transparent redirect following.
// The metrics parameter is optional; pass nil to disable upstream metrics recording.
func NewUpstreamClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *UpstreamClient {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          cfg.Upstream.IdleConnections,
		MaxIdleConnsPerHost:   cfg.Upstream.IdleConnections,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		// Only the wait for response headers is bounded; streamed bodies
		// live as long as the inbound request context.
		ResponseHeaderTimeout: time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		// Bodies are relayed byte-for-byte; never let the transport
		// negotiate and strip a Content-Encoding the caller did not ask for.
		DisableCompression: true,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.Upstream.InsecureSkipVerify, //nolint:gosec // opt-in for self-signed dev upstreams
		},
	}

	maxRedirects := cfg.Upstream.MaxRedirects
	logger = logger.With("component", "upstream_client")

	return &UpstreamClient{
		httpClient: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					// Relay the last redirect as the upstream sent it.
					logger.Debug("redirect limit reached",
						"location", req.URL.Redacted(),
						"limit", maxRedirects,
					)
					return http.ErrUseLastResponse
				}
				logger.Debug("following redirect",
					"location", req.URL.Redacted(),
					"hop", len(via),
				)
				return nil
			},
		},
		transport: transport,
		logger:    logger,
		metrics:   m,
	}
}

// Transport returns the pooled transport shared by ordinary requests and
// protocol upgrades.
func (c *UpstreamClient) Transport() http.RoundTripper {
	return c.transport
}

// Do executes an HTTP request against the upstream and returns the final
// response after redirects. The caller is responsible for closing the response body.
func (c *UpstreamClient) Do(req *http.Request) (*model.ProxyResponse, error) {
	c.logger.Debug("upstream request",
		"method", req.Method,
		"host", req.Host,
		"path", req.URL.Path,
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req) //nolint:bodyclose // body ownership transfers to caller via ProxyResponse
	duration := time.Since(start).Seconds()

	method := metrics.NormalizeMethod(req.Method)

	if err != nil {
		if c.metrics != nil {
			c.metrics.UpstreamDuration.WithLabelValues(method).Observe(duration)
		}
		return nil, fmt.Errorf("upstream request: %w", err)
	}

	if c.metrics != nil {
		status := strconv.Itoa(resp.StatusCode)
		c.metrics.UpstreamDuration.WithLabelValues(method).Observe(duration)
		c.metrics.UpstreamResponses.WithLabelValues(method, status).Inc()
	}

	return &model.ProxyResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
	}, nil
}
