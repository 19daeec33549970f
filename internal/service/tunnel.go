package service

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"strconv"

	"sportsdata-proxy/internal/model"
)

// Tunnel relays a protocol upgrade request to the upstream and hands the raw
// upstream response back to w. Headers are forwarded as received, including
// the inbound Host, and the response is not decorated. After a 101 the
// connection is hijacked and bytes are copied in both directions until either
// side closes or the request context ends.
//
// Errors reaching the upstream are returned instead of being written to w.
func (s *ProxyService) Tunnel(w http.ResponseWriter, r *http.Request) error {
	var proxyErr error

	rp := &httputil.ReverseProxy{
		Rewrite:        s.rewriteUpgrade,
		Transport:      s.client.Transport(),
		ModifyResponse: s.observeUpgrade,
		ErrorLog:       slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
		ErrorHandler: func(_ http.ResponseWriter, _ *http.Request, err error) {
			proxyErr = err
		},
	}

	s.logger.Debug("tunneling upgrade request",
		"path", r.URL.Path,
		"upgrade", r.Header.Get("Upgrade"),
	)

	rp.ServeHTTP(w, r)

	if proxyErr != nil {
		return fmt.Errorf("tunnel to upstream: %w", proxyErr)
	}
	return nil
}

// forwardingHeaders are dropped by ReverseProxy before Rewrite runs.
var forwardingHeaders = []string{"Forwarded", "X-Forwarded-For", "X-Forwarded-Host", "X-Forwarded-Proto"}

func (s *ProxyService) rewriteUpgrade(pr *httputil.ProxyRequest) {
	pr.Out.URL.Scheme = "https"
	pr.Out.URL.Host = s.host
	pr.Out.URL.RawQuery = pr.In.URL.RawQuery
	model.PinPath(pr.Out.URL, model.RequestPath(pr.In))

	for _, h := range forwardingHeaders {
		if v, ok := pr.In.Header[h]; ok {
			pr.Out.Header[h] = v
		}
	}
}

func (s *ProxyService) observeUpgrade(resp *http.Response) error {
	if s.metrics != nil {
		s.metrics.WebSocketUpgrades.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
	}
	s.logger.Debug("upgrade response",
		"status", resp.StatusCode,
		"upgrade", resp.Header.Get("Upgrade"),
	)
	return nil
}
