package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"regexp"

	"github.com/labstack/echo/v4"

	"sportsdata-proxy/internal/model"
	"sportsdata-proxy/internal/service"
)

// credentialPattern matches credential-like query parameter values in URLs
// embedded in error messages. Sports-data APIs usually take keys in the query.
var credentialPattern = regexp.MustCompile(`(?i)\b((?:api_?key|access_token|token|key)=)[^&\s"]+`)

// ProxyHandler relays every non-local request to the upstream host.
type ProxyHandler struct {
	service *service.ProxyService
	logger  *slog.Logger
}

// NewProxyHandler creates a ProxyHandler.
func NewProxyHandler(svc *service.ProxyService, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		service: svc,
		logger:  logger.With("component", "proxy_handler"),
	}
}

// Handle proxies the request to the upstream. WebSocket upgrades are tunneled
// untouched; everything else is forwarded and streamed back with CORS relaxed.
func (h *ProxyHandler) Handle(c echo.Context) error {
	req := c.Request()

	if model.IsWebSocketUpgrade(req.Header) {
		if err := h.service.Tunnel(c.Response(), req); err != nil {
			return h.mapError(c, err)
		}
		return nil
	}

	pr := &model.ProxyRequest{
		Ctx:           req.Context(),
		Method:        req.Method,
		Path:          model.RequestPath(req),
		RawQuery:      req.URL.RawQuery,
		Header:        req.Header,
		Body:          req.Body,
		ContentLength: req.ContentLength,
	}

	resp, err := h.service.Forward(pr)
	if err != nil {
		return h.mapError(c, err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Upstream values replace anything middleware already set (X-Request-Id).
	dst := c.Response().Header()
	for key, vals := range resp.Header {
		dst[key] = vals
	}

	c.Response().WriteHeader(resp.StatusCode)

	// If the copy fails mid-stream (client disconnect, upstream reset) the
	// status is already on the wire, so the client sees a truncated body.
	if _, err := copyBody(c.Response(), resp.Body, resp.Header.Get("Content-Length") == ""); err != nil {
		h.logger.Error("streaming response body",
			"err", sanitizeError(err),
			"path", req.URL.Path,
		)
	}

	return nil
}

// copyBody streams src to w. Responses of unknown length (event streams,
// chunked feeds) are flushed after every read so updates reach the client
// as they arrive.
func copyBody(w *echo.Response, src io.Reader, flush bool) (int64, error) {
	if !flush {
		return io.Copy(w, src)
	}

	buf := make([]byte, 32*1024)
	var written int64
	for {
		n, err := src.Read(buf)
		if n > 0 {
			m, werr := w.Write(buf[:n])
			written += int64(m)
			if werr != nil {
				return written, werr
			}
			w.Flush()
		}
		if errors.Is(err, io.EOF) {
			return written, nil
		}
		if err != nil {
			return written, err
		}
	}
}

func (h *ProxyHandler) mapError(c echo.Context, err error) error {
	h.logger.Error("proxy error",
		"err", sanitizeError(err),
		"path", c.Request().URL.Path,
	)

	// A hijacked tunnel or a started stream cannot carry an error body.
	if c.Response().Committed {
		return nil
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return c.JSON(http.StatusGatewayTimeout, map[string]string{
			"error": "upstream request timed out",
		})
	}

	if errors.Is(err, context.Canceled) {
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": "client disconnected",
		})
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": "upstream host unreachable",
		})
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": "upstream connection failed",
		})
	}

	return c.JSON(http.StatusBadGateway, map[string]string{
		"error": "upstream request failed",
	})
}

// sanitizeError redacts credentials from error messages that may contain upstream URLs.
func sanitizeError(err error) string {
	return credentialPattern.ReplaceAllString(err.Error(), "${1}[REDACTED]")
}
