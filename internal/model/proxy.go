// Package model defines shared types for the proxy.
package model

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ProxyRequest represents a client request to be forwarded upstream.
type ProxyRequest struct {
	Ctx           context.Context
	Method        string
	Path          string // as sent on the request line, forwarded byte-for-byte
	RawQuery      string
	Header        http.Header
	Body          io.ReadCloser
	ContentLength int64
}

// ProxyResponse represents the upstream response to be streamed back.
type ProxyResponse struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// IsWebSocketUpgrade reports whether the Upgrade header asks for websocket,
// compared case-insensitively.
func IsWebSocketUpgrade(header http.Header) bool {
	for _, v := range header.Values("Upgrade") {
		for token := range strings.SplitSeq(v, ",") {
			if strings.EqualFold(strings.TrimSpace(token), "websocket") {
				return true
			}
		}
	}
	return false
}

// RequestPath returns the path exactly as it appeared on the inbound request
// line. url.URL.EscapedPath re-encodes characters such as '|', '{' or '^', so
// the raw request URI is preferred whenever it is in origin form.
func RequestPath(r *http.Request) string {
	uri := r.RequestURI
	if !strings.HasPrefix(uri, "/") {
		return r.URL.EscapedPath()
	}
	if i := strings.IndexByte(uri, '?'); i >= 0 {
		uri = uri[:i]
	}
	return uri
}

// PinPath makes u serialize its request path as exactly path when its
// escaped path would differ. A leading "//" cannot be carried in
// url.URL.Opaque without turning the request line into absolute form, so such
// paths keep Go's encoding.
func PinPath(u *url.URL, path string) {
	if strings.HasPrefix(path, "//") {
		return
	}
	if u.EscapedPath() != path {
		u.Opaque = path
	}
}
