package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"sportsdata-proxy/internal/model"
)

// RequestID returns echo's request ID middleware with UUIDv4 identifiers.
// Upgrade requests are skipped: their handshake response is relayed exactly
// as the upstream sent it.
func RequestID() echo.MiddlewareFunc {
	return echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Skipper: func(c echo.Context) bool {
			return model.IsWebSocketUpgrade(c.Request().Header)
		},
		Generator: uuid.NewString,
	})
}
