package middleware

import (
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/totegamma/orderdemo/internal/domain"
	"github.com/totegamma/orderdemo/internal/logging"
)

// RequestTracing tags every request with a fresh request id, the client ip
// and the api path. They are stored in the request context for the logger
// and set on the active span.
func RequestTracing(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		start := time.Now()

		requestID := uuid.New().String()
		clientIP := ClientIP(c)
		path := req.URL.Path

		ctx := logging.With(
			req.Context(),
			slog.String(domain.LogRequestID, requestID),
			slog.String(domain.LogClientIP, clientIP),
			slog.String(domain.LogAPIPath, path),
			slog.String(domain.LogUserID, domain.AnonymousUser),
		)

		span := trace.SpanFromContext(ctx)
		span.SetAttributes(
			attribute.String(domain.LogRequestID, requestID),
			attribute.String(domain.LogClientIP, clientIP),
			attribute.String(domain.LogAPIPath, path),
		)

		c.SetRequest(req.WithContext(ctx))
		c.Response().Header().Set(domain.RequestIDHeader, requestID)

		slog.InfoContext(
			ctx, "request started",
			slog.String("method", req.Method),
			slog.String("userAgent", req.UserAgent()),
			slog.String("module", "rest"),
		)

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		slog.InfoContext(
			ctx, "request completed",
			slog.String("method", req.Method),
			slog.Int("status", c.Response().Status),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			slog.String("module", "rest"),
		)
		return nil
	}
}

// ClientIP prefers proxy headers over the remote address. The first
// entry of X-Forwarded-For is the originating client.
func ClientIP(c echo.Context) string {
	req := c.Request()
	for _, header := range []string{domain.ForwardedForHeader, domain.ProxyClientIPHeader, domain.WLProxyClientIPHeader} {
		v := strings.TrimSpace(req.Header.Get(header))
		if v == "" || strings.EqualFold(v, "unknown") {
			continue
		}
		if i := strings.IndexByte(v, ','); i >= 0 {
			v = strings.TrimSpace(v[:i])
		}
		return v
	}

	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}
