package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/vine/pkg/context"
)

const (
	// HeaderTenantID carries the caller's tenant when header trust is on
	HeaderTenantID = "X-Tenant-ID"
	// HeaderUserID carries the caller's user when header trust is on
	HeaderUserID = "X-User-ID"
)

// Context seeds the request context with request metadata. The tenant and
// user headers are only honored when trustHeaders is set; deployments behind
// real authentication take both from the verified token instead.
func Context(trustHeaders bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}

			ctx := req.Context()
			ctx = context.SetRequestID(ctx, requestID)
			ctx = context.SetMethod(ctx, req.Method)
			ctx = context.SetRoute(ctx, req.URL.Path)
			ctx = context.SetRemoteIP(ctx, c.RealIP())
			ctx = context.SetReferer(ctx, req.Referer())

			if trustHeaders {
				ctx = context.SetTenantID(ctx, req.Header.Get(HeaderTenantID))
				ctx = context.SetUserID(ctx, req.Header.Get(HeaderUserID))
			}

			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}
