// internal/api/middleware.go
package api

import (
	"time"

	"github.com/labstack/echo/v4"
)

// MetricsMiddleware records request counts, latencies and response sizes
// for every API call. The route template is used as the path label so
// parameterized routes do not explode the cardinality.
func (c *Controller) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if c.metrics == nil || c.metrics.HTTP == nil {
				return next(ctx)
			}

			start := time.Now()
			err := next(ctx)

			req := ctx.Request()
			res := ctx.Response()

			path := ctx.Path()
			if path == "" {
				path = req.URL.Path
			}

			c.metrics.HTTP.RecordHTTPRequest(req.Method, path, res.Status, time.Since(start).Seconds())
			c.metrics.HTTP.RecordHTTPResponseSize(req.Method, path, res.Size)
			if err != nil {
				c.metrics.HTTP.RecordHTTPRequestError(req.Method, path, "handler")
			}

			return err
		}
	}
}
