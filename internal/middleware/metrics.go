package middleware

import (
	"time"

	"recruiting-service/prometheus"

	"github.com/labstack/echo/v4"
)

// MetricsMiddleware adds prometheus metrics to track HTTP requests
func MetricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// Start timer for request duration
		start := time.Now()

		// Process request
		err := next(c)

		// Record metrics
		prometheus.RecordHTTPRequest(c.Request().Method, c.Path(), c.Response().Status, time.Since(start))

		return err
	}
}
