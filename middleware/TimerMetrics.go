package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"keyportal/metrics"
)

// TimerMetrics logs every request with its duration and feeds the request histogram.
func TimerMetrics(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		startTime := time.Now()

		err := c.Next()

		duration := time.Since(startTime)
		status := c.Response().StatusCode()
		if err != nil {
			// the error handler has not run yet, so the status is still 200
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		// fiber reuses the buffers behind these strings once the handler returns
		method := utils.CopyString(c.Method())
		path := utils.CopyString(c.Path())
		ip := utils.CopyString(c.IP())
		// route pattern, not raw path, to keep label cardinality bounded
		route := utils.CopyString(c.Route().Path)

		metrics.HTTPRequestDuration.
			WithLabelValues(method, route, strconv.Itoa(status)).
			Observe(duration.Seconds())

		log.Info("request",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", ip))

		return err
	}
}
