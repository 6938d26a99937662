package http

import (
	"context"
	"time"

	"golang-stock-ledger/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// RegisterMiddlewares installs request id propagation, panic recovery and access logging.
func RegisterMiddlewares(e *echo.Echo, log *logger.Logger) {
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestContext(log))
}

func requestContext(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Response().Header().Get(echo.HeaderXRequestID)
			ctx := context.WithValue(c.Request().Context(), logger.RequestIDKey, requestID)
			c.SetRequest(c.Request().WithContext(ctx))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			log.InfoContext(ctx, "HTTP request",
				logger.StringField("method", c.Request().Method),
				logger.StringField("path", c.Path()),
				logger.IntField("status", c.Response().Status),
				logger.Int64Field("latency_ms", time.Since(start).Milliseconds()),
			)
			return nil
		}
	}
}
