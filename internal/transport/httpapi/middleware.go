package httpapi

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"quotebot/internal/usecase/quote"
)

const RequestIDHeader = "X-Request-ID"

func requestIDMiddleware(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Get(RequestIDHeader))
	if id == "" {
		id = uuid.NewString()
	}
	ctx := context.WithValue(c.UserContext(), quote.RequestIDKey, id)
	c.SetUserContext(ctx)
	c.Set(RequestIDHeader, id)
	return c.Next()
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.UserContext().Value(quote.RequestIDKey).(string)
	return id
}

func (s *Server) accessLog(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Debug("http request",
		zap.String("request_id", requestID(c)),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("latency", time.Since(start)))
	return err
}
