package httpapi

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// handleRate обрабатывает GET /api/rate?base=BTC&quote=USD.
// Возвращает лучшие bid/ask и mid в соглашении запрошенной пары,
// даже если на бирже листинг обратный.
func (s *Server) handleRate(c *fiber.Ctx) error {
	base := strings.TrimSpace(c.Query("base"))
	quote := strings.TrimSpace(c.Query("quote"))
	if base == "" || quote == "" {
		return fail(c, fiber.StatusBadRequest, "missing 'base' or 'quote' query param")
	}
	if strings.EqualFold(base, quote) {
		return fail(c, fiber.StatusBadRequest, "base and quote currency must differ")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), s.opts.RequestTimeout)
	defer cancel()

	res, err := s.flow.Rate(ctx, base, quote)
	if err != nil {
		return s.upstreamError(c, err)
	}
	return c.JSON(res)
}
