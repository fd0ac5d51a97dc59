package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"quotebot/internal/domain"
)

type QuoteFacade interface {
	Quote(ctx context.Context, req domain.QuoteRequest) (QuoteResponse, error)
	Rate(ctx context.Context, base, quote string) (RateResponse, error)
	Products(ctx context.Context) (ProductsResponse, error)
}

type Options struct {
	ReadTimeout    time.Duration
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

type Server struct {
	addr   string
	flow   QuoteFacade
	opts   Options
	logger *zap.Logger
	app    *fiber.App
}

func New(addr string, flow QuoteFacade, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 5 * time.Second
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	s := &Server{addr: addr, flow: flow, opts: opts, logger: opts.Logger}
	s.app = s.routes()
	return s
}

// App — для тестов через app.Test.
func (s *Server) App() *fiber.App { return s.app }

func (s *Server) routes() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "quotebot",
		ReadTimeout:           s.opts.ReadTimeout,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(ErrorResponse{Status: "error", Message: err.Error()})
		},
	})
	app.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type,Authorization," + RequestIDHeader,
	}))
	app.Use(requestIDMiddleware)
	app.Use(s.accessLog)

	// совместимость со старым клиентом: POST /quote
	app.Post("/quote", s.handleQuote)

	api := app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Post("/quote", s.handleQuote)
	api.Get("/rate", s.handleRate)
	api.Get("/products", s.handleProducts)

	return app
}

func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.addr))
	return s.app.Listen(s.addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleQuote(c *fiber.Ctx) error {
	var body QuoteRequest
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.UseNumber()
	// пустое тело — как пустой объект: дальше сработает "missing action"
	if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return fail(c, fiber.StatusBadRequest, "invalid JSON: "+err.Error())
	}

	req, msg := validate(body)
	if msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), s.opts.RequestTimeout)
	defer cancel()

	res, err := s.flow.Quote(ctx, req)
	if err != nil {
		return s.upstreamError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(res)
}

func (s *Server) handleProducts(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), s.opts.RequestTimeout)
	defer cancel()

	res, err := s.flow.Products(ctx)
	if err != nil {
		return s.upstreamError(c, err)
	}
	return c.JSON(res)
}

// validate: порядок проверок и тексты ошибок ждут старые клиенты POST /quote.
func validate(b QuoteRequest) (domain.QuoteRequest, string) {
	var out domain.QuoteRequest

	if missing(b.Action) {
		return out, "missing action"
	}
	actionStr, ok := b.Action.(string)
	if !ok {
		return out, "wrong action"
	}
	action, ok := domain.ParseAction(actionStr)
	if !ok {
		return out, "wrong action"
	}
	out.Action = action

	if missing(b.BaseCurrency) {
		return out, "missing base currency"
	}
	base, ok := b.BaseCurrency.(string)
	if !ok {
		return out, "bad format base currency"
	}
	out.BaseCurrency = strings.TrimSpace(base)

	if missing(b.QuoteCurrency) {
		return out, "missing quote currency"
	}
	quote, ok := b.QuoteCurrency.(string)
	if !ok {
		return out, "bad format quote currency"
	}
	out.QuoteCurrency = strings.TrimSpace(quote)

	if missing(b.Amount) {
		return out, "missing amount"
	}
	num, ok := b.Amount.(json.Number)
	if !ok {
		return out, "bad format amount"
	}
	amount, err := decimal.NewFromString(num.String())
	if err != nil {
		return out, "bad format amount"
	}
	if !amount.IsPositive() {
		return out, "amount must be > 0"
	}
	if !domain.AmountInRange(amount) {
		return out, "bad format amount"
	}
	out.Amount = amount

	if strings.EqualFold(out.BaseCurrency, out.QuoteCurrency) {
		return out, "base and quote currency must differ"
	}
	return out, ""
}

// missing — отсутствует, null или пустая строка.
func missing(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

func (s *Server) upstreamError(c *fiber.Ctx, err error) error {
	code := fiber.StatusBadGateway
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		code = fiber.StatusBadRequest
	case errors.Is(err, domain.ErrProductNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		code = fiber.StatusGatewayTimeout
	}
	s.logger.Warn("quote failed",
		zap.String("request_id", requestID(c)),
		zap.Int("status", code),
		zap.Error(err))
	return fail(c, code, err.Error())
}

func fail(c *fiber.Ctx, code int, msg string) error {
	return c.Status(code).JSON(ErrorResponse{Status: "error", Message: msg})
}
