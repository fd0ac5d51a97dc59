package quote

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"quotebot/internal/domain"
	"quotebot/internal/usecase/orderbook"
)

// Service — поиск котировки по публичному стакану.
type Service struct {
	repo   Repo
	logger *zap.Logger
}

func New(repo Repo, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// Quote:
// 1) нормализует пару;
// 2) находит продукт (прямой или обратный);
// 3) берёт снимок стакана;
// 4) проходит стакан orderbook.Match.
func (s *Service) Quote(ctx context.Context, in domain.QuoteRequest) (Result, error) {
	base := strings.ToUpper(strings.TrimSpace(in.BaseCurrency))
	quote := strings.ToUpper(strings.TrimSpace(in.QuoteCurrency))
	if base == "" || quote == "" {
		return Result{}, fmt.Errorf("%w: bad pair %q/%q", domain.ErrInvalidRequest, base, quote)
	}
	if base == quote {
		return Result{}, fmt.Errorf("%w: same currency on both sides: %s", domain.ErrInvalidRequest, base)
	}
	if in.Action != domain.Buy && in.Action != domain.Sell {
		return Result{}, fmt.Errorf("%w: unknown action %q", domain.ErrInvalidRequest, in.Action)
	}
	if !in.Amount.IsPositive() {
		return Result{}, fmt.Errorf("%w: amount must be > 0", domain.ErrInvalidRequest)
	}
	if !domain.AmountInRange(in.Amount) {
		return Result{}, fmt.Errorf("%w: amount %s out of range", domain.ErrInvalidRequest, in.Amount.String())
	}
	in.BaseCurrency, in.QuoteCurrency = base, quote

	log := s.logger.With(
		zap.String("action", string(in.Action)),
		zap.String("base", base),
		zap.String("quote", quote),
		zap.String("amount", in.Amount.String()),
	)
	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		log = log.With(zap.String("request_id", id))
	}
	log.Debug("find quote")

	pair, err := s.repo.ResolvePair(ctx, base, quote)
	if err != nil {
		return Result{}, err
	}
	book, err := s.repo.Snapshot(ctx, pair.ProductID)
	if err != nil {
		return Result{}, fmt.Errorf("order book %s: %w", pair.ProductID, err)
	}

	fill := orderbook.Match(in, book, pair.Reversed)
	log.Info("quote matched",
		zap.String("product", pair.ProductID),
		zap.Bool("reversed", pair.Reversed),
		zap.String("total", fill.Total.String()),
		zap.String("price", fill.Price.String()),
		zap.String("unfilled", fill.Unfilled.String()))

	return Result{
		FillResult: fill,
		ProductID:  pair.ProductID,
		Reversed:   pair.Reversed,
		Sequence:   book.Sequence,
	}, nil
}

type ctxKey string

// RequestIDKey — ключ request id в контексте (кладёт transport).
const RequestIDKey ctxKey = "request_id"

// TopOfBook — лучшие bid/ask в соглашении запрошенной пары и mid между ними.
// Пустая сторона даёт ноль; mid тогда равен единственной известной цене.
type TopOfBook struct {
	ProductID string
	Reversed  bool
	Bid       decimal.Decimal
	Ask       decimal.Decimal
	Mid       decimal.Decimal
}

func (s *Service) Rate(ctx context.Context, base, quote string) (TopOfBook, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	quote = strings.ToUpper(strings.TrimSpace(quote))
	if base == "" || quote == "" || base == quote {
		return TopOfBook{}, fmt.Errorf("%w: bad pair %q/%q", domain.ErrInvalidRequest, base, quote)
	}
	pair, err := s.repo.ResolvePair(ctx, base, quote)
	if err != nil {
		return TopOfBook{}, err
	}
	book, err := s.repo.Snapshot(ctx, pair.ProductID)
	if err != nil {
		return TopOfBook{}, fmt.Errorf("order book %s: %w", pair.ProductID, err)
	}

	top := TopOfBook{ProductID: pair.ProductID, Reversed: pair.Reversed}
	// продать base запроса = лучший bid, купить = лучший ask
	if lv := orderbook.Side(book, domain.Sell, pair.Reversed); len(lv) > 0 {
		top.Bid = orderbook.DisplayPrice(lv[0].Price, pair.Reversed).Round(orderbook.Precision)
	}
	if lv := orderbook.Side(book, domain.Buy, pair.Reversed); len(lv) > 0 {
		top.Ask = orderbook.DisplayPrice(lv[0].Price, pair.Reversed).Round(orderbook.Precision)
	}
	switch {
	case top.Bid.IsPositive() && top.Ask.IsPositive():
		top.Mid = top.Bid.Add(top.Ask).Div(decimal.NewFromInt(2)).Round(orderbook.Precision)
	case top.Ask.IsPositive():
		top.Mid = top.Ask
	case top.Bid.IsPositive():
		top.Mid = top.Bid
	}
	return top, nil
}
