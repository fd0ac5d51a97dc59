package binanceadapter

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	gbinance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"go.uber.org/zap"

	"quotebot/internal/domain"
	"quotebot/internal/shared/retry"
	"quotebot/internal/usecase/orderbook"
)

type Options struct {
	BaseURL string // пусто — боевой api.binance.com
	Depth   int
	Timeout time.Duration
	Retry   retry.Policy
	Logger  *zap.Logger
}

type BinanceExchange struct {
	client *gbinance.Client
	depth  int
	policy retry.Policy
	logger *zap.Logger
}

func New(opts Options) *BinanceExchange {
	client := gbinance.NewClient("", "") // публичные данные
	if opts.BaseURL != "" {
		client.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 7 * time.Second
	}
	client.HTTPClient = &http.Client{Timeout: opts.Timeout}
	if opts.Retry.Attempts <= 0 {
		opts.Retry = retry.Default
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &BinanceExchange{
		client: client,
		depth:  clampDepth(opts.Depth),
		policy: opts.Retry,
		logger: opts.Logger,
	}
}

func (b *BinanceExchange) Name() string { return "Binance" }

// Ошибки API (4xx с кодом Binance) не повторяем.
func retryable(err error) bool { return !common.IsAPIError(err) }

func (b *BinanceExchange) GetProducts(ctx context.Context) ([]domain.Product, error) {
	var info *gbinance.ExchangeInfo
	err := retry.WithRetry(ctx, b.policy, retryable, func(ctx context.Context) error {
		var err error
		info, err = b.client.NewExchangeInfoService().Do(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("binance: exchange info: %w", err)
	}
	out := make([]domain.Product, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.Status != "TRADING" {
			continue
		}
		out = append(out, domain.Product{
			ID:     domain.ProductID(s.BaseAsset, s.QuoteAsset),
			Base:   strings.ToUpper(s.BaseAsset),
			Quote:  strings.ToUpper(s.QuoteAsset),
			Symbol: s.Symbol,
		})
	}
	b.logger.Debug("binance products loaded", zap.Int("count", len(out)))
	return out, nil
}

// Symbol — тикер Binance для "BASE-QUOTE".
func Symbol(productID string) string {
	return strings.ToUpper(strings.ReplaceAll(productID, "-", ""))
}

func (b *BinanceExchange) GetOrderBook(ctx context.Context, productID string) (*domain.OrderBook, error) {
	symbol := Symbol(productID)

	var depth *gbinance.DepthResponse
	err := retry.WithRetry(ctx, b.policy, retryable, func(ctx context.Context) error {
		var err error
		depth, err = b.client.NewDepthService().Symbol(symbol).Limit(b.depth).Do(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("binance: order book %s (limit=%d): %w", symbol, b.depth, err)
	}

	asks := make([]domain.Order, 0, len(depth.Asks))
	for _, a := range depth.Asks {
		asks = append(asks, domain.Order{Price: a.Price, Quantity: a.Quantity})
	}
	bids := make([]domain.Order, 0, len(depth.Bids))
	for _, d := range depth.Bids {
		bids = append(bids, domain.Order{Price: d.Price, Quantity: d.Quantity})
	}
	ob, err := orderbook.NewBook(productID, b.Name(), asks, bids)
	if err != nil {
		return nil, fmt.Errorf("binance: %w", err)
	}
	ob.Sequence = depth.LastUpdateID
	ob.Time = time.Now()
	return ob, nil
}

// Поддерживаемые лимиты Binance
func clampDepth(limit int) int {
	allowed := []int{5, 10, 20, 50, 100, 500, 1000, 5000}
	if limit <= 0 {
		return 100
	}
	chosen := allowed[len(allowed)-1]
	for _, v := range allowed {
		if limit <= v {
			chosen = v
			break
		}
	}
	return chosen
}
