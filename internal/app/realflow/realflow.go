package realflow

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	binanceadapter "quotebot/internal/adapters/exchange/binance"
	coinbaseadapter "quotebot/internal/adapters/exchange/coinbase"
	kucoinadapter "quotebot/internal/adapters/exchange/kucoin"
	"quotebot/internal/config"
	"quotebot/internal/domain"
	"quotebot/internal/infra/exchangebooks"
	"quotebot/internal/shared/retry"
	"quotebot/internal/usecase/quote"
)

// RealFlow — живая цепочка: биржа -> кэш листинга/стаканов -> quote.Service.
type RealFlow struct {
	Venue   domain.Venue
	Repo    *exchangebooks.CachedRepo
	Service *quote.Service

	warm        []string
	concurrency int
	logger      *zap.Logger
}

// NewVenue выбирает адаптер по venue.name.
func NewVenue(cfg config.VenueConfig, policy retry.Policy, logger *zap.Logger) (domain.Venue, error) {
	switch cfg.Name {
	case "coinbase", "":
		return coinbaseadapter.New(coinbaseadapter.Options{
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
			Retry:   policy,
			Logger:  logger.Named("coinbase"),
		}), nil
	case "binance":
		return binanceadapter.New(binanceadapter.Options{
			BaseURL: cfg.BaseURL,
			Depth:   cfg.Depth,
			Timeout: cfg.Timeout,
			Retry:   policy,
			Logger:  logger.Named("binance"),
		}), nil
	case "kucoin":
		return kucoinadapter.New(kucoinadapter.Options{
			BaseURL: cfg.BaseURL,
			Depth:   cfg.Depth,
			Timeout: cfg.Timeout,
			Retry:   policy,
			Logger:  logger.Named("kucoin"),
		}), nil
	}
	return nil, fmt.Errorf("unsupported venue %q", cfg.Name)
}

func New(cfg *config.Config, logger *zap.Logger) (*RealFlow, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	policy := retry.Policy{
		Attempts: cfg.Retry.Attempts,
		Min:      cfg.Retry.MinDelay,
		Max:      cfg.Retry.MaxDelay,
	}
	venue, err := NewVenue(cfg.Venue, policy, logger)
	if err != nil {
		return nil, err
	}
	repo := exchangebooks.NewCachedRepo(venue, exchangebooks.Options{
		ProductsTTL: cfg.Cache.ProductsTTL,
		BookTTL:     cfg.Cache.BookTTL,
		LoadTimeout: loadTimeout(cfg),
		Logger:      logger.Named("books"),
	})
	return &RealFlow{
		Venue:       venue,
		Repo:        repo,
		Service:     quote.New(repo, logger.Named("quote")),
		warm:        cfg.Warm.Products,
		concurrency: cfg.Warm.Concurrency,
		logger:      logger,
	}, nil
}

// loadTimeout: все попытки с таймаутом venue.timeout плюс паузы между ними.
func loadTimeout(cfg *config.Config) time.Duration {
	n := time.Duration(cfg.Retry.Attempts)
	if n < 1 {
		n = 1
	}
	return n*cfg.Venue.Timeout + (n-1)*cfg.Retry.MaxDelay
}

// Warm прогревает стаканы из warm.products. Ошибка прогрева не мешает старту.
func (f *RealFlow) Warm(ctx context.Context) {
	if len(f.warm) == 0 {
		return
	}
	if err := f.Repo.Warm(ctx, f.warm, f.concurrency); err != nil {
		f.logger.Warn("warm-up failed", zap.Strings("products", f.warm), zap.Error(err))
		return
	}
	f.logger.Info("order books warmed", zap.Int("count", len(f.warm)))
}
