package exchangebooks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"quotebot/internal/domain"
	"quotebot/internal/infra/cache"
)

const (
	DefaultProductsTTL = 5 * time.Second
	DefaultBookTTL     = 30 * time.Second

	productsKey = "products"
)

type Options struct {
	ProductsTTL time.Duration
	BookTTL     time.Duration
	// LoadTimeout — лимит одной загрузки с биржи, общей для ждущих запросов.
	LoadTimeout time.Duration
	Logger      *zap.Logger
}

// CachedRepo реализует quote.Repo поверх одной биржи:
// список продуктов и стаканы кэшируются с разными TTL.
type CachedRepo struct {
	venue    domain.Venue
	products *cache.TTL[string, map[string]domain.Product]
	books    *cache.TTL[string, *domain.OrderBook]
	logger   *zap.Logger
}

func NewCachedRepo(venue domain.Venue, opts Options) *CachedRepo {
	if opts.ProductsTTL == 0 {
		opts.ProductsTTL = DefaultProductsTTL
	}
	if opts.BookTTL == 0 {
		opts.BookTTL = DefaultBookTTL
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &CachedRepo{
		venue:    venue,
		products: cache.New[string, map[string]domain.Product](opts.ProductsTTL).WithLoadTimeout(opts.LoadTimeout),
		books:    cache.New[string, *domain.OrderBook](opts.BookTTL).WithLoadTimeout(opts.LoadTimeout),
		logger:   opts.Logger.With(zap.String("venue", venue.Name())),
	}
}

// withClock — подмена часов обоих кэшей в тестах.
func (r *CachedRepo) withClock(now func() time.Time) *CachedRepo {
	r.products.WithClock(now)
	r.books.WithClock(now)
	return r
}

func (r *CachedRepo) Venue() string { return r.venue.Name() }

// Products — набор торгуемых продуктов по ID.
func (r *CachedRepo) Products(ctx context.Context) (map[string]domain.Product, error) {
	return r.products.GetOrRefresh(ctx, productsKey, func(ctx context.Context) (map[string]domain.Product, error) {
		list, err := r.venue.GetProducts(ctx)
		if err != nil {
			return nil, err
		}
		set := make(map[string]domain.Product, len(list))
		for _, p := range list {
			set[p.ID] = p
		}
		r.logger.Info("products cache refreshed", zap.Int("count", len(set)))
		return set, nil
	})
}

// ProductIDs — отсортированный список ID (для /api/products).
func (r *CachedRepo) ProductIDs(ctx context.Context) ([]string, error) {
	set, err := r.Products(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ResolvePair ищет BASE-QUOTE, затем QUOTE-BASE (Reversed=true).
func (r *CachedRepo) ResolvePair(ctx context.Context, base, quote string) (domain.Pair, error) {
	set, err := r.Products(ctx)
	if err != nil {
		return domain.Pair{}, err
	}
	id := domain.ProductID(strings.TrimSpace(base), strings.TrimSpace(quote))
	if _, ok := set[id]; ok {
		return domain.Pair{ProductID: id}, nil
	}
	id = domain.ProductID(strings.TrimSpace(quote), strings.TrimSpace(base))
	if _, ok := set[id]; ok {
		return domain.Pair{ProductID: id, Reversed: true}, nil
	}
	return domain.Pair{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
}

// Snapshot — стакан из кэша или свежий. При обновлении кладётся новый
// объект, выданные ранее снимки не меняются.
func (r *CachedRepo) Snapshot(ctx context.Context, productID string) (*domain.OrderBook, error) {
	return r.books.GetOrRefresh(ctx, productID, func(ctx context.Context) (*domain.OrderBook, error) {
		ob, err := r.venue.GetOrderBook(ctx, productID)
		if err != nil {
			r.logger.Warn("order book fetch failed", zap.String("product", productID), zap.Error(err))
			return nil, err
		}
		r.logger.Info("order book cache refreshed",
			zap.String("product", productID),
			zap.Int("bids", len(ob.Bids)),
			zap.Int("asks", len(ob.Asks)),
			zap.Int64("sequence", ob.Sequence))
		return ob, nil
	})
}

// Invalidate сбрасывает стакан продукта (пустой ID — все стаканы и продукты).
func (r *CachedRepo) Invalidate(productID string) {
	if productID == "" {
		r.books.Purge()
		r.products.Purge()
		return
	}
	r.books.Invalidate(productID)
}

// Warm параллельно прогревает кэш стаканов для productIDs.
// Неизвестные продукты пропускаются с предупреждением.
func (r *CachedRepo) Warm(ctx context.Context, productIDs []string, concurrency int) error {
	set, err := r.Products(ctx)
	if err != nil {
		return fmt.Errorf("warm: %w", err)
	}
	if concurrency <= 0 {
		concurrency = 4
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, raw := range productIDs {
		id := strings.ToUpper(strings.TrimSpace(raw))
		if _, ok := set[id]; !ok {
			r.logger.Warn("warm: unknown product", zap.String("product", id))
			continue
		}
		g.Go(func() error {
			if _, err := r.Snapshot(gctx, id); err != nil {
				return fmt.Errorf("warm %s: %w", id, err)
			}
			return nil
		})
	}
	return g.Wait()
}
