package orderbook

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"quotebot/internal/domain"
)

// ParseLevels переводит сырые уровни биржи в decimal.
// Нечисловые и неположительные цена/объём — ошибка ErrMalformedBook:
// виноват источник стакана, а не расчёт.
func ParseLevels(raw []domain.Order) ([]domain.Level, error) {
	out := make([]domain.Level, 0, len(raw))
	for i, o := range raw {
		p, err := decimal.NewFromString(strings.TrimSpace(o.Price))
		if err != nil {
			return nil, fmt.Errorf("%w: level %d price %q", domain.ErrMalformedBook, i, o.Price)
		}
		q, err := decimal.NewFromString(strings.TrimSpace(o.Quantity))
		if err != nil {
			return nil, fmt.Errorf("%w: level %d size %q", domain.ErrMalformedBook, i, o.Quantity)
		}
		if !p.IsPositive() || !q.IsPositive() {
			return nil, fmt.Errorf("%w: level %d non-positive %s@%s", domain.ErrMalformedBook, i, q, p)
		}
		out = append(out, domain.Level{Price: p, Size: q, OrderCount: o.Count})
	}
	return out, nil
}

// NewBook собирает снимок из сырых asks/bids и гарантирует сортировку:
// asks по возрастанию, bids по убыванию. Биржи обычно уже отдают так,
// стабильная сортировка порядок не ломает.
func NewBook(productID, exchange string, asks, bids []domain.Order) (*domain.OrderBook, error) {
	a, err := ParseLevels(asks)
	if err != nil {
		return nil, fmt.Errorf("%s asks: %w", productID, err)
	}
	b, err := ParseLevels(bids)
	if err != nil {
		return nil, fmt.Errorf("%s bids: %w", productID, err)
	}
	sort.SliceStable(a, func(i, j int) bool { return a[i].Price.LessThan(a[j].Price) })
	sort.SliceStable(b, func(i, j int) bool { return b[i].Price.GreaterThan(b[j].Price) })
	return &domain.OrderBook{
		ProductID: productID,
		Exchange:  exchange,
		Asks:      a,
		Bids:      b,
	}, nil
}
