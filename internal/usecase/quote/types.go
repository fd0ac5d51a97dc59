package quote

import (
	"context"

	"quotebot/internal/domain"
)

// ====== Контракты use-case (не зависят от HTTP и конкретной биржи) ======

// Repo — доступ к листингу и стаканам (реализация в infra/exchangebooks).
type Repo interface {
	// ResolvePair: прямая пара BASE-QUOTE или обратная QUOTE-BASE; иначе ErrProductNotFound.
	ResolvePair(ctx context.Context, base, quote string) (domain.Pair, error)
	// Snapshot: отсортированный неизменяемый снимок стакана (из кэша или свежий).
	Snapshot(ctx context.Context, productID string) (*domain.OrderBook, error)
}

// Result — котировка вместе с тем, по какому стакану она посчитана.
type Result struct {
	domain.FillResult
	ProductID string
	Reversed  bool
	Sequence  int64
}
