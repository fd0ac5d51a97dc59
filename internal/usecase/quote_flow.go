package usecase

import (
	"context"
	"fmt"

	"quotebot/internal/domain"
	"quotebot/internal/usecase/presenter"
	"quotebot/internal/usecase/quote"
)

// Quoter — то, что нужно сценарию от quote.Service.
type Quoter interface {
	Quote(ctx context.Context, req domain.QuoteRequest) (quote.Result, error)
	Rate(ctx context.Context, base, quoteCcy string) (quote.TopOfBook, error)
}

// Run — сценарий CLI:
// 1) лучшие цены по паре (ошибка здесь не фатальна);
// 2) котировка на весь объём;
// 3) печать результата.
func Run(ctx context.Context, q Quoter, req domain.QuoteRequest, pr presenter.Presenter) error {
	pr.Infof("Запрос: %s %s %s за %s\n", req.Action, req.Amount.String(), req.BaseCurrency, req.QuoteCurrency)

	if top, err := q.Rate(ctx, req.BaseCurrency, req.QuoteCurrency); err != nil {
		pr.Warnf("Не удалось получить лучшие цены: %v\n", err)
	} else {
		pr.ShowRate(req.BaseCurrency, req.QuoteCurrency, top)
	}

	res, err := q.Quote(ctx, req)
	if err != nil {
		return fmt.Errorf("quote %s/%s: %w", req.BaseCurrency, req.QuoteCurrency, err)
	}
	pr.ShowQuote(req, res)
	if res.Unfilled.IsPositive() {
		pr.Warnf("Глубины стакана не хватило: не исполнено %s %s\n", res.Unfilled.String(), req.BaseCurrency)
	}
	return nil
}
