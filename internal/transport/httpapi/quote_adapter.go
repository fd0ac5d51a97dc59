package httpapi

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"quotebot/internal/domain"
	"quotebot/internal/usecase/quote"
)

// Catalog — листинг биржи для /api/products.
type Catalog interface {
	Venue() string
	ProductIDs(ctx context.Context) ([]string, error)
}

// QuoteAdapter — тонкий адаптер: маппит httpapi.* <-> quote.* и вызывает use-case.
type QuoteAdapter struct {
	Svc     *quote.Service
	Catalog Catalog
}

func (a *QuoteAdapter) Quote(ctx context.Context, req domain.QuoteRequest) (QuoteResponse, error) {
	if a == nil || a.Svc == nil {
		return QuoteResponse{}, fmt.Errorf("service is not initialized")
	}
	out, err := a.Svc.Quote(ctx, req)
	if err != nil {
		return QuoteResponse{}, err
	}
	f, err := nums(out.Total, out.Price, out.BestPrice, out.LastPrice, out.Unfilled)
	if err != nil {
		return QuoteResponse{}, err
	}
	return QuoteResponse{
		Total:     f[0],
		Price:     f[1],
		Currency:  out.Currency,
		BestPrice: f[2],
		LastPrice: f[3],
		Unfilled:  f[4],
	}, nil
}

func (a *QuoteAdapter) Rate(ctx context.Context, base, quoteCcy string) (RateResponse, error) {
	if a == nil || a.Svc == nil {
		return RateResponse{}, fmt.Errorf("service is not initialized")
	}
	top, err := a.Svc.Rate(ctx, base, quoteCcy)
	if err != nil {
		return RateResponse{}, err
	}
	f, err := nums(top.Bid, top.Ask, top.Mid)
	if err != nil {
		return RateResponse{}, err
	}
	return RateResponse{
		Base:      strings.ToUpper(strings.TrimSpace(base)),
		Quote:     strings.ToUpper(strings.TrimSpace(quoteCcy)),
		ProductID: top.ProductID,
		Reversed:  top.Reversed,
		Bid:       f[0],
		Ask:       f[1],
		Mid:       f[2],
	}, nil
}

func (a *QuoteAdapter) Products(ctx context.Context) (ProductsResponse, error) {
	if a == nil || a.Catalog == nil {
		return ProductsResponse{}, fmt.Errorf("catalog is not initialized")
	}
	ids, err := a.Catalog.ProductIDs(ctx)
	if err != nil {
		return ProductsResponse{}, err
	}
	return ProductsResponse{Venue: a.Catalog.Venue(), Products: ids}, nil
}

// num — значения уже округлены до 8 знаков, float64 их представляет
// с точностью, достаточной для JSON-ответа. Inf/NaN в JSON не кодируются.
func num(d decimal.Decimal) (float64, error) {
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("value %s is out of float64 range", d.String())
	}
	return f, nil
}

// nums переводит несколько значений разом; первая ошибка прерывает.
func nums(ds ...decimal.Decimal) ([]float64, error) {
	out := make([]float64, len(ds))
	for i, d := range ds {
		f, err := num(d)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}
