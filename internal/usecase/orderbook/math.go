package orderbook

import (
	"github.com/shopspring/decimal"

	"quotebot/internal/domain"
)

// Precision — число знаков после запятой во всех отдаваемых полях.
const Precision = 8

var one = decimal.NewFromInt(1)

// Side выбирает сторону стакана: action XOR reversed.
//
//	sell + прямой стакан   -> bids
//	sell + обратный стакан -> asks
//	buy  + прямой стакан   -> asks
//	buy  + обратный стакан -> bids
func Side(book *domain.OrderBook, action domain.Action, reversed bool) []domain.Level {
	if book == nil {
		return nil
	}
	if (action == domain.Sell) != reversed {
		return book.Bids
	}
	return book.Asks
}

// ToBaseUnits — объём уровня в единицах base-валюты запроса.
// У обратного стакана size в quote-валюте запроса, поэтому size*price.
func ToBaseUnits(l domain.Level, reversed bool) decimal.Decimal {
	if reversed {
		return l.Size.Mul(l.Price)
	}
	return l.Size
}

// LevelCost — стоимость полностью выбранного уровня в quote-валюте запроса.
func LevelCost(l domain.Level, reversed bool) decimal.Decimal {
	if reversed {
		return l.Size
	}
	return l.Size.Mul(l.Price)
}

// PartialCost — стоимость остатка remaining (base запроса), добранного на уровне l.
func PartialCost(l domain.Level, remaining decimal.Decimal, reversed bool) decimal.Decimal {
	if reversed {
		return remaining.Div(l.Price)
	}
	return remaining.Mul(l.Price)
}

// DisplayPrice переводит цену уровня в соглашение запроса (1/p для обратного стакана).
func DisplayPrice(p decimal.Decimal, reversed bool) decimal.Decimal {
	if !reversed {
		return p
	}
	if p.IsZero() {
		return decimal.Zero
	}
	return one.Div(p)
}

// Match проходит стакан от лучшей цены, пока не наберёт req.Amount или
// не закончится сторона. Входные данные не изменяются; частичное
// исполнение — не ошибка, остаток уходит в Unfilled.
func Match(req domain.QuoteRequest, book *domain.OrderBook, reversed bool) domain.FillResult {
	levels := Side(book, req.Action, reversed)

	remaining := req.Amount
	totalCost := decimal.Zero
	var last *domain.Level

	for i := range levels {
		l := levels[i]
		last = &levels[i]

		size := ToBaseUnits(l, reversed)
		if size.GreaterThanOrEqual(remaining) {
			totalCost = totalCost.Add(PartialCost(l, remaining, reversed))
			remaining = decimal.Zero
			break
		}
		remaining = remaining.Sub(size)
		totalCost = totalCost.Add(LevelCost(l, reversed))
	}

	res := domain.FillResult{
		Total:     decimal.Zero,
		Price:     decimal.Zero,
		Currency:  req.QuoteCurrency,
		BestPrice: decimal.Zero,
		LastPrice: decimal.Zero,
		Unfilled:  round(remaining),
	}
	if len(levels) > 0 {
		res.BestPrice = round(DisplayPrice(levels[0].Price, reversed))
	}
	if last != nil {
		res.LastPrice = round(DisplayPrice(last.Price, reversed))
	}

	filled := req.Amount.Sub(remaining)
	if !filled.IsPositive() {
		// ничего не исполнено: средняя цена не определена, отдаём нули
		res.Unfilled = round(req.Amount)
		return res
	}
	res.Total = round(totalCost)
	res.Price = round(totalCost.Div(filled))
	return res
}

// round — half away from zero, как у decimal.Round.
func round(d decimal.Decimal) decimal.Decimal { return d.Round(Precision) }
