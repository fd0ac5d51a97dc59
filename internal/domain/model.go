package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Базовые доменные сущности

type Action string

const (
	Buy  Action = "buy"
	Sell Action = "sell"
)

// ParseAction принимает "buy"/"sell" в любом регистре.
func ParseAction(s string) (Action, bool) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case Buy:
		return Buy, true
	case Sell:
		return Sell, true
	}
	return "", false
}

// QuoteRequest — запрос котировки: Amount всегда в BaseCurrency.
type QuoteRequest struct {
	Action        Action
	BaseCurrency  string
	QuoteCurrency string
	Amount        decimal.Decimal
}

// Order — уровень стакана в том виде, как его отдаёт биржа (строки).
type Order struct {
	Price    string
	Quantity string
	Count    int
}

// Level — распарсенный уровень стакана.
// Price — quote за 1 base собственной пары стакана, Size — в base этой пары.
type Level struct {
	Price      decimal.Decimal
	Size       decimal.Decimal
	OrderCount int
}

// OrderBook — неизменяемый снимок стакана.
// Bids отсортированы по убыванию цены, Asks — по возрастанию.
type OrderBook struct {
	ProductID string
	Exchange  string
	Sequence  int64
	Time      time.Time
	Bids      []Level
	Asks      []Level
}

// FillResult — итог прохода по стакану. Все десятичные поля округлены до 8 знаков.
type FillResult struct {
	Total     decimal.Decimal
	Price     decimal.Decimal
	Currency  string
	BestPrice decimal.Decimal
	LastPrice decimal.Decimal
	Unfilled  decimal.Decimal
}

// Product — торгуемая пара биржи. ID всегда "BASE-QUOTE".
type Product struct {
	ID     string
	Base   string
	Quote  string
	Symbol string // биржевой тикер (BTCUSDT у Binance, BTC-USD у Coinbase)
}

// Pair — результат сопоставления запрошенной пары с листингом биржи.
type Pair struct {
	ProductID string
	Reversed  bool
}

func ProductID(base, quote string) string {
	return strings.ToUpper(base) + "-" + strings.ToUpper(quote)
}

var (
	ErrProductNotFound = errors.New("product not found")
	ErrMalformedBook   = errors.New("malformed order book")
	ErrInvalidRequest  = errors.New("invalid request")
)

// MaxAmountExp: показатель степени объёма в [-18, 18], значение не больше 10^18.
const MaxAmountExp = 18

var maxAmount = decimal.New(1, MaxAmountExp)

// AmountInRange — положительный объём в допустимых пределах.
func AmountInRange(d decimal.Decimal) bool {
	if exp := d.Exponent(); exp < -MaxAmountExp || exp > MaxAmountExp {
		return false
	}
	return d.IsPositive() && d.LessThanOrEqual(maxAmount)
}

// Venue — контракт адаптера биржи.
type Venue interface {
	Name() string
	GetProducts(ctx context.Context) ([]Product, error)
	GetOrderBook(ctx context.Context, productID string) (*OrderBook, error)
}
