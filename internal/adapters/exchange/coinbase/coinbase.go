package coinbaseadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"quotebot/internal/domain"
	"quotebot/internal/shared/retry"
	"quotebot/internal/usecase/orderbook"
)

const DefaultBaseURL = "https://api.exchange.coinbase.com"

// statusError — ответ биржи с не-2xx статусом.
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string { return "HTTP " + e.status }

// 4xx повторять бессмысленно, кроме 429.
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	return !errors.Is(err, context.Canceled)
}

type httpClient struct {
	baseURL string
	client  *http.Client
	policy  retry.Policy
}

func (c *httpClient) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var body []byte
	err := retry.WithRetry(ctx, c.policy, retryable, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		// Coinbase отклоняет запросы без User-Agent
		req.Header.Set("User-Agent", "quotebot/coinbase")
		req.Header.Set("Accept", "application/json")
		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode/100 != 2 {
			return &statusError{code: resp.StatusCode, status: resp.Status}
		}
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	return body, err
}

type Options struct {
	BaseURL string
	Timeout time.Duration
	Retry   retry.Policy
	Logger  *zap.Logger
}

type coinbaseExchange struct {
	http   *httpClient
	logger *zap.Logger
}

func New(opts Options) domain.Venue {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 7 * time.Second
	}
	if opts.Retry.Attempts <= 0 {
		opts.Retry = retry.Default
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &coinbaseExchange{
		http: &httpClient{
			baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
			client:  &http.Client{Timeout: opts.Timeout},
			policy:  opts.Retry,
		},
		logger: opts.Logger,
	}
}

func (c *coinbaseExchange) Name() string { return "Coinbase" }

type productResp struct {
	ID              string `json:"id"`
	BaseCurrency    string `json:"base_currency"`
	QuoteCurrency   string `json:"quote_currency"`
	Status          string `json:"status"`
	TradingDisabled bool   `json:"trading_disabled"`
}

func (c *coinbaseExchange) GetProducts(ctx context.Context) ([]domain.Product, error) {
	data, err := c.http.get(ctx, "/products", nil)
	if err != nil {
		return nil, fmt.Errorf("coinbase: products request: %w", err)
	}
	var resp []productResp
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("coinbase: products JSON: %w", err)
	}
	out := make([]domain.Product, 0, len(resp))
	for _, p := range resp {
		if p.TradingDisabled || (p.Status != "" && p.Status != "online") {
			continue
		}
		out = append(out, domain.Product{
			ID:     domain.ProductID(p.BaseCurrency, p.QuoteCurrency),
			Base:   strings.ToUpper(p.BaseCurrency),
			Quote:  strings.ToUpper(p.QuoteCurrency),
			Symbol: p.ID,
		})
	}
	c.logger.Debug("coinbase products loaded", zap.Int("count", len(out)))
	return out, nil
}

// bookResp — level 2: [price, size, num_orders], price/size строками.
type bookResp struct {
	Bids     [][]any `json:"bids"`
	Asks     [][]any `json:"asks"`
	Sequence int64   `json:"sequence"`
	Time     string  `json:"time"`
}

func (c *coinbaseExchange) GetOrderBook(ctx context.Context, productID string) (*domain.OrderBook, error) {
	path := "/products/" + url.PathEscape(productID) + "/book"
	data, err := c.http.get(ctx, path, url.Values{"level": {"2"}})
	if err != nil {
		return nil, fmt.Errorf("coinbase: order book %s: %w", productID, err)
	}
	var resp bookResp
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("coinbase: order book %s JSON: %w", productID, err)
	}
	ob, err := orderbook.NewBook(productID, c.Name(), toOrders(resp.Asks), toOrders(resp.Bids))
	if err != nil {
		return nil, fmt.Errorf("coinbase: %w", err)
	}
	ob.Sequence = resp.Sequence
	ob.Time = time.Now()
	if t, err := time.Parse(time.RFC3339Nano, resp.Time); err == nil {
		ob.Time = t
	}
	return ob, nil
}

func toOrders(raw [][]any) []domain.Order {
	out := make([]domain.Order, 0, len(raw))
	for _, it := range raw {
		if len(it) < 2 {
			continue
		}
		o := domain.Order{Price: str(it[0]), Quantity: str(it[1])}
		if len(it) >= 3 {
			if n, ok := it[2].(float64); ok {
				o.Count = int(n)
			}
		}
		out = append(out, o)
	}
	return out
}

func str(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		// пусть разбор уровня вернёт ErrMalformedBook
		return fmt.Sprint(v)
	}
}
