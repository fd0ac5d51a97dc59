package kucoinadapter

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

const (
	DefaultBaseURL = "https://api.kucoin.com"
	userAgent      = "quotebot/1.0 (+local)"
	codeOK         = "200000"
)

// apiError — ответ с code != 200000; повтор не поможет.
type apiError struct {
	code string
	msg  string
}

func (e *apiError) Error() string { return "kucoin: API error code=" + e.code + " " + e.msg }

type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string { return "HTTP " + e.status }

// Повторяем сетевые ошибки, 5xx и 429; code != 200000 и прочие 4xx — нет.
func retryable(err error) bool {
	var ae *apiError
	if errors.As(err, &ae) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	return !errors.Is(err, context.Canceled)
}

// envelope — общая обёртка ответов REST API.
type envelope struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
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
		req.Header.Set("User-Agent", userAgent)
		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			return &statusError{code: resp.StatusCode, status: resp.Status}
		}
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		var env envelope
		if err := json.Unmarshal(b, &env); err != nil {
			return err
		}
		if env.Code != codeOK {
			return &apiError{code: env.Code, msg: env.Msg}
		}
		body = b
		return nil
	})
	return body, err
}

type Options struct {
	BaseURL string
	Depth   int
	Timeout time.Duration
	Retry   retry.Policy
	Logger  *zap.Logger
}

type kucoinExchange struct {
	http   *httpClient
	depth  int
	logger *zap.Logger
}

func New(opts Options) domain.Venue {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 8 * time.Second
	}
	if opts.Retry.Attempts <= 0 {
		opts.Retry = retry.Default
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &kucoinExchange{
		http: &httpClient{
			baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
			client:  &http.Client{Timeout: opts.Timeout},
			policy:  opts.Retry,
		},
		depth:  bookDepth(opts.Depth),
		logger: opts.Logger,
	}
}

func (k *kucoinExchange) Name() string { return "KuCoin" }

// bookDepth: публичный снапшот бывает только на 20 и 100 уровней.
func bookDepth(n int) int {
	if n > 0 && n <= 20 {
		return 20
	}
	return 100
}

// ====== symbols ======
type symbolsResp struct {
	Data []struct {
		Symbol        string `json:"symbol"` // "BTC-USDT"
		BaseCurrency  string `json:"baseCurrency"`
		QuoteCurrency string `json:"quoteCurrency"`
		EnableTrading bool   `json:"enableTrading"`
	} `json:"data"`
}

func (k *kucoinExchange) GetProducts(ctx context.Context) ([]domain.Product, error) {
	data, err := k.http.get(ctx, "/api/v1/symbols", nil)
	if err != nil {
		return nil, fmt.Errorf("kucoin: symbols request: %w", err)
	}
	var resp symbolsResp
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("kucoin: parse symbols: %w", err)
	}
	out := make([]domain.Product, 0, len(resp.Data))
	for _, s := range resp.Data {
		if !s.EnableTrading {
			continue
		}
		out = append(out, domain.Product{
			ID:     domain.ProductID(s.BaseCurrency, s.QuoteCurrency),
			Base:   strings.ToUpper(s.BaseCurrency),
			Quote:  strings.ToUpper(s.QuoteCurrency),
			Symbol: s.Symbol,
		})
	}
	k.logger.Debug("kucoin symbols loaded", zap.Int("count", len(out)))
	return out, nil
}

// ====== order book ======
type bookResp struct {
	Data struct {
		Sequence string     `json:"sequence"`
		Time     int64      `json:"time"`
		Asks     [][]string `json:"asks"` // [price, size]
		Bids     [][]string `json:"bids"`
	} `json:"data"`
}

func (k *kucoinExchange) GetOrderBook(ctx context.Context, productID string) (*domain.OrderBook, error) {
	// идентификатор KuCoin совпадает с "BASE-QUOTE"
	path := fmt.Sprintf("/api/v1/market/orderbook/level2_%d", k.depth)
	data, err := k.http.get(ctx, path, url.Values{"symbol": {productID}})
	if err != nil {
		return nil, fmt.Errorf("kucoin: orderbook %s: %w", productID, err)
	}
	var resp bookResp
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("kucoin: parse orderbook %s: %w", productID, err)
	}
	ob, err := orderbook.NewBook(productID, k.Name(), toOrders(resp.Data.Asks), toOrders(resp.Data.Bids))
	if err != nil {
		return nil, fmt.Errorf("kucoin: %w", err)
	}
	ob.Sequence, _ = strconv.ParseInt(resp.Data.Sequence, 10, 64)
	ob.Time = time.Now()
	if resp.Data.Time > 0 {
		ob.Time = time.UnixMilli(resp.Data.Time)
	}
	return ob, nil
}

func toOrders(raw [][]string) []domain.Order {
	out := make([]domain.Order, 0, len(raw))
	for _, r := range raw {
		if len(r) >= 2 {
			out = append(out, domain.Order{Price: r[0], Quantity: r[1]})
		}
	}
	return out
}
