package binanceadapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotebot/internal/domain"
	"quotebot/internal/shared/retry"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/exchangeInfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"timezone":"UTC","serverTime":1,"symbols":[
			{"symbol":"BTCUSDT","status":"TRADING","baseAsset":"BTC","quoteAsset":"USDT"},
			{"symbol":"ETHBTC","status":"TRADING","baseAsset":"ETH","quoteAsset":"BTC"},
			{"symbol":"OLDUSDT","status":"BREAK","baseAsset":"OLD","quoteAsset":"USDT"}]}`))
	})
	mux.HandleFunc("/api/v3/depth", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"lastUpdateId":42,
			"bids":[["6211.91","6.45979053"],["6211.90","0.25"]],
			"asks":[["6211.94","3"],["6211.95","7"]]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestExchange(t *testing.T) *BinanceExchange {
	srv := newTestServer(t)
	return New(Options{
		BaseURL: srv.URL,
		Timeout: time.Second,
		Retry:   retry.Policy{Attempts: 1},
	})
}

func TestGetProducts(t *testing.T) {
	ex := newTestExchange(t)

	products, err := ex.GetProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, domain.Product{ID: "BTC-USDT", Base: "BTC", Quote: "USDT", Symbol: "BTCUSDT"}, products[0])
	assert.Equal(t, "ETH-BTC", products[1].ID)
}

func TestGetOrderBook(t *testing.T) {
	ex := newTestExchange(t)

	ob, err := ex.GetOrderBook(context.Background(), "BTC-USDT")
	require.NoError(t, err)
	assert.Equal(t, "BTC-USDT", ob.ProductID)
	assert.Equal(t, "Binance", ob.Exchange)
	assert.Equal(t, int64(42), ob.Sequence)
	require.Len(t, ob.Bids, 2)
	require.Len(t, ob.Asks, 2)
	assert.Equal(t, "6211.91", ob.Bids[0].Price.String())
	assert.Equal(t, "6211.94", ob.Asks[0].Price.String())
}

func TestGetOrderBookMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"lastUpdateId":1,"bids":[["nope","1"]],"asks":[]}`))
	}))
	defer srv.Close()
	ex := New(Options{BaseURL: srv.URL, Retry: retry.Policy{Attempts: 1}})

	_, err := ex.GetOrderBook(context.Background(), "BTC-USDT")
	assert.True(t, errors.Is(err, domain.ErrMalformedBook), "err=%v", err)
}

func TestSymbol(t *testing.T) {
	assert.Equal(t, "BTCUSDT", Symbol("btc-usdt"))
}

func TestClampDepth(t *testing.T) {
	assert.Equal(t, 100, clampDepth(0))
	assert.Equal(t, 5, clampDepth(3))
	assert.Equal(t, 500, clampDepth(101))
	assert.Equal(t, 5000, clampDepth(100000))
}
