package kucoinadapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotebot/internal/domain"
	"quotebot/internal/shared/retry"
)

func TestGetProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/symbols", r.URL.Path)
		_, _ = w.Write([]byte(`{"code":"200000","data":[
			{"symbol":"BTC-USDT","baseCurrency":"BTC","quoteCurrency":"USDT","enableTrading":true},
			{"symbol":"OLD-USDT","baseCurrency":"OLD","quoteCurrency":"USDT","enableTrading":false}]}`))
	}))
	defer srv.Close()

	ex := New(Options{BaseURL: srv.URL, Retry: retry.Policy{Attempts: 1}})
	products, err := ex.GetProducts(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, domain.Product{ID: "BTC-USDT", Base: "BTC", Quote: "USDT", Symbol: "BTC-USDT"}, products[0])
}

func TestGetOrderBook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/market/orderbook/level2_20", r.URL.Path)
		assert.Equal(t, "BTC-USDT", r.URL.Query().Get("symbol"))
		_, _ = w.Write([]byte(`{"code":"200000","data":{"sequence":"42","time":1700000000000,
			"bids":[["100","1"],["101","2"]],
			"asks":[["103","1"],["102","2"]]}}`))
	}))
	defer srv.Close()

	ex := New(Options{BaseURL: srv.URL, Depth: 10, Retry: retry.Policy{Attempts: 1}})
	ob, err := ex.GetOrderBook(context.Background(), "BTC-USDT")

	require.NoError(t, err)
	assert.Equal(t, int64(42), ob.Sequence)
	assert.Equal(t, int64(1700000000000), ob.Time.UnixMilli())
	assert.Equal(t, "101", ob.Bids[0].Price.String())
	assert.Equal(t, "102", ob.Asks[0].Price.String())
}

func TestAPIErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"code":"400100","msg":"bad symbol"}`))
	}))
	defer srv.Close()

	ex := New(Options{BaseURL: srv.URL, Retry: retry.Policy{Attempts: 3}})
	_, err := ex.GetOrderBook(context.Background(), "NOPE-USDT")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "400100")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestMalformedBook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"code":"200000","data":{"bids":[["abc","1"]],"asks":[]}}`))
	}))
	defer srv.Close()

	ex := New(Options{BaseURL: srv.URL, Retry: retry.Policy{Attempts: 1}})
	_, err := ex.GetOrderBook(context.Background(), "BTC-USDT")
	assert.ErrorIs(t, err, domain.ErrMalformedBook)
}

func TestHTTPStatusRetry(t *testing.T) {
	cases := []struct {
		status int
		calls  int32
	}{
		{http.StatusBadRequest, 1},
		{http.StatusNotFound, 1},
		{http.StatusTooManyRequests, 2},
		{http.StatusBadGateway, 2},
	}
	for _, c := range cases {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(c.status)
		}))

		ex := New(Options{BaseURL: srv.URL, Retry: retry.Policy{Attempts: 2, Min: time.Millisecond, Max: time.Millisecond}})
		_, err := ex.GetProducts(context.Background())
		srv.Close()

		require.Error(t, err)
		assert.Equal(t, c.calls, atomic.LoadInt32(&calls), "status %d", c.status)
	}
}
