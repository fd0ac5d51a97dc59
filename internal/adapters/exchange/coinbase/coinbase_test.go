package coinbaseadapter

import (
	"context"
	"errors"
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

var noRetry = retry.Policy{Attempts: 1}

func TestGetProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`[
			{"id":"BTC-USD","base_currency":"BTC","quote_currency":"USD","status":"online"},
			{"id":"ETH-BTC","base_currency":"ETH","quote_currency":"BTC","status":"online"},
			{"id":"XYZ-USD","base_currency":"XYZ","quote_currency":"USD","status":"delisted"},
			{"id":"ABC-USD","base_currency":"ABC","quote_currency":"USD","status":"online","trading_disabled":true}]`))
	}))
	defer srv.Close()

	ex := New(Options{BaseURL: srv.URL, Retry: noRetry})
	products, err := ex.GetProducts(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, domain.Product{ID: "BTC-USD", Base: "BTC", Quote: "USD", Symbol: "BTC-USD"}, products[0])
}

func TestGetOrderBook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/BTC-USD/book", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("level"))
		_, _ = w.Write([]byte(`{"sequence":3,"time":"2024-01-02T03:04:05.000000Z",
			"bids":[["6201.06","1",1],["6201.05","1",1],["6201.03","1",2]],
			"asks":[["6211.94","3",9],["6211.95","7",1]]}`))
	}))
	defer srv.Close()

	ex := New(Options{BaseURL: srv.URL, Retry: noRetry})
	ob, err := ex.GetOrderBook(context.Background(), "BTC-USD")

	require.NoError(t, err)
	assert.Equal(t, int64(3), ob.Sequence)
	assert.Equal(t, 2024, ob.Time.Year())
	require.Len(t, ob.Bids, 3)
	assert.Equal(t, "6201.06", ob.Bids[0].Price.String())
	assert.Equal(t, 2, ob.Bids[2].OrderCount)
	assert.Equal(t, 9, ob.Asks[0].OrderCount)
}

func TestGetOrderBookMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"bids":[["oops","1",1]],"asks":[]}`))
	}))
	defer srv.Close()

	ex := New(Options{BaseURL: srv.URL, Retry: noRetry})
	_, err := ex.GetOrderBook(context.Background(), "BTC-USD")

	assert.True(t, errors.Is(err, domain.ErrMalformedBook), "err=%v", err)
}

func TestRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	ex := New(Options{BaseURL: srv.URL, Retry: retry.Policy{Attempts: 3, Min: time.Millisecond, Max: time.Millisecond}})
	_, err := ex.GetProducts(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	ex := New(Options{BaseURL: srv.URL, Retry: retry.Policy{Attempts: 3, Min: time.Millisecond, Max: time.Millisecond}})
	_, err := ex.GetOrderBook(context.Background(), "NOPE-USD")

	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
