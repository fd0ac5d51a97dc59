package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotebot/internal/domain"
	"quotebot/internal/usecase/quote"
)

func TestAskDefaults(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("\n\n\n\n"), &out)

	req, err := p.Ask()
	require.NoError(t, err)
	assert.Equal(t, domain.Buy, req.Action)
	assert.Equal(t, "BTC", req.BaseCurrency)
	assert.Equal(t, "USD", req.QuoteCurrency)
	assert.Equal(t, "1", req.Amount.String())
}

func TestAskCustom(t *testing.T) {
	var out bytes.Buffer
	// неверное действие; тикер не из списка; повтор base; неположительный объём
	in := strings.Join([]string{
		"x",
		"sell",
		"sol",
		"sol",
		"4",
		"-1",
		"0,5",
	}, "\n")
	p := NewPrompter(strings.NewReader(in), &out)

	req, err := p.Ask()
	require.NoError(t, err)
	assert.Equal(t, domain.Sell, req.Action)
	assert.Equal(t, "SOL", req.BaseCurrency)
	assert.Equal(t, "USDT", req.QuoteCurrency)
	assert.True(t, req.Amount.Equal(decimal.RequireFromString("0.5")))
	assert.Contains(t, out.String(), "уже выбрана")
}

func TestAskEOF(t *testing.T) {
	p := NewPrompter(strings.NewReader("2\n"), io.Discard)
	_, err := p.Ask()
	assert.ErrorIs(t, err, io.EOF)
}

func TestPresenter(t *testing.T) {
	var out bytes.Buffer
	pr := NewCLIPresenter(&out)

	req := domain.QuoteRequest{Action: domain.Buy, BaseCurrency: "BTC", QuoteCurrency: "USD", Amount: decimal.NewFromInt(5)}
	pr.ShowQuote(req, quote.Result{FillResult: domain.FillResult{
		Total:     decimal.RequireFromString("18635.82"),
		Price:     decimal.RequireFromString("6211.94"),
		Currency:  "USD",
		BestPrice: decimal.RequireFromString("6211.94"),
		LastPrice: decimal.RequireFromString("6211.94"),
		Unfilled:  decimal.NewFromInt(2),
	}})
	s := out.String()
	assert.Contains(t, s, "Итого: 18.635,82 USD")
	assert.Contains(t, s, "Не исполнено: 2,0 BTC")

	out.Reset()
	pr.ShowRate("USD", "BTC", quote.TopOfBook{ProductID: "BTC-USD", Reversed: true, Ask: decimal.RequireFromString("0.001")})
	assert.Contains(t, out.String(), "обратная пара")
	assert.Contains(t, out.String(), "Ask=0,001")
}
