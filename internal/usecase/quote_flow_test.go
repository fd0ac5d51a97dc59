package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotebot/internal/domain"
	"quotebot/internal/usecase/quote"
)

type recPresenter struct {
	infos, warns []string
	rates        int
	quotes       []quote.Result
}

func (p *recPresenter) Infof(format string, args ...any) {
	p.infos = append(p.infos, fmt.Sprintf(format, args...))
}
func (p *recPresenter) Warnf(format string, args ...any) {
	p.warns = append(p.warns, fmt.Sprintf(format, args...))
}
func (p *recPresenter) ShowRate(string, string, quote.TopOfBook) { p.rates++ }
func (p *recPresenter) ShowQuote(_ domain.QuoteRequest, res quote.Result) {
	p.quotes = append(p.quotes, res)
}

type fakeQuoter struct {
	res               quote.Result
	quoteErr, rateErr error
}

func (f fakeQuoter) Quote(context.Context, domain.QuoteRequest) (quote.Result, error) {
	return f.res, f.quoteErr
}

func (f fakeQuoter) Rate(context.Context, string, string) (quote.TopOfBook, error) {
	return quote.TopOfBook{}, f.rateErr
}

func req() domain.QuoteRequest {
	return domain.QuoteRequest{Action: domain.Buy, BaseCurrency: "BTC", QuoteCurrency: "USD", Amount: decimal.NewFromInt(5)}
}

func TestRun_OK(t *testing.T) {
	pr := &recPresenter{}
	q := fakeQuoter{res: quote.Result{FillResult: domain.FillResult{Total: decimal.NewFromInt(10)}}}

	require.NoError(t, Run(context.Background(), q, req(), pr))
	assert.Equal(t, 1, pr.rates)
	require.Len(t, pr.quotes, 1)
	assert.Empty(t, pr.warns)
}

func TestRun_RateFailureIsNotFatal(t *testing.T) {
	pr := &recPresenter{}
	q := fakeQuoter{rateErr: errors.New("boom")}

	require.NoError(t, Run(context.Background(), q, req(), pr))
	assert.Zero(t, pr.rates)
	require.Len(t, pr.warns, 1)
	assert.Contains(t, pr.warns[0], "boom")
	assert.Len(t, pr.quotes, 1)
}

func TestRun_Unfilled(t *testing.T) {
	pr := &recPresenter{}
	q := fakeQuoter{res: quote.Result{FillResult: domain.FillResult{Unfilled: decimal.NewFromInt(2)}}}

	require.NoError(t, Run(context.Background(), q, req(), pr))
	require.Len(t, pr.warns, 1)
	assert.Contains(t, pr.warns[0], "2 BTC")
}

func TestRun_QuoteError(t *testing.T) {
	pr := &recPresenter{}
	q := fakeQuoter{quoteErr: fmt.Errorf("%w: USD-XYZ", domain.ErrProductNotFound)}

	err := Run(context.Background(), q, req(), pr)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Empty(t, pr.quotes)
}
