package presenter

import (
	"quotebot/internal/domain"
	"quotebot/internal/usecase/quote"
)

type Presenter interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)

	ShowRate(base, quoteCcy string, top quote.TopOfBook)
	ShowQuote(req domain.QuoteRequest, res quote.Result)
}
