package cli

import (
	"fmt"
	"io"
	"os"

	"quotebot/internal/domain"
	"quotebot/internal/shared/format"
	"quotebot/internal/usecase/quote"
)

type CLIPresenter struct {
	w io.Writer
}

func NewCLIPresenter(w io.Writer) *CLIPresenter {
	if w == nil {
		w = os.Stdout
	}
	return &CLIPresenter{w: w}
}

func (c *CLIPresenter) Infof(format string, args ...any) { fmt.Fprintf(c.w, format, args...) }
func (c *CLIPresenter) Warnf(format string, args ...any) { fmt.Fprintf(c.w, "! "+format, args...) }

func (c *CLIPresenter) ShowRate(base, quoteCcy string, top quote.TopOfBook) {
	fmt.Fprintf(c.w, "\n=== %s/%s (стакан %s", base, quoteCcy, top.ProductID)
	if top.Reversed {
		fmt.Fprint(c.w, ", обратная пара")
	}
	fmt.Fprintln(c.w, ") ===")
	fmt.Fprintf(c.w, "Bid=%s, Ask=%s, Mid=%s %s\n",
		format.DecimalRU(top.Bid, 8), format.DecimalRU(top.Ask, 8), format.DecimalRU(top.Mid, 8), quoteCcy)
}

func (c *CLIPresenter) ShowQuote(req domain.QuoteRequest, res quote.Result) {
	verb := "Покупка"
	if req.Action == domain.Sell {
		verb = "Продажа"
	}
	fmt.Fprintf(c.w, "\n=== %s %s %s ===\n", verb, format.DecimalRU(req.Amount, 8), req.BaseCurrency)
	fmt.Fprintf(c.w, "Итого: %s %s\n", format.DecimalRU(res.Total, 8), res.Currency)
	fmt.Fprintf(c.w, "Средняя цена за 1 %s = %s %s\n", req.BaseCurrency, format.DecimalRU(res.Price, 8), res.Currency)
	fmt.Fprintf(c.w, "Лучшая цена = %s, последняя цена = %s\n",
		format.DecimalRU(res.BestPrice, 8), format.DecimalRU(res.LastPrice, 8))
	if res.Unfilled.IsPositive() {
		fmt.Fprintf(c.w, "Не исполнено: %s %s\n", format.DecimalRU(res.Unfilled, 8), req.BaseCurrency)
	}
}
