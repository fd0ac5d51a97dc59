package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"quotebot/internal/domain"
)

// Prompter — интерактивный опрос в терминале. Читает из r, подсказки пишет в w.
type Prompter struct {
	r *bufio.Reader
	w io.Writer
}

func NewPrompter(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{r: bufio.NewReader(r), w: w}
}

// Coins — быстрый выбор валют; можно ввести и любой другой тикер.
var Coins = []string{"BTC", "ETH", "USD", "USDT", "EUR"}

// Ask собирает QuoteRequest: действие, base, quote, объём в base.
// io.EOF до завершения опроса возвращается как ошибка.
func (p *Prompter) Ask() (domain.QuoteRequest, error) {
	var out domain.QuoteRequest

	action, err := p.askAction()
	if err != nil {
		return out, err
	}
	out.Action = action

	fmt.Fprintln(p.w, "\nБазовая валюта (что покупаем/продаём):")
	if out.BaseCurrency, err = p.askCoin(1, ""); err != nil {
		return out, err
	}

	fmt.Fprintln(p.w, "\nКотируемая валюта (в чём считаем цену):")
	if out.QuoteCurrency, err = p.askCoin(3, out.BaseCurrency); err != nil {
		return out, err
	}

	prompt := fmt.Sprintf("\nСколько %s? (Enter = 1): ", out.BaseCurrency)
	if out.Amount, err = p.askDecimal(prompt, decimal.NewFromInt(1)); err != nil {
		return out, err
	}
	return out, nil
}

func (p *Prompter) readLine() (string, error) {
	raw, err := p.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && raw != "") {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

func (p *Prompter) askAction() (domain.Action, error) {
	for {
		fmt.Fprintln(p.w, "Выберите действие:")
		fmt.Fprintln(p.w, "1) Купить")
		fmt.Fprintln(p.w, "2) Продать")
		fmt.Fprint(p.w, "Ваш выбор [1-2] (Enter = 1): ")

		raw, err := p.readLine()
		if err != nil {
			return "", err
		}
		switch strings.ToLower(raw) {
		case "", "1", "buy":
			return domain.Buy, nil
		case "2", "sell":
			return domain.Sell, nil
		default:
			fmt.Fprintln(p.w, "Введите 1 или 2, либо нажмите Enter для значения по умолчанию.")
		}
	}
}

// askCoin: номер из списка или тикер целиком; except нельзя выбрать повторно.
func (p *Prompter) askCoin(defIndex1 int, except string) (string, error) {
	for {
		for i, c := range Coins {
			fmt.Fprintf(p.w, "%d) %s\n", i+1, c)
		}
		fmt.Fprintf(p.w, "Номер или тикер [1-%d] (Enter = %s): ", len(Coins), Coins[defIndex1-1])

		raw, err := p.readLine()
		if err != nil {
			return "", err
		}
		coin := Coins[defIndex1-1]
		if raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n >= 1 && n <= len(Coins) {
				coin = Coins[n-1]
			} else {
				coin = strings.ToUpper(raw)
			}
		}
		if strings.EqualFold(coin, except) {
			fmt.Fprintf(p.w, "Валюта %s уже выбрана, выберите другую.\n", coin)
			continue
		}
		return coin, nil
	}
}

func (p *Prompter) askDecimal(prompt string, def decimal.Decimal) (decimal.Decimal, error) {
	for {
		fmt.Fprint(p.w, prompt)
		raw, err := p.readLine()
		if err != nil {
			return decimal.Zero, err
		}
		if raw == "" {
			return def, nil
		}
		// поддержим запятую как разделитель
		raw = strings.ReplaceAll(raw, ",", ".")
		if v, err := decimal.NewFromString(raw); err == nil && domain.AmountInRange(v) {
			return v, nil
		}
		fmt.Fprintln(p.w, "Введите положительное число (например, 1000 или 0,5).")
	}
}
