package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"quotebot/internal/app/realflow"
	"quotebot/internal/config"
	"quotebot/internal/domain"
	"quotebot/internal/shared/logging"
	"quotebot/internal/transport/cli"
	"quotebot/internal/usecase"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	action := flag.String("action", "", "buy | sell (пусто — интерактивный опрос)")
	base := flag.String("base", "", "base currency, e.g. BTC")
	quoteCcy := flag.String("quote", "", "quote currency, e.g. USD")
	amount := flag.String("amount", "", "amount in base currency")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fail("Ошибка конфигурации: %v\n", err)
	}
	// в терминале логи мешают выводу: по умолчанию только предупреждения
	level := cfg.App.LogLevel
	if strings.EqualFold(level, "info") {
		level = "warn"
	}
	logger, err := logging.New(level, cfg.App.Env)
	if err != nil {
		fail("Ошибка логгера: %v\n", err)
	}
	defer func() { _ = logger.Sync() }()

	var req domain.QuoteRequest
	if *action == "" {
		req, err = cli.NewPrompter(os.Stdin, os.Stdout).Ask()
		if err != nil {
			fail("Ошибка ввода: %v\n", err)
		}
	} else {
		req, err = fromFlags(*action, *base, *quoteCcy, *amount)
		if err != nil {
			fail("Ошибка параметров: %v\n", err)
		}
	}

	flow, err := realflow.New(cfg, logger)
	if err != nil {
		fail("Ошибка инициализации: %v\n", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.RequestTimeout)
	defer cancel()

	// Запуск
	if err := usecase.Run(ctx, flow.Service, req, cli.NewCLIPresenter(os.Stdout)); err != nil {
		cancel()
		fail("Ошибка выполнения: %v\n", err)
	}
}

func fromFlags(action, base, quoteCcy, amount string) (domain.QuoteRequest, error) {
	var out domain.QuoteRequest
	a, ok := domain.ParseAction(action)
	if !ok {
		return out, fmt.Errorf("wrong action %q", action)
	}
	if base == "" || quoteCcy == "" {
		return out, fmt.Errorf("-base and -quote are required")
	}
	amt, err := decimal.NewFromString(strings.ReplaceAll(amount, ",", "."))
	if err != nil || !domain.AmountInRange(amt) {
		return out, fmt.Errorf("bad amount %q", amount)
	}
	return domain.QuoteRequest{
		Action:        a,
		BaseCurrency:  strings.ToUpper(base),
		QuoteCurrency: strings.ToUpper(quoteCcy),
		Amount:        amt,
	}, nil
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
