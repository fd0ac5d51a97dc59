package webserver

import (
	"go.uber.org/zap"

	"quotebot/internal/app/realflow"
	"quotebot/internal/config"
	"quotebot/internal/transport/httpapi"
)

// New собирает HTTP-сервер поверх живой цепочки котировок.
func New(cfg *config.Config, logger *zap.Logger) (*httpapi.Server, *realflow.RealFlow, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	// Инфраструктура: листинг и стаканы выбранной биржи с кэшем
	flow, err := realflow.New(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	// Адаптер между httpapi и quote.Service
	srv := httpapi.New(cfg.Server.Addr, &httpapi.QuoteAdapter{Svc: flow.Service, Catalog: flow.Repo}, httpapi.Options{
		ReadTimeout:    cfg.Server.ReadTimeout,
		RequestTimeout: cfg.Server.RequestTimeout,
		Logger:         logger.Named("http"),
	})
	return srv, flow, nil
}
