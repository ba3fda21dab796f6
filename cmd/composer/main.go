package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arnac-io/txcomposer/internal/config"
	"github.com/arnac-io/txcomposer/pkg/api"
	"github.com/arnac-io/txcomposer/pkg/app"
	"github.com/arnac-io/txcomposer/pkg/broadcast"
	"github.com/arnac-io/txcomposer/pkg/composer"
	"github.com/arnac-io/txcomposer/pkg/draft"
	"github.com/arnac-io/txcomposer/pkg/lcd"
	"github.com/arnac-io/txcomposer/pkg/pusher/sources"
	"github.com/arnac-io/txcomposer/pkg/references"
	"github.com/arnac-io/txcomposer/pkg/registry"
	"github.com/arnac-io/txcomposer/pkg/sentry"
	"github.com/arnac-io/txcomposer/pkg/signer"
	"github.com/arnac-io/txcomposer/pkg/validation"
)

func openStore(cfg config.Config) (draft.Store, func(ctx context.Context) error, error) {
	if cfg.App.DraftDB == "" {
		return draft.NewMemoryStore(), func(context.Context) error { return nil }, nil
	}
	store, err := draft.OpenSQLite(cfg.App.DraftDB, cfg.App.DraftID)
	if err != nil {
		return nil, nil, err
	}
	return store, func(context.Context) error { return store.Close() }, nil
}

func main() {
	cfg := config.Load()
	log := app.Logger(cfg.App.LogLevel)
	defer log.Sync()

	if err := sentry.Init(cfg.App.SentryDSN, cfg.Chain.ChainID); err != nil {
		log.Warn("sentry init", zap.Error(err))
	}
	defer sentry.Flush()

	store, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatal("open draft store", zap.Error(err))
	}

	querier := lcd.NewClient(log, cfg.Chain.LCD, lcd.WithCache(cfg.App.QueryCacheSize, cfg.App.QueryCacheTTL))
	signerClient := signer.NewClient(log, cfg.Signer.URL, signer.WithToken(cfg.Signer.Token))
	sessions := signer.NewSessionProvider(signerClient, querier, cfg.Chain.AddressPrefix, cfg.Chain.ChainID, cfg.Chain.GasDenom)

	reg := registry.Default()
	source := sources.NewDraftSource(log)
	engine := validation.NewEngine(log, reg,
		validation.WithGasLimit(cfg.Chain.GasLimit),
		validation.WithNotifier(source.SlotChanged),
	)
	orchestrator := broadcast.NewOrchestrator(log, reg, references.NewExplorerResolver(cfg.Chain.Explorers),
		broadcast.WithGasLimit(cfg.Chain.GasLimit),
		broadcast.WithGasPrice(cfg.Chain.GasPrice),
		broadcast.WithNotifier(source.OutcomeChanged),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := composer.New(ctx, log, reg, store, engine, orchestrator, sessions.Disconnected())
	if err := c.Init(ctx); err != nil {
		log.Fatal("init composer", zap.Error(err))
	}
	if cfg.Signer.URL != "" {
		s, err := sessions.Connect(ctx)
		if err != nil {
			log.Warn("signer is not available, starting disconnected", zap.Error(err))
		} else if err := c.SetSession(ctx, s); err != nil {
			log.Fatal("set session", zap.Error(err))
		}
	}

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%v", cfg.App.MetricsPort),
		Handler: promhttp.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics listen and serve", zap.Error(err))
		}
	}()

	server := api.NewServer(log, api.NewHandler(log, c, sessions), fmt.Sprintf(":%v", cfg.API.Port),
		api.WithDraftSource(source),
	)
	go server.Run()

	err = app.WaitForShutdown(ctx, log,
		server.Shutdown,
		metricsServer.Shutdown,
		func(context.Context) error {
			cancel()
			engine.Wait()
			orchestrator.Wait()
			return nil
		},
		closeStore,
	)
	if err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
