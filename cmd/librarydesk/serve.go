package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-desk-go/config"
	"github.com/AntonStoeckl/library-desk-go/library/deskapi"
)

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	obs, err := newObservability(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logCleanupError(logger, "observability providers", obs.shutdown(shutdownCtx))
	}()

	store, closeStore, err := openStore(ctx, cfg.Store, logger, obs)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store.Engine, err)
	}
	defer closeStore()

	records, err := newRecords(store, logger, obs)
	if err != nil {
		return err
	}

	service, err := newService(cfg, records, logger, obs)
	if err != nil {
		return err
	}

	pinGate, err := deskapi.NewPINGate(cfg.Desk.PIN)
	if err != nil {
		return err
	}

	handler, err := deskapi.New(service,
		deskapi.WithPINGate(pinGate),
		deskapi.WithRecentLimit(cfg.Desk.RecentLimit),
		deskapi.WithSystemInfo(cfg.Server.Env, version),
		deskapi.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", server.Addr, "env", cfg.Server.Env, "store", cfg.Store.Engine)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("stopped server", "addr", server.Addr)

	return nil
}
