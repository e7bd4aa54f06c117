package app

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"climate-api/internal/config"
	"climate-api/internal/db"
	"climate-api/internal/httpapi"
	"climate-api/internal/metrics"
	"climate-api/internal/modules/climate"
	climateviews "climate-api/internal/modules/climate/views"
)

// NewHandler builds the full HTTP surface over an open store. It fails if
// the store does not carry the measurement and station tables.
func NewHandler(ctx context.Context, dbConn *sql.DB, logger *slog.Logger, m *metrics.Metrics) (http.Handler, error) {
	if err := climateviews.LoadTemplates(); err != nil {
		return nil, err
	}

	router := httpapi.NewRouter(dbConn, logger, m)

	var observer climate.QueryObserver
	if m != nil {
		observer = m
	}
	if err := climate.RegisterFeature(ctx, router, dbConn, observer); err != nil {
		return nil, err
	}
	return router, nil
}

func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"dbDriver", cfg.Driver,
		"dbDSNOverride", cfg.DSN != "",
		"sqlitePath", cfg.Path,
		"dbMaxOpenConns", cfg.MaxOpenConns,
		"dbMaxIdleConns", cfg.MaxIdleConns,
		"dbConnMaxLifetime", cfg.ConnMaxLifetime,
		"dbLogSQL", cfg.LogSQL,
	)

	dbConn, err := db.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := db.Close(dbConn)
		if closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()
	slog.Info("database connection successful")

	handler, err := NewHandler(ctx, dbConn, logger, metrics.New())
	if err != nil {
		return err
	}

	srv := httpapi.NewServer(cfg, handler)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
