package climate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-chi/chi/v5"

	"climate-api/internal/modules/climate/controller"
	"climate-api/internal/modules/climate/repository"
	"climate-api/internal/modules/climate/service"
)

// QueryObserver receives per-query latency and outcome from the climate store.
type QueryObserver = repository.QueryObserver

// RegisterFeature verifies the store schema and mounts the climate routes on r.
// A schema mismatch is returned before any route is registered.
func RegisterFeature(ctx context.Context, r chi.Router, db *sql.DB, observer QueryObserver) error {
	climateRepository := repository.Instrument(repository.NewRepository(db), observer)
	if err := climateRepository.CheckSchema(ctx); err != nil {
		return fmt.Errorf("climate store: %w", err)
	}
	climateService := service.NewService(climateRepository)
	climateController := controller.NewClimateController(climateService)
	climateController.RegisterRoutes(r)
	return nil
}
