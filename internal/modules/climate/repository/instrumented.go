package repository

import (
	"context"
	"time"

	"climate-api/internal/modules/climate/types"
)

// QueryObserver receives the name, latency and outcome of every store query.
type QueryObserver interface {
	ObserveQuery(name string, d time.Duration, err error)
}

type instrumentedRepository struct {
	next     ClimateRepository
	observer QueryObserver
}

// Instrument reports each call on next to observer. A nil observer returns next unchanged.
func Instrument(next ClimateRepository, observer QueryObserver) ClimateRepository {
	if observer == nil {
		return next
	}
	return &instrumentedRepository{next: next, observer: observer}
}

func (r *instrumentedRepository) observe(name string, start time.Time, err error) {
	r.observer.ObserveQuery(name, time.Since(start), err)
}

func (r *instrumentedRepository) CheckSchema(ctx context.Context) error {
	start := time.Now()
	err := r.next.CheckSchema(ctx)
	r.observe("check_schema", start, err)
	return err
}

func (r *instrumentedRepository) GetPrecipitation(ctx context.Context) ([]types.PrecipitationRow, error) {
	start := time.Now()
	out, err := r.next.GetPrecipitation(ctx)
	r.observe("precipitation", start, err)
	return out, err
}

func (r *instrumentedRepository) GetStations(ctx context.Context) ([]types.StationRow, error) {
	start := time.Now()
	out, err := r.next.GetStations(ctx)
	r.observe("stations", start, err)
	return out, err
}

func (r *instrumentedRepository) GetTemperaturesDesc(ctx context.Context) ([]types.TemperatureRow, error) {
	start := time.Now()
	out, err := r.next.GetTemperaturesDesc(ctx)
	r.observe("temperatures_desc", start, err)
	return out, err
}

func (r *instrumentedRepository) GetTemperatureStatsFrom(ctx context.Context, from string) (types.TemperatureStats, error) {
	start := time.Now()
	out, err := r.next.GetTemperatureStatsFrom(ctx, from)
	r.observe("temperature_stats_from", start, err)
	return out, err
}

func (r *instrumentedRepository) GetTemperatureStatsBetween(ctx context.Context, from string, to string) (types.TemperatureStats, error) {
	start := time.Now()
	out, err := r.next.GetTemperatureStatsBetween(ctx, from, to)
	r.observe("temperature_stats_between", start, err)
	return out, err
}
