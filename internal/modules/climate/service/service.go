package service

import (
	"context"
	"fmt"
	"time"

	"climate-api/internal/modules/climate/repository"
	"climate-api/internal/modules/climate/types"
)

const (
	isoDateLayout = "2006-01-02"
	usDateLayout  = "01/02/2006"

	// trailingWindow is measured back from the newest observation in the
	// store, not from the current date.
	trailingWindow = 365
)

type Service struct {
	repository repository.ClimateRepository
}

func NewService(repository repository.ClimateRepository) *Service {
	return &Service{repository: repository}
}

// Precipitation returns one {date: prcp} entry per observation, ascending by date.
func (s *Service) Precipitation(ctx context.Context) ([]types.PrecipitationEntry, error) {
	rows, err := s.repository.GetPrecipitation(ctx)
	if err != nil {
		return nil, fmt.Errorf("get precipitation: %w", err)
	}
	out := make([]types.PrecipitationEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, types.PrecipitationEntry{Date: r.Date, Precipitation: r.Precipitation})
	}
	return out, nil
}

func (s *Service) Stations(ctx context.Context) ([]types.StationEntry, error) {
	rows, err := s.repository.GetStations(ctx)
	if err != nil {
		return nil, fmt.Errorf("get stations: %w", err)
	}
	out := make([]types.StationEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, types.StationEntry{Station: r.Station})
	}
	return out, nil
}

// TrailingYearTemperatures returns the observations dated within 365 days of
// the newest one, newest first, with dates rendered as MM/DD/YYYY.
func (s *Service) TrailingYearTemperatures(ctx context.Context) ([]types.TemperatureEntry, error) {
	rows, err := s.repository.GetTemperaturesDesc(ctx)
	if err != nil {
		return nil, fmt.Errorf("get temperatures: %w", err)
	}
	return trailingYear(rows)
}

func (s *Service) TemperatureStatsFrom(ctx context.Context, start string) ([]types.TemperatureStats, error) {
	stats, err := s.repository.GetTemperatureStatsFrom(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("get temperature stats from %q: %w", start, err)
	}
	return []types.TemperatureStats{stats}, nil
}

func (s *Service) TemperatureStatsBetween(ctx context.Context, start string, end string) ([]types.TemperatureStats, error) {
	stats, err := s.repository.GetTemperatureStatsBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("get temperature stats between %q and %q: %w", start, end, err)
	}
	return []types.TemperatureStats{stats}, nil
}

// Ping reports whether the store still answers the queries this service relies on.
func (s *Service) Ping(ctx context.Context) error {
	return s.repository.CheckSchema(ctx)
}

// trailingYear expects rows sorted newest first. The cutoff is taken from
// the first row and the input order is preserved.
func trailingYear(rows []types.TemperatureRow) ([]types.TemperatureEntry, error) {
	out := make([]types.TemperatureEntry, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	latest, err := time.Parse(isoDateLayout, rows[0].Date)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", rows[0].Date, err)
	}
	cutoff := latest.AddDate(0, 0, -trailingWindow)

	for _, r := range rows {
		d, err := time.Parse(isoDateLayout, r.Date)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", r.Date, err)
		}
		if !d.After(cutoff) {
			continue
		}
		out = append(out, types.TemperatureEntry{Date: d.Format(usDateLayout), Temperature: r.Temperature})
	}
	return out, nil
}
