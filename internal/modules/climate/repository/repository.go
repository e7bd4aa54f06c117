package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	"climate-api/internal/modules/climate/types"
)

//go:embed sql/get-precipitation.sql
var getPrecipitationSQL string

//go:embed sql/get-stations.sql
var getStationsSQL string

//go:embed sql/get-temperatures-desc.sql
var getTemperaturesDescSQL string

//go:embed sql/get-temperature-stats-from.sql
var getTemperatureStatsFromSQL string

//go:embed sql/get-temperature-stats-between.sql
var getTemperatureStatsBetweenSQL string

//go:embed sql/check-measurement.sql
var checkMeasurementSQL string

//go:embed sql/check-station.sql
var checkStationSQL string

type ClimateRepository interface {
	// CheckSchema fails when either table or a column the queries rely on is missing.
	CheckSchema(ctx context.Context) error
	GetPrecipitation(ctx context.Context) ([]types.PrecipitationRow, error)
	GetStations(ctx context.Context) ([]types.StationRow, error)
	// GetTemperaturesDesc returns every (date, tobs) pair, newest first.
	GetTemperaturesDesc(ctx context.Context) ([]types.TemperatureRow, error)
	GetTemperatureStatsFrom(ctx context.Context, start string) (types.TemperatureStats, error)
	GetTemperatureStatsBetween(ctx context.Context, start string, end string) (types.TemperatureStats, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) ClimateRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) CheckSchema(ctx context.Context) error {
	checks := []struct{ table, query string }{
		{"measurement", checkMeasurementSQL},
		{"station", checkStationSQL},
	}
	for _, c := range checks {
		rows, err := r.db.QueryContext(ctx, c.query)
		if err != nil {
			return fmt.Errorf("schema check %s: %w", c.table, err)
		}
		if err := rows.Close(); err != nil {
			return fmt.Errorf("schema check %s: %w", c.table, err)
		}
	}
	return nil
}

func (r *repositoryImpl) GetPrecipitation(ctx context.Context) ([]types.PrecipitationRow, error) {
	rows, err := r.db.QueryContext(ctx, getPrecipitationSQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close precipitation rows", "error", err)
		}
	}()
	out := []types.PrecipitationRow{}
	for rows.Next() {
		var rec types.PrecipitationRow
		var prcp sql.NullFloat64
		if err := rows.Scan(&rec.Date, &prcp); err != nil {
			return nil, err
		}
		rec.Precipitation = nullableFloat(prcp)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetStations(ctx context.Context) ([]types.StationRow, error) {
	rows, err := r.db.QueryContext(ctx, getStationsSQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close stations rows", "error", err)
		}
	}()
	out := []types.StationRow{}
	for rows.Next() {
		var s types.StationRow
		if err := rows.Scan(&s.Station); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetTemperaturesDesc(ctx context.Context) ([]types.TemperatureRow, error) {
	rows, err := r.db.QueryContext(ctx, getTemperaturesDescSQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close temperature rows", "error", err)
		}
	}()
	out := []types.TemperatureRow{}
	for rows.Next() {
		var rec types.TemperatureRow
		if err := rows.Scan(&rec.Date, &rec.Temperature); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetTemperatureStatsFrom(ctx context.Context, start string) (types.TemperatureStats, error) {
	return scanStats(r.db.QueryRowContext(ctx, getTemperatureStatsFromSQL, start))
}

func (r *repositoryImpl) GetTemperatureStatsBetween(ctx context.Context, start string, end string) (types.TemperatureStats, error) {
	return scanStats(r.db.QueryRowContext(ctx, getTemperatureStatsBetweenSQL, start, end))
}

// scanStats reads the single row an ungrouped aggregate always yields; with
// no matching observations every column is NULL.
func scanStats(row *sql.Row) (types.TemperatureStats, error) {
	var lo, avg, hi sql.NullFloat64
	if err := row.Scan(&lo, &avg, &hi); err != nil {
		return types.TemperatureStats{}, err
	}
	return types.TemperatureStats{
		Min: nullableFloat(lo),
		Avg: nullableFloat(avg),
		Max: nullableFloat(hi),
	}, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
