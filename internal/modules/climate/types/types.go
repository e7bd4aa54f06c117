package types

import (
	"encoding/json"
)

// Rows as read from the measurement and station tables.

type PrecipitationRow struct {
	Date          string
	Precipitation *float64
}

type TemperatureRow struct {
	Date        string
	Temperature float64
}

type StationRow struct {
	Station string
}

// TemperatureStats holds MIN/AVG/MAX of tobs. All three are nil when no
// observation matched the filter.
type TemperatureStats struct {
	Min *float64
	Avg *float64
	Max *float64
}

// Response shapes. Each marshals to the exact JSON layout the API exposes.

// PrecipitationEntry encodes as {"<date>": <precipitation or null>}.
type PrecipitationEntry struct {
	Date          string
	Precipitation *float64
}

func (e PrecipitationEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]*float64{e.Date: e.Precipitation})
}

// StationEntry encodes as ["<station>"].
type StationEntry struct {
	Station string
}

func (e StationEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([1]string{e.Station})
}

// TemperatureEntry encodes as ["MM/DD/YYYY", <temperature>].
type TemperatureEntry struct {
	Date        string
	Temperature float64
}

func (e TemperatureEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.Date, e.Temperature})
}

// MarshalJSON encodes as [min, avg, max].
func (s TemperatureStats) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]*float64{s.Min, s.Avg, s.Max})
}
