package controller

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"climate-api/internal/modules/climate/views"
	"climate-api/internal/utils"
)

func (c *climateControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := views.RenderIndex(&buf, views.IndexData{Routes: indexRoutes}); err != nil {
		slog.ErrorContext(r.Context(), "index render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	utils.WriteText(w, http.StatusOK, buf.Bytes())
}

func (c *climateControllerImpl) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	entries, err := c.service.Precipitation(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "precipitation: query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load precipitation")
		return
	}
	utils.WriteJSON(w, http.StatusOK, entries)
}

func (c *climateControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	stations, err := c.service.Stations(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "stations: query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load stations")
		return
	}
	utils.WriteJSON(w, http.StatusOK, stations)
}

func (c *climateControllerImpl) handleTobs(w http.ResponseWriter, r *http.Request) {
	temps, err := c.service.TrailingYearTemperatures(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "tobs: query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load temperature observations")
		return
	}
	utils.WriteJSON(w, http.StatusOK, temps)
}

// Date segments are passed to the store as-is; a malformed date simply
// matches nothing.
func (c *climateControllerImpl) handleStatsFrom(w http.ResponseWriter, r *http.Request) {
	start := chi.URLParam(r, "start_date")
	stats, err := c.service.TemperatureStatsFrom(r.Context(), start)
	if err != nil {
		slog.ErrorContext(r.Context(), "stats: query failed", "start_date", start, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load temperature stats")
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}

func (c *climateControllerImpl) handleStatsBetween(w http.ResponseWriter, r *http.Request) {
	start := chi.URLParam(r, "start_date")
	end := chi.URLParam(r, "end_date")
	stats, err := c.service.TemperatureStatsBetween(r.Context(), start, end)
	if err != nil {
		slog.ErrorContext(r.Context(), "stats: query failed", "start_date", start, "end_date", end, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load temperature stats")
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}
