package controller

import (
	"github.com/go-chi/chi/v5"

	"climate-api/internal/modules/climate/service"
)

const apiPrefix = "/api/v1.0"

// indexRoutes is what GET / advertises; the date routes use placeholder names.
var indexRoutes = []string{
	apiPrefix + "/precipitation",
	apiPrefix + "/stations",
	apiPrefix + "/tobs",
	apiPrefix + "/start_date",
	apiPrefix + "/start_date/end_date",
}

type ClimateController interface {
	RegisterRoutes(r chi.Router)
}

type climateControllerImpl struct {
	service *service.Service
}

func NewClimateController(service *service.Service) ClimateController {
	return &climateControllerImpl{service: service}
}

func (c *climateControllerImpl) RegisterRoutes(r chi.Router) {
	r.Get("/", c.handleIndex)
	r.Route(apiPrefix, func(r chi.Router) {
		r.Get("/precipitation", c.handlePrecipitation)
		r.Get("/stations", c.handleStations)
		r.Get("/tobs", c.handleTobs)
		r.Get("/{start_date}", c.handleStatsFrom)
		r.Get("/{start_date}/{end_date}", c.handleStatsBetween)
	})
}
