package controller

import (
	"context"
	"io"
	"net/http"

	"climate-server/internal/modules/climate/types"
	"climate-server/internal/modules/climate/views"
)

// ClimateService is the query surface the HTTP layer needs.
type ClimateService interface {
	RouteList() []types.Route
	LatestDate(ctx context.Context) (string, error)
	PrecipitationLastYear(ctx context.Context) (map[string]*float64, error)
	ListStations(ctx context.Context) ([]string, error)
	TemperatureObservationsLastYear(ctx context.Context) ([]float64, error)
	TemperatureStats(ctx context.Context, start string) (types.TemperatureStats, error)
	TemperatureStatsRange(ctx context.Context, start, end string) (types.TemperatureStats, error)
}

type ClimateController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type climateControllerImpl struct {
	service     ClimateService
	renderIndex func(io.Writer, *views.IndexData) error
}

func NewClimateController(service ClimateService) ClimateController {
	return &climateControllerImpl{service: service, renderIndex: views.RenderIndex}
}

func (c *climateControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleIndex)
	mux.HandleFunc("GET /api/v1.0/precipitation", c.handlePrecipitation)
	mux.HandleFunc("GET /api/v1.0/stations", c.handleStations)
	mux.HandleFunc("GET /api/v1.0/tobs", c.handleTobs)
	mux.HandleFunc("GET /api/v1.0/temp/{start}", c.handleTempFrom)
	mux.HandleFunc("GET /api/v1.0/temp/{start}/{end}", c.handleTempRange)
}
