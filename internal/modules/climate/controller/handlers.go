package controller

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"climate-server/internal/modules/climate/types"
	"climate-server/internal/modules/climate/views"
	"climate-server/internal/utils"
)

func (c *climateControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := &views.IndexData{Routes: c.service.RouteList()}
	latest, err := c.service.LatestDate(r.Context())
	switch {
	case err == nil:
		data.LatestDate = latest
	case errors.Is(err, types.ErrDataUnavailable):
	default:
		slog.Warn("index: latest date lookup failed", "error", err)
	}

	var buf bytes.Buffer
	if err := c.renderIndex(&buf, data); err != nil {
		slog.Error("index template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	utils.WriteHTML(w, http.StatusOK, buf.Bytes())
}

func (c *climateControllerImpl) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	precipitation, err := c.service.PrecipitationLastYear(r.Context())
	if err != nil {
		writeServiceError(w, "precipitation", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, precipitation)
}

func (c *climateControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	stations, err := c.service.ListStations(r.Context())
	if err != nil {
		writeServiceError(w, "stations", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stations)
}

func (c *climateControllerImpl) handleTobs(w http.ResponseWriter, r *http.Request) {
	observations, err := c.service.TemperatureObservationsLastYear(r.Context())
	if err != nil {
		writeServiceError(w, "tobs", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, observations)
}

func (c *climateControllerImpl) handleTempFrom(w http.ResponseWriter, r *http.Request) {
	start := r.PathValue("start")
	stats, err := c.service.TemperatureStats(r.Context(), start)
	if err != nil {
		writeServiceError(w, "temperature stats", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}

func (c *climateControllerImpl) handleTempRange(w http.ResponseWriter, r *http.Request) {
	start, end := r.PathValue("start"), r.PathValue("end")
	stats, err := c.service.TemperatureStatsRange(r.Context(), start, end)
	if err != nil {
		writeServiceError(w, "temperature stats range", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}
