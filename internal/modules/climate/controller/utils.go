package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"climate-server/internal/modules/climate/types"
	"climate-server/internal/utils"
)

// statusFor maps service errors onto HTTP status codes. Only caller input
// errors are 4xx; an empty dataset is a server failure.
func statusFor(err error) int {
	if errors.Is(err, types.ErrInvalidDate) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeServiceError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error(op+" failed", "error", err)
		utils.WriteError(w, status, "failed to load "+op)
		return
	}
	slog.Warn(op+" rejected", "status", status, "error", err)
	utils.WriteError(w, status, err.Error())
}
