package httpapi

import (
	"database/sql"
	"log/slog"
	"net/http"

	"climate-server/internal/utils"
)

// apiPrefix is the path space owned by feature modules. Unmatched GETs
// under it get a JSON 404 instead of the ServeMux text body.
const apiPrefix = "/api/"

// Feature registers a module's routes on the mux.
type Feature func(mux *http.ServeMux)

// NewMux returns a mux with the operational endpoints and every feature
// registered, in order.
func NewMux(db *sql.DB, features ...Feature) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, db)
	for _, register := range features {
		register(mux)
	}
	mux.HandleFunc("GET "+apiPrefix, handleAPINotFound)
	return mux
}

func handleAPINotFound(w http.ResponseWriter, r *http.Request) {
	slog.Debug("no api route", "path", r.URL.Path)
	utils.WriteError(w, http.StatusNotFound, "no route for "+r.URL.Path)
}
