package api

import (
	"encoding/json"
	"net/http"

	"github.com/9seconds/geovisits/enrichlib"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultMaxBodySize limits a size of uploaded visit tables.
const DefaultMaxBodySize = 32 << 20

type httpHandler struct {
	enricher        *enrichlib.Enricher
	requiredColumns []string
	maxBodySize     int64
}

func (h httpHandler) encodeJSON(w http.ResponseWriter, data interface{}) {
	encoder := json.NewEncoder(w)

	w.Header().Set("Content-Type", "application/json")
	encoder.SetEscapeHTML(false)
	encoder.Encode(data) // nolint: errcheck
}

func (h httpHandler) sendError(w http.ResponseWriter, err *httpError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.statusCode)
	json.NewEncoder(w).Encode(err) // nolint: errcheck
}

// NewHTTPHandler exposes enricher as HTTP API:
//
//	POST /enrich - enrich uploaded visits (CSV, multipart CSV or JSON)
//	GET  /stats  - usage statistics of the lookup client
//
// requiredColumns are additional columns which uploaded CSV must have.
func NewHTTPHandler(enricher *enrichlib.Enricher, requiredColumns []string) http.Handler {
	handler := httpHandler{
		enricher:        enricher,
		requiredColumns: requiredColumns,
		maxBodySize:     DefaultMaxBodySize,
	}
	router := chi.NewRouter()

	router.Use(middleware.StripSlashes)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RealIP)

	router.Post("/enrich", handler.handleEnrich)
	router.Get("/stats", handler.handleStats)

	return router
}
