package api

import (
	"net/http"

	"github.com/9seconds/geovisits/enrichlib"
)

func (h httpHandler) handleStats(w http.ResponseWriter, req *http.Request) {
	response := struct {
		Results []*enrichlib.UsageStats `json:"results"`
	}{
		Results: []*enrichlib.UsageStats{h.enricher.UsageStats()},
	}

	h.encodeJSON(w, response)
}
