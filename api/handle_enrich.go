package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/9seconds/geovisits/enrichlib"
	"github.com/9seconds/geovisits/visitcsv"
	"github.com/qri-io/jsonschema"
)

const multipartFileField = "file"

var handleEnrichJSONSchema = func() *jsonschema.Schema {
	data := `{
        "type": "object",
        "required": [
            "records"
        ],
        "additionalProperties": false,
        "properties": {
            "records": {
                "type": "array",
                "items": {
                    "type": "object",
                    "required": [
                        "ip",
                        "page_visited"
                    ],
                    "properties": {
                        "ip": {
                            "type": "string"
                        },
                        "page_visited": {
                            "type": "string"
                        }
                    }
                }
            }
        }
    }`

	rv := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(data), rv); err != nil {
		panic(err)
	}

	return rv
}()

type handleEnrichRequest struct {
	Records []enrichlib.VisitRecord `json:"records"`
}

type handleEnrichResponse struct {
	Results []enrichlib.EnrichedRecord `json:"results"`
	Pages   int                        `json:"pages"`
	Summary enrichlib.Summary          `json:"summary"`
	Metrics enrichlib.Metrics          `json:"metrics"`
}

// handleEnrich runs enrichment of uploaded visits. Query parameters:
//
//	page_visited - keep only records of this page
//	page, per_page - paginate results; metrics are computed over all
//	                 filtered records
func (h httpHandler) handleEnrich(w http.ResponseWriter, req *http.Request) {
	records, httpErr := h.readRecords(w, req)
	if httpErr != nil {
		h.sendError(w, httpErr)

		return
	}

	results, summary, err := h.enricher.Process(req.Context(), records, nil)

	switch {
	case errors.Is(err, enrichlib.ErrEnricherShutdown):
		h.sendError(w, newHTTPError(http.StatusServiceUnavailable, "Service is shutting down", err))

		return
	case err != nil:
		h.sendError(w, newHTTPError(http.StatusServiceUnavailable, "Enrichment was interrupted", err))

		return
	}

	query := req.URL.Query()
	results = enrichlib.FilterByPage(results, query.Get("page_visited"))
	response := handleEnrichResponse{
		Results: results,
		Pages:   1,
		Summary: summary,
		Metrics: enrichlib.ComputeMetrics(results),
	}

	if pageParam := query.Get("page"); pageParam != "" {
		page, err := strconv.Atoi(pageParam)
		if err != nil {
			h.sendError(w, newHTTPError(http.StatusBadRequest, "Incorrect page number", err))

			return
		}

		perPage, _ := strconv.Atoi(query.Get("per_page"))
		response.Results, response.Pages = enrichlib.Paginate(results, page, perPage)
	}

	h.encodeJSON(w, response)
}

func (h httpHandler) readRecords(w http.ResponseWriter, req *http.Request) ([]enrichlib.VisitRecord, *httpError) {
	mediaType, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil {
		return nil, newHTTPError(http.StatusUnsupportedMediaType, "Incorrect content type", err)
	}

	body := http.MaxBytesReader(w, req.Body, h.maxBodySize)
	defer body.Close()

	switch mediaType {
	case "application/json":
		return h.readJSONRecords(req, body)
	case "text/csv", "application/csv":
		return h.readCSVRecords(body)
	case "multipart/form-data":
		req.Body = body

		file, _, err := req.FormFile(multipartFileField)
		if err != nil {
			return nil, newHTTPError(http.StatusBadRequest, "Cannot find uploaded file", err)
		}
		defer file.Close()

		return h.readCSVRecords(file)
	}

	return nil, newHTTPError(http.StatusUnsupportedMediaType, "Unsupported content type "+mediaType, nil)
}

func (h httpHandler) readCSVRecords(src io.Reader) ([]enrichlib.VisitRecord, *httpError) {
	records, err := visitcsv.ReadAll(src, h.requiredColumns...)

	switch {
	case errors.Is(err, enrichlib.ErrMissingColumns):
		return nil, newHTTPError(http.StatusBadRequest, "CSV must contain required columns", err)
	case err != nil:
		return nil, newHTTPError(http.StatusBadRequest, "Cannot read CSV", err)
	}

	return records, nil
}

func (h httpHandler) readJSONRecords(req *http.Request, src io.Reader) ([]enrichlib.VisitRecord, *httpError) {
	bodyBytes, err := io.ReadAll(src)
	if err != nil {
		return nil, newHTTPError(http.StatusBadRequest, "Cannot read request body", err)
	}

	errs, err := handleEnrichJSONSchema.ValidateBytes(req.Context(), bodyBytes)
	if err != nil {
		return nil, newHTTPError(http.StatusBadRequest, "Cannot validate body", err)
	}

	if len(errs) > 0 {
		return nil, newHTTPError(http.StatusBadRequest, "Invalid request body", errs[0])
	}

	parsedRequest := handleEnrichRequest{}
	if err := json.Unmarshal(bodyBytes, &parsedRequest); err != nil {
		return nil, newHTTPError(http.StatusBadRequest, "Cannot parse request JSON", err)
	}

	return parsedRequest.Records, nil
}
