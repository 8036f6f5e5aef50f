package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/9seconds/geovisits/enrichlib"
)

type jsonHTTPError struct {
	Error struct {
		Message        string   `json:"message"`
		Context        string   `json:"context"`
		MissingColumns []string `json:"missing_columns,omitempty"`
	} `json:"error"`
}

// httpError is sent to a client as JSON. If it wraps
// *enrichlib.MissingColumnsError, absent columns are listed separately.
type httpError struct {
	statusCode int
	message    string
	err        error
}

func (h *httpError) Error() string {
	if h.err == nil {
		return h.message
	}

	return h.message + ": " + h.err.Error()
}

func (h *httpError) Unwrap() error {
	return h.err
}

func (h *httpError) MarshalJSON() ([]byte, error) {
	value := jsonHTTPError{}
	value.Error.Message = h.message

	if h.err != nil {
		value.Error.Context = h.err.Error()
	}

	var missingErr *enrichlib.MissingColumnsError
	if errors.As(h.err, &missingErr) {
		value.Error.MissingColumns = missingErr.Missing
	}

	return json.Marshal(&value)
}

func newHTTPError(statusCode int, message string, err error) *httpError {
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}

	return &httpError{
		statusCode: statusCode,
		message:    message,
		err:        err,
	}
}
