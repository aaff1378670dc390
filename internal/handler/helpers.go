package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/inkwell-dev/inkwell/internal/errors"
)

// parseIntParam parses an integer parameter from a string and returns a meaningful error
func parseIntParam(param string, paramName string) (int64, error) {
	val, err := strconv.ParseInt(param, 10, 64)
	if err != nil {
		return 0, &errors.ErrorWithStatusCode{Message: fmt.Sprintf("Invalid %s: must be an integer", paramName), StatusCode: http.StatusBadRequest}
	}
	return val, nil
}

// idParam reads a URL parameter as an int64 id.
func idParam(r *http.Request, name string) (int64, error) {
	return parseIntParam(chi.URLParam(r, name), name)
}
