// Package handlers implements the HTTP endpoints of the receipt service.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/titorm/shop-wise-sub000/internal/api/middleware"
	"github.com/titorm/shop-wise-sub000/internal/catalog"
	"github.com/titorm/shop-wise-sub000/internal/extraction"
	"github.com/titorm/shop-wise-sub000/internal/jobs"
	"github.com/titorm/shop-wise-sub000/internal/purchase"
)

// maxJSONBody caps JSON request bodies. Inline documents arrive as data URIs,
// so this is sized for a receipt PDF.
const maxJSONBody = 25 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}

// writeServiceError maps the service error taxonomy onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, log zerolog.Logger, err error, msg string) {
	var (
		extErr     *extraction.ExtractionError
		lookupErr  *catalog.LookupError
		writeErr   *catalog.WriteError
		persistErr *purchase.PersistenceError
	)

	switch {
	case errors.Is(err, purchase.ErrInvalidEdit):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, purchase.ErrNotFound), errors.Is(err, jobs.ErrJobNotFound):
		middleware.WriteError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &extErr):
		log.Warn().Err(err).Msg(msg)
		middleware.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &lookupErr), errors.As(err, &writeErr):
		log.Error().Err(err).Msg(msg)
		middleware.WriteError(w, http.StatusBadGateway, "Product catalog unavailable")
	case errors.As(err, &persistErr):
		log.Error().Err(err).Msg(msg)
		middleware.WriteError(w, http.StatusServiceUnavailable, "Purchase could not be saved, nothing was changed")
	default:
		log.Error().Err(err).Msg(msg)
		middleware.WriteError(w, http.StatusInternalServerError, msg)
	}
}
