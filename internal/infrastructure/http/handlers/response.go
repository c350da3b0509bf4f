package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	domerrors "github.com/amirhosseinghanipour/taskmanager/internal/domain/errors"
	"github.com/amirhosseinghanipour/taskmanager/internal/infrastructure/http/middleware"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// writeErr sends the standard error body with the default code for status.
func writeErr(w http.ResponseWriter, r *http.Request, status int, message string) {
	middleware.WriteError(w, r, status, "", message)
}

// writeDomainErr maps manager errors onto HTTP statuses. Anything unknown is
// logged and reported as a bare 500.
func writeDomainErr(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	var (
		verr *domerrors.ValidationError
		nf   *domerrors.NotFoundError
		dup  *domerrors.DuplicateError
	)
	switch {
	case errors.As(err, &verr):
		middleware.WriteError(w, r, http.StatusBadRequest, middleware.ErrCodeValidation, "validation failed", verr.Fields...)
	case errors.As(err, &nf):
		writeErr(w, r, http.StatusNotFound, nf.Error())
	case errors.As(err, &dup):
		writeErr(w, r, http.StatusConflict, dup.Error())
	case errors.Is(err, domerrors.ErrUnauthorized):
		writeErr(w, r, http.StatusUnauthorized, domerrors.ErrUnauthorized.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeErr(w, r, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a size-limited JSON body into dst. On failure it has
// already written the 400 and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErr(w, r, http.StatusBadRequest, "malformed JSON request body")
		return false
	}
	return true
}
