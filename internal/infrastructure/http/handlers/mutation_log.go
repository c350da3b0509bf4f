package handlers

import (
	"net/http"

	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/taskmanager/internal/infrastructure/http/middleware"
)

// logMutation logs a write with its outcome and client address, and counts it.
// The address is RemoteAddr as already resolved by chi RealIP.
// id is 0 when the write failed before a row existed.
func logMutation(log zerolog.Logger, r *http.Request, operation string, id int64, err error) {
	success := err == nil
	middleware.RecordMutation(operation, success)
	ev := log.Info()
	if !success {
		ev = log.Warn().Str("error", err.Error())
	}
	if id > 0 {
		ev.Int64("id", id)
	}
	ev.
		Str("operation", operation).
		Str("ip", r.RemoteAddr).
		Str("request_id", chimid.GetReqID(r.Context())).
		Bool("success", success).
		Msg("mutation")
}
