package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	domerrors "github.com/amirhosseinghanipour/taskmanager/internal/domain/errors"
)

// APIKeyHeader carries the shared secret.
const APIKeyHeader = "X-API-KEY"

// RequireAPIKey returns a middleware that rejects requests under prefix unless
// X-API-KEY equals key. Requests outside prefix pass through untouched. If key
// is empty, every protected request is rejected.
func RequireAPIKey(prefix, key string) func(http.Handler) http.Handler {
	root := strings.TrimSuffix(prefix, "/")
	want := []byte(key)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if path != root && !strings.HasPrefix(path, root+"/") {
				next.ServeHTTP(w, r)
				return
			}
			got := r.Header.Get(APIKeyHeader)
			if len(want) == 0 || got == "" || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				RecordAPIKeyRejection(got == "")
				WriteError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, domerrors.ErrUnauthorized.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
