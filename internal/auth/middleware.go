package auth

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"ItemStore/pkg/kit"
)

const HeaderAPIKey = "api-key"

// RequireAPIKey rejects the request with 401 before next runs unless the
// api-key header passes g.
func RequireAPIKey(g *Guard, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := presentedKey(r)

			err := g.Authorize(key, ok)
			if err == nil {
				next.ServeHTTP(w, r)
				return
			}

			var invalid *InvalidKeyError
			switch {
			case errors.As(err, &invalid):
				log.Warn("invalid api key", zap.String("method", r.Method), zap.String("path", r.URL.Path))
				kit.WriteMessage(w, http.StatusUnauthorized, "Invalid API key: '"+invalid.Key+"'")
			default:
				log.Warn("missing api key header", zap.String("method", r.Method), zap.String("path", r.URL.Path))
				kit.WriteMessage(w, http.StatusUnauthorized, "Missing api-key header")
			}
		})
	}
}

func presentedKey(r *http.Request) (string, bool) {
	vals, ok := r.Header[http.CanonicalHeaderKey(HeaderAPIKey)]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}
