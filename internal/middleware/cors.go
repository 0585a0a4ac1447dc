package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS permits cross-origin requests from any origin on every route
// and answers preflight requests.
func CORS(next http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Location"},
	}).Handler(next)
}
