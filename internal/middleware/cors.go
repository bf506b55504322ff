package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows the listed origins to call the API from a browser. An empty
// list allows any origin.
func CORS(allowed []string) func(http.Handler) http.Handler {
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
