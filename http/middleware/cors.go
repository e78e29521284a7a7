package middleware

import (
	"net/http"

	"github.com/gorilla/handlers"
)

// CORS sets "Access-Control-Allowed" style headers on a response.
// The handler including this middleware must also handle the http.MethodOptions method
// and not just the HTTP method it's designed for.
//
// Requests may carry credentials, including an Authorization header.
//
// Without any origins, NoopAdapter returns and this middleware does nothing.
func CORS(origins ...string) Adapter {
	allowed := make([]string, 0, len(origins))
	for _, o := range origins {
		if o != "" {
			allowed = append(allowed, o)
		}
	}

	if len(allowed) == 0 {
		return NoopAdapter
	}

	return handlers.CORS(
		handlers.AllowCredentials(),
		handlers.AllowedHeaders([]string{
			"Authorization",
			"Content-Type",
			"X-CSRF-Token",
		}),
		handlers.AllowedOrigins(allowed),
		handlers.AllowedMethods([]string{
			http.MethodGet,
			http.MethodHead,
			http.MethodOptions,
			http.MethodPost,
		}),
	)
}
