package middleware

import (
	"net/http"
	"slices"
)

type Cors struct {
	origins  []string
	wildcard bool
}

// NewCors builds a CORS policy from the configured allowed origins. A single
// "*" entry allows every origin.
func NewCors(origins []string) *Cors {
	return &Cors{
		origins:  origins,
		wildcard: slices.Contains(origins, "*"),
	}
}

func (c *Cors) Allow(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		origin := req.Header.Get("Origin")
		if origin != "" && (c.wildcard || slices.Contains(c.origins, origin)) {
			allowed := origin
			if c.wildcard {
				allowed = "*"
			}
			w.Header().Set("Access-Control-Allow-Origin", allowed)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-Id")
		}
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, req)
	})
}
