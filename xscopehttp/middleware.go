// Package xscopehttp scopes HTTP requests to a Concern and exposes runtime
// level administration for the Concern active on a request.
package xscopehttp

import (
	"net/http"

	"github.com/trickstertwo/xscope"
)

// Middleware binds the Concern returned by pick into each request context for
// the rest of the chain. A nil result leaves the request unscoped, so it
// resolves to the process default.
func Middleware(pick func(*http.Request) xscope.Concern) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := pick(r)
			if c == nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(xscope.WithConcern(r.Context(), c)))
		})
	}
}

// ByHeader picks the Concern registered under the value of header. Unknown or
// missing values pick nothing.
func ByHeader(header string, concerns map[string]xscope.Concern) func(*http.Request) xscope.Concern {
	return func(r *http.Request) xscope.Concern {
		return concerns[r.Header.Get(header)]
	}
}
