package middleware

import "net/http"

// Chain applies middleware so they execute in the order provided.
//
// Example:
//
//	handler := Chain(mux,
//	    RequestID,      // Executes first
//	    Recover,        // Executes second
//	    SessionAuth(a), // Executes third
//	)
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
