// Package middleware holds HTTP middleware shared by the web handlers.
package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const htmxKey contextKey = "htmx"

// HTMX marks requests issued by htmx so handlers can answer with fragments.
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		isHTMX := r.Header.Get("HX-Request") == "true"
		ctx := context.WithValue(r.Context(), htmxKey, isHTMX)
		if isHTMX {
			w.Header().Add("Vary", "HX-Request")
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func IsHTMX(r *http.Request) bool {
	if v, ok := r.Context().Value(htmxKey).(bool); ok {
		return v
	}
	return false
}

// TriggerAfterSwap fires a client-side event once the response is swapped in.
func TriggerAfterSwap(w http.ResponseWriter, event string) {
	w.Header().Set("HX-Trigger-After-Swap", event)
}
