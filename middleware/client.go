package middleware

import (
	"context"
	"net/http"
)

// WithExpoPushToken picks up the optional X-Expo-Push-Token header sent by
// mobile clients at sign-in.
func WithExpoPushToken(h http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if t := r.Header.Get("X-Expo-Push-Token"); t != "" {
			r = r.WithContext(context.WithValue(r.Context(), pushTokenKey, t))
		}
		h.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}
