package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// tokenQueryParam carries the token for WebSocket clients that cannot set
// request headers.
const tokenQueryParam = "access_token"

// authMiddleware validates bearer tokens. If token is empty, no
// authentication is required and all requests pass through. Otherwise,
// requests must include "Authorization: Bearer <token>" or the access_token
// query parameter.
func authMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !tokenMatches(requestToken(r), token) {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return r.URL.Query().Get(tokenQueryParam)
}

func tokenMatches(got, want string) bool {
	if got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
