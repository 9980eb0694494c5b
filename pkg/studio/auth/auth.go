// Package auth issues and verifies the bearer tokens that guard the studio
// write API.
package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth"
)

// ScopeWrite is the scope claim carried by write tokens.
const ScopeWrite = "studio:write"

// DefaultTokenTTL is the lifetime of tokens minted without an explicit TTL.
const DefaultTokenTTL = 30 * 24 * time.Hour

// New returns an HS256 token authority for secret.
func New(secret string) (*jwtauth.JWTAuth, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return jwtauth.New("HS256", []byte(secret), nil), nil
}

// IssueWriteToken mints a write token for subject.
func IssueWriteToken(secret, subject string, ttl time.Duration) (string, error) {
	ja, err := New(secret)
	if err != nil {
		return "", err
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	claims := map[string]interface{}{
		"sub":   subject,
		"scope": ScopeWrite,
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, ttl)

	_, token, err := ja.Encode(claims)
	if err != nil {
		return "", err
	}
	return token, nil
}

// Middleware verifies the bearer token and requires the write scope.
func Middleware(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	verify := jwtauth.Verifier(ja)
	return func(next http.Handler) http.Handler {
		return verify(jwtauth.Authenticator(requireScope(next)))
	}
}

func requireScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || claims["scope"] != ScopeWrite {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
