package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

var (
	ErrMissingToken   = errors.New("missing authentication token")
	ErrInvalidToken   = errors.New("invalid authentication token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrMissingSubject = errors.New("missing subject in token")
)

type contextKey string

const identityTokenContextKey contextKey = "identity_token"

// JWTMiddleware verifies bearer tokens against a JWKS endpoint and puts the
// verified subject on the request context. Actor resolution happens in the
// ActorMiddleware behind it.
type JWTMiddleware struct {
	jwksEndpoint string
	issuer       string
	cache        *jwk.Cache
}

func NewJWTMiddleware(ctx context.Context, jwksEndpoint string, issuer string) (*JWTMiddleware, error) {
	// Create a cache with automatic refresh
	cache, err := jwk.NewCache(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	if err := cache.Register(ctx, jwksEndpoint); err != nil {
		return nil, fmt.Errorf("failed to register JWKS URL: %w", err)
	}

	// Perform initial fetch to validate the URL
	if _, err = cache.Lookup(ctx, jwksEndpoint); err != nil {
		return nil, fmt.Errorf("failed to fetch initial JWKS: %w", err)
	}

	return &JWTMiddleware{
		jwksEndpoint: jwksEndpoint,
		issuer:       issuer,
		cache:        cache,
	}, nil
}

func (m *JWTMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, "unauthorized", ErrMissingToken.Error(), http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			writeError(w, "unauthorized", "Invalid authorization header format", http.StatusUnauthorized)
			return
		}

		keySet, err := m.cache.Lookup(r.Context(), m.jwksEndpoint)
		if err != nil {
			writeError(w, "internal_server_error", fmt.Sprintf("Failed to get JWKS: %v", err), http.StatusInternalServerError)
			return
		}

		token, err := jwt.ParseString(
			tokenString,
			jwt.WithKeySet(keySet),
			jwt.WithValidate(true),
			jwt.WithIssuer(m.issuer),
		)
		if err != nil {
			if strings.Contains(err.Error(), "exp not satisfied") || strings.Contains(err.Error(), "expired") {
				writeError(w, "token_expired", ErrTokenExpired.Error(), http.StatusUnauthorized)
				return
			}
			writeError(w, "invalid_token", ErrInvalidToken.Error(), http.StatusUnauthorized)
			return
		}

		var subject string
		if err := token.Get("sub", &subject); err != nil || subject == "" {
			writeError(w, "invalid_token", ErrMissingSubject.Error(), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), identityTokenContextKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// writeError writes a minimal JSON error response
func writeError(w http.ResponseWriter, code string, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = fmt.Fprintf(w, `{"error": "%s", "message": "%s"}`, code, message)
}

// IdentityToken extracts the verified token subject from the request context
func IdentityToken(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(identityTokenContextKey).(string)
	return subject, ok
}
