package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/serroba/paylink/internal/handlers"
	"go.uber.org/zap"
)

var (
	// ErrAuthNotConfigured is returned when a bearer token arrives but no secret is set.
	ErrAuthNotConfigured = errors.New("authentication is not configured")
	// ErrInvalidSubject is returned when the subject claim is not a user id.
	ErrInvalidSubject = errors.New("invalid subject claim")
)

// Claims are the session claims accepted from the external session issuer.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Authenticate verifies an optional HS256 bearer token and stores the caller
// in the request context. Requests without an Authorization header pass
// through anonymously; a present but invalid token is rejected with 401.
func Authenticate(api huma.API, secret []byte, logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		header := ctx.Header("Authorization")
		if header == "" {
			next(ctx)

			return
		}

		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "Invalid authorization header.")

			return
		}

		viewer, err := ParseViewer(strings.TrimSpace(raw), secret)
		if err != nil {
			logger.Debug("rejected bearer token",
				zap.String("client_ip", ClientIP(ctx)),
				zap.Error(err),
			)
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "Invalid or expired token.")

			return
		}

		next(huma.WithContext(ctx, handlers.ContextWithViewer(ctx.Context(), viewer)))
	}
}

// ParseViewer verifies raw and returns the caller it identifies.
func ParseViewer(raw string, secret []byte) (handlers.Viewer, error) {
	if len(secret) == 0 {
		return handlers.Viewer{}, ErrAuthNotConfigured
	}

	claims := &Claims{}

	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return handlers.Viewer{}, err
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return handlers.Viewer{}, fmt.Errorf("%w: %q", ErrInvalidSubject, claims.Subject)
	}

	return handlers.Viewer{UserID: userID, Role: claims.Role}, nil
}

// SignViewer issues an HS256 token for viewer that expires after ttl.
func SignViewer(secret []byte, viewer handlers.Viewer, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		Role: viewer.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(viewer.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
