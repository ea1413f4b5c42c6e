// Package auth implements the bearer-token gate that runs before routing.
// Requests without a bearer token pass through unauthenticated; downstream
// authorization rules decide whether that is acceptable.
package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"trafficwatch/internal/jwttoken"
	"trafficwatch/pkg/requestcontext"
)

// TokenValidator validates a raw bearer token and returns the caller identity.
type TokenValidator interface {
	ValidateToken(tokenString string) (*jwttoken.TokenInfo, error)
}

const bearerPrefix = "Bearer "

// Authenticate validates the Authorization header when present.
//
//   - No header, or a header without the "Bearer " prefix: the request
//     continues with no identity attached and the validator is never called.
//   - Valid token: the principal (subject + ROLE_-prefixed authorities +
//     issuer) replaces any identity already on the context.
//   - Invalid token: 401 with body "Invalid JWT token"; the chain stops.
func Authenticate(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			info, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "rejected bearer token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte("Invalid JWT token"))
				return
			}

			authorities := make([]string, 0, len(info.Roles))
			for _, role := range info.Roles {
				authorities = append(authorities, "ROLE_"+role)
			}

			ctx = requestcontext.WithUserID(ctx, info.UserID)
			ctx = requestcontext.WithAuthorities(ctx, authorities)
			ctx = requestcontext.WithIssuer(ctx, info.Issuer)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
