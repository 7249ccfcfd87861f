package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"nomad-health-backend/internal/auth"
	"nomad-health-backend/pkg/httputil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// JwtAuthMiddleware verifies the JWT token from the Authorization header.
// If valid, it injects the user ID into the request context.
func JwtAuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.Respond(w, r, http.StatusUnauthorized, "auth_failed", nil)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				httputil.Respond(w, r, http.StatusUnauthorized, "auth_failed", nil)
				return
			}

			claims := &auth.CustomClaims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				logrus.WithError(err).Debug("token validation failed")
				httputil.Respond(w, r, http.StatusUnauthorized, "auth_failed", nil)
				return
			}

			if claims.UserID == uuid.Nil {
				httputil.Respond(w, r, http.StatusUnauthorized, "auth_failed", nil)
				return
			}

			ctx := context.WithValue(r.Context(), auth.UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
