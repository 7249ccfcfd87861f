package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nomad-health-backend/internal/auth"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func protectedEcho(t *testing.T, gotUserID *uuid.UUID) http.Handler {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.GetUserIDFromContext(r.Context())
		require.True(t, ok)
		*gotUserID = id
		w.WriteHeader(http.StatusOK)
	})
	return JwtAuthMiddleware(testSecret)(next)
}

func TestJwtAuthMiddlewareValidToken(t *testing.T) {
	userID := uuid.New()
	token, err := auth.NewAccessToken(userID, testSecret, time.Hour)
	require.NoError(t, err)

	var gotUserID uuid.UUID
	handler := protectedEcho(t, &gotUserID)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/consult/sessions", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, gotUserID)
}

func TestJwtAuthMiddlewareRejections(t *testing.T) {
	expired, err := auth.NewAccessToken(uuid.New(), testSecret, -time.Minute)
	require.NoError(t, err)
	wrongKey, err := auth.NewAccessToken(uuid.New(), "other-secret", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.token"},
		{"expired token", "Bearer " + expired},
		{"wrong signing key", "Bearer " + wrongKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := JwtAuthMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler must not be reached")
			}))

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/v1/consult/sessions", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			handler.ServeHTTP(w, r)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
