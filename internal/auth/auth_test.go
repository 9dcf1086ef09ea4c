package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/straye-as/progress-api/internal/auth"
	"github.com/straye-as/progress-api/internal/config"
	"github.com/straye-as/progress-api/internal/domain"
)

var authCfg = &config.AuthConfig{JWTSecret: "unit-test-secret", JWTIssuer: "straye-id", APIKey: "service-key"}

func TestTokenValidator_RoundTrip(t *testing.T) {
	v := auth.NewTokenValidator(authCfg)
	user := &auth.UserContext{UserID: uuid.New(), DisplayName: "Kari", Email: "kari@straye.no", Role: domain.RoleProjectManager}

	token, err := v.IssueToken(user, time.Hour)
	require.NoError(t, err)

	got, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestTokenValidator_Rejects(t *testing.T) {
	v := auth.NewTokenValidator(authCfg)
	user := &auth.UserContext{UserID: uuid.New(), Role: domain.RoleHeadOfPlanning}

	t.Run("expired", func(t *testing.T) {
		token, err := v.IssueToken(user, -time.Minute)
		require.NoError(t, err)
		_, err = v.ValidateToken(token)
		assert.ErrorIs(t, err, auth.ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := auth.NewTokenValidator(&config.AuthConfig{JWTSecret: "other", JWTIssuer: "straye-id"})
		token, err := other.IssueToken(user, time.Hour)
		require.NoError(t, err)
		_, err = v.ValidateToken(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := auth.NewTokenValidator(&config.AuthConfig{JWTSecret: "unit-test-secret", JWTIssuer: "elsewhere"})
		token, err := other.IssueToken(user, time.Hour)
		require.NoError(t, err)
		_, err = v.ValidateToken(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("unknown role", func(t *testing.T) {
		token, err := v.IssueToken(&auth.UserContext{UserID: uuid.New(), Role: "GUEST"}, time.Hour)
		require.NoError(t, err)
		_, err = v.ValidateToken(token)
		assert.ErrorIs(t, err, auth.ErrInvalidRole)
	})
}

func TestUserContext_ManagerFilter(t *testing.T) {
	pm := &auth.UserContext{UserID: uuid.New(), Role: domain.RoleProjectManager}
	hop := &auth.UserContext{UserID: uuid.New(), Role: domain.RoleHeadOfPlanning}

	require.NotNil(t, pm.ManagerFilter())
	assert.Equal(t, pm.UserID, *pm.ManagerFilter())
	assert.Nil(t, hop.ManagerFilter())
	assert.True(t, hop.IsReviewer())
	assert.True(t, pm.HasAnyRole(domain.RoleHeadOfPlanning, domain.RoleProjectManager))
}

func TestMiddleware_Authenticate(t *testing.T) {
	m := auth.NewMiddleware(authCfg, zap.NewNop())
	v := auth.NewTokenValidator(authCfg)

	var seen *auth.UserContext
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := m.Authenticate(next)

	user := &auth.UserContext{UserID: uuid.New(), DisplayName: "Ola", Role: domain.RoleManagingDirector}
	token, err := v.IssueToken(user, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header map[string]string
		status int
		userID uuid.UUID
	}{
		{"bearer token", map[string]string{"Authorization": "Bearer " + token}, http.StatusNoContent, user.UserID},
		{"api key", map[string]string{"x-api-key": "service-key"}, http.StatusNoContent, auth.SystemUserID},
		{"bad api key", map[string]string{"x-api-key": "nope"}, http.StatusUnauthorized, uuid.Nil},
		{"missing header", nil, http.StatusUnauthorized, uuid.Nil},
		{"bad scheme", map[string]string{"Authorization": "Basic abc"}, http.StatusUnauthorized, uuid.Nil},
		{"bad token", map[string]string{"Authorization": "Bearer abc"}, http.StatusUnauthorized, uuid.Nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
			for k, val := range tt.header {
				req.Header.Set(k, val)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusNoContent {
				require.NotNil(t, seen)
				assert.Equal(t, tt.userID, seen.UserID)
			}
		})
	}
}

func TestMiddleware_RequireRole(t *testing.T) {
	m := auth.NewMiddleware(authCfg, zap.NewNop())
	handler := m.RequireRole(domain.RoleHeadOfPlanning, domain.RoleManagingDirector)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }),
	)

	for role, status := range map[domain.UserRole]int{
		domain.RoleProjectManager: http.StatusForbidden,
		domain.RoleHeadOfPlanning: http.StatusOK,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(auth.WithUserContext(req.Context(), &auth.UserContext{UserID: uuid.New(), Role: role}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, status, rec.Code, string(role))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
