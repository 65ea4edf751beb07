package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chocobliss/models"
	"chocobliss/utils"
)

func whoami(w http.ResponseWriter, r *http.Request) {
	if c, ok := ClaimsFrom(r.Context()); ok {
		_, _ = w.Write([]byte(c.Email))
		return
	}
	_, _ = w.Write([]byte("anonymous"))
}

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()

	tokens := utils.NewTokenIssuer("s3cret", time.Hour)
	auth := NewAuth(tokens)
	userTok, err := tokens.Generate("u1", "user@example.com", models.RoleUser)
	require.NoError(t, err)
	adminTok, err := tokens.Generate("u2", "admin@example.com", models.RoleAdmin)
	require.NoError(t, err)

	required := auth.RequireAuth(http.HandlerFunc(whoami))
	optional := auth.OptionalAuth(http.HandlerFunc(whoami))
	admin := auth.RequireAuth(AdminOnly(http.HandlerFunc(whoami)))

	tests := []struct {
		name       string
		handler    http.Handler
		header     string
		query      string
		wantStatus int
		wantBody   string
	}{
		{name: "required_missing", handler: required, wantStatus: http.StatusUnauthorized},
		{name: "required_bad_scheme", handler: required, header: "Token " + userTok, wantStatus: http.StatusUnauthorized},
		{name: "required_garbage", handler: required, header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "required_ok", handler: required, header: "Bearer " + userTok, wantStatus: http.StatusOK, wantBody: "user@example.com"},
		{name: "query_token", handler: required, query: "?access_token=" + userTok, wantStatus: http.StatusOK, wantBody: "user@example.com"},
		{name: "optional_anonymous", handler: optional, wantStatus: http.StatusOK, wantBody: "anonymous"},
		{name: "optional_invalid_is_anonymous", handler: optional, header: "Bearer nope", wantStatus: http.StatusOK, wantBody: "anonymous"},
		{name: "optional_user", handler: optional, header: "Bearer " + userTok, wantStatus: http.StatusOK, wantBody: "user@example.com"},
		{name: "admin_as_user", handler: admin, header: "Bearer " + userTok, wantStatus: http.StatusForbidden},
		{name: "admin_ok", handler: admin, header: "Bearer " + adminTok, wantStatus: http.StatusOK, wantBody: "admin@example.com"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/x"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			tt.handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rr.Body.String())
			} else {
				assert.Contains(t, rr.Body.String(), `"kind"`)
			}
		})
	}
}

func TestLogging_AssignsRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	h := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rr.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", seen)
}

func TestCORS_Preflight(t *testing.T) {
	t.Parallel()

	called := false
	h := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/api/orders", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, called)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/orders", nil))
	assert.True(t, called)
}
