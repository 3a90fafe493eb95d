package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func protectedHandler(t *testing.T, wantSubject string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFrom(r.Context())
		require.True(t, ok)
		require.Equal(t, wantSubject, session.Subject)
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_ValidToken(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("mw-secret"), time.Hour)
	token, err := codec.Issue("user-1")
	require.NoError(t, err)

	handler := Middleware(codec, NewMemoryRevocationList())(protectedHandler(t, "user-1"))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddleware_MissingAndCorruptTokens(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("mw-secret"), time.Hour)
	handler := Middleware(codec, nil)(protectedHandler(t, ""))

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic abc"},
		{"corrupted", "Bearer not.a.token"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.JSONEq(t, `{"success":false,"message":"`+msgFor(tc.header)+`"}`, rec.Body.String())
		})
	}
}

func msgFor(header string) string {
	if header == "" || header == "Basic abc" {
		return "Missing auth token"
	}
	return "Invalid or expired token"
}

func TestMiddleware_RevokedToken(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("mw-secret"), time.Hour)
	list := NewMemoryRevocationList()
	token, err := codec.Issue("user-1")
	require.NoError(t, err)

	claims, err := codec.Validate(token)
	require.NoError(t, err)
	require.NoError(t, list.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time))

	handler := Middleware(codec, list)(protectedHandler(t, "user-1"))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
