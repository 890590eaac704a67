package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testResolver struct {
	tokenToClient map[string]string
	err           error
}

func (r *testResolver) ResolveClient(_ context.Context, token string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	client, ok := r.tokenToClient[token]
	if !ok {
		return "", ErrUnauthorized
	}
	return client, nil
}

func TestAuthMiddleware(t *testing.T) {
	resolver := &testResolver{tokenToClient: map[string]string{"token": "lab"}}

	handler := AuthMiddleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client, ok := ClientFromContext(r.Context())
		require.True(t, ok)
		require.Equal(t, "lab", client)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_Invalid(t *testing.T) {
	resolver := &testResolver{err: errors.New("invalid")}

	handler := AuthMiddleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_Missing(t *testing.T) {
	handler := AuthMiddleware(&testResolver{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStaticTokens(t *testing.T) {
	tokens := NewStaticTokens(map[string]string{"lab": "s3cret", "clinic": "other", "blank": ""})
	ctx := context.Background()

	client, err := tokens.ResolveClient(ctx, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "lab", client)

	client, err = tokens.ResolveClient(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, "clinic", client)

	_, err = tokens.ResolveClient(ctx, "nope")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = tokens.ResolveClient(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}
