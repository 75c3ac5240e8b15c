package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokens(t *testing.T) *Tokens {
	t.Helper()
	tok, err := NewTokens("test-secret", time.Hour)
	require.NoError(t, err)
	return tok
}

func TestNewTokens_RequiresSecret(t *testing.T) {
	_, err := NewTokens("", time.Hour)
	assert.Error(t, err)
}

func TestIssueParse(t *testing.T) {
	tok := newTokens(t)
	raw, exp, err := tok.Issue(42)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	uid, err := tok.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, uint(42), uid)
}

func TestParse_Rejects(t *testing.T) {
	tok := newTokens(t)
	raw, _, err := tok.Issue(1)
	require.NoError(t, err)

	other, err := NewTokens("other-secret", time.Hour)
	require.NoError(t, err)
	_, err = other.Parse(raw)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	_, err = tok.Parse("garbage")
	assert.True(t, errors.Is(err, ErrInvalidToken))

	expired := newTokens(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, _, err = expired.Issue(1)
	require.NoError(t, err)
	_, err = tok.Parse(raw)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "1", Issuer: issuer})
	raw, err = none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tok.Parse(raw)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestMiddleware(t *testing.T) {
	tok := newTokens(t)
	raw, _, err := tok.Issue(7)
	require.NoError(t, err)

	var got uint
	var ok bool
	h := tok.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = UserIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, ok)
	assert.Equal(t, uint(7), got)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, ok)
}

func TestRequireAuth(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	verify := func(_ context.Context, uid uint) bool { return uid == 1 }
	h := RequireAuth(verify)(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthenticated")

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(rec, req.WithContext(WithUserID(req.Context(), 2)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(WithUserID(req.Context(), 1)))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := BearerToken(req)
	assert.False(t, ok)
	req.Header.Set("Authorization", "bearer abc")
	raw, ok := BearerToken(req)
	assert.True(t, ok)
	assert.Equal(t, "abc", raw)
}
