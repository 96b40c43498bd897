package auth

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/zymptek/zymptek-api/internal/db/models"
)

func TestToPublic(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	got := ToPublic(&models.User{ID: "u-1", Email: "a@example.com", UserType: models.UserTypeAdmin}, now)

	assert.Equal(t, "u-1", got.ID)
	assert.Empty(t, got.SupabaseID)
	assert.Empty(t, got.FirstName)
	assert.Empty(t, got.LastName)
	assert.Empty(t, got.CompanyName)
	assert.Equal(t, now, got.LastLogin)

	last := now.Add(-time.Hour)
	ext := "ext-1"
	first := "Ada"

	got = ToPublic(&models.User{SupabaseID: &ext, FirstName: &first, LastLogin: &last}, now)

	assert.Equal(t, "ext-1", got.SupabaseID)
	assert.Equal(t, "Ada", got.FirstName)
	assert.Equal(t, last, got.LastLogin)
}

func TestSessionTokens(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	got := sessionTokens(&oauth2.Token{AccessToken: "at", RefreshToken: "rt", ExpiresIn: 3600}, now)
	assert.Equal(t, SessionTokens{AccessToken: "at", RefreshToken: "rt", ExpiresIn: 3600, TokenType: "Bearer"}, got)

	got = sessionTokens(&oauth2.Token{AccessToken: "at", Expiry: now.Add(30 * time.Minute)}, now)
	assert.Equal(t, int64(1800), got.ExpiresIn)
}

func TestError(t *testing.T) {
	cause := errors.New("boom")

	err := Unauthenticated(MsgInvalidToken, cause)
	assert.Equal(t, http.StatusUnauthorized, err.StatusCode())
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.NotErrorIs(t, err, ErrForbidden)
	assert.Same(t, cause, err.Cause())
	assert.Contains(t, err.Error(), MsgInvalidToken)

	wrapped := asError(errors.Join(errors.New("ctx"), err), MsgSignInFailed)
	assert.Equal(t, MsgInvalidToken, wrapped.Message())

	fallback := asError(cause, MsgSignInFailed)
	require.ErrorIs(t, fallback, ErrUnauthenticated)
	assert.Equal(t, MsgSignInFailed, fallback.Message())
	assert.Same(t, cause, fallback.Cause())
}
