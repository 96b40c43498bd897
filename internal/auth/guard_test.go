package auth

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zymptek/zymptek-api/internal/config"
	"github.com/zymptek/zymptek-api/internal/db/dbtest"
	"github.com/zymptek/zymptek-api/internal/db/models"
	"github.com/zymptek/zymptek-api/internal/db/scope"
	"github.com/zymptek/zymptek-api/internal/identity/identitytest"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{header: "Bearer abc.def.ghi", want: "abc.def.ghi", ok: true},
		{header: ""},
		{header: "Bearer"},
		{header: "Bearer "},
		{header: "bearer abc"},
		{header: "Basic dXNlcjpwYXNz"},
		{header: "Bearer abc def"},
		{header: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, ok := BearerToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthenticateWithoutBearerTouchesNothing(t *testing.T) {
	f := newFixture(t)

	for _, header := range []string{"", "Token x", "Bearer"} {
		_, err := f.guard.Authenticate(context.Background(), header)
		requireAuthError(t, err, ErrUnauthenticated, MsgNoToken)
	}

	assert.Empty(t, f.provider.Calls())
	assert.Empty(t, dbtest.Claims(t, f.db))
}

func TestAuthenticateInvalidToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.guard.Authenticate(context.Background(), "Bearer not-a-token")
	requireAuthError(t, err, ErrUnauthenticated, MsgInvalidToken)

	assert.Equal(t, 1, f.provider.CallCount(identitytest.CallGetUser))
	assert.Empty(t, dbtest.Claims(t, f.db))
}

func TestAuthenticateUnknownPrincipal(t *testing.T) {
	f := newFixture(t)
	f.provider.AddUser("ext-ghost", "ghost@example.com", "secret-pass")

	_, err := f.guard.Authenticate(context.Background(), "Bearer "+f.token(t, "ghost@example.com"))
	requireAuthError(t, err, ErrUnauthenticated, MsgUserNotFound)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "ext-admin", "admin@example.com", "secret-pass", nil)
	token := f.token(t, "admin@example.com")

	actx, err := f.guard.Authenticate(context.Background(), "Bearer "+token)
	require.NoError(t, err)

	assert.Equal(t, u.ID, actx.Principal.ID)
	require.NotNil(t, actx.Principal.AdminProfile)
	assert.Equal(t, "ext-admin", actx.ExternalUser.ID)
	assert.Equal(t, token, actx.AccessToken)

	assert.Equal(t, []string{`{"role":"service_role"}`}, dbtest.Claims(t, f.db))
}

func TestAuthenticateAsAuthenticatedUser(t *testing.T) {
	f := newFixture(t, WithLookupScope(config.LookupScopeAuthenticated))
	f.addUser(t, "ext-admin", "admin@example.com", "secret-pass", nil)

	_, err := f.guard.Authenticate(context.Background(), "Bearer "+f.token(t, "admin@example.com"))
	require.NoError(t, err)

	assert.Equal(t, []string{`{"role":"authenticated","sub":"ext-admin"}`}, dbtest.Claims(t, f.db))
}

func TestAuthenticateRevokedToken(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "ext-admin", "admin@example.com", "secret-pass", nil)
	token := f.token(t, "admin@example.com")

	require.NoError(t, f.revoked.Revoke(token))

	_, err := f.guard.Authenticate(context.Background(), "Bearer "+token)
	requireAuthError(t, err, ErrUnauthenticated, MsgInvalidToken)
	assert.Zero(t, f.provider.CallCount(identitytest.CallGetUser))
}

func TestAuthenticateFailsClosed(t *testing.T) {
	t.Run("revocation list unavailable", func(t *testing.T) {
		f := newFixture(t, WithRevocationList(failingRevocationList{}))
		f.addUser(t, "ext-admin", "admin@example.com", "secret-pass", nil)

		_, err := f.guard.Authenticate(context.Background(), "Bearer "+f.token(t, "admin@example.com"))
		requireAuthError(t, err, ErrUnauthenticated, MsgInvalidToken)
	})

	t.Run("identity provider unavailable", func(t *testing.T) {
		f := newFixture(t)
		f.addUser(t, "ext-admin", "admin@example.com", "secret-pass", nil)
		token := f.token(t, "admin@example.com")
		f.provider.GetUserErr = &identityUnavailable{}

		_, err := f.guard.Authenticate(context.Background(), "Bearer "+token)
		requireAuthError(t, err, ErrUnauthenticated, MsgInvalidToken)
	})

	t.Run("database unavailable", func(t *testing.T) {
		f := newFixture(t)
		f.addUser(t, "ext-admin", "admin@example.com", "secret-pass", nil)

		g := NewGuard(f.provider, dbtest.NewManager(t, f.db, scope.WithConnector(failingConnector{})))

		_, err := g.Authenticate(context.Background(), "Bearer "+f.token(t, "admin@example.com"))
		requireAuthError(t, err, ErrUnauthenticated, MsgAuthenticationFailed)

		var ae *Error
		require.ErrorAs(t, err, &ae)
		assert.ErrorIs(t, ae.Cause(), scope.ErrDatabaseUnavailable)
		assert.Equal(t, http.StatusUnauthorized, ae.StatusCode())
	})
}

type identityUnavailable struct{}

func (*identityUnavailable) Error() string { return "dial tcp: connection refused" }

func TestAuthorize(t *testing.T) {
	g := NewGuard(nil, nil)

	admin := func(mutate func(u *models.User)) *AuthenticatedContext {
		u := dbtest.ActiveAdmin("ext-admin", "admin@example.com")
		if mutate != nil {
			mutate(&u)
		}

		return &AuthenticatedContext{Principal: &u}
	}

	tests := []struct {
		name    string
		actx    *AuthenticatedContext
		wantMsg string
	}{
		{name: "no context", actx: nil, wantMsg: MsgNoPrincipal},
		{name: "no principal", actx: &AuthenticatedContext{}, wantMsg: MsgNoPrincipal},
		{
			name:    "buyer",
			actx:    admin(func(u *models.User) { u.UserType = models.UserTypeBuyer }),
			wantMsg: MsgAdminRoleRequired,
		},
		{
			name:    "pending admin",
			actx:    admin(func(u *models.User) { u.Status = models.UserStatusPendingVerification }),
			wantMsg: MsgAccountNotActive,
		},
		{
			name:    "suspended admin",
			actx:    admin(func(u *models.User) { u.Status = models.UserStatusSuspended }),
			wantMsg: MsgAccountNotActive,
		},
		{
			name:    "unverified admin",
			actx:    admin(func(u *models.User) { u.EmailVerified = false }),
			wantMsg: MsgEmailNotVerified,
		},
		{
			name: "role is checked first",
			actx: admin(func(u *models.User) {
				u.UserType = models.UserTypeSeller
				u.Status = models.UserStatusSuspended
				u.EmailVerified = false
			}),
			wantMsg: MsgAdminRoleRequired,
		},
		{
			name: "status before verification",
			actx: admin(func(u *models.User) {
				u.Status = models.UserStatusPendingVerification
				u.EmailVerified = false
			}),
			wantMsg: MsgAccountNotActive,
		},
		{name: "active verified admin", actx: admin(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.Authorize(tt.actx)
			if tt.wantMsg == "" {
				require.NoError(t, err)
				return
			}

			requireAuthError(t, err, ErrForbidden, tt.wantMsg)

			var ae *Error
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, http.StatusForbidden, ae.StatusCode())
			assert.NotErrorIs(t, err, ErrUnauthenticated)
		})
	}
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	actx := &AuthenticatedContext{AccessToken: "t"}
	got, ok := FromContext(NewContext(context.Background(), actx))
	require.True(t, ok)
	assert.Same(t, actx, got)

	_, ok = FromContext(NewContext(context.Background(), nil))
	assert.False(t, ok)
}
