package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/zymptek/zymptek-api/internal/db/dbtest"
	"github.com/zymptek/zymptek-api/internal/db/models"
	"github.com/zymptek/zymptek-api/internal/db/scope"
	"github.com/zymptek/zymptek-api/internal/identity/identitytest"
	"github.com/zymptek/zymptek-api/internal/revocation"
)

var fixedNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

type fixture struct {
	db       *gorm.DB
	provider *identitytest.Provider
	scopes   *scope.Manager
	revoked  *revocation.Store
	guard    *Guard
	svc      *Service
}

func newFixture(t *testing.T, opts ...GuardOption) *fixture {
	t.Helper()

	db := dbtest.Open(t)

	mem, err := revocation.NewMemoryStorage(64)
	require.NoError(t, err)

	f := &fixture{
		db:       db,
		provider: identitytest.New(),
		scopes:   dbtest.NewManager(t, db),
		revoked:  revocation.New(mem, time.Hour),
	}

	f.guard = NewGuard(f.provider, f.scopes, append([]GuardOption{WithRevocationList(f.revoked)}, opts...)...)
	f.svc = NewService(f.provider, f.scopes, f.guard,
		WithRevocationRecorder(f.revoked),
		WithClock(func() time.Time { return fixedNow }),
	)

	return f
}

// addUser registers the identity at the provider and stores the local user built by mutate.
func (f *fixture) addUser(t *testing.T, externalID, email, password string, mutate func(u *models.User)) *models.User {
	t.Helper()

	f.provider.AddUser(externalID, email, password)

	u := dbtest.ActiveAdmin(externalID, email)
	if mutate != nil {
		mutate(&u)
	}

	return dbtest.CreateUser(t, f.db, u)
}

// token issues an access token for email.
func (f *fixture) token(t *testing.T, email string) string {
	t.Helper()

	s, err := f.provider.IssueSession(email)
	require.NoError(t, err)

	return s.Token.AccessToken
}

func (f *fixture) reload(t *testing.T, id string) *models.User {
	t.Helper()

	var u models.User
	require.NoError(t, f.db.First(&u, "id = ?", id).Error)

	return &u
}

// requireAuthError asserts err is an *Error of kind with message.
func requireAuthError(t *testing.T, err error, kind error, message string) {
	t.Helper()

	require.Error(t, err)
	require.ErrorIs(t, err, kind)

	var ae *Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, message, ae.Message())
}

type failingConnector struct{}

func (failingConnector) Conn(context.Context) (scope.Conn, error) {
	return nil, errors.New("connection refused")
}

type failingRevocationList struct{}

func (failingRevocationList) IsRevoked(string) (bool, error) {
	return false, errors.New("storage down")
}

func (failingRevocationList) Revoke(string) error {
	return errors.New("storage down")
}
