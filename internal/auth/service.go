package auth

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/zymptek/zymptek-api/internal/db/controller/principal"
	"github.com/zymptek/zymptek-api/internal/db/models"
	"github.com/zymptek/zymptek-api/internal/db/scope"
	"github.com/zymptek/zymptek-api/internal/identity"
	"github.com/zymptek/zymptek-api/internal/metrics"
)

// Operation label values.
const (
	OpSignIn      = "signin"
	OpSignOut     = "signout"
	OpRefresh     = "refresh"
	OpVerifyToken = "verify_token"
)

// RevocationRecorder records access tokens revoked by sign-out.
type RevocationRecorder interface {
	Revoke(token string) error
}

// Service implements the admin session operations.
type Service struct {
	provider identity.Client
	scopes   *scope.Manager
	guard    *Guard
	revoked  RevocationRecorder
	now      func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithRevocationRecorder records signed-out tokens in r.
func WithRevocationRecorder(r RevocationRecorder) ServiceOption {
	return func(s *Service) {
		s.revoked = r
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service. guard is used to resolve tokens for VerifyAdminToken.
func NewService(provider identity.Client, scopes *scope.Manager, guard *Guard, opts ...ServiceOption) *Service {
	s := &Service{
		provider: provider,
		scopes:   scopes,
		guard:    guard,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SignIn authenticates an admin with email and password.
// The principal lookup, the role and status checks and the last login update
// run in one service role scoped session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*AuthResponse, error) {
	session, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil || !complete(session) {
		log.Warn().Err(err).Msg("admin sign in failed")
		return nil, s.fail(OpSignIn, Unauthenticated(MsgInvalidCredentials, err))
	}

	u, err := scope.Do(ctx, s.scopes, scope.ServiceRole(), func(tx *gorm.DB) (*models.User, error) {
		u, err := principal.FindByExternalID(tx, session.User.ID)
		if errors.Is(err, principal.ErrPrincipalNotFound) {
			return nil, Unauthenticated(MsgUserNotFound, err)
		}

		if err != nil {
			return nil, err
		}

		if u.UserType != models.UserTypeAdmin {
			return nil, Unauthenticated(MsgAdminRoleRequired, nil)
		}

		if u.Status != models.UserStatusActive {
			return nil, Unauthenticated(MsgAccountNotActive, nil)
		}

		if err := principal.TouchLastLogin(tx, u, s.now()); err != nil {
			return nil, err
		}

		return u, nil
	})
	if err != nil {
		e := asError(err, MsgSignInFailed)
		log.Warn().Err(e.Cause()).Str("reason", e.Message()).Msg("admin sign in rejected")

		return nil, s.fail(OpSignIn, e)
	}

	log.Info().Str("user_id", u.ID).Msg("admin signed in")
	metrics.AuthOperation(OpSignIn, metrics.OutcomeSuccess)

	return &AuthResponse{
		SessionTokens: sessionTokens(session.Token, s.now()),
		Admin:         ToPublic(u, s.now()),
	}, nil
}

// SignOut revokes every provider session of the token owner and records the
// token on the local revocation list. A failure to record is only logged.
func (s *Service) SignOut(ctx context.Context, externalUserID, accessToken string) (*SignOutResponse, error) {
	if externalUserID == "" {
		return nil, s.fail(OpSignOut, Unauthenticated(MsgMissingUserID, nil))
	}

	if accessToken == "" {
		return nil, s.fail(OpSignOut, Unauthenticated(MsgMissingAccessToken, nil))
	}

	if err := s.provider.AdminSignOut(ctx, accessToken, identity.SignOutGlobal); err != nil {
		log.Warn().Err(err).Msg("admin sign out failed")
		return nil, s.fail(OpSignOut, Unauthenticated(MsgSignOutFailed, err))
	}

	if s.revoked != nil {
		if err := s.revoked.Revoke(accessToken); err != nil {
			log.Error().Err(err).Msg("failed to record revoked token")
		}
	}

	log.Info().Msg("admin signed out")
	log.Debug().Str("external_id", externalUserID).Msg("signed out identity")
	metrics.AuthOperation(OpSignOut, metrics.OutcomeSuccess)

	return &SignOutResponse{Message: MsgSignedOutSuccessfully}, nil
}

// RefreshSession exchanges a refresh token for a new session of an admin.
// Unlike SignIn it leaves the last login untouched.
func (s *Service) RefreshSession(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	if refreshToken == "" {
		return nil, s.fail(OpRefresh, Unauthenticated(MsgInvalidRefreshToken, nil))
	}

	session, err := s.provider.RefreshSession(ctx, refreshToken)
	if err != nil || !complete(session) {
		log.Warn().Err(err).Msg("session refresh failed")
		return nil, s.fail(OpRefresh, Unauthenticated(MsgInvalidRefreshToken, err))
	}

	u, err := s.adminByExternalID(ctx, session.User.ID)
	if err != nil {
		e := asError(err, MsgRefreshFailed)
		log.Warn().Err(e.Cause()).Str("reason", e.Message()).Msg("session refresh rejected")

		return nil, s.fail(OpRefresh, e)
	}

	metrics.AuthOperation(OpRefresh, metrics.OutcomeSuccess)

	return &AuthResponse{
		SessionTokens: sessionTokens(session.Token, s.now()),
		Admin:         ToPublic(u, s.now()),
	}, nil
}

// VerifyAdminToken resolves an access token to the AuthenticatedContext of an admin
// outside of the request guard chain.
func (s *Service) VerifyAdminToken(ctx context.Context, accessToken string) (*AuthenticatedContext, error) {
	user, err := s.guard.identify(ctx, accessToken)
	if err != nil {
		return nil, s.fail(OpVerifyToken, asError(err, MsgVerificationFailed))
	}

	u, err := s.adminByExternalID(ctx, user.ID)
	if err != nil {
		e := asError(err, MsgVerificationFailed)
		log.Warn().Err(e.Cause()).Str("reason", e.Message()).Msg("admin token verification rejected")

		return nil, s.fail(OpVerifyToken, e)
	}

	metrics.AuthOperation(OpVerifyToken, metrics.OutcomeSuccess)

	return &AuthenticatedContext{Principal: u, ExternalUser: user, AccessToken: accessToken}, nil
}

// adminByExternalID loads an admin principal in a service role scope.
// Unknown ids and other user types are rejected alike.
func (s *Service) adminByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return scope.Do(ctx, s.scopes, scope.ServiceRole(), func(tx *gorm.DB) (*models.User, error) {
		u, err := principal.FindByExternalID(tx, externalID)
		if errors.Is(err, principal.ErrPrincipalNotFound) {
			return nil, Unauthenticated(MsgInsufficientAccess, err)
		}

		if err != nil {
			return nil, err
		}

		if u.UserType != models.UserTypeAdmin {
			return nil, Unauthenticated(MsgInsufficientAccess, nil)
		}

		return u, nil
	})
}

func (s *Service) fail(op string, e *Error) *Error {
	outcome := metrics.OutcomeUnauthenticated
	if e.Kind() == ErrForbidden {
		outcome = metrics.OutcomeForbidden
	}

	metrics.AuthOperation(op, outcome)

	return e
}

func complete(s *identity.Session) bool {
	return s != nil && s.User != nil && s.User.ID != "" && s.Token != nil && s.Token.AccessToken != ""
}
