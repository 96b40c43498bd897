package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/zymptek/zymptek-api/internal/config"
	"github.com/zymptek/zymptek-api/internal/db/controller/principal"
	"github.com/zymptek/zymptek-api/internal/db/models"
	"github.com/zymptek/zymptek-api/internal/db/scope"
	"github.com/zymptek/zymptek-api/internal/identity"
	"github.com/zymptek/zymptek-api/internal/metrics"
)

const (
	guardAuthenticate = "authenticate"
	guardAuthorize    = "authorize"
)

// RevocationList tells whether an access token was revoked locally.
type RevocationList interface {
	IsRevoked(token string) (bool, error)
}

// Guard authenticates and authorizes admin requests.
type Guard struct {
	provider    identity.Client
	scopes      *scope.Manager
	revoked     RevocationList
	lookupScope string
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithRevocationList rejects tokens found in r before the provider is asked.
func WithRevocationList(r RevocationList) GuardOption {
	return func(g *Guard) {
		g.revoked = r
	}
}

// WithLookupScope selects the scope of the principal lookup,
// config.LookupScopeServiceRole (default) or config.LookupScopeAuthenticated.
func WithLookupScope(s string) GuardOption {
	return func(g *Guard) {
		g.lookupScope = s
	}
}

// NewGuard creates a Guard.
func NewGuard(provider identity.Client, scopes *scope.Manager, opts ...GuardOption) *Guard {
	g := &Guard{
		provider:    provider,
		scopes:      scopes,
		lookupScope: config.LookupScopeServiceRole,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}

	return token, true
}

// Authenticate resolves the authorization header to an AuthenticatedContext.
// Every failure is an *Error of kind ErrUnauthenticated.
func (g *Guard) Authenticate(ctx context.Context, authorization string) (*AuthenticatedContext, error) {
	token, ok := BearerToken(authorization)
	if !ok {
		log.Warn().Msg("no authorization token provided")
		metrics.GuardDecision(guardAuthenticate, metrics.OutcomeUnauthenticated)

		return nil, Unauthenticated(MsgNoToken, nil)
	}

	user, err := g.identify(ctx, token)
	if err != nil {
		metrics.GuardDecision(guardAuthenticate, metrics.OutcomeUnauthenticated)
		return nil, err
	}

	p, err := g.lookup(ctx, user.ID)
	if err != nil {
		metrics.GuardDecision(guardAuthenticate, metrics.OutcomeUnauthenticated)

		if errors.Is(err, principal.ErrPrincipalNotFound) {
			log.Warn().Msg("user not found in database")
			log.Debug().Str("external_id", user.ID).Msg("unknown external id")

			return nil, Unauthenticated(MsgUserNotFound, err)
		}

		log.Error().Err(err).Msg("principal lookup failed")

		return nil, Unauthenticated(MsgAuthenticationFailed, err)
	}

	log.Debug().Str("user_type", string(p.UserType)).Msg("user authenticated")
	metrics.GuardDecision(guardAuthenticate, metrics.OutcomeSuccess)

	return &AuthenticatedContext{Principal: p, ExternalUser: user, AccessToken: token}, nil
}

// Authorize requires a principal that is an active admin with a verified email.
// The checks run in this order and the first failing one is returned as an
// *Error of kind ErrForbidden.
func (g *Guard) Authorize(actx *AuthenticatedContext) error {
	err := authorize(actx)
	if err != nil {
		log.Warn().Str("reason", err.Message()).Msg("admin access denied")
		metrics.GuardDecision(guardAuthorize, metrics.OutcomeForbidden)

		return err
	}

	metrics.GuardDecision(guardAuthorize, metrics.OutcomeSuccess)

	return nil
}

func authorize(actx *AuthenticatedContext) *Error {
	switch {
	case actx == nil || actx.Principal == nil:
		return Forbidden(MsgNoPrincipal)
	case actx.Principal.UserType != models.UserTypeAdmin:
		return Forbidden(MsgAdminRoleRequired)
	case actx.Principal.Status != models.UserStatusActive:
		return Forbidden(MsgAccountNotActive)
	case !actx.Principal.EmailVerified:
		return Forbidden(MsgEmailNotVerified)
	default:
		return nil
	}
}

// identify resolves token to the provider user. Tokens on the revocation list
// and tokens the list can't be asked about are rejected.
func (g *Guard) identify(ctx context.Context, token string) (*identity.User, error) {
	if g.revoked != nil {
		revoked, err := g.revoked.IsRevoked(token)
		if err != nil {
			log.Error().Err(err).Msg("revocation list unavailable")
			return nil, Unauthenticated(MsgInvalidToken, err)
		}

		if revoked {
			log.Warn().Msg("revoked token presented")
			return nil, Unauthenticated(MsgInvalidToken, nil)
		}
	}

	user, err := g.provider.GetUser(ctx, token)
	if err != nil || user == nil || user.ID == "" {
		log.Warn().Err(err).Msg("token verification failed")
		return nil, Unauthenticated(MsgInvalidToken, err)
	}

	return user, nil
}

// lookup loads the principal of externalID in the configured scope.
func (g *Guard) lookup(ctx context.Context, externalID string) (*models.User, error) {
	s := scope.ServiceRole()
	if g.lookupScope == config.LookupScopeAuthenticated {
		s = scope.AuthenticatedUser(externalID)
	}

	return scope.Do(ctx, g.scopes, s, func(tx *gorm.DB) (*models.User, error) {
		return principal.FindByExternalID(tx, externalID)
	})
}
