package auth

import (
	"context"

	"github.com/zymptek/zymptek-api/internal/db/models"
	"github.com/zymptek/zymptek-api/internal/identity"
)

// AuthenticatedContext is the principal of one request together with the
// provider identity and the token it authenticated with.
type AuthenticatedContext struct {
	Principal    *models.User   `json:"principal"`
	ExternalUser *identity.User `json:"externalUser"`
	AccessToken  string         `json:"-"`
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying actx.
func NewContext(ctx context.Context, actx *AuthenticatedContext) context.Context {
	return context.WithValue(ctx, contextKey{}, actx)
}

// FromContext returns the AuthenticatedContext stored in ctx.
func FromContext(ctx context.Context) (*AuthenticatedContext, bool) {
	actx, ok := ctx.Value(contextKey{}).(*AuthenticatedContext)

	return actx, ok && actx != nil
}
