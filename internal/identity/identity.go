// Package identity describes the external identity provider the API authenticates against.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// SignOutScope selects which sessions a sign-out revokes.
type SignOutScope string

const (
	// SignOutGlobal revokes every session of the user.
	SignOutGlobal SignOutScope = "global"
	// SignOutLocal revokes only the session of the token.
	SignOutLocal SignOutScope = "local"
	// SignOutOthers revokes every session except the one of the token.
	SignOutOthers SignOutScope = "others"
)

// ErrNoSession is returned if the provider answered without a session.
var ErrNoSession = errors.New("identity provider returned no session")

// User is an identity as the provider reports it.
type User struct {
	ID               string         `json:"id"`
	Aud              string         `json:"aud,omitempty"`
	Role             string         `json:"role,omitempty"`
	Email            string         `json:"email"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at,omitempty"`
	LastSignInAt     *time.Time     `json:"last_sign_in_at,omitempty"`
	AppMetadata      map[string]any `json:"app_metadata,omitempty"`
	UserMetadata     map[string]any `json:"user_metadata,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// Session is an issued token pair and its owner.
type Session struct {
	User  *User
	Token *oauth2.Token
}

// CreateUserParams are the attributes of a provider user created by an administrator.
type CreateUserParams struct {
	Email        string         `json:"email"`
	Password     string         `json:"password"`
	EmailConfirm bool           `json:"email_confirm"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

// Client is the identity provider.
// SignIn, GetUser, RefreshSession and SignOut act for the user, the Admin
// methods need the service role key.
type Client interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	GetUser(ctx context.Context, accessToken string) (*User, error)
	RefreshSession(ctx context.Context, refreshToken string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error

	AdminSignOut(ctx context.Context, accessToken string, scope SignOutScope) error
	AdminCreateUser(ctx context.Context, params CreateUserParams) (*User, error)
	AdminDeleteUser(ctx context.Context, id string) error

	Health(ctx context.Context) error
}

// ProviderError is an error answer of the identity provider.
type ProviderError struct {
	Status  int
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("identity provider: %d %s: %s", e.Status, e.Code, e.Message)
	}

	return fmt.Sprintf("identity provider: %d: %s", e.Status, e.Message)
}
