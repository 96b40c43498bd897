// Package identitytest provides an in-memory identity provider for tests.
package identitytest

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/zymptek/zymptek-api/internal/identity"
)

// Call names recorded by Provider.
const (
	CallSignIn       = "SignInWithPassword"
	CallGetUser      = "GetUser"
	CallRefresh      = "RefreshSession"
	CallSignOut      = "SignOut"
	CallAdminSignOut = "AdminSignOut"
	CallCreateUser   = "AdminCreateUser"
	CallDeleteUser   = "AdminDeleteUser"
	CallHealth       = "Health"
)

type account struct {
	user     identity.User
	password string
}

// Provider is a fake identity.Client. Sessions are opaque random tokens.
// Errors set in the Err fields are returned by the matching call.
type Provider struct {
	mu       sync.Mutex
	accounts map[string]*account // by email
	access   map[string]string   // access token -> user id
	refresh  map[string]string   // refresh token -> user id
	calls    []string

	SignInErr       error
	GetUserErr      error
	RefreshErr      error
	SignOutErr      error
	AdminSignOutErr error
	CreateUserErr   error
	DeleteUserErr   error
	HealthErr       error

	// SignedOut holds the tokens revoked by AdminSignOut with their scope.
	SignedOut map[string]identity.SignOutScope
	// Deleted holds the ids passed to AdminDeleteUser.
	Deleted []string
}

// compile time check
var _ identity.Client = (*Provider)(nil)

// New creates an empty Provider.
func New() *Provider {
	return &Provider{
		accounts:  map[string]*account{},
		access:    map[string]string{},
		refresh:   map[string]string{},
		SignedOut: map[string]identity.SignOutScope{},
	}
}

// AddUser registers an identity and returns it.
func (p *Provider) AddUser(id, email, password string) identity.User {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	u := identity.User{
		ID:               id,
		Email:            email,
		Role:             "authenticated",
		EmailConfirmedAt: &now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	p.accounts[email] = &account{user: u, password: password}

	return u
}

// IssueSession creates a session for a registered email without a password check.
func (p *Provider) IssueSession(email string) (*identity.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	a, ok := p.accounts[email]
	if !ok {
		return nil, invalidCredentials()
	}

	return p.issue(a), nil
}

// Calls returns the recorded call names in order.
func (p *Provider) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]string(nil), p.calls...)
}

// CallCount returns how often name was called.
func (p *Provider) CallCount(name string) int {
	n := 0

	for _, c := range p.Calls() {
		if c == name {
			n++
		}
	}

	return n
}

func (p *Provider) record(name string) {
	p.calls = append(p.calls, name)
}

func (p *Provider) issue(a *account) *identity.Session {
	at, rt := "at-"+uuid.NewString(), "rt-"+uuid.NewString()
	p.access[at] = a.user.ID
	p.refresh[rt] = a.user.ID

	u := a.user

	return &identity.Session{
		User: &u,
		Token: &oauth2.Token{
			AccessToken:  at,
			TokenType:    "bearer",
			RefreshToken: rt,
			ExpiresIn:    3600,
			Expiry:       time.Now().Add(time.Hour),
		},
	}
}

func (p *Provider) byID(id string) *account {
	for _, a := range p.accounts {
		if a.user.ID == id {
			return a
		}
	}

	return nil
}

func invalidCredentials() error {
	return &identity.ProviderError{Status: http.StatusBadRequest, Code: "invalid_credentials", Message: "Invalid login credentials"}
}

func invalidToken() error {
	return &identity.ProviderError{Status: http.StatusUnauthorized, Code: "bad_jwt", Message: "invalid JWT"}
}

// SignInWithPassword implements identity.Client.
func (p *Provider) SignInWithPassword(_ context.Context, email, password string) (*identity.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.record(CallSignIn)

	if p.SignInErr != nil {
		return nil, p.SignInErr
	}

	a, ok := p.accounts[email]
	if !ok || a.password != password {
		return nil, invalidCredentials()
	}

	return p.issue(a), nil
}

// GetUser implements identity.Client.
func (p *Provider) GetUser(_ context.Context, accessToken string) (*identity.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.record(CallGetUser)

	if p.GetUserErr != nil {
		return nil, p.GetUserErr
	}

	id, ok := p.access[accessToken]
	if !ok {
		return nil, invalidToken()
	}

	a := p.byID(id)
	if a == nil {
		return nil, invalidToken()
	}

	u := a.user

	return &u, nil
}

// RefreshSession implements identity.Client. The refresh token is single use.
func (p *Provider) RefreshSession(_ context.Context, refreshToken string) (*identity.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.record(CallRefresh)

	if p.RefreshErr != nil {
		return nil, p.RefreshErr
	}

	id, ok := p.refresh[refreshToken]
	if !ok {
		return nil, &identity.ProviderError{Status: http.StatusBadRequest, Code: "refresh_token_not_found", Message: "Invalid Refresh Token"}
	}

	delete(p.refresh, refreshToken)

	a := p.byID(id)
	if a == nil {
		return nil, identity.ErrNoSession
	}

	return p.issue(a), nil
}

// SignOut implements identity.Client.
func (p *Provider) SignOut(_ context.Context, accessToken string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.record(CallSignOut)

	if p.SignOutErr != nil {
		return p.SignOutErr
	}

	delete(p.access, accessToken)

	return nil
}

// AdminSignOut implements identity.Client. The global scope revokes every token of the user.
func (p *Provider) AdminSignOut(_ context.Context, accessToken string, scope identity.SignOutScope) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.record(CallAdminSignOut)

	if p.AdminSignOutErr != nil {
		return p.AdminSignOutErr
	}

	id, ok := p.access[accessToken]
	if !ok {
		return invalidToken()
	}

	p.SignedOut[accessToken] = scope

	if scope == identity.SignOutGlobal {
		for t, uid := range p.refresh {
			if uid == id {
				delete(p.refresh, t)
			}
		}
	}

	return nil
}

// AdminCreateUser implements identity.Client.
func (p *Provider) AdminCreateUser(_ context.Context, params identity.CreateUserParams) (*identity.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.record(CallCreateUser)

	if p.CreateUserErr != nil {
		return nil, p.CreateUserErr
	}

	if _, exists := p.accounts[params.Email]; exists {
		return nil, &identity.ProviderError{
			Status: http.StatusUnprocessableEntity, Code: "email_exists",
			Message: fmt.Sprintf("a user with email %s has already been registered", params.Email),
		}
	}

	now := time.Now()
	u := identity.User{
		ID:           uuid.NewString(),
		Email:        params.Email,
		Role:         "authenticated",
		UserMetadata: params.UserMetadata,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if params.EmailConfirm {
		u.EmailConfirmedAt = &now
	}

	p.accounts[params.Email] = &account{user: u, password: params.Password}

	return &u, nil
}

// AdminDeleteUser implements identity.Client.
func (p *Provider) AdminDeleteUser(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.record(CallDeleteUser)
	p.Deleted = append(p.Deleted, id)

	if p.DeleteUserErr != nil {
		return p.DeleteUserErr
	}

	for email, a := range p.accounts {
		if a.user.ID == id {
			delete(p.accounts, email)
			return nil
		}
	}

	return &identity.ProviderError{Status: http.StatusNotFound, Code: "user_not_found", Message: "User not found"}
}

// Health implements identity.Client.
func (p *Provider) Health(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.record(CallHealth)

	return p.HealthErr
}

// HasUser reports whether an identity with email exists.
func (p *Provider) HasUser(email string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.accounts[email]

	return ok
}
