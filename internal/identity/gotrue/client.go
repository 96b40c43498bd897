// Package gotrue implements identity.Client against the Supabase GoTrue REST API.
package gotrue

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/zymptek/zymptek-api/internal/config"
	"github.com/zymptek/zymptek-api/internal/identity"
)

const (
	basePath     = "/auth/v1"
	headerAPIKey = "apikey"
)

var (
	// ErrEmptyURL is returned if the provider URL is not configured.
	ErrEmptyURL = errors.New("identity provider URL is empty")
	// ErrEmptyAnonKey is returned if the anon key is not configured.
	ErrEmptyAnonKey = errors.New("identity provider anon key is empty")
	// ErrNoServiceRoleKey is returned by admin calls without a configured service role key.
	ErrNoServiceRoleKey = errors.New("identity provider service role key is not configured")
)

// Client talks to GoTrue. It is safe for concurrent use.
type Client struct {
	baseURL        string
	anonKey        string
	serviceRoleKey string
	timeout        time.Duration
	http           *fiber.Client
	now            func() time.Time
}

// compile time check
var _ identity.Client = (*Client)(nil)

// New creates a GoTrue client from the identity config.
func New(cfg config.Identity) (*Client, error) {
	if cfg.URL == "" {
		return nil, ErrEmptyURL
	}

	if cfg.AnonKey == "" {
		return nil, ErrEmptyAnonKey
	}

	if cfg.ServiceRoleKey == "" {
		log.Warn().Msg("identity service role key is not configured, admin calls will fail")
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.URL, "/") + basePath,
		anonKey:        cfg.AnonKey,
		serviceRoleKey: cfg.ServiceRoleKey,
		timeout:        cfg.Timeout,
		http: &fiber.Client{
			UserAgent:   "zymptek-api",
			JSONEncoder: json.Marshal,
			JSONDecoder: json.Unmarshal,
		},
		now: time.Now,
	}, nil
}

// tokenResponse is the answer of the token endpoint.
type tokenResponse struct {
	AccessToken  string         `json:"access_token"`
	TokenType    string         `json:"token_type"`
	ExpiresIn    int64          `json:"expires_in"`
	ExpiresAt    int64          `json:"expires_at"`
	RefreshToken string         `json:"refresh_token"`
	User         *identity.User `json:"user"`
}

func (r *tokenResponse) session(now time.Time) (*identity.Session, error) {
	if r.AccessToken == "" || r.User == nil {
		return nil, identity.ErrNoSession
	}

	t := &oauth2.Token{
		AccessToken:  r.AccessToken,
		TokenType:    r.TokenType,
		RefreshToken: r.RefreshToken,
		ExpiresIn:    r.ExpiresIn,
	}

	switch {
	case r.ExpiresAt > 0:
		t.Expiry = time.Unix(r.ExpiresAt, 0)
	case r.ExpiresIn > 0:
		t.Expiry = now.Add(time.Duration(r.ExpiresIn) * time.Second)
	}

	return &identity.Session{User: r.User, Token: t}, nil
}

// SignInWithPassword implements identity.Client.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*identity.Session, error) {
	var out tokenResponse

	body := map[string]string{"email": email, "password": password}

	if err := c.do(ctx, c.user(c.http.Post(c.endpoint("/token", "grant_type", "password")), "").JSON(body), &out); err != nil {
		return nil, err
	}

	return out.session(c.now())
}

// RefreshSession implements identity.Client.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*identity.Session, error) {
	var out tokenResponse

	body := map[string]string{"refresh_token": refreshToken}

	if err := c.do(ctx, c.user(c.http.Post(c.endpoint("/token", "grant_type", "refresh_token")), "").JSON(body), &out); err != nil {
		return nil, err
	}

	return out.session(c.now())
}

// GetUser implements identity.Client.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*identity.User, error) {
	var out identity.User

	if err := c.do(ctx, c.user(c.http.Get(c.endpoint("/user")), accessToken), &out); err != nil {
		return nil, err
	}

	if out.ID == "" {
		return nil, &identity.ProviderError{Status: http.StatusUnauthorized, Message: "no user for token"}
	}

	return &out, nil
}

// SignOut implements identity.Client. It revokes the session of the token only.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	a := c.user(c.http.Post(c.endpoint("/logout", "scope", string(identity.SignOutLocal))), accessToken)

	return c.do(ctx, a, nil)
}

// AdminSignOut implements identity.Client.
func (c *Client) AdminSignOut(ctx context.Context, accessToken string, scope identity.SignOutScope) error {
	if c.serviceRoleKey == "" {
		return ErrNoServiceRoleKey
	}

	a := c.http.Post(c.endpoint("/logout", "scope", string(scope)))
	a.Set(headerAPIKey, c.serviceRoleKey)
	a.Set(fiber.HeaderAuthorization, "Bearer "+accessToken)

	return c.do(ctx, a, nil)
}

// AdminCreateUser implements identity.Client.
func (c *Client) AdminCreateUser(ctx context.Context, params identity.CreateUserParams) (*identity.User, error) {
	if c.serviceRoleKey == "" {
		return nil, ErrNoServiceRoleKey
	}

	var out identity.User

	if err := c.do(ctx, c.admin(c.http.Post(c.endpoint("/admin/users"))).JSON(params), &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// AdminDeleteUser implements identity.Client.
func (c *Client) AdminDeleteUser(ctx context.Context, id string) error {
	if c.serviceRoleKey == "" {
		return ErrNoServiceRoleKey
	}

	return c.do(ctx, c.admin(c.http.Delete(c.endpoint("/admin/users/"+url.PathEscape(id)))), nil)
}

// Health implements identity.Client.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, c.user(c.http.Get(c.endpoint("/health")), ""), nil)
}

func (c *Client) endpoint(p string, query ...string) string {
	u := c.baseURL + p

	if len(query) >= 2 { //nolint:mnd
		q := url.Values{}
		for i := 0; i+1 < len(query); i += 2 {
			q.Set(query[i], query[i+1])
		}

		u += "?" + q.Encode()
	}

	return u
}

// user sets the anon key and, if given, the bearer token of the user.
func (c *Client) user(a *fiber.Agent, accessToken string) *fiber.Agent {
	a.Set(headerAPIKey, c.anonKey)

	if accessToken != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+accessToken)
	}

	return a
}

// admin authorizes with the service role key.
func (c *Client) admin(a *fiber.Agent) *fiber.Agent {
	a.Set(headerAPIKey, c.serviceRoleKey)
	a.Set(fiber.HeaderAuthorization, "Bearer "+c.serviceRoleKey)

	return a
}

// do sends the request and decodes a successful answer into out if out is not nil.
func (c *Client) do(ctx context.Context, a *fiber.Agent, out any) error {
	if err := ctx.Err(); err != nil {
		fiber.ReleaseAgent(a)
		return err //nolint:wrapcheck
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); timeout == 0 || left < timeout {
			timeout = left
		}
	}

	if timeout > 0 {
		a.Timeout(timeout)
	}

	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return fmt.Errorf("identity request: %w", err)
	}

	status, body, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("identity request: %w", errors.Join(errs...))
	}

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return decodeError(status, body)
	}

	if out == nil || len(body) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode identity response: %w", err)
	}

	return nil
}

// errorResponse covers the error shapes GoTrue answers with.
type errorResponse struct {
	Code             any    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func decodeError(status int, body []byte) error {
	var r errorResponse

	pe := &identity.ProviderError{Status: status, Message: http.StatusText(status)}

	if err := json.Unmarshal(body, &r); err != nil {
		return pe
	}

	for _, code := range []string{r.ErrorCode, r.Error} {
		if code != "" {
			pe.Code = code
			break
		}
	}

	for _, msg := range []string{r.Msg, r.Message, r.ErrorDescription} {
		if msg != "" {
			pe.Message = msg
			break
		}
	}

	return pe
}
