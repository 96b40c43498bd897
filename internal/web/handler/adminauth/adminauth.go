// Package adminauth provides the admin sign-in, sign-out and refresh routes.
package adminauth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/zymptek/zymptek-api/internal/auth"
	"github.com/zymptek/zymptek-api/internal/config"
	"github.com/zymptek/zymptek-api/internal/web/handler"
	authmw "github.com/zymptek/zymptek-api/internal/web/middleware/auth"
)

const (
	// Path is the route group of the admin session routes.
	Path = "admin/auth"

	// SignInPath exchanges credentials for a session.
	SignInPath = "signin"

	// SignOutPath revokes the session of the authenticated admin.
	SignOutPath = "signout"

	// RefreshPath exchanges a refresh token for a new session.
	RefreshPath = "refresh"
)

// SignInRequest is the body of the sign-in route.
type SignInRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RefreshRequest is the body of the refresh route.
// An empty token is rejected by the service as an invalid refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Service is the admin session handler service.
type Service struct {
	handler.Service
	auth *auth.Service
}

// Init registers the admin session routes below router.
func (s *Service) Init(router fiber.Router, cfg *config.Config, deps handler.Deps) error {
	if router == nil || cfg == nil || deps.Auth == nil || deps.Guard == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.auth = deps.Auth

	router.Route(Path, func(r fiber.Router) {
		r.Post(SignInPath, s.SignIn)
		r.Post(SignOutPath, authmw.Admin(deps.Guard, s.SignOut)...)
		r.Post(RefreshPath, s.Refresh)
	})

	return nil
}

// SignIn handles admin sign-in.
func (s *Service) SignIn(c *fiber.Ctx) error {
	req := new(SignInRequest)
	if err := handler.Bind(c, req); err != nil {
		return err //nolint:wrapcheck
	}

	resp, err := s.auth.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(resp)
}

// SignOut handles admin sign-out for the context attached by the guard chain.
func (s *Service) SignOut(c *fiber.Ctx) error {
	actx, err := authmw.CurrentAdmin(c)
	if err != nil {
		return err //nolint:wrapcheck
	}

	var externalID string
	if actx.ExternalUser != nil {
		externalID = actx.ExternalUser.ID
	}

	resp, err := s.auth.SignOut(c.UserContext(), externalID, actx.AccessToken)
	if err != nil {
		return err //nolint:wrapcheck
	}

	log.Debug().Str("user_id", actx.Principal.ID).Msg("admin session revoked")

	return c.JSON(resp)
}

// Refresh handles session refresh.
func (s *Service) Refresh(c *fiber.Ctx) error {
	req := new(RefreshRequest)
	if err := handler.BindAllowUnknown(c, req); err != nil {
		return err //nolint:wrapcheck
	}

	resp, err := s.auth.RefreshSession(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(resp)
}
