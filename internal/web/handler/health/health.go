// Package health provides the root, liveness and identity provider check routes.
package health

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/zymptek/zymptek-api/internal/config"
	"github.com/zymptek/zymptek-api/internal/identity"
	"github.com/zymptek/zymptek-api/internal/web/handler"
)

const (
	// Path is the liveness route, checked by load balancers.
	Path = "health"

	// IdentityPath checks the identity provider.
	IdentityPath = "health/identity"

	// SupabaseIdentityPath is kept for clients of the former route name.
	SupabaseIdentityPath = "health/supabase"

	// Greeting is returned on the root route.
	Greeting = "Hello World!"

	statusOK    = "ok"
	statusError = "error"

	checkTimeout = 5 * time.Second
)

// Status is the body of the health routes.
type Status struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Service is the health handler service.
type Service struct {
	handler.Service
	provider identity.Client
	alive    func() bool
	now      func() time.Time
}

// Init registers the health routes below router.
func (s *Service) Init(router fiber.Router, cfg *config.Config, deps handler.Deps) error {
	if router == nil || cfg == nil || deps.Provider == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.provider = deps.Provider
	s.alive = deps.Alive
	s.now = time.Now

	if s.alive == nil {
		s.alive = func() bool { return true }
	}

	router.Get(handler.RootPath, s.Root)
	router.Get(Path, s.Health)
	router.Get(IdentityPath, s.Identity)
	router.Get(SupabaseIdentityPath, s.Identity)

	return nil
}

// Root greets.
func (s *Service) Root(c *fiber.Ctx) error {
	return c.SendString(Greeting)
}

// Health returns 503 while the service shuts down so load balancers drain it.
func (s *Service) Health(c *fiber.Ctx) error {
	if !s.alive() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(s.status(statusError, "shutting down", nil))
	}

	return c.JSON(s.status(statusOK, "alive", nil))
}

// Identity checks that the identity provider answers.
func (s *Service) Identity(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), checkTimeout)
	defer cancel()

	if err := s.provider.Health(ctx); err != nil {
		log.Warn().Err(err).Msg("identity provider health check failed")

		return c.Status(fiber.StatusServiceUnavailable).
			JSON(s.status(statusError, "Identity provider check failed", err))
	}

	return c.JSON(s.status(statusOK, "Identity provider reachable", nil))
}

func (s *Service) status(status, message string, err error) Status {
	st := Status{
		Status:    status,
		Message:   message,
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}

	if err != nil {
		st.Error = err.Error()
	}

	return st
}
