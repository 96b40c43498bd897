// Package handler holds what the route handlers of the web service share.
package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zymptek/zymptek-api/internal/auth"
	"github.com/zymptek/zymptek-api/internal/config"
	"github.com/zymptek/zymptek-api/internal/db/scope"
	"github.com/zymptek/zymptek-api/internal/identity"
)

// Deps are the services a handler may use.
type Deps struct {
	Provider identity.Client
	Scopes   *scope.Manager
	Guard    *auth.Guard
	Auth     *auth.Service

	// Alive reports false while the service shuts down.
	Alive func() bool
}

// Service is the interface for a web handler service.
type Service interface {
	Init(router fiber.Router, cfg *config.Config, deps Deps) error
}
