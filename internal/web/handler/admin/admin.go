// Package admin provides the admin dashboard and profile routes.
package admin

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/zymptek/zymptek-api/internal/auth"
	"github.com/zymptek/zymptek-api/internal/config"
	"github.com/zymptek/zymptek-api/internal/db/controller/principal"
	"github.com/zymptek/zymptek-api/internal/db/models"
	"github.com/zymptek/zymptek-api/internal/db/scope"
	"github.com/zymptek/zymptek-api/internal/web/handler"
	authmw "github.com/zymptek/zymptek-api/internal/web/middleware/auth"
)

const (
	// Path is the route group of the admin routes.
	Path = "admin"

	// DashboardPath serves the user statistics.
	DashboardPath = "dashboard"

	// ProfilePath serves the profile of the current admin.
	ProfilePath = "profile"

	// MsgDashboard is returned with the dashboard data.
	MsgDashboard = "Dashboard data retrieved successfully"

	// MsgProfile is returned with the admin profile.
	MsgProfile = "Admin profile retrieved successfully"
)

// AdminSummary identifies the admin requesting the dashboard.
type AdminSummary struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// DashboardData is the payload of the dashboard route.
type DashboardData struct {
	principal.Stats
	Admin AdminSummary `json:"admin"`
}

// ProfileData is the payload of the profile route.
type ProfileData struct {
	auth.PublicPrincipal
	AdminProfile *models.AdminProfile `json:"adminProfile"`
}

// Service is the admin handler service.
type Service struct {
	handler.Service
	scopes *scope.Manager
}

// Init registers the admin routes below router, all behind the admin guard chain.
func (s *Service) Init(router fiber.Router, cfg *config.Config, deps handler.Deps) error {
	if router == nil || cfg == nil || deps.Scopes == nil || deps.Guard == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.scopes = deps.Scopes

	router.Route(Path, func(r fiber.Router) {
		r.Get(DashboardPath, authmw.Admin(deps.Guard, s.Dashboard)...)
		r.Get(ProfilePath, authmw.Admin(deps.Guard, s.Profile)...)
	})

	return nil
}

// Dashboard returns the user counts and the requesting admin.
func (s *Service) Dashboard(c *fiber.Ctx) error {
	actx, err := authmw.CurrentAdmin(c)
	if err != nil {
		return err //nolint:wrapcheck
	}

	stats, err := scope.Do(c.UserContext(), s.scopes, scope.ServiceRole(), func(tx *gorm.DB) (principal.Stats, error) {
		return principal.GetStats(tx)
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to load dashboard statistics")

		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load dashboard data")
	}

	p := auth.ToPublic(actx.Principal, time.Now())

	return c.JSON(handler.Message{
		Message: MsgDashboard,
		Data: DashboardData{
			Stats: stats,
			Admin: AdminSummary{ID: p.ID, Email: p.Email, FirstName: p.FirstName, LastName: p.LastName},
		},
	})
}

// Profile returns the current admin with its admin profile.
func (s *Service) Profile(c *fiber.Ctx) error {
	actx, err := authmw.CurrentAdmin(c)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(handler.Message{
		Message: MsgProfile,
		Data: ProfileData{
			PublicPrincipal: auth.ToPublic(actx.Principal, time.Now()),
			AdminProfile:    actx.Principal.AdminProfile,
		},
	})
}
