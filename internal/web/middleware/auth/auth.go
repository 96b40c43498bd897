package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zymptek/zymptek-api/internal/auth"
)

// LocalPrincipal is the fiber local holding the id of the authenticated principal.
const LocalPrincipal = "principal"

// Authenticate runs the authentication guard for the Authorization header.
func Authenticate(g *auth.Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actx, err := g.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err //nolint:wrapcheck
		}

		c.SetUserContext(auth.NewContext(c.UserContext(), actx))
		c.Locals(LocalPrincipal, actx.Principal.ID)

		return c.Next()
	}
}

// RequireAdmin runs the admin authorization guard on the attached context.
func RequireAdmin(g *auth.Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actx, _ := auth.FromContext(c.UserContext())
		if err := g.Authorize(actx); err != nil {
			return err //nolint:wrapcheck
		}

		return c.Next()
	}
}

// Admin returns the full guard chain followed by h.
func Admin(g *auth.Guard, h fiber.Handler) []fiber.Handler {
	return []fiber.Handler{Authenticate(g), RequireAdmin(g), h}
}

// CurrentAdmin returns the context attached by the guard chain.
func CurrentAdmin(c *fiber.Ctx) (*auth.AuthenticatedContext, error) {
	actx, ok := auth.FromContext(c.UserContext())
	if !ok || actx.Principal == nil {
		return nil, auth.Forbidden(auth.MsgNoPrincipal)
	}

	return actx, nil
}
