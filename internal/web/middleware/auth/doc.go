// Package auth adapts the authentication and admin authorization guards to fiber.
//
// Authenticate resolves the bearer token and attaches the resulting
// AuthenticatedContext to the request user context. RequireAdmin must run
// after it. Handlers read the attached context with CurrentAdmin:
//
//	router.Get("dashboard", authmw.Authenticate(guard), authmw.RequireAdmin(guard), s.Dashboard)
//
// Failures are returned as *auth.Error and rendered by the app error handler.
package auth
