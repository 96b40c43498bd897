// Package auth authenticates admin requests against the identity provider
// and authorizes them against the local user store.
//
// # Guard chain
//
// Guard.Authenticate resolves a bearer token to an AuthenticatedContext:
//   - the token is checked against the local revocation list
//   - the identity provider resolves the token to its user
//   - the local principal is looked up in a scoped database session
//
// Guard.Authorize then requires, in this order, a principal, the admin role,
// an active status and a verified email. The first failing check decides the
// reported reason.
//
// # Service
//
// Service implements sign-in, sign-out, session refresh and token
// verification for admins. Every failure leaves the package as an *Error of
// kind ErrUnauthenticated or ErrForbidden with a message safe to show to
// clients; provider and database errors are only logged.
//
// Example usage:
//
//	guard := auth.NewGuard(provider, scopes, auth.WithRevocationList(revoked))
//	svc := auth.NewService(provider, scopes, guard)
//
//	actx, err := guard.Authenticate(ctx, c.Get(fiber.HeaderAuthorization))
//	if err == nil {
//	    err = guard.Authorize(actx)
//	}
package auth
