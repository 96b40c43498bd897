// Package main provides the entry point of the Zymptek admin API.
// It starts a fiber web service that signs admins in and out against the
// identity provider (GoTrue) and guards the admin routes by role and account
// status. Principals live in postgres and are read through sessions scoped
// by the request.jwt.claims setting so row level security applies.
package main
