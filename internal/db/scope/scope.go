// Package scope runs database work under a row level security claim.
//
// Every Run gets its own connection and transaction. The claim is set by the
// first statement of that transaction, so it is visible to exactly the
// queries of the callback and nothing else.
package scope

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Kind selects the claim a scope carries.
type Kind int

const (
	// KindServiceRole bypasses row level security.
	KindServiceRole Kind = iota
	// KindAuthenticatedUser acts as the authenticated user with the given id.
	KindAuthenticatedUser
	// KindExternalIdentityUser only carries the subject of an external identity.
	KindExternalIdentityUser
)

var (
	// ErrMissingIdentity is returned if a user scope has no identity.
	ErrMissingIdentity = errors.New("scope requires an identity")

	// ErrDatabaseUnavailable is returned if no connection could be obtained.
	ErrDatabaseUnavailable = errors.New("database unavailable")
)

// Scope is the security context of one Run.
type Scope struct {
	kind     Kind
	identity string
}

// ServiceRole returns the service role scope.
func ServiceRole() Scope {
	return Scope{kind: KindServiceRole}
}

// AuthenticatedUser returns the scope of the authenticated user id.
func AuthenticatedUser(id string) Scope {
	return Scope{kind: KindAuthenticatedUser, identity: id}
}

// ExternalIdentityUser returns the scope of the external identity id.
func ExternalIdentityUser(id string) Scope {
	return Scope{kind: KindExternalIdentityUser, identity: id}
}

// Kind of the scope.
func (s Scope) Kind() Kind {
	return s.kind
}

// Identity of the scope, empty for the service role.
func (s Scope) Identity() string {
	return s.identity
}

func (s Scope) String() string {
	switch s.kind {
	case KindServiceRole:
		return "service_role"
	case KindAuthenticatedUser:
		return "authenticated"
	case KindExternalIdentityUser:
		return "external_identity"
	default:
		return fmt.Sprintf("unknown(%d)", int(s.kind))
	}
}

type claims struct {
	Role string `json:"role,omitempty"`
	Sub  string `json:"sub,omitempty"`
}

// Claims renders the JSON claim document read by the row level security policies.
func (s Scope) Claims() (string, error) {
	var c claims

	switch s.kind {
	case KindServiceRole:
		c.Role = "service_role"
	case KindAuthenticatedUser:
		if s.identity == "" {
			return "", ErrMissingIdentity
		}

		c.Role = "authenticated"
		c.Sub = s.identity
	case KindExternalIdentityUser:
		if s.identity == "" {
			return "", ErrMissingIdentity
		}

		c.Sub = s.identity
	default:
		return "", fmt.Errorf("unknown scope kind %d", int(s.kind))
	}

	out, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}

	return string(out), nil
}
