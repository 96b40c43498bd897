package auth

import (
	"time"

	"golang.org/x/oauth2"

	"github.com/zymptek/zymptek-api/internal/db/models"
)

// PublicPrincipal is the view of an admin returned to clients.
type PublicPrincipal struct {
	ID              string            `json:"id"`
	SupabaseID      string            `json:"supabaseId"`
	Email           string            `json:"email"`
	FirstName       string            `json:"firstName"`
	LastName        string            `json:"lastName"`
	CompanyName     string            `json:"companyName"`
	UserType        models.UserType   `json:"userType"`
	Status          models.UserStatus `json:"status"`
	EmailVerified   bool              `json:"emailVerified"`
	ProfileComplete bool              `json:"profileComplete"`
	LastLogin       time.Time         `json:"lastLogin"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// ToPublic maps u to its public view. Unset names become empty strings and an
// unset last login becomes now.
func ToPublic(u *models.User, now time.Time) PublicPrincipal {
	lastLogin := now
	if u.LastLogin != nil {
		lastLogin = *u.LastLogin
	}

	return PublicPrincipal{
		ID:              u.ID,
		SupabaseID:      u.ExternalID(),
		Email:           u.Email,
		FirstName:       deref(u.FirstName),
		LastName:        deref(u.LastName),
		CompanyName:     deref(u.CompanyName),
		UserType:        u.UserType,
		Status:          u.Status,
		EmailVerified:   u.EmailVerified,
		ProfileComplete: u.ProfileComplete,
		LastLogin:       lastLogin,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

// SessionTokens are the provider tokens handed to the client.
type SessionTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	TokenType    string `json:"tokenType"`
}

// AuthResponse is the result of sign-in and refresh.
type AuthResponse struct {
	SessionTokens
	Admin PublicPrincipal `json:"admin"`
}

// SignOutResponse is the result of sign-out.
type SignOutResponse struct {
	Message string `json:"message"`
}

func sessionTokens(t *oauth2.Token, now time.Time) SessionTokens {
	expiresIn := t.ExpiresIn
	if expiresIn == 0 && !t.Expiry.IsZero() {
		expiresIn = int64(t.Expiry.Sub(now).Seconds())
	}

	return SessionTokens{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresIn:    expiresIn,
		TokenType:    "Bearer",
	}
}
