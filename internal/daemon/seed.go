package daemon

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/zymptek/zymptek-api/internal/config"
	"github.com/zymptek/zymptek-api/internal/db/controller/principal"
	"github.com/zymptek/zymptek-api/internal/db/models"
	"github.com/zymptek/zymptek-api/internal/db/scope"
	"github.com/zymptek/zymptek-api/internal/identity"
	"github.com/zymptek/zymptek-api/internal/identity/gotrue"
)

// ErrSeedIncomplete is returned if a setting required to seed the admin is empty.
var ErrSeedIncomplete = errors.New("admin seed settings incomplete")

const seedAdminNotes = "System administrator account created via seed"

// AdminPermissions are granted to the seeded admin.
var AdminPermissions = []string{"read", "write", "admin"}

// SeedAdmin creates the configured admin at the identity provider and in the
// database. An existing admin with the same email is returned unchanged.
// If the database insert fails the provider user is deleted again.
func SeedAdmin(ctx context.Context, cfg *config.Config, provider identity.Client, scopes *scope.Manager) (*models.User, bool, error) {
	if missing := missingSeedSettings(cfg); len(missing) > 0 {
		return nil, false, fmt.Errorf("%w: missing %s", ErrSeedIncomplete, strings.Join(missing, ", "))
	}

	s := cfg.Seed

	existing, err := scope.Do(ctx, scopes, scope.ServiceRole(), func(tx *gorm.DB) (*models.User, error) {
		return principal.FindByEmail(tx, s.AdminEmail, models.UserTypeAdmin)
	})

	switch {
	case err == nil:
		log.Info().Str("user_id", existing.ID).Msg("admin user already exists")
		return existing, false, nil
	case !errors.Is(err, principal.ErrPrincipalNotFound):
		return nil, false, fmt.Errorf("failed to look up admin: %w", err)
	}

	fullName := s.AdminFirstName + " " + s.AdminLastName

	ext, err := provider.AdminCreateUser(ctx, identity.CreateUserParams{
		Email:        s.AdminEmail,
		Password:     s.AdminPassword,
		EmailConfirm: true,
		UserMetadata: map[string]any{
			"userType": string(models.UserTypeAdmin),
			"fullName": fullName,
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to create identity provider user: %w", err)
	}

	log.Info().Msg("admin created at the identity provider")
	log.Debug().Str("external_id", ext.ID).Msg("seeded identity")

	notes := seedAdminNotes
	u := &models.User{
		SupabaseID:      &ext.ID,
		Email:           s.AdminEmail,
		FirstName:       &s.AdminFirstName,
		LastName:        &s.AdminLastName,
		CompanyName:     &s.AdminCompany,
		Country:         &s.AdminCountry,
		UserType:        models.UserTypeAdmin,
		Status:          models.UserStatusActive,
		EmailVerified:   true,
		ProfileComplete: true,
		AdminProfile: &models.AdminProfile{
			FullName:    fullName,
			Permissions: AdminPermissions,
			IsActive:    true,
			AdminNotes:  &notes,
		},
	}

	err = scopes.Run(ctx, scope.ServiceRole(), func(tx *gorm.DB) error {
		return principal.Create(tx, u)
	})
	if err != nil {
		// keep provider and database consistent
		if derr := provider.AdminDeleteUser(ctx, ext.ID); derr != nil {
			log.Error().Err(derr).Msg("failed to delete identity provider user after failed seed")
		}

		return nil, false, fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Info().Str("user_id", u.ID).Msg("admin user created")

	return u, true, nil
}

// Seed connects to the database and the identity provider and seeds the admin.
func Seed(ctx context.Context, cfg *config.Config) error {
	db, err := OpenDB(cfg)
	if err != nil {
		return err
	}

	defer closeDB(db)

	scopes, err := scope.New(db)
	if err != nil {
		return fmt.Errorf("failed to create scoped session manager: %w", err)
	}

	provider, err := gotrue.New(cfg.Identity)
	if err != nil {
		return fmt.Errorf("failed to create identity provider client: %w", err)
	}

	_, created, err := SeedAdmin(ctx, cfg, provider, scopes)
	if err != nil {
		return err
	}

	log.Info().Bool("created", created).Msg("admin seed complete")

	return nil
}

func missingSeedSettings(cfg *config.Config) []string {
	var missing []string

	for _, f := range []struct {
		key   string
		value string
	}{
		{"seed.adminemail", cfg.Seed.AdminEmail},
		{"seed.adminpassword", cfg.Seed.AdminPassword},
		{"seed.adminfirstname", cfg.Seed.AdminFirstName},
		{"seed.adminlastname", cfg.Seed.AdminLastName},
		{"seed.admincompany", cfg.Seed.AdminCompany},
		{"seed.admincountry", cfg.Seed.AdminCountry},
		{"identity.servicerolekey", cfg.Identity.ServiceRoleKey},
	} {
		if f.value == "" {
			missing = append(missing, f.key)
		}
	}

	return missing
}
