// Package dbtest provides sqlite backed databases for package tests.
package dbtest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zymptek/zymptek-api/internal/db/models"
	"github.com/zymptek/zymptek-api/internal/db/scope"
)

// ClaimStatement records the claims of a scope in the scope_claims table.
// The row only survives if the scoped transaction commits.
const ClaimStatement = "INSERT INTO scope_claims (claims) VALUES (?)"

// ScopeClaim is a claim document recorded by ClaimStatement.
type ScopeClaim struct {
	ID        uint `gorm:"primaryKey"`
	Claims    string
	CreatedAt time.Time
}

// Open creates a migrated sqlite database in a temp dir of t.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(append(models.All(), &ScopeClaim{})...)
	require.NoError(t, err, "failed to migrate test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

// NewManager creates a scope manager on db using ClaimStatement.
func NewManager(t testing.TB, db *gorm.DB, opts ...scope.Option) *scope.Manager {
	t.Helper()

	m, err := scope.New(db, append([]scope.Option{scope.WithClaimStatement(ClaimStatement)}, opts...)...)
	require.NoError(t, err)

	return m
}

// Claims returns the committed claim documents in insert order.
func Claims(t testing.TB, db *gorm.DB) []string {
	t.Helper()

	var out []string

	require.NoError(t, db.Model(&ScopeClaim{}).Order("id").Pluck("claims", &out).Error)

	return out
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// CreateUser inserts u with its profile and returns it.
func CreateUser(t testing.TB, db *gorm.DB, u models.User) *models.User {
	t.Helper()

	require.NoError(t, db.Create(&u).Error, "failed to seed user")

	return &u
}

// ActiveAdmin returns an active, verified admin bound to externalID.
func ActiveAdmin(externalID, email string) models.User {
	return models.User{
		SupabaseID:      Ptr(externalID),
		Email:           email,
		FirstName:       Ptr("Ada"),
		LastName:        Ptr("Admin"),
		CompanyName:     Ptr("Zymptek"),
		UserType:        models.UserTypeAdmin,
		Status:          models.UserStatusActive,
		EmailVerified:   true,
		ProfileComplete: true,
		AdminProfile: &models.AdminProfile{
			FullName:    "Ada Admin",
			Permissions: []string{"read", "write", "admin"},
			IsActive:    true,
		},
	}
}
