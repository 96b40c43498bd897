// Package principal provides the lookups and updates of local users.
// All functions work on the handle they are given, usually the transaction of a scope.
package principal

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/zymptek/zymptek-api/internal/db/models"
)

var (
	// ErrPrincipalNotFound is returned if no user matches.
	ErrPrincipalNotFound = errors.New("principal not found")
	// ErrExternalIDEmpty is returned for lookups with an empty external id.
	ErrExternalIDEmpty = errors.New("external id cannot be empty")
	// ErrDBNil is returned when the database handle is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Stats are the user counts shown on the admin dashboard.
type Stats struct {
	TotalUsers   int64 `json:"totalUsers"`
	TotalSellers int64 `json:"totalSellers"`
	TotalBuyers  int64 `json:"totalBuyers"`
	ActiveUsers  int64 `json:"activeUsers"`
	PendingUsers int64 `json:"pendingUsers"`
}

// FindByExternalID returns the user bound to externalID with the profile of its user type.
func FindByExternalID(db *gorm.DB, externalID string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if externalID == "" {
		return nil, ErrExternalIDEmpty
	}

	return first(db, "supabase_id = ?", externalID)
}

// FindByEmail returns the user with email and the given type.
func FindByEmail(db *gorm.DB, email string, userType models.UserType) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	return first(db, "email = ? AND user_type = ?", email, userType)
}

func first(db *gorm.DB, query string, args ...any) (*models.User, error) {
	var users []models.User

	if err := db.Where(query, args...).Limit(1).Find(&users).Error; err != nil {
		return nil, err
	}

	if len(users) == 0 {
		return nil, ErrPrincipalNotFound
	}

	u := &users[0]

	if err := loadProfile(db, u); err != nil {
		return nil, err
	}

	return u, nil
}

// loadProfile attaches the profile matching the user type, if there is one.
func loadProfile(db *gorm.DB, u *models.User) error {
	tx := db.Session(&gorm.Session{NewDB: true}).Where("user_id = ?", u.ID).Limit(1)

	switch u.UserType {
	case models.UserTypeAdmin:
		var p []models.AdminProfile
		if err := tx.Find(&p).Error; err != nil {
			return err
		}

		if len(p) > 0 {
			u.AdminProfile = &p[0]
		}
	case models.UserTypeSeller:
		var p []models.SellerProfile
		if err := tx.Find(&p).Error; err != nil {
			return err
		}

		if len(p) > 0 {
			u.SellerProfile = &p[0]
		}
	case models.UserTypeBuyer:
		var p []models.BuyerProfile
		if err := tx.Find(&p).Error; err != nil {
			return err
		}

		if len(p) > 0 {
			u.BuyerProfile = &p[0]
		}
	}

	return nil
}

// TouchLastLogin sets the last login of u to now.
// A last login later than now is kept, so the value never moves backwards.
func TouchLastLogin(db *gorm.DB, u *models.User, now time.Time) error {
	if db == nil {
		return ErrDBNil
	}

	if u.LastLogin != nil && u.LastLogin.After(now) {
		now = *u.LastLogin
	}

	res := db.Model(&models.User{}).Where("id = ?", u.ID).Update("last_login", now)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrPrincipalNotFound
	}

	u.LastLogin = &now

	return nil
}

// Create inserts u including a set profile.
func Create(db *gorm.DB, u *models.User) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Create(u).Error
}

// GetStats counts the users for the dashboard.
func GetStats(db *gorm.DB) (Stats, error) {
	var s Stats

	if db == nil {
		return s, ErrDBNil
	}

	counts := []struct {
		target *int64
		query  string
		arg    any
	}{
		{target: &s.TotalUsers},
		{target: &s.TotalSellers, query: "user_type = ?", arg: models.UserTypeSeller},
		{target: &s.TotalBuyers, query: "user_type = ?", arg: models.UserTypeBuyer},
		{target: &s.ActiveUsers, query: "status = ?", arg: models.UserStatusActive},
		{target: &s.PendingUsers, query: "status = ?", arg: models.UserStatusPendingVerification},
	}

	for _, c := range counts {
		q := db.Session(&gorm.Session{NewDB: true}).Model(&models.User{})
		if c.query != "" {
			q = q.Where(c.query, c.arg)
		}

		if err := q.Count(c.target).Error; err != nil {
			return Stats{}, err
		}
	}

	return s, nil
}
