// Package models contains the gorm models of the local user store.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserType is the role of a local user.
type UserType string

const (
	// UserTypeAdmin marks platform administrators.
	UserTypeAdmin UserType = "admin"
	// UserTypeSeller marks seller accounts.
	UserTypeSeller UserType = "seller"
	// UserTypeBuyer marks buyer accounts.
	UserTypeBuyer UserType = "buyer"
)

// UserStatus is the lifecycle state of a local user.
type UserStatus string

const (
	// UserStatusActive accounts may sign in.
	UserStatusActive UserStatus = "active"
	// UserStatusPendingVerification accounts wait for verification.
	UserStatusPendingVerification UserStatus = "pending_verification"
	// UserStatusSuspended accounts are locked by an administrator.
	UserStatusSuspended UserStatus = "suspended"
)

// User is the local principal of an identity held by the external identity provider.
// At most one of the profiles is populated, depending on UserType.
type User struct {
	// ID is the local identifier (uuid).
	ID string `gorm:"primaryKey;size:36"`
	// SupabaseID is the external identity id, unique when set.
	SupabaseID *string `gorm:"column:supabase_id;uniqueIndex;size:64"`
	// Email is unique per user.
	Email       string  `gorm:"uniqueIndex;size:255;not null"`
	FirstName   *string `gorm:"size:100"`
	LastName    *string `gorm:"size:100"`
	CompanyName *string `gorm:"size:255"`
	Country     *string `gorm:"size:100"`

	UserType        UserType   `gorm:"type:varchar(20);not null;default:'buyer'"`
	Status          UserStatus `gorm:"type:varchar(32);not null;default:'pending_verification'"`
	EmailVerified   bool       `gorm:"not null;default:false"`
	ProfileComplete bool       `gorm:"not null;default:false"`
	LastLogin       *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	AdminProfile  *AdminProfile  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	SellerProfile *SellerProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	BuyerProfile  *BuyerProfile  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns a uuid if none is set.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	return nil
}

// ExternalID returns the external identity id or an empty string.
func (u *User) ExternalID() string {
	if u.SupabaseID == nil {
		return ""
	}

	return *u.SupabaseID
}
