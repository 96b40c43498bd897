package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminProfile holds administrator specific data.
type AdminProfile struct {
	ID          string    `json:"id"          gorm:"primaryKey;size:36"`
	UserID      string    `json:"userId"      gorm:"uniqueIndex;size:36;not null"`
	FullName    string    `json:"fullName"    gorm:"size:255"`
	Permissions []string  `json:"permissions" gorm:"serializer:json;type:text"`
	IsActive    bool      `json:"isActive"    gorm:"not null"`
	AdminNotes  *string   `json:"adminNotes"  gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a uuid if none is set.
func (p *AdminProfile) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	return nil
}

// SellerProfile holds seller specific data.
type SellerProfile struct {
	ID           string    `json:"id"           gorm:"primaryKey;size:36"`
	UserID       string    `json:"userId"       gorm:"uniqueIndex;size:36;not null"`
	BusinessName string    `json:"businessName" gorm:"size:255"`
	TaxID        *string   `json:"taxId"        gorm:"size:64"`
	Verified     bool      `json:"verified"     gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a uuid if none is set.
func (p *SellerProfile) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	return nil
}

// BuyerProfile holds buyer specific data.
type BuyerProfile struct {
	ID          string    `json:"id"          gorm:"primaryKey;size:36"`
	UserID      string    `json:"userId"      gorm:"uniqueIndex;size:36;not null"`
	CompanySize *string   `json:"companySize" gorm:"size:32"`
	Industry    *string   `json:"industry"    gorm:"size:100"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a uuid if none is set.
func (p *BuyerProfile) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	return nil
}

// All returns every model for auto migration.
func All() []any {
	return []any{&User{}, &AdminProfile{}, &SellerProfile{}, &BuyerProfile{}}
}
