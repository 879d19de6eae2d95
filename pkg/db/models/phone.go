package models

import (
	"time"

	"github.com/angelmondragon/storefront/pkg/clone"
)

type Phone struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PhoneNumber string    `gorm:"column:phone_number;not null" json:"phone_number"`
	CountryCode *string   `gorm:"column:country_code" json:"country_code,omitempty"`
	Extension   *string   `gorm:"column:extension" json:"extension,omitempty"`
	IsDefault   bool      `gorm:"column:is_default;not null;default:false" json:"is_default"`
	IsActive    bool      `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Phone) TableName() string { return "phones" }

func (p *Phone) Clone(cc *clone.Context) *Phone {
	dst, existing := clone.CreateOrRetrieve(cc, p)
	if existing {
		return dst
	}
	*dst = *p
	dst.ID = 0
	dst.CreatedAt = time.Time{}
	dst.UpdatedAt = time.Time{}
	dst.CountryCode = clone.Ptr(p.CountryCode)
	dst.Extension = clone.Ptr(p.Extension)
	return dst
}
