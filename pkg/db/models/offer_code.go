package models

import (
	"time"

	"github.com/angelmondragon/storefront/pkg/clone"
)

// OfferCode is a natural-key alias used to redeem an Offer manually. The same
// code string may be attached to more than one offer, but only once per offer
// regardless of case (ux_offer_codes_offer_code on offer_id, lower(code)).
type OfferCode struct {
	ID           int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OfferID      int64      `gorm:"column:offer_id;not null;index" json:"offer_id"`
	Offer        *Offer     `gorm:"foreignKey:OfferID" json:"offer,omitempty"`
	Code         string     `gorm:"column:code;not null" json:"code"`
	StartDate    *time.Time `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate      *time.Time `gorm:"column:end_date" json:"end_date,omitempty"`
	MaxUses      int        `gorm:"column:max_uses;not null;default:0" json:"max_uses"`
	EmailAddress *string    `gorm:"column:email_address" json:"email_address,omitempty"`
	Archived     bool       `gorm:"column:archived;not null;default:false" json:"archived"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (OfferCode) TableName() string { return "offer_codes" }

// IsUnlimitedUse reports whether MaxUses is zero.
func (c *OfferCode) IsUnlimitedUse() bool {
	return c.MaxUses == 0
}

// IsActive reports whether the code is unarchived and inside its own window.
// The owning offer's window is checked separately.
func (c *OfferCode) IsActive(now time.Time) bool {
	if c.Archived {
		return false
	}
	if c.StartDate != nil && now.Before(*c.StartDate) {
		return false
	}
	return c.EndDate == nil || now.Before(*c.EndDate)
}

func (c *OfferCode) Clone(cc *clone.Context) *OfferCode {
	dst, existing := clone.CreateOrRetrieve(cc, c)
	if existing {
		return dst
	}
	*dst = *c
	dst.ID = 0
	dst.CreatedAt = time.Time{}
	dst.UpdatedAt = time.Time{}
	dst.StartDate = clone.Ptr(c.StartDate)
	dst.EndDate = clone.Ptr(c.EndDate)
	dst.EmailAddress = clone.Ptr(c.EmailAddress)
	if c.Offer != nil {
		dst.Offer = c.Offer.Clone(cc)
		dst.OfferID = 0
	}
	return dst
}
