package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/pkg/clone"
	"github.com/angelmondragon/storefront/pkg/enums"
)

// OfferPriceData is one price tier of an offer that discounts by list.
type OfferPriceData struct {
	ID             int64                              `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OfferID        int64                              `gorm:"column:offer_id;not null;index" json:"offer_id"`
	Amount         decimal.Decimal                    `gorm:"column:amount;type:numeric(19,5);not null" json:"amount"`
	DiscountType   enums.OfferDiscountType            `gorm:"column:discount_type;not null" json:"discount_type"`
	Identifier     string                             `gorm:"column:identifier;not null" json:"identifier"`
	IdentifierType enums.OfferPriceDataIdentifierType `gorm:"column:identifier_type;not null" json:"identifier_type"`
	Quantity       int                                `gorm:"column:quantity;not null;default:1" json:"quantity"`
	StartDate      *time.Time                         `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate        *time.Time                         `gorm:"column:end_date" json:"end_date,omitempty"`
	Archived       bool                               `gorm:"column:archived;not null;default:false" json:"archived"`
}

func (OfferPriceData) TableName() string { return "offer_price_data" }

// IsActive reports whether the tier applies at now.
func (p *OfferPriceData) IsActive(now time.Time) bool {
	if p.Archived {
		return false
	}
	if p.StartDate != nil && now.Before(*p.StartDate) {
		return false
	}
	return p.EndDate == nil || now.Before(*p.EndDate)
}

func (p *OfferPriceData) Clone(cc *clone.Context) *OfferPriceData {
	dst, existing := clone.CreateOrRetrieve(cc, p)
	if existing {
		return dst
	}
	*dst = *p
	dst.ID = 0
	dst.OfferID = 0
	dst.StartDate = clone.Ptr(p.StartDate)
	dst.EndDate = clone.Ptr(p.EndDate)
	return dst
}
