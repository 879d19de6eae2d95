package models

import "time"

// OfferAudit records one redemption of an offer, optionally through a code.
type OfferAudit struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OfferID      int64     `gorm:"column:offer_id;not null;index" json:"offer_id"`
	OfferCodeID  *int64    `gorm:"column:offer_code_id;index" json:"offer_code_id,omitempty"`
	CustomerID   *int64    `gorm:"column:customer_id" json:"customer_id,omitempty"`
	AccountID    *int64    `gorm:"column:account_id" json:"account_id,omitempty"`
	OrderID      *int64    `gorm:"column:order_id" json:"order_id,omitempty"`
	RedeemedDate time.Time `gorm:"column:redeemed_date;not null" json:"redeemed_date"`
}

func (OfferAudit) TableName() string { return "offer_audits" }
