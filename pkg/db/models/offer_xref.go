package models

import "github.com/angelmondragon/storefront/pkg/enums"

// OfferQualifyingCriteriaXref links an offer to an item criteria that
// qualifies an order for the offer. The criteria itself is owned elsewhere.
type OfferQualifyingCriteriaXref struct {
	ID                  int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OfferID             int64 `gorm:"column:offer_id;not null;index" json:"offer_id"`
	OfferItemCriteriaID int64 `gorm:"column:offer_item_criteria_id;not null" json:"offer_item_criteria_id"`
}

func (OfferQualifyingCriteriaXref) TableName() string { return "offer_qualifying_criteria_xrefs" }

// OfferTargetCriteriaXref links an offer to the item criteria it discounts.
type OfferTargetCriteriaXref struct {
	ID                  int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OfferID             int64 `gorm:"column:offer_id;not null;index" json:"offer_id"`
	OfferItemCriteriaID int64 `gorm:"column:offer_item_criteria_id;not null" json:"offer_item_criteria_id"`
}

func (OfferTargetCriteriaXref) TableName() string { return "offer_target_criteria_xrefs" }

// OfferRuleXref is one entry of the offer match-rule map.
type OfferRuleXref struct {
	ID          int64               `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OfferID     int64               `gorm:"column:offer_id;not null;index" json:"offer_id"`
	RuleKey     enums.OfferRuleType `gorm:"column:rule_key;not null" json:"rule_key"`
	OfferRuleID int64               `gorm:"column:offer_rule_id;not null" json:"offer_rule_id"`
}

func (OfferRuleXref) TableName() string { return "offer_rule_xrefs" }
