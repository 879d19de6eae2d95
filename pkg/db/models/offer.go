package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/pkg/clone"
	"github.com/angelmondragon/storefront/pkg/enums"
)

// Offer is a discount rule definition. Usage-limit predicates are derived
// from the stored limits on every call and are never persisted.
type Offer struct {
	ID                         int64                              `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name                       string                             `gorm:"column:name;not null" json:"name"`
	Description                *string                            `gorm:"column:description" json:"description,omitempty"`
	MarketingMessage           *string                            `gorm:"column:marketing_message" json:"marketing_message,omitempty"`
	Type                       enums.OfferType                    `gorm:"column:offer_type;not null" json:"type"`
	DiscountType               enums.OfferDiscountType            `gorm:"column:discount_type;not null" json:"discount_type"`
	Value                      decimal.Decimal                    `gorm:"column:offer_value;type:numeric(19,5);not null" json:"value"`
	Priority                   int                                `gorm:"column:priority;not null;default:0" json:"priority"`
	StartDate                  time.Time                          `gorm:"column:start_date;not null" json:"start_date"`
	EndDate                    *time.Time                         `gorm:"column:end_date" json:"end_date,omitempty"`
	TargetSystem               *string                            `gorm:"column:target_system" json:"target_system,omitempty"`
	ApplyDiscountToSalePrice   bool                               `gorm:"column:apply_to_sale_price;not null;default:false" json:"apply_discount_to_sale_price"`
	OfferItemQualifierRuleType enums.OfferItemRestrictionRuleType `gorm:"column:offer_item_qualifier_rule;not null;default:'NONE'" json:"offer_item_qualifier_rule_type"`
	OfferItemTargetRuleType    enums.OfferItemRestrictionRuleType `gorm:"column:offer_item_target_rule;not null;default:'NONE'" json:"offer_item_target_rule_type"`
	ApplyToChildItems          bool                               `gorm:"column:apply_to_child_items;not null;default:false" json:"apply_to_child_items"`
	CombinableWithOtherOffers  bool                               `gorm:"column:combinable_with_other_offers;not null" json:"combinable_with_other_offers"`
	AutomaticallyAdded         bool                               `gorm:"column:automatically_added;not null;default:false" json:"automatically_added"`

	MaxUsesPerCustomer  *int64                             `gorm:"column:max_uses_per_customer" json:"max_uses_per_customer,omitempty"`
	MaxUsesStrategyType *enums.CustomerMaxUsesStrategyType `gorm:"column:max_uses_strategy" json:"max_uses_strategy_type,omitempty"`
	MinimumDaysPerUsage *int64                             `gorm:"column:minimum_days_per_usage" json:"minimum_days_per_usage,omitempty"`
	MaxUsesPerOrder     int                                `gorm:"column:max_uses_per_order;not null;default:0" json:"max_uses_per_order"`

	QualifyingItemCriteriaXrefs []OfferQualifyingCriteriaXref `gorm:"foreignKey:OfferID" json:"qualifying_item_criteria,omitempty"`
	TargetItemCriteriaXrefs     []OfferTargetCriteriaXref     `gorm:"foreignKey:OfferID" json:"target_item_criteria,omitempty"`
	MatchRuleXrefs              []OfferRuleXref               `gorm:"foreignKey:OfferID" json:"-"`
	PriceData                   []OfferPriceData              `gorm:"foreignKey:OfferID" json:"price_data,omitempty"`
	OfferCodes                  []OfferCode                   `gorm:"foreignKey:OfferID" json:"offer_codes,omitempty"`

	TotalitarianOffer                  *bool `gorm:"column:totalitarian_offer" json:"totalitarian_offer,omitempty"`
	UseListForDiscounts                *bool `gorm:"column:use_list_for_discounts" json:"use_list_for_discounts,omitempty"`
	RequiresRelatedTargetAndQualifiers *bool `gorm:"column:requires_related_tar_qual" json:"requires_related_target_and_qualifiers,omitempty"`

	QualifyingItemSubTotal decimal.NullDecimal `gorm:"column:qualifying_item_min_total;type:numeric(19,5)" json:"qualifying_item_sub_total"`
	OrderMinSubTotal       decimal.NullDecimal `gorm:"column:order_min_total;type:numeric(19,5)" json:"order_min_sub_total"`
	TargetMinSubTotal      decimal.NullDecimal `gorm:"column:target_min_total;type:numeric(19,5)" json:"target_min_sub_total"`
	Currency               enums.Currency      `gorm:"column:currency;not null;default:'USD'" json:"currency"`

	AdjustmentType *enums.OfferAdjustmentType `gorm:"column:adjustment_type" json:"adjustment_type,omitempty"`
	Archived       bool                       `gorm:"column:archived;not null;default:false" json:"archived"`
	TenantID       *string                    `gorm:"column:tenant_id;index:idx_offers_tenant_id" json:"tenant_id,omitempty"`
	CreatedAt      time.Time                  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time                  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Offer) TableName() string { return "offers" }

// NewOffer returns an unpersisted offer with the column defaults applied.
func NewOffer() *Offer {
	return &Offer{
		OfferItemQualifierRuleType: enums.OfferItemRestrictionNone,
		OfferItemTargetRuleType:    enums.OfferItemRestrictionNone,
		CombinableWithOtherOffers:  true,
		Currency:                   enums.CurrencyUSD,
		Value:                      decimal.Zero,
	}
}

// SetPriority stores nil as zero.
func (o *Offer) SetPriority(priority *int) {
	if priority == nil {
		o.Priority = 0
		return
	}
	o.Priority = *priority
}

// IsUnlimitedUsePerCustomer reports whether MaxUsesPerCustomer is unset or zero.
func (o *Offer) IsUnlimitedUsePerCustomer() bool {
	return o.MaxUsesPerCustomer == nil || *o.MaxUsesPerCustomer == 0
}

func (o *Offer) IsLimitedUsePerCustomer() bool {
	return !o.IsUnlimitedUsePerCustomer()
}

// IsUnlimitedUsePerOrder reports whether MaxUsesPerOrder is zero.
func (o *Offer) IsUnlimitedUsePerOrder() bool {
	return o.MaxUsesPerOrder == 0
}

func (o *Offer) IsLimitedUsePerOrder() bool {
	return !o.IsUnlimitedUsePerOrder()
}

// EffectiveMaxUsesStrategyType treats an unset strategy as CUSTOMER.
func (o *Offer) EffectiveMaxUsesStrategyType() enums.CustomerMaxUsesStrategyType {
	if o.MaxUsesStrategyType == nil || *o.MaxUsesStrategyType == "" {
		return enums.CustomerMaxUsesStrategyCustomer
	}
	return *o.MaxUsesStrategyType
}

// EffectiveAdjustmentType treats an unset adjustment type as ORDER_DISCOUNT.
func (o *Offer) EffectiveAdjustmentType() enums.OfferAdjustmentType {
	if o.AdjustmentType == nil || *o.AdjustmentType == "" {
		return enums.OfferAdjustmentOrderDiscount
	}
	return *o.AdjustmentType
}

// IsFutureCredit reports whether the discount is deferred to a later credit.
func (o *Offer) IsFutureCredit() bool {
	return o.EffectiveAdjustmentType() == enums.OfferAdjustmentFutureCredit
}

// IsActive reports whether the offer is unarchived and inside its validity window.
func (o *Offer) IsActive(now time.Time) bool {
	if o.Archived {
		return false
	}
	if now.Before(o.StartDate) {
		return false
	}
	return o.EndDate == nil || now.Before(*o.EndDate)
}

// OfferMatchRulesXref returns the match rules keyed by rule type.
func (o *Offer) OfferMatchRulesXref() map[string]OfferRuleXref {
	out := make(map[string]OfferRuleXref, len(o.MatchRuleXrefs))
	for _, x := range o.MatchRuleXrefs {
		out[x.RuleKey.String()] = x
	}
	return out
}

// SetOfferMatchRulesXref replaces the match rules. Map keys win over the
// RuleKey carried by each value.
func (o *Offer) SetOfferMatchRulesXref(rules map[string]OfferRuleXref) {
	keys := make([]string, 0, len(rules))
	for key := range rules {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	o.MatchRuleXrefs = make([]OfferRuleXref, 0, len(rules))
	for _, key := range keys {
		x := rules[key]
		x.RuleKey = enums.OfferRuleType(key)
		x.OfferID = o.ID
		o.MatchRuleXrefs = append(o.MatchRuleXrefs, x)
	}
}

// Clone copies the offer and everything it owns into the context's tenant.
// Codes follow the copy because they are scoped through their offer.
func (o *Offer) Clone(cc *clone.Context) *Offer {
	dst, existing := clone.CreateOrRetrieve(cc, o)
	if existing {
		return dst
	}

	*dst = *o
	dst.ID = 0
	dst.CreatedAt = time.Time{}
	dst.UpdatedAt = time.Time{}
	dst.Description = clone.Ptr(o.Description)
	dst.MarketingMessage = clone.Ptr(o.MarketingMessage)
	dst.EndDate = clone.Ptr(o.EndDate)
	dst.TargetSystem = clone.Ptr(o.TargetSystem)
	dst.MaxUsesPerCustomer = clone.Ptr(o.MaxUsesPerCustomer)
	dst.MaxUsesStrategyType = clone.Ptr(o.MaxUsesStrategyType)
	dst.MinimumDaysPerUsage = clone.Ptr(o.MinimumDaysPerUsage)
	dst.TotalitarianOffer = clone.Ptr(o.TotalitarianOffer)
	dst.UseListForDiscounts = clone.Ptr(o.UseListForDiscounts)
	dst.RequiresRelatedTargetAndQualifiers = clone.Ptr(o.RequiresRelatedTargetAndQualifiers)
	dst.AdjustmentType = clone.Ptr(o.AdjustmentType)
	dst.TenantID = cc.Tenant(o.TenantID)

	dst.QualifyingItemCriteriaXrefs = nil
	for _, x := range o.QualifyingItemCriteriaXrefs {
		dst.QualifyingItemCriteriaXrefs = append(dst.QualifyingItemCriteriaXrefs, OfferQualifyingCriteriaXref{
			OfferItemCriteriaID: x.OfferItemCriteriaID,
		})
	}
	dst.TargetItemCriteriaXrefs = nil
	for _, x := range o.TargetItemCriteriaXrefs {
		dst.TargetItemCriteriaXrefs = append(dst.TargetItemCriteriaXrefs, OfferTargetCriteriaXref{
			OfferItemCriteriaID: x.OfferItemCriteriaID,
		})
	}
	dst.MatchRuleXrefs = nil
	for _, x := range o.MatchRuleXrefs {
		dst.MatchRuleXrefs = append(dst.MatchRuleXrefs, OfferRuleXref{RuleKey: x.RuleKey, OfferRuleID: x.OfferRuleID})
	}
	dst.PriceData = nil
	for i := range o.PriceData {
		dst.PriceData = append(dst.PriceData, *o.PriceData[i].Clone(cc))
	}
	dst.OfferCodes = nil
	for i := range o.OfferCodes {
		code := o.OfferCodes[i].Clone(cc)
		code.Offer = nil
		dst.OfferCodes = append(dst.OfferCodes, *code)
	}
	return dst
}
