package enums

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// OfferType selects what an offer discounts.
type OfferType string

const (
	OfferTypeOrderItem        OfferType = "ORDER_ITEM"
	OfferTypeOrder            OfferType = "ORDER"
	OfferTypeFulfillmentGroup OfferType = "FULFILLMENT_GROUP"
)

var validOfferTypes = []OfferType{
	OfferTypeOrderItem,
	OfferTypeOrder,
	OfferTypeFulfillmentGroup,
}

func (t OfferType) String() string { return string(t) }

func (t OfferType) IsValid() bool { return lo.Contains(validOfferTypes, t) }

// ParseOfferType converts raw input (any case) into an OfferType.
func ParseOfferType(value string) (OfferType, error) {
	candidate := OfferType(strings.ToUpper(strings.TrimSpace(value)))
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid offer type %q", value)
}

// OfferDiscountType is how the offer value is applied.
type OfferDiscountType string

const (
	OfferDiscountTypePercentOff OfferDiscountType = "PERCENT_OFF"
	OfferDiscountTypeAmountOff  OfferDiscountType = "AMOUNT_OFF"
	OfferDiscountTypeFixPrice   OfferDiscountType = "FIX_PRICE"
)

var validOfferDiscountTypes = []OfferDiscountType{
	OfferDiscountTypePercentOff,
	OfferDiscountTypeAmountOff,
	OfferDiscountTypeFixPrice,
}

func (t OfferDiscountType) String() string { return string(t) }

func (t OfferDiscountType) IsValid() bool { return lo.Contains(validOfferDiscountTypes, t) }

// ParseOfferDiscountType converts raw input (any case) into an OfferDiscountType.
func ParseOfferDiscountType(value string) (OfferDiscountType, error) {
	candidate := OfferDiscountType(strings.ToUpper(strings.TrimSpace(value)))
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid offer discount type %q", value)
}

// OfferItemRestrictionRuleType restricts whether an item already used as a
// qualifier or target by another offer may be reused by this one.
type OfferItemRestrictionRuleType string

const (
	OfferItemRestrictionNone            OfferItemRestrictionRuleType = "NONE"
	OfferItemRestrictionQualifier       OfferItemRestrictionRuleType = "QUALIFIER"
	OfferItemRestrictionTarget          OfferItemRestrictionRuleType = "TARGET"
	OfferItemRestrictionQualifierTarget OfferItemRestrictionRuleType = "QUALIFIER_TARGET"
)

var validOfferItemRestrictionRuleTypes = []OfferItemRestrictionRuleType{
	OfferItemRestrictionNone,
	OfferItemRestrictionQualifier,
	OfferItemRestrictionTarget,
	OfferItemRestrictionQualifierTarget,
}

func (t OfferItemRestrictionRuleType) String() string { return string(t) }

func (t OfferItemRestrictionRuleType) IsValid() bool {
	return lo.Contains(validOfferItemRestrictionRuleTypes, t)
}

// ParseOfferItemRestrictionRuleType converts raw input into a restriction rule type.
func ParseOfferItemRestrictionRuleType(value string) (OfferItemRestrictionRuleType, error) {
	candidate := OfferItemRestrictionRuleType(strings.ToUpper(strings.TrimSpace(value)))
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid offer item restriction rule type %q", value)
}

// CustomerMaxUsesStrategyType decides whether per-customer limits count
// redemptions by customer or by the customer's account.
type CustomerMaxUsesStrategyType string

const (
	CustomerMaxUsesStrategyCustomer CustomerMaxUsesStrategyType = "CUSTOMER"
	CustomerMaxUsesStrategyAccount  CustomerMaxUsesStrategyType = "ACCOUNT"
)

var validCustomerMaxUsesStrategyTypes = []CustomerMaxUsesStrategyType{
	CustomerMaxUsesStrategyCustomer,
	CustomerMaxUsesStrategyAccount,
}

func (t CustomerMaxUsesStrategyType) String() string { return string(t) }

func (t CustomerMaxUsesStrategyType) IsValid() bool {
	return lo.Contains(validCustomerMaxUsesStrategyTypes, t)
}

// ParseCustomerMaxUsesStrategyType converts raw input into a strategy type.
func ParseCustomerMaxUsesStrategyType(value string) (CustomerMaxUsesStrategyType, error) {
	candidate := CustomerMaxUsesStrategyType(strings.ToUpper(strings.TrimSpace(value)))
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid max uses strategy %q", value)
}

// OfferAdjustmentType is the fulfillment mode of an offer's discount.
type OfferAdjustmentType string

const (
	OfferAdjustmentOrderDiscount OfferAdjustmentType = "ORDER_DISCOUNT"
	OfferAdjustmentFutureCredit  OfferAdjustmentType = "FUTURE_CREDIT"
)

var validOfferAdjustmentTypes = []OfferAdjustmentType{
	OfferAdjustmentOrderDiscount,
	OfferAdjustmentFutureCredit,
}

func (t OfferAdjustmentType) String() string { return string(t) }

func (t OfferAdjustmentType) IsValid() bool { return lo.Contains(validOfferAdjustmentTypes, t) }

// ParseOfferAdjustmentType converts raw input into an adjustment type.
func ParseOfferAdjustmentType(value string) (OfferAdjustmentType, error) {
	candidate := OfferAdjustmentType(strings.ToUpper(strings.TrimSpace(value)))
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid offer adjustment type %q", value)
}

// OfferRuleType keys the offer match-rule map.
type OfferRuleType string

const (
	OfferRuleTypeOrder            OfferRuleType = "ORDER"
	OfferRuleTypeFulfillmentGroup OfferRuleType = "FULFILLMENT_GROUP"
	OfferRuleTypeCustomer         OfferRuleType = "CUSTOMER"
	OfferRuleTypeTime             OfferRuleType = "TIME"
	OfferRuleTypeRequest          OfferRuleType = "REQUEST"
)

var validOfferRuleTypes = []OfferRuleType{
	OfferRuleTypeOrder,
	OfferRuleTypeFulfillmentGroup,
	OfferRuleTypeCustomer,
	OfferRuleTypeTime,
	OfferRuleTypeRequest,
}

func (t OfferRuleType) String() string { return string(t) }

func (t OfferRuleType) IsValid() bool { return lo.Contains(validOfferRuleTypes, t) }

// ParseOfferRuleType converts raw input into an OfferRuleType.
func ParseOfferRuleType(value string) (OfferRuleType, error) {
	candidate := OfferRuleType(strings.ToUpper(strings.TrimSpace(value)))
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid offer rule type %q", value)
}

// OfferPriceDataIdentifierType names what an OfferPriceData identifier refers to.
type OfferPriceDataIdentifierType string

const (
	OfferPriceDataIdentifierProductID         OfferPriceDataIdentifierType = "PRODUCT_ID"
	OfferPriceDataIdentifierSkuID             OfferPriceDataIdentifierType = "SKU_ID"
	OfferPriceDataIdentifierProductExternalID OfferPriceDataIdentifierType = "PRODUCT_EXTERNAL_ID"
	OfferPriceDataIdentifierSkuExternalID     OfferPriceDataIdentifierType = "SKU_EXTERNAL_ID"
)

var validOfferPriceDataIdentifierTypes = []OfferPriceDataIdentifierType{
	OfferPriceDataIdentifierProductID,
	OfferPriceDataIdentifierSkuID,
	OfferPriceDataIdentifierProductExternalID,
	OfferPriceDataIdentifierSkuExternalID,
}

func (t OfferPriceDataIdentifierType) String() string { return string(t) }

func (t OfferPriceDataIdentifierType) IsValid() bool {
	return lo.Contains(validOfferPriceDataIdentifierTypes, t)
}

// ParseOfferPriceDataIdentifierType converts raw input into an identifier type.
func ParseOfferPriceDataIdentifierType(value string) (OfferPriceDataIdentifierType, error) {
	candidate := OfferPriceDataIdentifierType(strings.ToUpper(strings.TrimSpace(value)))
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid offer price data identifier type %q", value)
}
