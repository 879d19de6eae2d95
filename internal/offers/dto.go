package offers

import (
	"time"

	"github.com/shopspring/decimal"
)

// OfferInput is the full writable description of an offer. Updates replace
// the stored offer with the input; attached codes are managed separately.
type OfferInput struct {
	Name                               string
	Description                        *string
	MarketingMessage                   *string
	Type                               string
	DiscountType                       string
	Value                              decimal.Decimal
	Priority                           *int
	StartDate                          *time.Time
	EndDate                            *time.Time
	TargetSystem                       *string
	ApplyDiscountToSalePrice           bool
	OfferItemQualifierRuleType         string
	OfferItemTargetRuleType            string
	ApplyToChildItems                  bool
	CombinableWithOtherOffers          *bool
	AutomaticallyAdded                 bool
	MaxUsesPerCustomer                 *int64
	MaxUsesStrategyType                string
	MinimumDaysPerUsage                *int64
	MaxUsesPerOrder                    int
	TotalitarianOffer                  *bool
	UseListForDiscounts                *bool
	RequiresRelatedTargetAndQualifiers *bool
	QualifyingItemSubTotal             *decimal.Decimal
	OrderMinSubTotal                   *decimal.Decimal
	TargetMinSubTotal                  *decimal.Decimal
	Currency                           string
	AdjustmentType                     string
	Archived                           bool

	QualifyingItemCriteriaIDs []int64
	TargetItemCriteriaIDs     []int64
	MatchRules                map[string]int64
	PriceData                 []PriceDataInput
}

// PriceDataInput describes one price tier.
type PriceDataInput struct {
	Amount         decimal.Decimal
	DiscountType   string
	Identifier     string
	IdentifierType string
	Quantity       int
	StartDate      *time.Time
	EndDate        *time.Time
	Archived       bool
}

// ListParams filters the offer listing. Active selects offers inside or
// outside their validity window; nil lists all.
type ListParams struct {
	Limit  int
	Cursor string
	Active *bool
}
