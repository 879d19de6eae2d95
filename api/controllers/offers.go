package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/offers"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/pagination"
)

type offerRequest struct {
	Name                               string             `json:"name" validate:"required,max=255"`
	Description                        *string            `json:"description,omitempty"`
	MarketingMessage                   *string            `json:"marketing_message,omitempty"`
	Type                               string             `json:"type" validate:"required"`
	DiscountType                       string             `json:"discount_type" validate:"required"`
	Value                              decimal.Decimal    `json:"value" validate:"nonnegdecimal"`
	Priority                           *int               `json:"priority,omitempty"`
	StartDate                          *time.Time         `json:"start_date,omitempty"`
	EndDate                            *time.Time         `json:"end_date,omitempty"`
	TargetSystem                       *string            `json:"target_system,omitempty"`
	ApplyDiscountToSalePrice           bool               `json:"apply_discount_to_sale_price"`
	OfferItemQualifierRuleType         string             `json:"offer_item_qualifier_rule_type,omitempty"`
	OfferItemTargetRuleType            string             `json:"offer_item_target_rule_type,omitempty"`
	ApplyToChildItems                  bool               `json:"apply_to_child_items"`
	CombinableWithOtherOffers          *bool              `json:"combinable_with_other_offers,omitempty"`
	AutomaticallyAdded                 bool               `json:"automatically_added"`
	MaxUsesPerCustomer                 *int64             `json:"max_uses_per_customer,omitempty" validate:"omitempty,min=0"`
	MaxUsesStrategyType                string             `json:"max_uses_strategy_type,omitempty"`
	MinimumDaysPerUsage                *int64             `json:"minimum_days_per_usage,omitempty" validate:"omitempty,min=0"`
	MaxUsesPerOrder                    int                `json:"max_uses_per_order" validate:"min=0"`
	TotalitarianOffer                  *bool              `json:"totalitarian_offer,omitempty"`
	UseListForDiscounts                *bool              `json:"use_list_for_discounts,omitempty"`
	RequiresRelatedTargetAndQualifiers *bool              `json:"requires_related_target_and_qualifiers,omitempty"`
	QualifyingItemSubTotal             *decimal.Decimal   `json:"qualifying_item_sub_total,omitempty" validate:"omitempty,nonnegdecimal"`
	OrderMinSubTotal                   *decimal.Decimal   `json:"order_min_sub_total,omitempty" validate:"omitempty,nonnegdecimal"`
	TargetMinSubTotal                  *decimal.Decimal   `json:"target_min_sub_total,omitempty" validate:"omitempty,nonnegdecimal"`
	Currency                           string             `json:"currency,omitempty"`
	AdjustmentType                     string             `json:"adjustment_type,omitempty"`
	Archived                           bool               `json:"archived"`
	QualifyingItemCriteriaIDs          []int64            `json:"qualifying_item_criteria_ids,omitempty" validate:"omitempty,dive,gt=0"`
	TargetItemCriteriaIDs              []int64            `json:"target_item_criteria_ids,omitempty" validate:"omitempty,dive,gt=0"`
	MatchRules                         map[string]int64   `json:"match_rules,omitempty"`
	PriceData                          []priceDataRequest `json:"price_data,omitempty" validate:"omitempty,dive"`
}

type priceDataRequest struct {
	Amount         decimal.Decimal `json:"amount" validate:"nonnegdecimal"`
	DiscountType   string          `json:"discount_type" validate:"required"`
	Identifier     string          `json:"identifier" validate:"required"`
	IdentifierType string          `json:"identifier_type" validate:"required"`
	Quantity       int             `json:"quantity" validate:"min=0"`
	StartDate      *time.Time      `json:"start_date,omitempty"`
	EndDate        *time.Time      `json:"end_date,omitempty"`
	Archived       bool            `json:"archived"`
}

func (r offerRequest) toInput() offers.OfferInput {
	return offers.OfferInput{
		Name:                               strings.TrimSpace(r.Name),
		Description:                        r.Description,
		MarketingMessage:                   r.MarketingMessage,
		Type:                               r.Type,
		DiscountType:                       r.DiscountType,
		Value:                              r.Value,
		Priority:                           r.Priority,
		StartDate:                          r.StartDate,
		EndDate:                            r.EndDate,
		TargetSystem:                       r.TargetSystem,
		ApplyDiscountToSalePrice:           r.ApplyDiscountToSalePrice,
		OfferItemQualifierRuleType:         r.OfferItemQualifierRuleType,
		OfferItemTargetRuleType:            r.OfferItemTargetRuleType,
		ApplyToChildItems:                  r.ApplyToChildItems,
		CombinableWithOtherOffers:          r.CombinableWithOtherOffers,
		AutomaticallyAdded:                 r.AutomaticallyAdded,
		MaxUsesPerCustomer:                 r.MaxUsesPerCustomer,
		MaxUsesStrategyType:                r.MaxUsesStrategyType,
		MinimumDaysPerUsage:                r.MinimumDaysPerUsage,
		MaxUsesPerOrder:                    r.MaxUsesPerOrder,
		TotalitarianOffer:                  r.TotalitarianOffer,
		UseListForDiscounts:                r.UseListForDiscounts,
		RequiresRelatedTargetAndQualifiers: r.RequiresRelatedTargetAndQualifiers,
		QualifyingItemSubTotal:             r.QualifyingItemSubTotal,
		OrderMinSubTotal:                   r.OrderMinSubTotal,
		TargetMinSubTotal:                  r.TargetMinSubTotal,
		Currency:                           r.Currency,
		AdjustmentType:                     r.AdjustmentType,
		Archived:                           r.Archived,
		QualifyingItemCriteriaIDs:          r.QualifyingItemCriteriaIDs,
		TargetItemCriteriaIDs:              r.TargetItemCriteriaIDs,
		MatchRules:                         r.MatchRules,
		PriceData: lo.Map(r.PriceData, func(p priceDataRequest, _ int) offers.PriceDataInput {
			return offers.PriceDataInput{
				Amount:         p.Amount,
				DiscountType:   p.DiscountType,
				Identifier:     p.Identifier,
				IdentifierType: p.IdentifierType,
				Quantity:       p.Quantity,
				StartDate:      p.StartDate,
				EndDate:        p.EndDate,
				Archived:       p.Archived,
			}
		}),
	}
}

type cloneOfferRequest struct {
	TenantID string `json:"tenant_id" validate:"omitempty,max=64"`
}

// AdminOfferCreate persists a new offer.
func AdminOfferCreate(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer service unavailable"))
			return
		}
		var req offerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offer, err := svc.Create(r.Context(), req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, offer)
	}
}

// AdminOfferList pages offers newest first, optionally filtered by ?active=true|false.
func AdminOfferList(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer service unavailable"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		active, err := validators.ParseQueryBool(r, "active")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), offers.ListParams{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			Active: active,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func AdminOfferGet(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer service unavailable"))
			return
		}
		id, err := validators.ParsePathID(r, "offerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offer, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, offer)
	}
}

// AdminOfferUpdate replaces the writable fields of an offer.
func AdminOfferUpdate(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer service unavailable"))
			return
		}
		id, err := validators.ParsePathID(r, "offerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req offerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offer, err := svc.Update(r.Context(), id, req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, offer)
	}
}

func AdminOfferDelete(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer service unavailable"))
			return
		}
		id, err := validators.ParsePathID(r, "offerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// AdminOfferClone copies an offer, its codes and rules for another tenant.
func AdminOfferClone(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer service unavailable"))
			return
		}
		id, err := validators.ParsePathID(r, "offerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req cloneOfferRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		clone, err := svc.CloneOffer(r.Context(), id, strings.TrimSpace(req.TenantID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, clone)
	}
}

// AutomaticOffers lists the active offers applied without a code.
func AutomaticOffers(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer service unavailable"))
			return
		}
		list, err := svc.ListAutomatic(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
