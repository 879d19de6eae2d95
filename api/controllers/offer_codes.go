package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/offercodes"
	"github.com/angelmondragon/storefront/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

const maxPathCodeLength = 255

// offerCodeView is the public projection of a code; email restrictions and
// usage limits stay admin-only.
type offerCodeView struct {
	Code      string        `json:"code"`
	StartDate *time.Time    `json:"start_date,omitempty"`
	EndDate   *time.Time    `json:"end_date,omitempty"`
	Active    bool          `json:"active"`
	Offer     *offerSummary `json:"offer,omitempty"`
}

type offerSummary struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	MarketingMessage *string         `json:"marketing_message,omitempty"`
	Type             string          `json:"type"`
	DiscountType     string          `json:"discount_type"`
	Value            decimal.Decimal `json:"value"`
	Currency         string          `json:"currency"`
	EndDate          *time.Time      `json:"end_date,omitempty"`
}

func newOfferCodeView(code models.OfferCode, now time.Time) offerCodeView {
	view := offerCodeView{
		Code:      code.Code,
		StartDate: code.StartDate,
		EndDate:   code.EndDate,
		Active:    code.IsActive(now),
	}
	if o := code.Offer; o != nil {
		view.Active = view.Active && o.IsActive(now)
		view.Offer = &offerSummary{
			ID:               o.ID,
			Name:             o.Name,
			MarketingMessage: o.MarketingMessage,
			Type:             string(o.Type),
			DiscountType:     string(o.DiscountType),
			Value:            o.Value,
			Currency:         string(o.Currency),
			EndDate:          o.EndDate,
		}
	}
	return view
}

type createOfferCodeRequest struct {
	Code         string     `json:"code" validate:"required,offercode,max=255"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	MaxUses      int        `json:"max_uses" validate:"min=0"`
	EmailAddress *string    `json:"email_address,omitempty" validate:"omitempty,email"`
}

type updateOfferCodeRequest struct {
	Code         *string    `json:"code,omitempty" validate:"omitempty,offercode,max=255"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	MaxUses      *int       `json:"max_uses,omitempty" validate:"omitempty,min=0"`
	EmailAddress *string    `json:"email_address,omitempty" validate:"omitempty,email"`
	Archived     *bool      `json:"archived,omitempty"`
}

type redeemOfferCodeRequest struct {
	CustomerID   *int64 `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	AccountID    *int64 `json:"account_id,omitempty" validate:"omitempty,gt=0"`
	OrderID      *int64 `json:"order_id,omitempty" validate:"omitempty,gt=0"`
	EmailAddress string `json:"email_address,omitempty" validate:"omitempty,email"`
}

func pathCode(r *http.Request) (string, error) {
	code, ok := validators.SanitizeCode(chi.URLParam(r, "code"), maxPathCodeLength)
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid offer code").WithDetails(map[string]any{"field": "code"})
	}
	return code, nil
}

// OfferCodeLookup resolves a code case-insensitively for storefront clients.
func OfferCodeLookup(svc offercodes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer code service unavailable"))
			return
		}
		code, err := pathCode(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		found, err := svc.GetByCode(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOfferCodeView(*found, time.Now()))
	}
}

// OfferCodeLookupAll returns every non-archived code matching the value across offers.
func OfferCodeLookupAll(svc offercodes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer code service unavailable"))
			return
		}
		code, err := pathCode(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListByCode(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		now := time.Now()
		responses.WriteSuccess(w, lo.Map(list, func(c models.OfferCode, _ int) offerCodeView {
			return newOfferCodeView(c, now)
		}))
	}
}

// OfferCodeRedeem records one use of a code.
func OfferCodeRedeem(svc offercodes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer code service unavailable"))
			return
		}
		code, err := pathCode(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req redeemOfferCodeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		audit, err := svc.Redeem(r.Context(), code, offercodes.RedeemInput{
			CustomerID:   req.CustomerID,
			AccountID:    req.AccountID,
			OrderID:      req.OrderID,
			EmailAddress: req.EmailAddress,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, audit)
	}
}

// AdminOfferCodeCreate attaches a new code to an offer.
func AdminOfferCodeCreate(svc offercodes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer code service unavailable"))
			return
		}
		offerID, err := validators.ParsePathID(r, "offerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req createOfferCodeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), offerID, offercodes.CreateInput{
			Code:         req.Code,
			StartDate:    req.StartDate,
			EndDate:      req.EndDate,
			MaxUses:      req.MaxUses,
			EmailAddress: req.EmailAddress,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// AdminOfferCodeList loads codes by ?ids=1,2,3; unknown ids are skipped.
func AdminOfferCodeList(svc offercodes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer code service unavailable"))
			return
		}
		ids, err := validators.ParseQueryIDs(r, "ids")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListByIDs(r.Context(), ids)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func AdminOfferCodeGet(svc offercodes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer code service unavailable"))
			return
		}
		id, err := validators.ParsePathID(r, "codeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		code, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, code)
	}
}

// AdminOfferCodeUpdate applies a partial update; omitted fields are kept.
func AdminOfferCodeUpdate(svc offercodes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer code service unavailable"))
			return
		}
		id, err := validators.ParsePathID(r, "codeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateOfferCodeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.Update(r.Context(), id, offercodes.UpdateInput{
			Code:         req.Code,
			StartDate:    req.StartDate,
			EndDate:      req.EndDate,
			MaxUses:      req.MaxUses,
			EmailAddress: req.EmailAddress,
			Archived:     req.Archived,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func AdminOfferCodeDelete(svc offercodes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer code service unavailable"))
			return
		}
		id, err := validators.ParsePathID(r, "codeID")
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

// AdminOfferCodeUsed reports whether the configured usage policy considers the code used.
func AdminOfferCodeUsed(svc offercodes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer code service unavailable"))
			return
		}
		id, err := validators.ParsePathID(r, "codeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		used, err := svc.IsUsed(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": id, "used": used})
	}
}
