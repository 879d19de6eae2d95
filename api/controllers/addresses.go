package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/addresses"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

type addressRequest struct {
	AddressLine1          string        `json:"address_line1" validate:"required,max=255"`
	AddressLine2          string        `json:"address_line2,omitempty" validate:"max=255"`
	AddressLine3          string        `json:"address_line3,omitempty" validate:"max=255"`
	City                  string        `json:"city" validate:"required,max=255"`
	IsoCountrySubdivision string        `json:"iso_country_subdivision,omitempty" validate:"max=16"`
	StateProvinceRegion   string        `json:"state_province_region,omitempty" validate:"max=255"`
	PostalCode            string        `json:"postal_code" validate:"required,max=32"`
	County                string        `json:"county,omitempty" validate:"max=255"`
	ZipFour               string        `json:"zip_four,omitempty" validate:"max=8"`
	IsoCountryAlpha2      string        `json:"iso_country_alpha2" validate:"required,isocountry"`
	CompanyName           string        `json:"company_name,omitempty" validate:"max=255"`
	FirstName             string        `json:"first_name,omitempty" validate:"max=255"`
	LastName              string        `json:"last_name,omitempty" validate:"max=255"`
	FullName              string        `json:"full_name,omitempty" validate:"max=255"`
	EmailAddress          string        `json:"email_address,omitempty" validate:"omitempty,email"`
	PhonePrimary          *phoneRequest `json:"phone_primary,omitempty"`
	PhoneSecondary        *phoneRequest `json:"phone_secondary,omitempty"`
	PhoneFax              *phoneRequest `json:"phone_fax,omitempty"`
	IsDefault             bool          `json:"is_default"`
	IsBusiness            bool          `json:"is_business"`
	IsStreet              bool          `json:"is_street"`
	IsMailing             bool          `json:"is_mailing"`
	IsActive              *bool         `json:"is_active,omitempty"`
}

type phoneRequest struct {
	Number      string  `json:"phone_number" validate:"required,max=32"`
	CountryCode *string `json:"country_code,omitempty" validate:"omitempty,max=8"`
	Extension   *string `json:"extension,omitempty" validate:"omitempty,max=16"`
}

func (p *phoneRequest) toInput() *addresses.PhoneInput {
	if p == nil {
		return nil
	}
	return &addresses.PhoneInput{Number: p.Number, CountryCode: p.CountryCode, Extension: p.Extension}
}

func (r addressRequest) toInput() addresses.AddressInput {
	return addresses.AddressInput{
		AddressLine1:          r.AddressLine1,
		AddressLine2:          r.AddressLine2,
		AddressLine3:          r.AddressLine3,
		City:                  r.City,
		IsoCountrySubdivision: r.IsoCountrySubdivision,
		StateProvinceRegion:   r.StateProvinceRegion,
		PostalCode:            r.PostalCode,
		County:                r.County,
		ZipFour:               r.ZipFour,
		IsoCountryAlpha2:      r.IsoCountryAlpha2,
		CompanyName:           r.CompanyName,
		FirstName:             r.FirstName,
		LastName:              r.LastName,
		FullName:              r.FullName,
		EmailAddress:          r.EmailAddress,
		PhonePrimary:          r.PhonePrimary.toInput(),
		PhoneSecondary:        r.PhoneSecondary.toInput(),
		PhoneFax:              r.PhoneFax.toInput(),
		IsDefault:             r.IsDefault,
		IsBusiness:            r.IsBusiness,
		IsStreet:              r.IsStreet,
		IsMailing:             r.IsMailing,
		IsActive:              r.IsActive,
	}
}

func AdminAddressCreate(svc addresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}
		var req addressRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		address, err := svc.Create(r.Context(), req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, address)
	}
}

func AdminAddressGet(svc addresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}
		id, err := validators.ParsePathID(r, "addressID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		address, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, address)
	}
}

// AdminAddressUpdate replaces the address fields; standardization is reset.
func AdminAddressUpdate(svc addresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}
		id, err := validators.ParsePathID(r, "addressID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req addressRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		address, err := svc.Update(r.Context(), id, req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, address)
	}
}

func AdminAddressDelete(svc addresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}
		id, err := validators.ParsePathID(r, "addressID")
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

// AdminAddressStandardize canonicalizes a stored address through the configured standardizer.
func AdminAddressStandardize(svc addresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}
		id, err := validators.ParsePathID(r, "addressID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		address, err := svc.Standardize(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, address)
	}
}

// AddressSuggest returns autocomplete suggestions for address entry forms.
func AddressSuggest(svc addresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}
		query := r.URL.Query()
		resp, err := svc.Suggest(ctx, addresses.SuggestRequest{
			Query:    validators.SanitizeString(query.Get("query"), 256),
			Country:  strings.TrimSpace(query.Get("country")),
			Language: strings.TrimSpace(query.Get("language")),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"suggestions": resp})
	}
}
