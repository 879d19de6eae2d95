package addresses

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/angelmondragon/storefront/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/isocountry"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/maps"
)

type addressesRepository interface {
	Create() *models.Address
	FindByID(ctx context.Context, id int64) (*models.Address, error)
	Save(ctx context.Context, address *models.Address) (*models.Address, error)
	Delete(ctx context.Context, id int64) error
}

type suggester interface {
	Autocomplete(ctx context.Context, req maps.AutocompleteRequest) ([]maps.AutocompleteSuggestion, error)
}

// Service exposes address administration and standardization.
type Service interface {
	Create(ctx context.Context, input AddressInput) (*models.Address, error)
	Get(ctx context.Context, id int64) (*models.Address, error)
	Update(ctx context.Context, id int64, input AddressInput) (*models.Address, error)
	Delete(ctx context.Context, id int64) error
	Standardize(ctx context.Context, id int64) (*models.Address, error)
	Suggest(ctx context.Context, req SuggestRequest) ([]Suggestion, error)
}

// AddressInput is the writable description of an address.
type AddressInput struct {
	AddressLine1          string
	AddressLine2          string
	AddressLine3          string
	City                  string
	IsoCountrySubdivision string
	StateProvinceRegion   string
	PostalCode            string
	County                string
	ZipFour               string
	IsoCountryAlpha2      string
	CompanyName           string
	FirstName             string
	LastName              string
	FullName              string
	EmailAddress          string
	PhonePrimary          *PhoneInput
	PhoneSecondary        *PhoneInput
	PhoneFax              *PhoneInput
	IsDefault             bool
	IsBusiness            bool
	IsStreet              bool
	IsMailing             bool
	IsActive              *bool
}

// PhoneInput describes one phone slot. A nil input clears the slot.
type PhoneInput struct {
	Number      string
	CountryCode *string
	Extension   *string
}

type SuggestRequest struct {
	Query    string
	Country  string
	Language string
}

type Suggestion struct {
	PlaceID     string `json:"place_id"`
	Description string `json:"description"`
}

type service struct {
	repo         addressesRepository
	standardizer Standardizer
	suggester    suggester
	validate     *validator.Validate
	logg         *logger.Logger
}

// NewService builds the address service. A nil standardizer falls back to
// local normalization; suggestions need a maps client.
func NewService(repo addressesRepository, standardizer Standardizer, suggest suggester, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	if standardizer == nil {
		standardizer = LocalStandardizer{}
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:         repo,
		standardizer: standardizer,
		suggester:    suggest,
		validate:     validator.New(),
		logg:         logg,
	}, nil
}

func (s *service) Create(ctx context.Context, input AddressInput) (*models.Address, error) {
	address := s.repo.Create()
	if err := s.apply(address, input); err != nil {
		return nil, err
	}
	saved, err := s.repo.Save(ctx, address)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address")
	}
	return saved, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.Address, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address id must be positive")
	}
	address, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
	}
	if address == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	return address, nil
}

func (s *service) Update(ctx context.Context, id int64, input AddressInput) (*models.Address, error) {
	address, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(address, input); err != nil {
		return nil, err
	}
	saved, err := s.repo.Save(ctx, address)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update address")
	}
	return saved, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "address id must be positive")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete address")
	}
	return nil
}

// Standardize replaces the postal fields with their canonical form and marks
// the address as standardized.
func (s *service) Standardize(ctx context.Context, id int64) (*models.Address, error) {
	address, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	result, err := s.standardizer.Standardize(ctx, address)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "standardize address")
	}
	if result.CountryAlpha2 != "" && !isocountry.Valid(result.CountryAlpha2) {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "standardized country %q is not a known ISO country", result.CountryAlpha2)
	}

	address.AddressLine1 = result.Line1
	address.AddressLine2 = result.Line2
	address.City = result.City
	address.IsoCountrySubdivision = result.Subdivision
	if result.Region != "" {
		address.StateProvinceRegion = result.Region
	}
	address.PostalCode = result.PostalCode
	address.ZipFour = result.ZipFour
	address.County = result.County
	if result.CountryAlpha2 != "" {
		country := result.CountryAlpha2
		address.IsoCountryAlpha2 = &country
		address.IsoCountry = nil
	}
	standardized := true
	address.Standardized = &standardized
	address.VerificationLevel = result.VerificationLevel
	address.TokenizedAddress = tokenize(address)

	saved, err := s.repo.Save(ctx, address)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save standardized address")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"address_id": saved.ID, "verification_level": saved.VerificationLevel}), "address standardized")
	return saved, nil
}

func (s *service) Suggest(ctx context.Context, req SuggestRequest) ([]Suggestion, error) {
	if s.suggester == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "maps client unavailable")
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query is required")
	}

	payload := maps.AutocompleteRequest{Input: req.Query}
	if country := strings.TrimSpace(req.Country); country != "" {
		payload.IncludedRegionCodes = []string{strings.ToUpper(country)}
	}
	if lang := strings.TrimSpace(req.Language); lang != "" {
		payload.LanguageCode = lang
	}

	resp, err := s.suggester.Autocomplete(ctx, payload)
	if err != nil {
		return nil, err
	}
	suggestions := make([]Suggestion, 0, len(resp))
	for _, item := range resp {
		suggestions = append(suggestions, Suggestion{PlaceID: item.PlaceID, Description: item.Description})
	}
	return suggestions, nil
}

func (s *service) apply(address *models.Address, input AddressInput) error {
	line1 := strings.TrimSpace(input.AddressLine1)
	city := strings.TrimSpace(input.City)
	postal := strings.TrimSpace(input.PostalCode)
	country := strings.ToUpper(strings.TrimSpace(input.IsoCountryAlpha2))
	email := strings.TrimSpace(input.EmailAddress)

	switch {
	case line1 == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "address_line1 is required")
	case city == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "city is required")
	case postal == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "postal_code is required")
	case country != "" && !isocountry.Valid(country):
		return pkgerrors.Newf(pkgerrors.CodeValidation, "iso_country_alpha2 %q is not a known ISO country", input.IsoCountryAlpha2)
	}
	if email != "" {
		if err := s.validate.Var(email, "email"); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "email_address is invalid")
		}
	}
	for name, phone := range map[string]*PhoneInput{"phone_primary": input.PhonePrimary, "phone_secondary": input.PhoneSecondary, "phone_fax": input.PhoneFax} {
		if phone != nil && strings.TrimSpace(phone.Number) == "" {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "%s.number is required", name)
		}
	}

	address.AddressLine1 = line1
	address.AddressLine2 = strings.TrimSpace(input.AddressLine2)
	address.AddressLine3 = strings.TrimSpace(input.AddressLine3)
	address.City = city
	address.IsoCountrySubdivision = strings.ToUpper(strings.TrimSpace(input.IsoCountrySubdivision))
	address.StateProvinceRegion = strings.TrimSpace(input.StateProvinceRegion)
	address.PostalCode = postal
	address.County = strings.TrimSpace(input.County)
	address.ZipFour = strings.TrimSpace(input.ZipFour)
	address.IsoCountry = nil
	address.IsoCountryAlpha2 = nil
	if country != "" {
		address.IsoCountryAlpha2 = &country
	}
	address.CompanyName = strings.TrimSpace(input.CompanyName)
	address.FirstName = strings.TrimSpace(input.FirstName)
	address.LastName = strings.TrimSpace(input.LastName)
	address.FullName = strings.TrimSpace(input.FullName)
	if address.FullName == "" {
		address.FullName = strings.TrimSpace(address.FirstName + " " + address.LastName)
	}
	address.EmailAddress = email
	address.PhonePrimary = applyPhone(address.PhonePrimary, input.PhonePrimary)
	address.PhoneSecondary = applyPhone(address.PhoneSecondary, input.PhoneSecondary)
	address.PhoneFax = applyPhone(address.PhoneFax, input.PhoneFax)
	address.IsDefault = input.IsDefault
	address.IsBusiness = input.IsBusiness
	address.IsStreet = input.IsStreet
	address.IsMailing = input.IsMailing
	if input.IsActive != nil {
		address.IsActive = *input.IsActive
	}
	// edits invalidate any earlier standardization
	address.Standardized = nil
	address.VerificationLevel = ""
	address.TokenizedAddress = tokenize(address)
	return nil
}

func applyPhone(current *models.Phone, input *PhoneInput) *models.Phone {
	if input == nil {
		return nil
	}
	if current == nil {
		current = &models.Phone{IsActive: true}
	}
	current.PhoneNumber = strings.TrimSpace(input.Number)
	current.CountryCode = input.CountryCode
	current.Extension = input.Extension
	return current
}
