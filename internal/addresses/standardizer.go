package addresses

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/maps"
)

const (
	VerificationPlaceMatch = "PLACE_MATCH"
	VerificationNormalized = "NORMALIZED"
)

// Standardized is the canonical form of an address returned by a Standardizer.
type Standardized struct {
	Line1             string
	Line2             string
	City              string
	Subdivision       string
	Region            string
	PostalCode        string
	ZipFour           string
	County            string
	CountryAlpha2     string
	VerificationLevel string
}

// Standardizer canonicalizes postal addresses.
type Standardizer interface {
	Standardize(ctx context.Context, address *models.Address) (*Standardized, error)
}

type placesClient interface {
	Autocomplete(ctx context.Context, req maps.AutocompleteRequest) ([]maps.AutocompleteSuggestion, error)
	ResolvePlace(ctx context.Context, placeID string) (*maps.PlaceDetails, error)
}

// PlacesStandardizer matches addresses against the Places API and takes the
// best suggestion's components as canonical.
type PlacesStandardizer struct {
	client   placesClient
	language string
}

func NewPlacesStandardizer(client placesClient, language string) *PlacesStandardizer {
	return &PlacesStandardizer{client: client, language: strings.TrimSpace(language)}
}

func (p *PlacesStandardizer) Standardize(ctx context.Context, address *models.Address) (*Standardized, error) {
	if p == nil || p.client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "maps client unavailable")
	}
	req := maps.AutocompleteRequest{Input: queryFor(address), LanguageCode: p.language}
	if address.IsoCountryAlpha2 != nil && *address.IsoCountryAlpha2 != "" {
		req.IncludedRegionCodes = []string{strings.ToUpper(*address.IsoCountryAlpha2)}
	}

	suggestions, err := p.client.Autocomplete(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(suggestions) == 0 || strings.TrimSpace(suggestions[0].PlaceID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address could not be matched")
	}

	details, err := p.client.ResolvePlace(ctx, suggestions[0].PlaceID)
	if err != nil {
		return nil, err
	}
	return fromPlaceDetails(details)
}

func queryFor(a *models.Address) string {
	parts := []string{a.AddressLine1, a.AddressLine2, a.City, a.StateProvinceRegion, a.PostalCode}
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

func fromPlaceDetails(details *maps.PlaceDetails) (*Standardized, error) {
	if details == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "place details missing")
	}

	find := details.Component

	line1 := ""
	if number, ok := find("street_number", false); ok {
		line1 = number
	}
	if route, ok := find("route", false); ok {
		if line1 != "" {
			line1 = fmt.Sprintf("%s %s", line1, route)
		} else {
			line1 = route
		}
	}
	if line1 == "" && strings.TrimSpace(details.FormattedAddress) != "" {
		line1 = strings.TrimSpace(strings.Split(details.FormattedAddress, ",")[0])
	}
	if line1 == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "address line1 missing")
	}

	city, ok := find("locality", false)
	if !ok {
		if town, ok := find("postal_town", false); ok {
			city = town
		} else if county, ok := find("administrative_area_level_2", false); ok {
			city = county
		}
	}
	if city == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "city missing")
	}

	country, ok := find("country", true)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "country missing")
	}
	country = strings.ToUpper(country)

	out := &Standardized{
		Line1:             line1,
		City:              city,
		CountryAlpha2:     country,
		VerificationLevel: VerificationPlaceMatch,
	}
	out.Line2, _ = find("subpremise", false)
	out.PostalCode, _ = find("postal_code", false)
	out.ZipFour, _ = find("postal_code_suffix", false)
	out.County, _ = find("administrative_area_level_2", false)
	if region, ok := find("administrative_area_level_1", false); ok {
		out.Region = region
	}
	if code, ok := find("administrative_area_level_1", true); ok {
		out.Subdivision = subdivisionCode(country, code)
	}
	return out, nil
}

// subdivisionCode builds an ISO 3166-2 code such as US-OK.
func subdivisionCode(country, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if country == "" || strings.Contains(code, "-") {
		return code
	}
	return country + "-" + code
}

// LocalStandardizer normalizes spacing and casing without any lookup. It is
// used when no maps API key is configured.
type LocalStandardizer struct{}

func (LocalStandardizer) Standardize(_ context.Context, address *models.Address) (*Standardized, error) {
	country := ""
	if address.IsoCountryAlpha2 != nil {
		country = strings.ToUpper(strings.TrimSpace(*address.IsoCountryAlpha2))
	}
	return &Standardized{
		Line1:             collapse(address.AddressLine1),
		Line2:             collapse(address.AddressLine2),
		City:              collapse(address.City),
		Subdivision:       subdivisionCode(country, strings.TrimPrefix(strings.ToUpper(address.IsoCountrySubdivision), country+"-")),
		Region:            collapse(address.StateProvinceRegion),
		PostalCode:        strings.ToUpper(collapse(address.PostalCode)),
		ZipFour:           collapse(address.ZipFour),
		County:            collapse(address.County),
		CountryAlpha2:     country,
		VerificationLevel: VerificationNormalized,
	}, nil
}

func collapse(v string) string {
	return strings.Join(strings.Fields(v), " ")
}

// tokenize renders the canonical address as a lower-case search key.
func tokenize(a *models.Address) string {
	country := ""
	if a.IsoCountryAlpha2 != nil {
		country = *a.IsoCountryAlpha2
	}
	parts := []string{a.AddressLine1, a.AddressLine2, a.City, a.IsoCountrySubdivision, a.PostalCode, country}
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToLower(collapse(p)); p != "" {
			tokens = append(tokens, p)
		}
	}
	return strings.Join(tokens, "|")
}
