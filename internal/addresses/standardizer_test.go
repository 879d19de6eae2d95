package addresses

import (
	"context"
	"testing"

	"github.com/angelmondragon/storefront/pkg/db/models"
	"github.com/angelmondragon/storefront/pkg/maps"
)

func placeDetails() *maps.PlaceDetails {
	return &maps.PlaceDetails{
		PlaceID:          "place_123",
		FormattedAddress: "123 Demo St, Example City, OK 73106, USA",
		AddressComponents: []maps.AddressComponent{
			{LongName: "123", Types: []string{"street_number"}},
			{LongName: "Demo St", Types: []string{"route"}},
			{LongName: "Suite 5", Types: []string{"subpremise"}},
			{LongName: "Example City", Types: []string{"locality", "political"}},
			{LongName: "Oklahoma County", Types: []string{"administrative_area_level_2"}},
			{LongName: "Oklahoma", ShortName: "OK", Types: []string{"administrative_area_level_1"}},
			{LongName: "73106", Types: []string{"postal_code"}},
			{LongName: "1234", Types: []string{"postal_code_suffix"}},
			{LongName: "United States", ShortName: "US", Types: []string{"country"}},
		},
	}
}

func TestFromPlaceDetails(t *testing.T) {
	result, err := fromPlaceDetails(placeDetails())
	if err != nil {
		t.Fatalf("fromPlaceDetails failed: %v", err)
	}
	if result.Line1 != "123 Demo St" {
		t.Fatalf("unexpected line1 %q", result.Line1)
	}
	if result.Line2 != "Suite 5" {
		t.Fatalf("unexpected line2 %q", result.Line2)
	}
	if result.City != "Example City" {
		t.Fatalf("unexpected city %q", result.City)
	}
	if result.Subdivision != "US-OK" || result.Region != "Oklahoma" {
		t.Fatalf("unexpected subdivision %q region %q", result.Subdivision, result.Region)
	}
	if result.PostalCode != "73106" || result.ZipFour != "1234" {
		t.Fatalf("unexpected postal %q/%q", result.PostalCode, result.ZipFour)
	}
	if result.County != "Oklahoma County" {
		t.Fatalf("unexpected county %q", result.County)
	}
	if result.CountryAlpha2 != "US" {
		t.Fatalf("unexpected country %q", result.CountryAlpha2)
	}
	if result.VerificationLevel != VerificationPlaceMatch {
		t.Fatalf("unexpected verification level %q", result.VerificationLevel)
	}
}

func TestFromPlaceDetailsMissingCity(t *testing.T) {
	details := &maps.PlaceDetails{
		AddressComponents: []maps.AddressComponent{
			{LongName: "123", Types: []string{"street_number"}},
			{LongName: "Demo St", Types: []string{"route"}},
			{LongName: "United States", ShortName: "US", Types: []string{"country"}},
		},
	}
	if _, err := fromPlaceDetails(details); err == nil {
		t.Fatal("expected error when city missing")
	}
}

type fakePlaces struct {
	request     maps.AutocompleteRequest
	suggestions []maps.AutocompleteSuggestion
	resolved    string
}

func (f *fakePlaces) Autocomplete(_ context.Context, req maps.AutocompleteRequest) ([]maps.AutocompleteSuggestion, error) {
	f.request = req
	return f.suggestions, nil
}

func (f *fakePlaces) ResolvePlace(_ context.Context, placeID string) (*maps.PlaceDetails, error) {
	f.resolved = placeID
	return placeDetails(), nil
}

func TestPlacesStandardizerUsesFirstSuggestion(t *testing.T) {
	client := &fakePlaces{suggestions: []maps.AutocompleteSuggestion{{PlaceID: "place_123"}, {PlaceID: "place_456"}}}
	country := "us"
	address := &models.Address{AddressLine1: "123 demo st", City: "example city", PostalCode: "73106", IsoCountryAlpha2: &country}

	result, err := NewPlacesStandardizer(client, "en").Standardize(context.Background(), address)
	if err != nil {
		t.Fatalf("standardize: %v", err)
	}
	if client.request.Input != "123 demo st, example city, 73106" {
		t.Fatalf("unexpected query %q", client.request.Input)
	}
	if len(client.request.IncludedRegionCodes) != 1 || client.request.IncludedRegionCodes[0] != "US" {
		t.Fatalf("unexpected regions %v", client.request.IncludedRegionCodes)
	}
	if client.resolved != "place_123" {
		t.Fatalf("resolved %q", client.resolved)
	}
	if result.Line1 != "123 Demo St" {
		t.Fatalf("unexpected line1 %q", result.Line1)
	}
}

func TestPlacesStandardizerNoMatch(t *testing.T) {
	_, err := NewPlacesStandardizer(&fakePlaces{}, "").Standardize(context.Background(), &models.Address{AddressLine1: "nowhere"})
	if err == nil {
		t.Fatal("expected no-match error")
	}
}

func TestLocalStandardizer(t *testing.T) {
	country := " mx "
	address := &models.Address{
		AddressLine1:          "  Av.   Reforma  222 ",
		City:                  " Ciudad de  México",
		IsoCountrySubdivision: "cmx",
		PostalCode:            " 06600 ",
		IsoCountryAlpha2:      &country,
	}
	result, err := LocalStandardizer{}.Standardize(context.Background(), address)
	if err != nil {
		t.Fatalf("standardize: %v", err)
	}
	if result.Line1 != "Av. Reforma 222" || result.City != "Ciudad de México" {
		t.Fatalf("unexpected normalization %+v", result)
	}
	if result.Subdivision != "MX-CMX" || result.CountryAlpha2 != "MX" || result.PostalCode != "06600" {
		t.Fatalf("unexpected codes %+v", result)
	}
	if result.VerificationLevel != VerificationNormalized {
		t.Fatalf("unexpected verification level %q", result.VerificationLevel)
	}
}
