package addresses

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront/internal/repo/repotest"
	"github.com/angelmondragon/storefront/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/maps"
)

func newTestService(t *testing.T, standardizer Standardizer, suggest suggester) Service {
	t.Helper()
	svc, err := NewService(NewRepository(repotest.NewDB(t), nil), standardizer, suggest, nil)
	require.NoError(t, err)
	return svc
}

func validAddress() AddressInput {
	return AddressInput{
		AddressLine1:     "123 demo st",
		City:             "example city",
		PostalCode:       "73106",
		IsoCountryAlpha2: "us",
		FirstName:        "Ada",
		LastName:         "Lovelace",
		EmailAddress:     "ada@example.com",
		PhonePrimary:     &PhoneInput{Number: "555-0100"},
	}
}

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(nil, nil, nil, nil)
	require.Error(t, err)
}

func TestServiceCreateValidation(t *testing.T) {
	svc := newTestService(t, nil, nil)
	cases := map[string]func(*AddressInput){
		"missing line1":   func(in *AddressInput) { in.AddressLine1 = "" },
		"missing city":    func(in *AddressInput) { in.City = " " },
		"missing postal":  func(in *AddressInput) { in.PostalCode = "" },
		"unknown country": func(in *AddressInput) { in.IsoCountryAlpha2 = "ZZ" },
		"bad email":       func(in *AddressInput) { in.EmailAddress = "ada-at-example" },
		"empty phone":     func(in *AddressInput) { in.PhoneFax = &PhoneInput{} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			input := validAddress()
			mutate(&input)
			_, err := svc.Create(context.Background(), input)
			require.Error(t, err)
			assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}
}

func TestServiceCreateAndUpdate(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, validAddress())
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", created.FullName)
	require.NotNil(t, created.IsoCountryAlpha2)
	assert.Equal(t, "US", *created.IsoCountryAlpha2)
	assert.Equal(t, "555-0100", created.PrimaryPhone()) //nolint:staticcheck

	input := validAddress()
	input.PhonePrimary = nil
	input.City = "Norman"
	inactive := false
	input.IsActive = &inactive
	updated, err := svc.Update(ctx, created.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "Norman", updated.City)
	assert.Nil(t, updated.PhonePrimary)
	assert.False(t, updated.IsActive)
}

func TestServiceGetAndDeleteMissing(t *testing.T) {
	svc := newTestService(t, nil, nil)
	_, err := svc.Get(context.Background(), 9)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
	assert.NoError(t, svc.Delete(context.Background(), 9))
}

func TestServiceStandardizeWithLocalFallback(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()
	input := validAddress()
	input.AddressLine1 = "  123   demo st "
	input.IsoCountrySubdivision = "ok"
	created, err := svc.Create(ctx, input)
	require.NoError(t, err)
	assert.Nil(t, created.Standardized)

	standardized, err := svc.Standardize(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, standardized.Standardized)
	assert.True(t, *standardized.Standardized)
	assert.Equal(t, VerificationNormalized, standardized.VerificationLevel)
	assert.Equal(t, "123 demo st", standardized.AddressLine1)
	assert.Equal(t, "US-OK", standardized.IsoCountrySubdivision)
	assert.Equal(t, "123 demo st|example city|us-ok|73106|us", standardized.TokenizedAddress)
}

func TestServiceStandardizeWithPlaces(t *testing.T) {
	places := &fakePlaces{suggestions: []maps.AutocompleteSuggestion{{PlaceID: "place_123"}}}
	svc := newTestService(t, NewPlacesStandardizer(places, "en"), places)
	ctx := context.Background()
	created, err := svc.Create(ctx, validAddress())
	require.NoError(t, err)

	standardized, err := svc.Standardize(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "123 Demo St", standardized.AddressLine1)
	assert.Equal(t, "Suite 5", standardized.AddressLine2)
	assert.Equal(t, "US-OK", standardized.IsoCountrySubdivision)
	assert.Equal(t, "Oklahoma", standardized.StateProvinceRegion)
	assert.Equal(t, VerificationPlaceMatch, standardized.VerificationLevel)
}

type brokenStandardizer struct{}

func (brokenStandardizer) Standardize(context.Context, *models.Address) (*Standardized, error) {
	return &Standardized{Line1: "x", City: "y", CountryAlpha2: "QQ"}, nil
}

func TestServiceStandardizeRejectsUnknownCountry(t *testing.T) {
	svc := newTestService(t, brokenStandardizer{}, nil)
	ctx := context.Background()
	created, err := svc.Create(ctx, validAddress())
	require.NoError(t, err)

	_, err = svc.Standardize(ctx, created.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestServiceSuggest(t *testing.T) {
	places := &fakePlaces{suggestions: []maps.AutocompleteSuggestion{{PlaceID: "p1", Description: "123 Demo St"}}}
	svc := newTestService(t, nil, places)

	out, err := svc.Suggest(context.Background(), SuggestRequest{Query: "123 demo", Country: "us", Language: "en"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "p1", out[0].PlaceID)
	assert.Equal(t, []string{"US"}, places.request.IncludedRegionCodes)

	_, err = svc.Suggest(context.Background(), SuggestRequest{})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = newTestService(t, nil, nil).Suggest(context.Background(), SuggestRequest{Query: "x"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
}
