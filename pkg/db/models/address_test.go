package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront/pkg/clone"
)

func TestAddressStateAliasDelegates(t *testing.T) {
	a := NewAddress()
	assert.Nil(t, a.State())

	a.SetState(&State{Abbreviation: "US-TX", Name: "Texas"})
	assert.Equal(t, "US-TX", a.IsoCountrySubdivision)
	assert.Equal(t, "Texas", a.StateProvinceRegion)
	assert.Equal(t, &State{Abbreviation: "US-TX", Name: "Texas"}, a.State())

	a.SetState(nil)
	assert.Empty(t, a.IsoCountrySubdivision)
	assert.Nil(t, a.State())
}

func TestAddressCountryAliasDelegates(t *testing.T) {
	a := NewAddress()
	assert.Nil(t, a.Country())

	a.SetCountry(&Country{Abbreviation: "de"})
	require.NotNil(t, a.IsoCountryAlpha2)
	assert.Equal(t, "DE", *a.IsoCountryAlpha2)
	assert.Equal(t, &Country{Abbreviation: "DE", Name: "Germany"}, a.Country())

	a.IsoCountry = &ISOCountry{Alpha2: "DE", Name: "Deutschland"}
	assert.Equal(t, "Deutschland", a.Country().Name)

	a.SetCountry(nil)
	assert.Nil(t, a.IsoCountryAlpha2)
	assert.Nil(t, a.IsoCountry)
}

func TestAddressPhoneAliasesDelegate(t *testing.T) {
	a := NewAddress()
	assert.Empty(t, a.PrimaryPhone())

	a.SetPrimaryPhone("555-0100")
	require.NotNil(t, a.PhonePrimary)
	assert.Equal(t, "555-0100", a.PhonePrimary.PhoneNumber)
	assert.True(t, a.PhonePrimary.IsActive)

	id := int64(8)
	a.PhonePrimaryID = &id
	a.PhonePrimary.ID = id
	a.SetPrimaryPhone("555-0199")
	assert.Equal(t, "555-0199", a.PrimaryPhone())
	assert.Equal(t, &id, a.PhonePrimaryID, "updating the number keeps the phone identity")

	a.SetSecondaryPhone("555-0200")
	a.SetFax("555-0300")
	assert.Equal(t, "555-0200", a.SecondaryPhone())
	assert.Equal(t, "555-0300", a.Fax())

	a.SetFax("")
	assert.Nil(t, a.PhoneFax)
	assert.Nil(t, a.PhoneFaxID)
}

func TestAddressCloneSharesNothingMutable(t *testing.T) {
	code := "US"
	standardized := true
	src := NewAddress()
	src.ID = 3
	src.AddressLine1 = "1 Main St"
	src.IsoCountryAlpha2 = &code
	src.Standardized = &standardized
	src.SetPrimaryPhone("555-0100")
	src.PhoneSecondary = src.PhonePrimary

	cc := clone.NewContext("")
	dst := src.Clone(cc)

	assert.Zero(t, dst.ID)
	assert.Equal(t, "1 Main St", dst.AddressLine1)
	require.NotNil(t, dst.PhonePrimary)
	assert.NotSame(t, src.PhonePrimary, dst.PhonePrimary)
	assert.Same(t, dst.PhonePrimary, dst.PhoneSecondary, "shared phone stays shared in the copy")

	*dst.IsoCountryAlpha2 = "MX"
	*dst.Standardized = false
	assert.Equal(t, "US", *src.IsoCountryAlpha2)
	assert.True(t, *src.Standardized)
}
