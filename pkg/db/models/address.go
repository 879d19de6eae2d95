package models

import (
	"strings"
	"time"

	"github.com/angelmondragon/storefront/pkg/clone"
	"github.com/angelmondragon/storefront/pkg/isocountry"
)

// Address is a postal and contact snapshot. Country and subdivision are kept
// as ISO codes; State and Country are legacy views over those codes.
type Address struct {
	ID                    int64       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	AddressLine1          string      `gorm:"column:address_line1;not null" json:"address_line1"`
	AddressLine2          string      `gorm:"column:address_line2" json:"address_line2,omitempty"`
	AddressLine3          string      `gorm:"column:address_line3" json:"address_line3,omitempty"`
	City                  string      `gorm:"column:city;not null" json:"city"`
	IsoCountrySubdivision string      `gorm:"column:iso_country_sub" json:"iso_country_subdivision,omitempty"`
	StateProvinceRegion   string      `gorm:"column:sub_state_prov_reg" json:"state_province_region,omitempty"`
	PostalCode            string      `gorm:"column:postal_code" json:"postal_code,omitempty"`
	County                string      `gorm:"column:county" json:"county,omitempty"`
	ZipFour               string      `gorm:"column:zip_four" json:"zip_four,omitempty"`
	IsoCountryAlpha2      *string     `gorm:"column:iso_country_alpha2;size:2" json:"iso_country_alpha2,omitempty"`
	IsoCountry            *ISOCountry `gorm:"foreignKey:IsoCountryAlpha2;references:Alpha2" json:"iso_country,omitempty"`
	TokenizedAddress      string      `gorm:"column:tokenized_address" json:"tokenized_address,omitempty"`
	Standardized          *bool       `gorm:"column:standardized" json:"standardized,omitempty"`
	VerificationLevel     string      `gorm:"column:verification_level" json:"verification_level,omitempty"`
	CompanyName           string      `gorm:"column:company_name" json:"company_name,omitempty"`
	FirstName             string      `gorm:"column:first_name" json:"first_name,omitempty"`
	LastName              string      `gorm:"column:last_name" json:"last_name,omitempty"`
	FullName              string      `gorm:"column:full_name" json:"full_name,omitempty"`
	EmailAddress          string      `gorm:"column:email_address" json:"email_address,omitempty"`

	PhonePrimaryID   *int64 `gorm:"column:phone_primary_id" json:"-"`
	PhonePrimary     *Phone `gorm:"foreignKey:PhonePrimaryID" json:"phone_primary,omitempty"`
	PhoneSecondaryID *int64 `gorm:"column:phone_secondary_id" json:"-"`
	PhoneSecondary   *Phone `gorm:"foreignKey:PhoneSecondaryID" json:"phone_secondary,omitempty"`
	PhoneFaxID       *int64 `gorm:"column:phone_fax_id" json:"-"`
	PhoneFax         *Phone `gorm:"foreignKey:PhoneFaxID" json:"phone_fax,omitempty"`

	IsDefault  bool      `gorm:"column:is_default;not null;default:false" json:"is_default"`
	IsBusiness bool      `gorm:"column:is_business;not null;default:false" json:"is_business"`
	IsStreet   bool      `gorm:"column:is_street;not null;default:false" json:"is_street"`
	IsMailing  bool      `gorm:"column:is_mailing;not null;default:false" json:"is_mailing"`
	IsActive   bool      `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Address) TableName() string { return "addresses" }

// NewAddress returns an unpersisted, active address.
func NewAddress() *Address {
	return &Address{IsActive: true}
}

// State is the legacy subdivision view: Abbreviation is the ISO 3166-2 code
// and Name the friendly region name.
type State struct {
	Abbreviation string `json:"abbreviation"`
	Name         string `json:"name"`
}

// Country is the legacy country view over the ISO alpha-2 code.
type Country struct {
	Abbreviation string `json:"abbreviation"`
	Name         string `json:"name"`
}

// Deprecated: use IsoCountrySubdivision and StateProvinceRegion.
func (a *Address) State() *State {
	if a.IsoCountrySubdivision == "" && a.StateProvinceRegion == "" {
		return nil
	}
	return &State{Abbreviation: a.IsoCountrySubdivision, Name: a.StateProvinceRegion}
}

// Deprecated: use IsoCountrySubdivision and StateProvinceRegion.
func (a *Address) SetState(s *State) {
	if s == nil {
		a.IsoCountrySubdivision = ""
		a.StateProvinceRegion = ""
		return
	}
	a.IsoCountrySubdivision = s.Abbreviation
	a.StateProvinceRegion = s.Name
}

// Deprecated: use IsoCountryAlpha2.
func (a *Address) Country() *Country {
	if a.IsoCountryAlpha2 == nil || *a.IsoCountryAlpha2 == "" {
		return nil
	}
	name := ""
	if a.IsoCountry != nil {
		name = a.IsoCountry.Name
	}
	if name == "" {
		name = isocountry.Name(*a.IsoCountryAlpha2)
	}
	return &Country{Abbreviation: *a.IsoCountryAlpha2, Name: name}
}

// Deprecated: use IsoCountryAlpha2.
func (a *Address) SetCountry(c *Country) {
	a.IsoCountry = nil
	if c == nil || strings.TrimSpace(c.Abbreviation) == "" {
		a.IsoCountryAlpha2 = nil
		return
	}
	code := strings.ToUpper(strings.TrimSpace(c.Abbreviation))
	a.IsoCountryAlpha2 = &code
}

// Deprecated: use PhonePrimary.
func (a *Address) PrimaryPhone() string { return phoneNumber(a.PhonePrimary) }

// Deprecated: use PhonePrimary.
func (a *Address) SetPrimaryPhone(number string) {
	a.PhonePrimary, a.PhonePrimaryID = withPhoneNumber(a.PhonePrimary, a.PhonePrimaryID, number)
}

// Deprecated: use PhoneSecondary.
func (a *Address) SecondaryPhone() string { return phoneNumber(a.PhoneSecondary) }

// Deprecated: use PhoneSecondary.
func (a *Address) SetSecondaryPhone(number string) {
	a.PhoneSecondary, a.PhoneSecondaryID = withPhoneNumber(a.PhoneSecondary, a.PhoneSecondaryID, number)
}

// Deprecated: use PhoneFax.
func (a *Address) Fax() string { return phoneNumber(a.PhoneFax) }

// Deprecated: use PhoneFax.
func (a *Address) SetFax(number string) {
	a.PhoneFax, a.PhoneFaxID = withPhoneNumber(a.PhoneFax, a.PhoneFaxID, number)
}

func phoneNumber(p *Phone) string {
	if p == nil {
		return ""
	}
	return p.PhoneNumber
}

func withPhoneNumber(p *Phone, id *int64, number string) (*Phone, *int64) {
	if number == "" {
		return nil, nil
	}
	if p == nil {
		return &Phone{PhoneNumber: number, IsActive: true}, nil
	}
	p.PhoneNumber = number
	return p, id
}

func (a *Address) Clone(cc *clone.Context) *Address {
	dst, existing := clone.CreateOrRetrieve(cc, a)
	if existing {
		return dst
	}
	*dst = *a
	dst.ID = 0
	dst.CreatedAt = time.Time{}
	dst.UpdatedAt = time.Time{}
	dst.IsoCountryAlpha2 = clone.Ptr(a.IsoCountryAlpha2)
	dst.Standardized = clone.Ptr(a.Standardized)
	dst.PhonePrimaryID, dst.PhoneSecondaryID, dst.PhoneFaxID = nil, nil, nil
	if a.PhonePrimary != nil {
		dst.PhonePrimary = a.PhonePrimary.Clone(cc)
	}
	if a.PhoneSecondary != nil {
		dst.PhoneSecondary = a.PhoneSecondary.Clone(cc)
	}
	if a.PhoneFax != nil {
		dst.PhoneFax = a.PhoneFax.Clone(cc)
	}
	return dst
}
