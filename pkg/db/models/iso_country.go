package models

import "github.com/angelmondragon/storefront/pkg/isocountry"

// ISOCountry is the ISO 3166-1 reference row addresses point at.
type ISOCountry struct {
	Alpha2      string `gorm:"column:alpha2;primaryKey;size:2" json:"alpha2"`
	Alpha3      string `gorm:"column:alpha3;size:3" json:"alpha3"`
	NumericCode int    `gorm:"column:numeric_code" json:"numeric_code"`
	Name        string `gorm:"column:name;not null" json:"name"`
	Status      string `gorm:"column:status;not null" json:"status"`
}

func (ISOCountry) TableName() string { return "iso_countries" }

// ISOCountryFromReference converts a reference entry into its row.
func ISOCountryFromReference(c isocountry.Country) ISOCountry {
	return ISOCountry{
		Alpha2:      c.Alpha2,
		Alpha3:      c.Alpha3,
		NumericCode: c.NumericCode,
		Name:        c.Name,
		Status:      string(c.Status),
	}
}
