// Package isocountry exposes ISO 3166-1 country reference data backed by the
// CLDR tables in golang.org/x/text.
package isocountry

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Status mirrors the assignment status of an ISO 3166-1 code.
type Status string

const (
	StatusOfficiallyAssigned Status = "OFFICIALLY_ASSIGNED"
)

// Country is one ISO 3166-1 entry.
type Country struct {
	Alpha2      string
	Alpha3      string
	NumericCode int
	Name        string
	Status      Status
}

var (
	loadOnce  sync.Once
	byAlpha2  map[string]Country
	countries []Country
	namer     = display.English.Regions()
)

// Lookup resolves an alpha-2 code (any case) to its country entry.
func Lookup(alpha2 string) (Country, bool) {
	code := strings.ToUpper(strings.TrimSpace(alpha2))
	if len(code) != 2 {
		return Country{}, false
	}
	load()
	c, ok := byAlpha2[code]
	return c, ok
}

// Valid reports whether alpha2 is an assigned ISO 3166-1 country code.
func Valid(alpha2 string) bool {
	_, ok := Lookup(alpha2)
	return ok
}

// Name returns the English display name for alpha2, or "" when unknown.
func Name(alpha2 string) string {
	c, ok := Lookup(alpha2)
	if !ok {
		return ""
	}
	return c.Name
}

// All returns every known country sorted by alpha-2 code.
func All() []Country {
	load()
	out := make([]Country, len(countries))
	copy(out, countries)
	return out
}

func load() {
	loadOnce.Do(func() {
		byAlpha2 = map[string]Country{}
		for a := 'A'; a <= 'Z'; a++ {
			for b := 'A'; b <= 'Z'; b++ {
				code := string([]rune{a, b})
				if c, ok := fromRegion(code); ok {
					byAlpha2[code] = c
					countries = append(countries, c)
				}
			}
		}
		sort.Slice(countries, func(i, j int) bool { return countries[i].Alpha2 < countries[j].Alpha2 })
	})
}

func fromRegion(code string) (Country, bool) {
	region, err := language.ParseRegion(code)
	if err != nil {
		return Country{}, false
	}
	if !region.IsCountry() || region.IsPrivateUse() || region.Canonicalize().String() != code {
		return Country{}, false
	}
	name := namer.Name(region)
	if name == "" {
		return Country{}, false
	}
	return Country{
		Alpha2:      code,
		Alpha3:      region.ISO3(),
		NumericCode: region.M49(),
		Name:        name,
		Status:      StatusOfficiallyAssigned,
	}, true
}
