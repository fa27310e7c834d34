package geo

import (
	"net/http"
	"strings"
)

// Location is the coarse location a request originated from.
type Location struct {
	City        string `json:"city,omitempty"`
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
	State       string `json:"state,omitempty"`
	StateCode   string `json:"stateCode,omitempty"`
	TimeZone    string `json:"timeZone,omitempty"`
}

// Resolver locates the origin of a request.
type Resolver interface {
	Resolve(r *http.Request) Location
}

// Header names set by the CDN in front of the service.
const (
	HeaderCountryCode = "X-Client-Geo-Country"
	HeaderRegionCode  = "X-Client-Geo-Region"
	HeaderCity        = "X-Client-Geo-City"
	HeaderTimeZone    = "X-Client-Geo-Timezone"
)

var _ Resolver = (*HeaderResolver)(nil)

// HeaderResolver reads the location the edge already computed and attached
// as request headers.
type HeaderResolver struct {
	// countries maps ISO 3166-1 alpha-2 codes to display names.
	countries map[string]string
}

// NewHeaderResolver creates a resolver. Country codes without a known display
// name are reported by code only.
func NewHeaderResolver(countryNames map[string]string) *HeaderResolver {
	countries := make(map[string]string, len(defaultCountryNames)+len(countryNames))
	for code, name := range defaultCountryNames {
		countries[code] = name
	}
	for code, name := range countryNames {
		countries[strings.ToUpper(code)] = name
	}
	return &HeaderResolver{countries: countries}
}

func (hr *HeaderResolver) Resolve(r *http.Request) Location {
	code := strings.ToUpper(strings.TrimSpace(r.Header.Get(HeaderCountryCode)))
	if code == "" || code == "XX" {
		return Location{}
	}
	loc := Location{
		CountryCode: code,
		Country:     hr.countries[code],
		StateCode:   strings.TrimSpace(r.Header.Get(HeaderRegionCode)),
		City:        strings.TrimSpace(r.Header.Get(HeaderCity)),
		TimeZone:    strings.TrimSpace(r.Header.Get(HeaderTimeZone)),
	}
	if loc.Country == "" {
		loc.Country = code
	}
	return loc
}

var defaultCountryNames = map[string]string{
	"AU": "Australia",
	"BR": "Brazil",
	"CA": "Canada",
	"DE": "Germany",
	"ES": "Spain",
	"FR": "France",
	"GB": "United Kingdom",
	"IN": "India",
	"IT": "Italy",
	"JP": "Japan",
	"MX": "Mexico",
	"NL": "Netherlands",
	"US": "United States",
}
