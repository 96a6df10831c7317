package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64 `json:"lat"`
	Lon              float64 `json:"lon"`
	FormattedAddress string  `json:"formatted_address"`
	PlaceName        string  `json:"place_name"`
	Confidence       float64 `json:"confidence"` // 0.0–1.0 provider confidence score
}

// Found reports whether the provider returned a match.
func (r GeocodingResult) Found() bool { return r.FormattedAddress != "" }

// Geocoder resolves a district label to coordinates for map display.
type Geocoder interface {
	// GeocodeDistrict looks up an administrative district within a country
	// (ISO 3166 alpha-2 code).
	GeocodeDistrict(ctx context.Context, district, country string) (GeocodingResult, error)
}
