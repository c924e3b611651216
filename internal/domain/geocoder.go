package domain

import "context"

// GeocodingResult is the first candidate returned by a geocoding provider.
// Found is false when the provider answered with an empty result set.
type GeocodingResult struct {
	Lat         float64
	Lon         float64
	DisplayName string
	Found       bool
}

// Geocoder looks up a free-text query with an external geocoding service.
type Geocoder interface {
	Search(ctx context.Context, query string) (GeocodingResult, error)
}
