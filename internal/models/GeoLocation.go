package models

import "fmt"

// GeoLocation is a geocoded place with coordinates and metadata.
// It is built from the top-ranked geocoding result and never mutated afterwards.
type GeoLocation struct {
	Name      string  `json:"name" example:"Copenhagen"`
	Latitude  float64 `json:"latitude" example:"55.6759"`
	Longitude float64 `json:"longitude" example:"12.5655"`
	Country   string  `json:"country,omitempty" example:"Denmark"`
	Timezone  string  `json:"timezone" example:"Europe/Copenhagen"`
}

// Validate checks that the coordinates are on the globe.
func (g GeoLocation) Validate() error {
	if g.Latitude < -90 || g.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90, got %f", g.Latitude)
	}
	if g.Longitude < -180 || g.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180, got %f", g.Longitude)
	}
	return nil
}
