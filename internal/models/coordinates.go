package models

// Coordinates represents a geographical point defined by its latitude and longitude.
type Coordinates struct {
	Latitude  float64 `json:"lat"` // Latitude of the geographical point.
	Longitude float64 `json:"lng"` // Longitude of the geographical point.
}

// Place is a geocoding provider result: the point and a human-readable name for it.
type Place struct {
	Coordinates

	DisplayName string // DisplayName is the provider's label for the matched place.
}
