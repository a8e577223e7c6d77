package markers

import (
	"math"
	"strconv"
	"strings"

	"github.com/UnknownOlympus/datemap/internal/cache"
	"github.com/UnknownOlympus/datemap/internal/models"
)

// DefaultCoordinates is where a marker lands when its record carries no usable
// position: the Space Needle, which is also the initial map center.
var DefaultCoordinates = models.Coordinates{Latitude: 47.6205, Longitude: -122.3493}

// Marker is a date placed on the map.
type Marker struct {
	Index    int    `json:"index"` // Index is the 1-based position of the record in the CSV.
	Date     string `json:"date"`
	Location string `json:"location"`
	Address  string `json:"address,omitempty"`
	Notes    string `json:"notes,omitempty"`

	models.Coordinates

	// Approximate is set when the marker sits on DefaultCoordinates.
	Approximate bool `json:"approximate"`
}

// Resolve reads the Latitude and Longitude columns of record.
// It returns DefaultCoordinates and false when either is missing or not a finite number.
func Resolve(record models.DateRecord) (models.Coordinates, bool) {
	lat, okLat := parseCoordinate(record[models.ColumnLatitude])
	lng, okLng := parseCoordinate(record[models.ColumnLongitude])
	if !okLat || !okLng {
		return DefaultCoordinates, false
	}

	return models.Coordinates{Latitude: lat, Longitude: lng}, true
}

// Build turns records into markers. Records without a Location are left off the map.
// When a record has no usable coordinates, the entry cached for its Address is used
// if geo is not nil, and DefaultCoordinates otherwise.
func Build(records []models.DateRecord, geo *cache.Cache) []Marker {
	markers := []Marker{}

	for idx, record := range records {
		if strings.TrimSpace(record.Location()) == "" {
			continue
		}

		coords, ok := Resolve(record)
		if !ok && geo != nil {
			if entry, found := geo.Get(record.Address()); found {
				coords = models.Coordinates{Latitude: entry.Latitude, Longitude: entry.Longitude}
				ok = true
			}
		}

		markers = append(markers, Marker{
			Index:       idx + 1,
			Date:        record.Date(),
			Location:    record.Location(),
			Address:     record.Address(),
			Notes:       record.Notes(),
			Coordinates: coords,
			Approximate: !ok,
		})
	}

	return markers
}

func parseCoordinate(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}

	return value, true
}
