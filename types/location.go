package types

// LocationRecord is a single geotagged photo. Coordinates are optional; records
// without both of them are listed but never placed on the map.
type LocationRecord struct {
	Latitude    *float64 `json:"latitude,omitempty" firestore:"latitude" db:"latitude"`
	Longitude   *float64 `json:"longitude,omitempty" firestore:"longitude" db:"longitude"`
	URL         string   `json:"url" firestore:"url" db:"url"`
	Title       string   `json:"title" firestore:"title" db:"title"`
	Description string   `json:"description" firestore:"description" db:"description"`
	Competition string   `json:"competition" firestore:"competition" db:"competition"`
	Team        string   `json:"team" firestore:"team" db:"team"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (l LocationRecord) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// LocationsPayload is the data part of the location listing.
type LocationsPayload struct {
	Locations    []LocationRecord `json:"locations"`
	Competitions []string         `json:"competitions"`
}

// LocationsResponse is the envelope returned by GET /api/locations.
type LocationsResponse struct {
	Success bool              `json:"success"`
	Data    *LocationsPayload `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// Float returns a pointer to f. Handy for building records by hand.
func Float(f float64) *float64 {
	return &f
}
