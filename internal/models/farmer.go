package models

import "github.com/saveagri/saveagri-backend/internal/geo"

// Farmer is a producer listing. Latitude/longitude are derived from the
// postal address by the geocoder at creation and on any address-affecting
// update; they are never taken from the client directly.
type Farmer struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	ZipCode     string  `json:"zip_code"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Phone       string  `json:"phone"`
	Website     string  `json:"website"`
	ImageURL    string  `json:"image_url,omitempty"`
	UserID      int64   `json:"user_id"`

	// Location mirrors the coordinates in GeoJSON form for the frontend map.
	// Derived, set just before the farmer is written to a response.
	Location *geo.GeoJSONPoint `json:"location,omitempty"`
	// Distance from the search origin in km (one decimal). Search responses only.
	Distance *float64 `json:"distance,omitempty"`
}

// Point returns the farmer's coordinates in the canonical representation.
func (f *Farmer) Point() geo.Point {
	return geo.Point{Lat: f.Latitude, Lon: f.Longitude}
}

// Located returns a copy with the GeoJSON location populated.
func (f Farmer) Located() Farmer {
	f.Location = f.Point().GeoJSON()
	return f
}

// FarmerPatch enumerates the optional fields of a partial update. A nil field
// is left untouched; the update statement is built from the present fields
// only, never from caller-supplied SQL fragments.
type FarmerPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	ZipCode     *string `json:"zip_code"`
	Phone       *string `json:"phone"`
	Website     *string `json:"website"`
	ImageURL    *string `json:"image_url"`

	// Latitude/Longitude are set by the handler after re-geocoding a patched
	// address; they are not decoded from the request body.
	Latitude  *float64 `json:"-"`
	Longitude *float64 `json:"-"`
}

// TouchesAddress reports whether the patch changes any address component,
// which forces the stored coordinates to be re-derived.
func (p *FarmerPatch) TouchesAddress() bool {
	return p.Address != nil || p.City != nil || p.ZipCode != nil
}

// Empty reports whether the patch carries no change at all.
func (p *FarmerPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Address == nil &&
		p.City == nil && p.ZipCode == nil && p.Phone == nil &&
		p.Website == nil && p.ImageURL == nil &&
		p.Latitude == nil && p.Longitude == nil
}
