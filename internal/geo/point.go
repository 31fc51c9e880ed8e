package geo

// Point is the canonical coordinate representation used everywhere inside the
// backend: named fields, latitude first. GeoJSON's [lon, lat] ordering is
// produced only at the response boundary via GeoJSON().
type Point struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// GeoJSONPoint is the {type: "Point", coordinates: [lon, lat]} shape the
// frontend map layer consumes.
type GeoJSONPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// GeoJSON converts the point to its GeoJSON form. Note the lon/lat order swap.
func (p Point) GeoJSON() *GeoJSONPoint {
	return &GeoJSONPoint{Type: "Point", Coordinates: [2]float64{p.Lon, p.Lat}}
}
