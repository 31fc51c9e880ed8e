package geo

import "math"

// earthRadiusMeters is the mean Earth radius used for spherical distance,
// matching PostGIS ST_DistanceSphere.
const earthRadiusMeters = 6371008.8

// DistanceMeters returns the great-circle distance between two points using
// the haversine formula.
func DistanceMeters(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// RoundKm converts a distance in meters to kilometers rounded to one decimal,
// the precision the farmer listings display.
func RoundKm(meters float64) float64 {
	return math.Round(meters/1000*10) / 10
}
