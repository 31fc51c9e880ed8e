package geo

import "sort"

// DefaultRadiusKm is used when a search request does not specify a radius.
const DefaultRadiusKm = 50

// Candidate is a stored location eligible for a proximity search.
type Candidate struct {
	ID    int64
	Point Point
}

// Match is a candidate within the search radius, annotated with its
// great-circle distance from the origin in kilometers (one decimal).
type Match struct {
	Candidate
	DistanceKm float64
}

// Nearby filters candidates to those within radiusKm of origin and orders
// them nearest first. Equal distances are broken by ascending ID so the
// output is deterministic.
func Nearby(candidates []Candidate, origin Point, radiusKm float64) []Match {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}
	radiusMeters := radiusKm * 1000

	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		meters := DistanceMeters(origin, c.Point)
		if meters <= radiusMeters {
			matches = append(matches, Match{Candidate: c, DistanceKm: RoundKm(meters)})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].DistanceKm != matches[j].DistanceKm {
			return matches[i].DistanceKm < matches[j].DistanceKm
		}
		return matches[i].ID < matches[j].ID
	})
	return matches
}
