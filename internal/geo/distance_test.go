package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	paris     = Point{Lat: 48.8566, Lon: 2.3522}
	lyon      = Point{Lat: 45.7640, Lon: 4.8357}
	marseille = Point{Lat: 43.2965, Lon: 5.3698}
)

func TestDistanceMeters(t *testing.T) {
	// Paris to Lyon is about 392 km as the crow flies.
	assert.InDelta(t, 392_000, DistanceMeters(paris, lyon), 2_000)
	// Paris to Marseille is about 661 km.
	assert.InDelta(t, 661_000, DistanceMeters(paris, marseille), 3_000)
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	assert.Equal(t, DistanceMeters(paris, lyon), DistanceMeters(lyon, paris))
}

func TestDistanceMeters_SamePoint(t *testing.T) {
	assert.Equal(t, 0.0, DistanceMeters(paris, paris))
}

func TestRoundKm(t *testing.T) {
	assert.Equal(t, 0.0, RoundKm(0))
	assert.Equal(t, 1.0, RoundKm(1000))
	assert.Equal(t, 1.2, RoundKm(1234))
	assert.Equal(t, 1.3, RoundKm(1250))
	assert.Equal(t, 12.3, RoundKm(12345))
	assert.Equal(t, 0.1, RoundKm(50))
}
