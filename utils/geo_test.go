package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKmZeroForSamePoint(t *testing.T) {
	assert.Equal(t, 0.0, DistanceKm(51.505, -0.09, 51.505, -0.09))
}

func TestDistanceKmSymmetric(t *testing.T) {
	a := DistanceKm(51.505, -0.09, 48.8584, 2.2945)
	b := DistanceKm(48.8584, 2.2945, 51.505, -0.09)
	assert.InDelta(t, a, b, 1e-9)
}

func TestDistanceKmOneDegreeLatitude(t *testing.T) {
	// One degree of latitude is ~111.19km on a 6371km sphere.
	d := DistanceKm(0, 0, 1, 0)
	assert.InDelta(t, 111.19, d, 0.1)
}

func TestDistanceKmShortHop(t *testing.T) {
	// 0.01 degrees of latitude, the canonical teleport test hop.
	d := DistanceKm(51.505, -0.09, 51.515, -0.09)
	assert.Greater(t, d, 1.0)
	assert.Less(t, d, 1.2)
}

func TestSpeedKmh(t *testing.T) {
	assert.InDelta(t, 1.0, SpeedKmh(1, 3600), 1e-9)
	assert.InDelta(t, 120.0, SpeedKmh(2, 60), 1e-9)
}

func TestSpeedKmhNonPositiveElapsed(t *testing.T) {
	assert.True(t, math.IsInf(SpeedKmh(1, 0), 1))
	assert.True(t, math.IsInf(SpeedKmh(1, -5), 1))
}

func TestValidCoordinates(t *testing.T) {
	assert.True(t, ValidCoordinates(0, 0))
	assert.True(t, ValidCoordinates(90, 180))
	assert.True(t, ValidCoordinates(-90, -180))
	assert.False(t, ValidCoordinates(90.0001, 0))
	assert.False(t, ValidCoordinates(0, -180.0001))
}
