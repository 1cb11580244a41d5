package utils

import "math"

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance in kilometers between two
// coordinates using the haversine formula. Pure; no failure modes.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// SpeedKmh converts a traveled distance and elapsed time into km/h.
// Returns +Inf when elapsedSeconds <= 0 — callers that care about causality
// (MovementService does) must reject non-positive deltas before the math.
func SpeedKmh(distanceKm, elapsedSeconds float64) float64 {
	if elapsedSeconds <= 0 {
		return math.Inf(1)
	}
	return distanceKm / elapsedSeconds * 3600
}

// ValidCoordinates reports whether a lat/lon pair is inside the WGS84 range.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func toRad(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}
