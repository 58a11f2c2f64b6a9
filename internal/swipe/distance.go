package swipe

import "math"

const earthRadiusKm = 6371

// DistanceUnknown is returned when either party has no stored location. It is
// larger than any max-distance setting, so unlocated profiles never pass a
// distance-bounded filter.
const DistanceUnknown = math.MaxFloat64

// DistanceKm returns the great-circle distance in kilometers between two
// optional coordinate pairs (haversine formula). Symmetric in its arguments.
func DistanceKm(lat1, lon1, lat2, lon2 *float64) float64 {
	if lat1 == nil || lon1 == nil || lat2 == nil || lon2 == nil {
		return DistanceUnknown
	}

	dLat := toRadians(*lat2 - *lat1)
	dLon := toRadians(*lon2 - *lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(*lat1))*math.Cos(toRadians(*lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// DistanceTo returns the distance from p to other in kilometers.
func (p *Profile) DistanceTo(other *Profile) float64 {
	return DistanceKm(p.Latitude, p.Longitude, other.Latitude, other.Longitude)
}

func toRadians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}
