package spiral

import (
	"math"

	"github.com/viatorai/viator-assistant/internal/types"
)

const earthRadiusKm = 6371.0

// goldenAngle is the angular step between consecutive spiral samples,
// in degrees. It keeps neighbouring points from lining up on rays.
const goldenAngle = 137.5

// generatePoints lays out up to numPoints sample coordinates on an
// outward spiral around center. The i-th point sits at distance
// step*sqrt(i) along bearing i*137.5 degrees; generation stops early
// once the running radius exceeds radiusKm.
func generatePoints(center types.Location, radiusKm float64, numPoints int) []types.Location {
	step := math.Sqrt(radiusKm * radiusKm / float64(numPoints))

	points := make([]types.Location, 0, numPoints)
	for i := 0; i < numPoints; i++ {
		r := step * math.Sqrt(float64(i))
		if r > radiusKm {
			break
		}
		bearing := float64(i) * goldenAngle
		points = append(points, destination(center, r, bearing))
	}
	return points
}

// destination returns the point distanceKm away from start along the
// given bearing (degrees clockwise from north), on a spherical earth.
func destination(start types.Location, distanceKm, bearingDeg float64) types.Location {
	lat1 := start.Lat * math.Pi / 180
	lon1 := start.Lng * math.Pi / 180
	bearing := bearingDeg * math.Pi / 180
	delta := distanceKm / earthRadiusKm

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(delta) + math.Cos(lat1)*math.Sin(delta)*math.Cos(bearing))
	lon2 := lon1 + math.Atan2(
		math.Sin(bearing)*math.Sin(delta)*math.Cos(lat1),
		math.Cos(delta)-math.Sin(lat1)*math.Sin(lat2),
	)

	// Normalize longitude to [-180, 180)
	lng := math.Mod(lon2*180/math.Pi+540, 360) - 180
	return types.Location{Lat: lat2 * 180 / math.Pi, Lng: lng}
}
