// Package core implements the tracker's state pipeline: propagation of
// element records to geodetic positions, observer-relative visibility
// geometry, metadata classification, filter evaluation, and the per-tick
// update cycle that writes render directives.
package core

import "math"

// EarthRadiusKm is the spherical Earth radius used for all visibility
// geometry (kilometres).
const EarthRadiusKm = 6371.0

const (
	degToRad = math.Pi / 180.0
	radToDeg = 180.0 / math.Pi
)

// Vec3 is an ECEF-style vector in kilometres.
type Vec3 struct {
	X, Y, Z float64
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// GeodeticToECEF converts geodetic degrees plus altitude in kilometres to
// an Earth-centred Cartesian position on the spherical Earth model.
func GeodeticToECEF(latDeg, lngDeg, altKm float64) Vec3 {
	lat := latDeg * degToRad
	lng := lngDeg * degToRad
	r := EarthRadiusKm + altKm
	cosLat := math.Cos(lat)
	return Vec3{
		X: r * cosLat * math.Cos(lng),
		Y: r * cosLat * math.Sin(lng),
		Z: r * math.Sin(lat),
	}
}

// localENU returns the observer's local east, north, and up unit vectors,
// derived analytically from latitude and longitude. The basis is exact at
// the poles as well: east and north remain orthonormal because they are
// built from the longitude terms directly rather than from a normalised
// position difference.
func localENU(latDeg, lngDeg float64) (east, north, up Vec3) {
	lat := latDeg * degToRad
	lng := lngDeg * degToRad
	sinLat, cosLat := math.Sincos(lat)
	sinLng, cosLng := math.Sincos(lng)

	east = Vec3{X: -sinLng, Y: cosLng, Z: 0}
	north = Vec3{X: -sinLat * cosLng, Y: -sinLat * sinLng, Z: cosLat}
	up = Vec3{X: cosLat * cosLng, Y: cosLat * sinLng, Z: sinLat}
	return east, north, up
}
