package core

import (
	"math"

	"github.com/signalsfoundry/orbit-tracker/model"
)

// VisibilityElevationFloorDeg is the horizon test threshold. The small
// negative tolerance keeps objects visible slightly below the geometric
// horizon, approximating atmospheric refraction.
const VisibilityElevationFloorDeg = -0.5

// zeroRangeKm guards the degenerate case where observer and target
// coincide; below this separation the look direction is undefined.
const zeroRangeKm = 1e-9

// EvaluateVisibility computes the observer-relative look geometry for a
// target at geodetic (latDeg, lngDeg, altKm): whether it is above the
// horizon, its azimuth measured clockwise from local north in [0, 360),
// its elevation above the horizon, and its slant range in kilometres.
func EvaluateVisibility(obs model.ObserverLocation, latDeg, lngDeg, altKm float64) model.VisibilityResult {
	observer := GeodeticToECEF(obs.Lat, obs.Lng, obs.Alt/1000.0)
	target := GeodeticToECEF(latDeg, lngDeg, altKm)

	d := target.Sub(observer)
	rng := d.Norm()
	if rng < zeroRangeKm {
		// Coincident points: treat the target as at zenith.
		return model.VisibilityResult{Visible: true, Azimuth: 0, Elevation: 90, Range: 0}
	}

	east, north, up := localENU(obs.Lat, obs.Lng)

	sinEl := d.Dot(up) / rng
	if sinEl > 1 {
		sinEl = 1
	} else if sinEl < -1 {
		sinEl = -1
	}
	elevation := math.Asin(sinEl) * radToDeg

	azimuth := math.Atan2(d.Dot(east), d.Dot(north)) * radToDeg
	if azimuth < 0 {
		azimuth += 360
	}

	return model.VisibilityResult{
		Visible:   elevation > VisibilityElevationFloorDeg,
		Azimuth:   azimuth,
		Elevation: elevation,
		Range:     rng,
	}
}
