package core

import (
	"errors"
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/orbit-tracker/model"
	"github.com/signalsfoundry/orbit-tracker/tle"
)

// Propagated altitude sanity bounds in kilometres. Samples outside this
// band indicate a decayed or mis-parsed element set, not a usable position.
const (
	MinAltitudeKm = 100.0
	MaxAltitudeKm = 50000.0
)

// Propagation failure reasons. All are per-object soft failures: they mark
// one object degenerate for one tick and never abort the cycle.
var (
	ErrBadElements   = errors.New("element set rejected by propagator")
	ErrNoSample      = errors.New("propagation produced no finite sample")
	ErrAltitudeRange = errors.New("propagated altitude outside sanity bounds")
)

// Propagator produces a geodetic sample for one object at a given time.
type Propagator interface {
	Propagate(t time.Time) (model.GeodeticPosition, error)
}

// SGP4Propagator propagates one element record with the SGP4 model.
// The SGP4 state is initialised once per record and reused across ticks.
type SGP4Propagator struct {
	sat satellite.Satellite
}

// NewSGP4Propagator initialises SGP4 state from the record's element
// lines. Records the SGP4 initialiser cannot digest yield ErrBadElements.
func NewSGP4Propagator(rec tle.ElementRecord) (p *SGP4Propagator, err error) {
	if !rec.Valid() {
		return nil, ErrBadElements
	}
	defer func() {
		if recover() != nil {
			p, err = nil, ErrBadElements
		}
	}()
	sat := satellite.TLEToSat(rec.Line1, rec.Line2, satellite.GravityWGS72)
	return &SGP4Propagator{sat: sat}, nil
}

// Propagate returns the object's geodetic position and speed at t.
func (p *SGP4Propagator) Propagate(t time.Time) (model.GeodeticPosition, error) {
	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	posECI, velECI := satellite.Propagate(p.sat, year, int(month), day, hour, min, sec)
	gmst := satellite.GSTimeFromDate(year, int(month), day, hour, min, sec)
	altKm, _, llRad := satellite.ECIToLLA(posECI, gmst)
	ll := satellite.LatLongDeg(llRad)

	speed := math.Sqrt(velECI.X*velECI.X + velECI.Y*velECI.Y + velECI.Z*velECI.Z)

	if !finite(ll.Latitude) || !finite(ll.Longitude) || !finite(altKm) || !finite(speed) {
		return model.GeodeticPosition{}, ErrNoSample
	}
	if altKm < MinAltitudeKm || altKm > MaxAltitudeKm {
		return model.GeodeticPosition{}, ErrAltitudeRange
	}

	return model.GeodeticPosition{
		Lat:   ll.Latitude,
		Lng:   normalizeLng(ll.Longitude),
		Alt:   altKm,
		Speed: speed,
	}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// normalizeLng wraps a longitude into (-180, 180].
func normalizeLng(lng float64) float64 {
	for lng > 180 {
		lng -= 360
	}
	for lng <= -180 {
		lng += 360
	}
	return lng
}
