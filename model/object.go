package model

// GeodeticPosition is a propagated object sample: latitude/longitude in
// degrees, altitude in kilometres above the spherical Earth, speed in km/s.
type GeodeticPosition struct {
	Lat   float64
	Lng   float64
	Alt   float64
	Speed float64
}

// ObserverLocation is a ground location in geodetic coordinates.
// Lat/Lng in degrees, Alt in metres. Name is optional display text.
type ObserverLocation struct {
	Lat  float64
	Lng  float64
	Alt  float64
	Name string
}

// ObjectState is the per-tick state of one tracked object. ID is a pure
// function of the object's name so identity survives catalog refreshes,
// reordering, and multi-source merges.
type ObjectState struct {
	ID    string
	Lat   float64 // degrees
	Lng   float64 // degrees
	Alt   float64 // km
	Speed float64 // km/s
}

// VisibilityResult is the observer-relative geometry for one object.
// Recomputed every tick, never persisted.
type VisibilityResult struct {
	Visible   bool
	Azimuth   float64 // degrees clockwise from north, [0, 360)
	Elevation float64 // degrees above the horizon
	Range     float64 // km
}
