package model

// OrbitClass buckets an orbit by mean motion (revolutions per day).
type OrbitClass int

const (
	OrbitLEO OrbitClass = iota
	OrbitMEO
	OrbitGEO
	OrbitHEO
)

// String returns the conventional abbreviation.
func (c OrbitClass) String() string {
	switch c {
	case OrbitLEO:
		return "LEO"
	case OrbitMEO:
		return "MEO"
	case OrbitGEO:
		return "GEO"
	case OrbitHEO:
		return "HEO"
	default:
		return "UNKNOWN"
	}
}

// ParseOrbitClass maps an abbreviation back to its OrbitClass.
func ParseOrbitClass(s string) (OrbitClass, bool) {
	switch s {
	case "LEO":
		return OrbitLEO, true
	case "MEO":
		return OrbitMEO, true
	case "GEO":
		return OrbitGEO, true
	case "HEO":
		return OrbitHEO, true
	default:
		return OrbitLEO, false
	}
}

// Mission categories produced by classification.
const (
	MissionNavigation    = "Navigation"
	MissionStation       = "Space Station"
	MissionCommunication = "Communication"
	MissionObservation   = "Earth Observation"
	MissionWeather       = "Weather"
	MissionScience       = "Science"
)

// OperatorUnknown is the classification default when no rule matches.
const OperatorUnknown = "Unknown"

// Metadata is derived from an element record's name and mean motion.
// It is a pure function of the record and safe to memoize.
type Metadata struct {
	Operator string
	Country  string
	Mission  string
	Orbit    OrbitClass
}
