package core

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/signalsfoundry/orbit-tracker/model"
	"github.com/signalsfoundry/orbit-tracker/tle"
)

// nameRule is one ordered classification rule: the first rule whose token
// appears in the uppercased object name resolves operator and mission.
type nameRule struct {
	tokens   []string
	operator string
	mission  string
}

// Rule order matters: navigation constellations and stations are matched
// before the broad communication constellations so that, for example, a
// name containing both "GPS" and an operator token resolves as navigation.
var nameRules = []nameRule{
	{tokens: []string{"GPS", "NAVSTAR"}, operator: "GPS", mission: model.MissionNavigation},
	{tokens: []string{"GLONASS"}, operator: "GLONASS", mission: model.MissionNavigation},
	{tokens: []string{"GALILEO", "GSAT0"}, operator: "Galileo", mission: model.MissionNavigation},
	{tokens: []string{"BEIDOU"}, operator: "BeiDou", mission: model.MissionNavigation},
	{tokens: []string{"IRNSS", "NAVIC"}, operator: "IRNSS", mission: model.MissionNavigation},
	{tokens: []string{"ISS", "ZARYA", "STATION"}, operator: "ISS", mission: model.MissionStation},
	{tokens: []string{"TIANGONG", "CSS ("}, operator: "Tiangong", mission: model.MissionStation},
	{tokens: []string{"STARLINK"}, operator: "Starlink", mission: model.MissionCommunication},
	{tokens: []string{"ONEWEB"}, operator: "OneWeb", mission: model.MissionCommunication},
	{tokens: []string{"IRIDIUM"}, operator: "Iridium", mission: model.MissionCommunication},
	{tokens: []string{"GLOBALSTAR"}, operator: "Globalstar", mission: model.MissionCommunication},
	{tokens: []string{"O3B"}, operator: "SES", mission: model.MissionCommunication},
	{tokens: []string{"NOAA", "GOES"}, operator: "NOAA", mission: model.MissionWeather},
	{tokens: []string{"METEOR-M", "METEOR "}, operator: "Roshydromet", mission: model.MissionWeather},
	{tokens: []string{"SENTINEL"}, operator: "ESA", mission: model.MissionObservation},
	{tokens: []string{"LANDSAT"}, operator: "USGS", mission: model.MissionObservation},
	{tokens: []string{"TERRA", "AQUA"}, operator: "NASA", mission: model.MissionObservation},
	{tokens: []string{"HUBBLE", "HST"}, operator: "NASA", mission: model.MissionScience},
}

// countryByOperator derives the country tag from the resolved operator.
var countryByOperator = map[string]string{
	"GPS":         "USA",
	"GLONASS":     "Russia",
	"Galileo":     "EU",
	"BeiDou":      "China",
	"IRNSS":       "India",
	"ISS":         "International",
	"Tiangong":    "China",
	"Starlink":    "USA",
	"OneWeb":      "UK",
	"Iridium":     "USA",
	"Globalstar":  "USA",
	"SES":         "Luxembourg",
	"NOAA":        "USA",
	"Roshydromet": "Russia",
	"ESA":         "EU",
	"USGS":        "USA",
	"NASA":        "USA",
}

// OrbitClassFromMeanMotion buckets a mean motion (revolutions per day)
// into an orbit class. The rule chain is evaluated in order, which pins
// the boundary behaviour: exactly 2 is MEO, exactly 8 and exactly 16 are
// LEO.
func OrbitClassFromMeanMotion(meanMotion float64) model.OrbitClass {
	switch {
	case meanMotion < 2:
		return model.OrbitGEO
	case meanMotion < 8:
		return model.OrbitMEO
	case meanMotion > 16:
		return model.OrbitHEO
	default:
		return model.OrbitLEO
	}
}

// Classifier derives metadata tags from element records. Classification is
// a pure function of record content, so results are memoized in a bounded
// LRU keyed by the record's full text.
type Classifier struct {
	memo *lru.Cache[string, model.Metadata]
}

// DefaultClassifierSize bounds the memoization cache; full public catalogs
// run to roughly ten thousand objects.
const DefaultClassifierSize = 16384

// NewClassifier constructs a Classifier with a bounded memo cache.
// A non-positive size selects the default.
func NewClassifier(size int) *Classifier {
	if size <= 0 {
		size = DefaultClassifierSize
	}
	// lru.New only fails for non-positive sizes.
	memo, _ := lru.New[string, model.Metadata](size)
	return &Classifier{memo: memo}
}

// Classify returns the metadata tags for a record: operator and mission
// from the ordered name rules, country from the resolved operator, orbit
// class from the mean-motion field. Ambiguity always resolves to the safe
// default rather than failing.
func (c *Classifier) Classify(rec tle.ElementRecord) model.Metadata {
	key := rec.Key()
	if md, ok := c.memo.Get(key); ok {
		return md
	}
	md := classify(rec)
	c.memo.Add(key, md)
	return md
}

func classify(rec tle.ElementRecord) model.Metadata {
	md := model.Metadata{
		Operator: model.OperatorUnknown,
		Country:  model.OperatorUnknown,
		Mission:  model.MissionCommunication,
	}

	name := strings.ToUpper(rec.Name)
	for _, rule := range nameRules {
		if matchesAny(name, rule.tokens) {
			md.Operator = rule.operator
			md.Mission = rule.mission
			if country, ok := countryByOperator[rule.operator]; ok {
				md.Country = country
			}
			break
		}
	}

	// Unparsable mean motion falls through to the LEO default.
	if mm, err := rec.MeanMotion(); err == nil {
		md.Orbit = OrbitClassFromMeanMotion(mm)
	} else {
		md.Orbit = model.OrbitLEO
	}
	return md
}

func matchesAny(name string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(name, tok) {
			return true
		}
	}
	return false
}
