package core

import (
	"strings"

	"github.com/signalsfoundry/orbit-tracker/model"
	"github.com/signalsfoundry/orbit-tracker/tle"
)

// MatchesFilter evaluates the render-eligibility predicate for one object.
// Constraints compose as OR within a category set and AND across
// categories; an empty set imposes no constraint. Search text must match
// the uppercased name or the catalog number as a substring, else the
// object is rejected regardless of the other criteria.
func MatchesFilter(rec tle.ElementRecord, md model.Metadata, vis model.VisibilityResult, criteria model.FilterCriteria) bool {
	if q := strings.ToUpper(strings.TrimSpace(criteria.Search)); q != "" {
		name := strings.ToUpper(rec.Name)
		if !strings.Contains(name, q) && !strings.Contains(rec.CatalogNumber(), q) {
			return false
		}
	}

	if len(criteria.Operators) > 0 && !criteria.Operators[md.Operator] {
		return false
	}
	if len(criteria.Missions) > 0 && !criteria.Missions[md.Mission] {
		return false
	}
	if len(criteria.Orbits) > 0 && !criteria.Orbits[md.Orbit] {
		return false
	}
	if len(criteria.Countries) > 0 && !criteria.Countries[md.Country] {
		return false
	}

	if criteria.OnlyVisible && !vis.Visible {
		return false
	}
	return true
}
