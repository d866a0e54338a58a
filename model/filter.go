package model

// FilterCriteria combines search text, tag-set filters, and a
// visibility-only flag into a single render-eligibility predicate.
// An empty set means no constraint for that category; within a category
// set membership is an OR, across categories constraints are ANDed.
type FilterCriteria struct {
	Operators   map[string]bool
	Missions    map[string]bool
	Orbits      map[OrbitClass]bool
	Countries   map[string]bool
	Search      string
	OnlyVisible bool
}

// Empty reports whether the criteria impose no constraint at all.
func (c FilterCriteria) Empty() bool {
	return len(c.Operators) == 0 && len(c.Missions) == 0 &&
		len(c.Orbits) == 0 && len(c.Countries) == 0 &&
		c.Search == "" && !c.OnlyVisible
}
