package core

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/signalsfoundry/orbit-tracker/catalog"
	"github.com/signalsfoundry/orbit-tracker/internal/logging"
	"github.com/signalsfoundry/orbit-tracker/model"
	"github.com/signalsfoundry/orbit-tracker/tle"
)

// ObjectID derives the stable object identity from a record name. It is a
// pure function of the name, so an object keeps its identity across
// catalog refreshes even when array order changes or sources are merged.
func ObjectID(name string) string {
	h := fnv.New64a()
	h.Write([]byte(name))
	return fmt.Sprintf("%016x", h.Sum64())
}

// TickReport summarises one update cycle. Failures maps object id to the
// reason that object's slot was marked degenerate this tick; it is nil
// when every object propagated.
type TickReport struct {
	Tracked    int
	Propagated int
	Failed     int
	Visible    int
	Eligible   int
	Failures   map[string]error
}

func (r *TickReport) fail(id string, err error) {
	if r.Failures == nil {
		r.Failures = make(map[string]error)
	}
	r.Failures[id] = err
	r.Failed++
}

// Tracker owns the per-tick update discipline: it holds the current record
// snapshot with pre-initialised propagator state, the stable
// render-directive array, the observer location, the filter criteria, and
// the selection. Tick is invoked once per external tick signal and is
// never reentrant; catalog replacement and directive-array resize happen
// only in SetCatalog.
type Tracker struct {
	mu            sync.RWMutex
	log           logging.Logger
	classifier    *Classifier
	newPropagator func(tle.ElementRecord) (Propagator, error)

	records    []tle.ElementRecord
	props      []Propagator
	initErrs   []error
	meta       []model.Metadata
	objects    []model.ObjectState
	directives []model.RenderDirective
	index      map[string]int

	observer   *model.ObserverLocation
	criteria   model.FilterCriteria
	selectedID string
	telemetry  bool
}

// NewTracker constructs a Tracker. Nil arguments select defaults: a noop
// logger, a fresh classifier, the SGP4 propagator.
func NewTracker(log logging.Logger, classifier *Classifier) *Tracker {
	if log == nil {
		log = logging.Noop()
	}
	if classifier == nil {
		classifier = NewClassifier(0)
	}
	return &Tracker{
		log:        log,
		classifier: classifier,
		newPropagator: func(rec tle.ElementRecord) (Propagator, error) {
			return NewSGP4Propagator(rec)
		},
		index: make(map[string]int),
	}
}

// SetCatalog replaces the tracked-object population from a catalog. The
// render-directive array is sized once here and its slots are overwritten
// in place on every subsequent tick. A selection whose id persists in the
// new population stays valid; a selection of a vanished id is cleared.
func (t *Tracker) SetCatalog(c catalog.Cached) {
	records := c.Records
	props := make([]Propagator, len(records))
	initErrs := make([]error, len(records))
	meta := make([]model.Metadata, len(records))
	objects := make([]model.ObjectState, len(records))
	directives := make([]model.RenderDirective, len(records))
	index := make(map[string]int, len(records))

	badElements := 0
	for i, rec := range records {
		id := ObjectID(rec.Name)
		objects[i] = model.ObjectState{ID: id}
		directives[i] = model.RenderDirective{ID: id, Degenerate: true}
		meta[i] = t.classifier.Classify(rec)
		if _, dup := index[id]; !dup {
			index[id] = i
		}

		p, err := t.newPropagator(rec)
		if err != nil {
			initErrs[i] = err
			badElements++
			continue
		}
		props[i] = p
	}

	t.mu.Lock()
	t.records = records
	t.props = props
	t.initErrs = initErrs
	t.meta = meta
	t.objects = objects
	t.directives = directives
	t.index = index
	if t.selectedID != "" {
		if _, ok := index[t.selectedID]; !ok {
			t.selectedID = ""
		}
	}
	t.mu.Unlock()

	t.log.Info(context.Background(), "catalog applied",
		logging.String("source", c.Source),
		logging.Int("objects", len(records)),
		logging.Int("rejected_elements", badElements))
}

// SetObserver sets the ground location used for visibility geometry.
func (t *Tracker) SetObserver(obs model.ObserverLocation) {
	t.mu.Lock()
	t.observer = &obs
	t.mu.Unlock()
}

// ClearObserver removes the observer; visibility is no longer computed.
func (t *Tracker) ClearObserver() {
	t.mu.Lock()
	t.observer = nil
	t.mu.Unlock()
}

// Observer returns the current observer location, if set.
func (t *Tracker) Observer() (model.ObserverLocation, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.observer == nil {
		return model.ObserverLocation{}, false
	}
	return *t.observer, true
}

// SetCriteria replaces the filter criteria.
func (t *Tracker) SetCriteria(criteria model.FilterCriteria) {
	t.mu.Lock()
	t.criteria = criteria
	t.mu.Unlock()
}

// Criteria returns the current filter criteria.
func (t *Tracker) Criteria() model.FilterCriteria {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.criteria
}

// RequestTelemetry toggles per-tick visibility computation even when the
// visibility-only filter is off, for consumers that want azimuth and
// elevation for every object each tick.
func (t *Tracker) RequestTelemetry(on bool) {
	t.mu.Lock()
	t.telemetry = on
	t.mu.Unlock()
}

// Select marks the object with the given id as selected. It reports
// whether the id names a tracked object.
func (t *Tracker) Select(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.index[id]; !ok {
		return false
	}
	t.selectedID = id
	return true
}

// ClearSelection removes any selection.
func (t *Tracker) ClearSelection() {
	t.mu.Lock()
	t.selectedID = ""
	t.mu.Unlock()
}

// SelectedID returns the currently selected object id, or "".
func (t *Tracker) SelectedID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.selectedID
}

// Tick runs one update cycle at the given time: every tracked object is
// propagated, visibility and filter eligibility evaluated, and its render
// directive slot overwritten in place. A propagation failure marks only
// that object's slot degenerate for this tick; the cycle always completes
// for the rest of the population.
func (t *Tracker) Tick(now time.Time) TickReport {
	t.mu.Lock()
	defer t.mu.Unlock()

	report := TickReport{Tracked: len(t.records)}

	var obs model.ObserverLocation
	hasObserver := t.observer != nil
	if hasObserver {
		obs = *t.observer
	}
	wantVisibility := hasObserver && (t.criteria.OnlyVisible || t.telemetry)

	for i := range t.records {
		d := &t.directives[i]
		obj := &t.objects[i]

		var pos model.GeodeticPosition
		err := t.initErrs[i]
		if err == nil {
			pos, err = t.props[i].Propagate(now)
		}
		if err != nil {
			d.Degenerate = true
			d.Eligible = false
			d.Selected = obj.ID == t.selectedID
			report.fail(obj.ID, err)
			continue
		}
		report.Propagated++

		obj.Lat, obj.Lng, obj.Alt, obj.Speed = pos.Lat, pos.Lng, pos.Alt, pos.Speed

		var vis model.VisibilityResult
		if wantVisibility {
			vis = EvaluateVisibility(obs, pos.Lat, pos.Lng, pos.Alt)
			if vis.Visible {
				report.Visible++
			}
		}

		eligible := MatchesFilter(t.records[i], t.meta[i], vis, t.criteria)
		selected := obj.ID == t.selectedID
		if eligible {
			report.Eligible++
		}

		d.Lat, d.Lng, d.Alt = pos.Lat, pos.Lng, pos.Alt
		d.Eligible = eligible
		d.Selected = selected
		d.Degenerate = false

		// Color precedence: selected > filtered-out > type-based.
		switch {
		case selected:
			d.Color = model.ColorSelected
			d.Scale = model.ScaleSelected
		case !eligible:
			d.Color = model.ColorFilteredOut
			d.Scale = model.ScaleFiltered
		default:
			d.Color = colorForMetadata(t.meta[i])
			d.Scale = model.ScaleEligible
		}
	}

	return report
}

// Directives returns a copy of the current render-directive array. The
// internal array is stable and overwritten in place; the copy keeps
// consumers safe from a tick racing their read.
func (t *Tracker) Directives() []model.RenderDirective {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]model.RenderDirective, len(t.directives))
	copy(out, t.directives)
	return out
}

// Detail is the full view of one tracked object: its last propagated
// state, derived metadata, and, when an observer is set, its current look
// geometry.
type Detail struct {
	State      model.ObjectState
	Record     tle.ElementRecord
	Metadata   model.Metadata
	Visibility *model.VisibilityResult
}

// Detail returns the detail view for an object id, computing visibility on
// demand from the object's last propagated position.
func (t *Tracker) Detail(id string) (Detail, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, ok := t.index[id]
	if !ok {
		return Detail{}, false
	}
	det := Detail{
		State:    t.objects[i],
		Record:   t.records[i],
		Metadata: t.meta[i],
	}
	if t.observer != nil && !t.directives[i].Degenerate {
		vis := EvaluateVisibility(*t.observer, t.objects[i].Lat, t.objects[i].Lng, t.objects[i].Alt)
		det.Visibility = &vis
	}
	return det, true
}

// Objects returns a copy of the current object states.
func (t *Tracker) Objects() []model.ObjectState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]model.ObjectState, len(t.objects))
	copy(out, t.objects)
	return out
}

// Len returns the tracked-object count.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}

func colorForMetadata(md model.Metadata) model.ColorClass {
	switch md.Mission {
	case model.MissionStation:
		return model.ColorStation
	case model.MissionNavigation:
		return model.ColorNavigation
	case model.MissionObservation, model.MissionWeather, model.MissionScience:
		return model.ColorObservation
	default:
		if md.Operator != model.OperatorUnknown {
			return model.ColorOperator
		}
		return model.ColorCommunication
	}
}
