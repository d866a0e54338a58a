// Package api exposes the tracker's session operations over a JSON HTTP
// surface: render directives, observer location, filter criteria,
// selection, and forced catalog refresh.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/signalsfoundry/orbit-tracker/core"
	"github.com/signalsfoundry/orbit-tracker/internal/logging"
	"github.com/signalsfoundry/orbit-tracker/model"
)

// Geocoder resolves a free-text place name to coordinates. It is an
// external collaborator; the server runs without one, rejecting name-only
// observer requests.
type Geocoder interface {
	Resolve(ctx context.Context, place string) (lat, lng float64, err error)
}

// ErrPlaceNotFound is returned by Geocoder implementations when the place
// name resolves to nothing.
var ErrPlaceNotFound = errors.New("place not found")

// Server wires the tracker session into an HTTP router.
type Server struct {
	tracker  *core.Tracker
	refresh  func(context.Context) error
	geocoder Geocoder
	metrics  http.Handler
	log      logging.Logger
}

// New constructs a Server. refresh forces a catalog refresh when the
// client posts /api/refresh; metrics, when non-nil, is mounted at
// /metrics; geocoder may be nil.
func New(tracker *core.Tracker, refresh func(context.Context) error, geocoder Geocoder, metrics http.Handler, log logging.Logger) *Server {
	if log == nil {
		log = logging.Noop()
	}
	return &Server{tracker: tracker, refresh: refresh, geocoder: geocoder, metrics: metrics, log: log}
}

// Routes returns the chi router for the server.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealthz)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/objects", s.handleObjects)
		r.Get("/objects/{id}", s.handleObjectDetail)
		r.Put("/observer", s.handleSetObserver)
		r.Delete("/observer", s.handleClearObserver)
		r.Put("/filters", s.handleSetFilters)
		r.Put("/selection/{id}", s.handleSelect)
		r.Delete("/selection", s.handleClearSelection)
		r.Post("/refresh", s.handleRefresh)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, log := logging.WithRequestLogger(r.Context(), s.log)
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		log.Debug(ctx, "http request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Any("duration", time.Since(start).String()))
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// directiveDTO is the wire shape of one render directive.
type directiveDTO struct {
	ID         string  `json:"id"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Alt        float64 `json:"alt"`
	Eligible   bool    `json:"eligible"`
	Selected   bool    `json:"selected"`
	Scale      float64 `json:"scale"`
	Color      string  `json:"color"`
	Degenerate bool    `json:"degenerate"`
}

func (s *Server) handleObjects(w http.ResponseWriter, r *http.Request) {
	directives := s.tracker.Directives()
	out := make([]directiveDTO, len(directives))
	for i, d := range directives {
		out[i] = directiveDTO{
			ID:         d.ID,
			Lat:        d.Lat,
			Lng:        d.Lng,
			Alt:        d.Alt,
			Eligible:   d.Eligible,
			Selected:   d.Selected,
			Scale:      d.Scale,
			Color:      d.Color.String(),
			Degenerate: d.Degenerate,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"objects": out, "count": len(out)})
}

type detailDTO struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	CatalogNum string         `json:"catalogNumber"`
	Lat        float64        `json:"lat"`
	Lng        float64        `json:"lng"`
	Alt        float64        `json:"alt"`
	Speed      float64        `json:"speed"`
	Operator   string         `json:"operator"`
	Country    string         `json:"country"`
	Mission    string         `json:"mission"`
	Orbit      string         `json:"orbit"`
	Visibility *visibilityDTO `json:"visibility,omitempty"`
}

type visibilityDTO struct {
	Visible   bool    `json:"visible"`
	Azimuth   float64 `json:"azimuth"`
	Elevation float64 `json:"elevation"`
	Range     float64 `json:"range"`
}

func (s *Server) handleObjectDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	det, ok := s.tracker.Detail(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown object id")
		return
	}
	out := detailDTO{
		ID:         det.State.ID,
		Name:       det.Record.Name,
		CatalogNum: det.Record.CatalogNumber(),
		Lat:        det.State.Lat,
		Lng:        det.State.Lng,
		Alt:        det.State.Alt,
		Speed:      det.State.Speed,
		Operator:   det.Metadata.Operator,
		Country:    det.Metadata.Country,
		Mission:    det.Metadata.Mission,
		Orbit:      det.Metadata.Orbit.String(),
	}
	if det.Visibility != nil {
		out.Visibility = &visibilityDTO{
			Visible:   det.Visibility.Visible,
			Azimuth:   det.Visibility.Azimuth,
			Elevation: det.Visibility.Elevation,
			Range:     det.Visibility.Range,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type observerRequest struct {
	Lat  *float64 `json:"lat"`
	Lng  *float64 `json:"lng"`
	Alt  float64  `json:"alt"`
	Name string   `json:"name"`
}

func (s *Server) handleSetObserver(w http.ResponseWriter, r *http.Request) {
	var req observerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	obs := model.ObserverLocation{Alt: req.Alt, Name: req.Name}
	switch {
	case req.Lat != nil && req.Lng != nil:
		obs.Lat, obs.Lng = *req.Lat, *req.Lng
	case req.Name != "":
		if s.geocoder == nil {
			writeError(w, http.StatusNotImplemented, "no geocoder configured")
			return
		}
		lat, lng, err := s.geocoder.Resolve(r.Context(), req.Name)
		if errors.Is(err, ErrPlaceNotFound) {
			writeError(w, http.StatusNotFound, "place not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusBadGateway, "geocoding failed")
			return
		}
		obs.Lat, obs.Lng = lat, lng
	default:
		writeError(w, http.StatusBadRequest, "lat/lng or name required")
		return
	}

	if obs.Lat < -90 || obs.Lat > 90 || obs.Lng < -180 || obs.Lng > 180 {
		writeError(w, http.StatusBadRequest, "coordinates out of range")
		return
	}

	s.tracker.SetObserver(obs)
	writeJSON(w, http.StatusOK, map[string]any{"lat": obs.Lat, "lng": obs.Lng, "alt": obs.Alt, "name": obs.Name})
}

func (s *Server) handleClearObserver(w http.ResponseWriter, r *http.Request) {
	s.tracker.ClearObserver()
	w.WriteHeader(http.StatusNoContent)
}

type filtersRequest struct {
	Operators   []string `json:"operators"`
	Missions    []string `json:"missions"`
	Orbits      []string `json:"orbits"`
	Countries   []string `json:"countries"`
	Search      string   `json:"search"`
	OnlyVisible bool     `json:"onlyVisible"`
}

func (s *Server) handleSetFilters(w http.ResponseWriter, r *http.Request) {
	var req filtersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	criteria := model.FilterCriteria{
		Search:      req.Search,
		OnlyVisible: req.OnlyVisible,
	}
	criteria.Operators = toSet(req.Operators)
	criteria.Missions = toSet(req.Missions)
	criteria.Countries = toSet(req.Countries)
	if len(req.Orbits) > 0 {
		criteria.Orbits = make(map[model.OrbitClass]bool, len(req.Orbits))
		for _, name := range req.Orbits {
			orbit, ok := model.ParseOrbitClass(name)
			if !ok {
				writeError(w, http.StatusBadRequest, "unknown orbit class: "+name)
				return
			}
			criteria.Orbits[orbit] = true
		}
	}

	s.tracker.SetCriteria(criteria)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.tracker.Select(id) {
		writeError(w, http.StatusNotFound, "unknown object id")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	s.tracker.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refresh == nil {
		writeError(w, http.StatusNotImplemented, "refresh not wired")
		return
	}
	if err := s.refresh(r.Context()); err != nil {
		// The store degrades through its fallback chain, so a refresh
		// failure still leaves usable data; report it anyway.
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
