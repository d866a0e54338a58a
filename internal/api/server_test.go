package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/signalsfoundry/orbit-tracker/catalog"
	"github.com/signalsfoundry/orbit-tracker/core"
	"github.com/signalsfoundry/orbit-tracker/model"
	"github.com/signalsfoundry/orbit-tracker/tle"
)

const issLine1 = "1 25544U 98067A   24001.50000000  .00016717  00000-0  10270-3 0  9005"
const issLine2 = "2 25544  51.6459  33.5587 0003880 281.5021  78.5683 15.49370473428643"

type stubGeocoder struct {
	lat, lng float64
	err      error
}

func (g stubGeocoder) Resolve(_ context.Context, _ string) (float64, float64, error) {
	return g.lat, g.lng, g.err
}

func newTestServer(t *testing.T, refresh func(context.Context) error, geocoder Geocoder) (*httptest.Server, *core.Tracker) {
	t.Helper()
	tracker := core.NewTracker(nil, nil)
	tracker.SetCatalog(issCatalog())
	tracker.Tick(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	srv := httptest.NewServer(New(tracker, refresh, geocoder, nil, nil).Routes())
	t.Cleanup(srv.Close)
	return srv, tracker
}

func issCatalog() catalog.Cached {
	return catalog.Cached{
		Records: []tle.ElementRecord{{
			Name:  "ISS (ZARYA)",
			Line1: issLine1,
			Line2: issLine2,
		}},
		AcquiredAt: time.Now(),
		Source:     "test",
	}
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	resp := do(t, http.MethodGet, srv.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestObjects_ReturnsDirectives(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	resp := do(t, http.MethodGet, srv.URL+"/api/objects", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Count   int `json:"count"`
		Objects []struct {
			ID         string  `json:"id"`
			Color      string  `json:"color"`
			Scale      float64 `json:"scale"`
			Eligible   bool    `json:"eligible"`
			Degenerate bool    `json:"degenerate"`
		} `json:"objects"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 1 || len(body.Objects) != 1 {
		t.Fatalf("body = %+v", body)
	}
	obj := body.Objects[0]
	if obj.ID != core.ObjectID("ISS (ZARYA)") {
		t.Errorf("ID = %q", obj.ID)
	}
	if obj.Degenerate || !obj.Eligible || obj.Scale != model.ScaleEligible {
		t.Errorf("directive = %+v", obj)
	}
	if obj.Color != model.ColorStation.String() {
		t.Errorf("Color = %q, want %q", obj.Color, model.ColorStation.String())
	}
}

func TestObjectDetail(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	id := core.ObjectID("ISS (ZARYA)")

	resp := do(t, http.MethodGet, srv.URL+"/api/objects/"+id, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var det struct {
		Name       string `json:"name"`
		CatalogNum string `json:"catalogNumber"`
		Orbit      string `json:"orbit"`
		Mission    string `json:"mission"`
		Visibility *struct {
			Visible bool `json:"visible"`
		} `json:"visibility"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&det); err != nil {
		t.Fatal(err)
	}
	if det.Name != "ISS (ZARYA)" || det.CatalogNum != "25544" || det.Orbit != "LEO" {
		t.Errorf("detail = %+v", det)
	}
	if det.Mission != model.MissionStation {
		t.Errorf("Mission = %q", det.Mission)
	}
	if det.Visibility != nil {
		t.Error("visibility present without an observer")
	}

	resp = do(t, http.MethodGet, srv.URL+"/api/objects/feedfacecafebeef", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown id: status = %d", resp.StatusCode)
	}
}

func TestObserver_SetAndClear(t *testing.T) {
	srv, tracker := newTestServer(t, nil, nil)

	resp := do(t, http.MethodPut, srv.URL+"/api/observer", `{"lat": 51.5, "lng": -0.1, "alt": 25, "name": "London"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	obs, ok := tracker.Observer()
	if !ok || obs.Lat != 51.5 || obs.Lng != -0.1 || obs.Alt != 25 || obs.Name != "London" {
		t.Errorf("observer = %+v, ok = %v", obs, ok)
	}

	resp = do(t, http.MethodDelete, srv.URL+"/api/observer", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("clear status = %d", resp.StatusCode)
	}
	if _, ok := tracker.Observer(); ok {
		t.Error("observer survived delete")
	}
}

func TestObserver_Validation(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	cases := []struct {
		name string
		body string
		want int
	}{
		{"missing coordinates and name", `{}`, http.StatusBadRequest},
		{"latitude out of range", `{"lat": 91, "lng": 0}`, http.StatusBadRequest},
		{"longitude out of range", `{"lat": 0, "lng": 181}`, http.StatusBadRequest},
		{"malformed json", `{"lat": `, http.StatusBadRequest},
		{"name without geocoder", `{"name": "Paris"}`, http.StatusNotImplemented},
	}
	for _, tc := range cases {
		resp := do(t, http.MethodPut, srv.URL+"/api/observer", tc.body)
		if resp.StatusCode != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.name, resp.StatusCode, tc.want)
		}
	}
}

func TestObserver_Geocoded(t *testing.T) {
	srv, tracker := newTestServer(t, nil, stubGeocoder{lat: 48.85, lng: 2.35})

	resp := do(t, http.MethodPut, srv.URL+"/api/observer", `{"name": "Paris"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	obs, ok := tracker.Observer()
	if !ok || obs.Lat != 48.85 || obs.Lng != 2.35 {
		t.Errorf("observer = %+v", obs)
	}
}

func TestObserver_GeocoderErrors(t *testing.T) {
	srvMissing, _ := newTestServer(t, nil, stubGeocoder{err: ErrPlaceNotFound})
	resp := do(t, http.MethodPut, srvMissing.URL+"/api/observer", `{"name": "Atlantis"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("not-found place: status = %d", resp.StatusCode)
	}

	srvDown, _ := newTestServer(t, nil, stubGeocoder{err: errors.New("upstream timeout")})
	resp = do(t, http.MethodPut, srvDown.URL+"/api/observer", `{"name": "Paris"}`)
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("geocoder failure: status = %d", resp.StatusCode)
	}
}

func TestFilters_SetAndValidate(t *testing.T) {
	srv, tracker := newTestServer(t, nil, nil)

	resp := do(t, http.MethodPut, srv.URL+"/api/filters",
		`{"operators": ["Starlink"], "orbits": ["LEO", "GEO"], "search": "iss", "onlyVisible": true}`)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	criteria := tracker.Criteria()
	if !criteria.Operators["Starlink"] || !criteria.Orbits[model.OrbitLEO] || !criteria.Orbits[model.OrbitGEO] {
		t.Errorf("criteria = %+v", criteria)
	}
	if criteria.Search != "iss" || !criteria.OnlyVisible {
		t.Errorf("criteria = %+v", criteria)
	}

	resp = do(t, http.MethodPut, srv.URL+"/api/filters", `{"orbits": ["SSO"]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown orbit: status = %d", resp.StatusCode)
	}
}

func TestSelection_Lifecycle(t *testing.T) {
	srv, tracker := newTestServer(t, nil, nil)
	id := core.ObjectID("ISS (ZARYA)")

	resp := do(t, http.MethodPut, srv.URL+"/api/selection/"+id, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("select status = %d", resp.StatusCode)
	}
	if tracker.SelectedID() != id {
		t.Errorf("SelectedID = %q", tracker.SelectedID())
	}

	resp = do(t, http.MethodPut, srv.URL+"/api/selection/feedfacecafebeef", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown id: status = %d", resp.StatusCode)
	}
	if tracker.SelectedID() != id {
		t.Error("failed select clobbered existing selection")
	}

	resp = do(t, http.MethodDelete, srv.URL+"/api/selection", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("clear status = %d", resp.StatusCode)
	}
	if tracker.SelectedID() != "" {
		t.Error("selection survived delete")
	}
}

func TestRefresh(t *testing.T) {
	var calls int
	srv, _ := newTestServer(t, func(context.Context) error {
		calls++
		return nil
	}, nil)

	resp := do(t, http.MethodPost, srv.URL+"/api/refresh", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if calls != 1 {
		t.Errorf("refresh called %d times", calls)
	}

	srvFail, _ := newTestServer(t, func(context.Context) error {
		return errors.New("all sources unreachable")
	}, nil)
	resp = do(t, http.MethodPost, srvFail.URL+"/api/refresh", "")
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("failure status = %d", resp.StatusCode)
	}

	srvUnwired, _ := newTestServer(t, nil, nil)
	resp = do(t, http.MethodPost, srvUnwired.URL+"/api/refresh", "")
	if resp.StatusCode != http.StatusNotImplemented {
		t.Errorf("unwired status = %d", resp.StatusCode)
	}
}
