package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"floorestimate/services"
	"floorestimate/testhelpers"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// call runs handler against a request built from method, target, a JSON
// body (nil for none) and path values given as key/value pairs.
func call(t *testing.T, app *pocketbase.PocketBase, handler func(*core.RequestEvent) error, method, target string, body any, pathValues ...string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = strings.NewReader(string(b))
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

// openSample returns the seeded app, a session registry and the sample
// estimation ID with floor already selected.
func openSample(t *testing.T, floor string) (*pocketbase.PocketBase, *Sessions, string) {
	t.Helper()

	app := testhelpers.NewSeededTestApp(t)
	est := testhelpers.FindSampleEstimation(t, app)
	sessions := NewSessions(app, 0, time.Hour)
	if floor != "" {
		rec := call(t, app, HandleFloorSelect(sessions), http.MethodPost, "/", map[string]any{"floor": floor}, "id", est.Id)
		if rec.Code != http.StatusOK {
			t.Fatalf("select %q: status %d: %s", floor, rec.Code, rec.Body.String())
		}
	}
	return app, sessions, est.Id
}

// currentView reads the session's view directly.
func currentView(t *testing.T, sessions *Sessions, id string) services.FloorSnapshot {
	t.Helper()

	ctrl, err := sessions.Get(t.Context(), id)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	view, err := ctrl.View()
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	return view
}

func groupNamed(t *testing.T, view services.FloorSnapshot, name string) services.ComponentGroup {
	t.Helper()

	for _, g := range view.Quantity {
		if g.Name == name {
			return g
		}
	}
	t.Fatalf("component %q not on floor %q", name, view.Floor)
	return services.ComponentGroup{}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}
