package server

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/orgtower/pkg/chart"
	"github.com/matzehuels/orgtower/pkg/hris"
	"github.com/matzehuels/orgtower/pkg/orgtree"
	"github.com/matzehuels/orgtower/pkg/realtime"
	"github.com/matzehuels/orgtower/pkg/source"
)

func emp(id, manager string, status hris.Status) hris.Employee {
	return hris.Employee{ID: id, ManagerID: manager, DisplayName: strings.ToUpper(id[:1]) + id[1:], Status: status}
}

func testRoster() *hris.Roster {
	return &hris.Roster{
		Employees: []hris.Employee{
			emp("ceo", "", hris.StatusActive),
			emp("cto", "ceo", hris.StatusActive),
			emp("dev", "cto", hris.StatusActive),
			emp("leaver", "ceo", hris.StatusOnLeave),
		},
		Projects: []hris.Project{{ID: "p1", Name: "Mill", Code: "MILL", Status: "ACTIVE"}},
	}
}

func newTestServer(t *testing.T, roster *hris.Roster, token string) (*Server, http.Handler) {
	t.Helper()
	srv := New(source.Static{Label: "test", Roster: roster}, Options{
		Token:  token,
		Limits: orgtree.DefaultLimits(),
	})
	t.Cleanup(func() { srv.Close() })
	if err := srv.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	return srv, srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func TestHealthBeforeReload(t *testing.T) {
	srv := New(source.Static{Label: "empty"}, Options{})
	defer srv.Close()

	w := do(t, srv.Handler(), http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := decode[map[string]any](t, w)["status"]; got != "loading" {
		t.Errorf("status field = %v, want loading", got)
	}

	w = do(t, srv.Handler(), http.MethodGet, APIPrefix+"/org-chart/flat", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("flat before reload = %d, want 404", w.Code)
	}
}

func TestOrgChartEndpoints(t *testing.T) {
	_, h := newTestServer(t, testRoster(), "")

	tests := []struct {
		name     string
		path     string
		status   int
		contains string
	}{
		{"flat active only", "/org-chart/flat", 200, `"cto"`},
		{"projects", "/org-chart/projects", 200, `"MILL"`},
		{"search", "/org-chart/search?q=de", 200, `"dev"`},
		{"search needs q", "/org-chart/search", 400, "INVALID_INPUT"},
		{"corporate depth too large", "/org-chart/corporate?depth=11", 400, "INVALID_INPUT"},
		{"corporate depth not a number", "/org-chart/corporate?depth=x", 400, "INVALID_INPUT"},
		{"layout", "/org-chart/layout", 200, `"nodes"`},
		{"svg", "/org-chart/chart.svg", 200, "<svg"},
		{"dot", "/org-chart/chart.dot", 200, `"ceo" -> "cto"`},
		{"bad style", "/org-chart/chart.svg?style=neon", 400, "INVALID_STYLE"},
		{"employee", "/org-chart/employees/cto", 200, `"span_color":"green"`},
		{"unknown employee", "/org-chart/employees/ghost", 404, "EMPLOYEE_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodGet, APIPrefix+tt.path, nil)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), tt.contains) {
				t.Errorf("body does not contain %q:\n%s", tt.contains, w.Body.String())
			}
		})
	}
}

func TestFlat(t *testing.T) {
	_, h := newTestServer(t, testRoster(), "")

	active := decode[[]hris.Employee](t, do(t, h, http.MethodGet, APIPrefix+"/org-chart/flat", nil))
	if len(active) != 3 {
		t.Errorf("active employees = %d, want 3", len(active))
	}
	all := decode[[]hris.Employee](t, do(t, h, http.MethodGet, APIPrefix+"/org-chart/flat?all=true", nil))
	if len(all) != 4 {
		t.Errorf("all employees = %d, want 4", len(all))
	}
}

func TestCorporateDepth(t *testing.T) {
	_, h := newTestServer(t, testRoster(), "")

	tests := []struct {
		query string
		nodes int
	}{
		{"", 3},
		{"?depth=1", 2},
		{"?depth=2", 3},
	}
	for _, tt := range tests {
		w := do(t, h, http.MethodGet, APIPrefix+"/org-chart/corporate"+tt.query, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%q: status = %d", tt.query, w.Code)
		}
		roots := decode[[]chart.TreeNode](t, w)
		if len(roots) != 1 || roots[0].ID != "ceo" {
			t.Fatalf("%q: roots = %+v", tt.query, roots)
		}
		if got := roots[0].Count(); got != tt.nodes {
			t.Errorf("%q: nodes = %d, want %d", tt.query, got, tt.nodes)
		}
		if roots[0].DirectReportsCount != 2 {
			t.Errorf("%q: ceo direct reports = %d, want 2", tt.query, roots[0].DirectReportsCount)
		}
	}
}

func TestCorporateSkipsInactiveBranches(t *testing.T) {
	roster := &hris.Roster{Employees: []hris.Employee{
		emp("ceo", "", hris.StatusActive),
		emp("ops", "ceo", hris.StatusOnLeave),
		emp("crew", "ops", hris.StatusActive),
		emp("retired", "", hris.StatusTerminated),
		emp("dev", "ceo", hris.StatusActive),
	}}
	_, h := newTestServer(t, roster, "")

	roots := decode[[]chart.TreeNode](t, do(t, h, http.MethodGet, APIPrefix+"/org-chart/corporate", nil))
	if len(roots) != 1 || roots[0].ID != "ceo" {
		t.Fatalf("roots = %+v, want only ceo", roots)
	}
	if got := roots[0].Count(); got != 2 {
		t.Errorf("nodes = %d, want 2 (ceo, dev)", got)
	}
	if len(roots[0].Children) != 1 || roots[0].Children[0].ID != "dev" {
		t.Errorf("ceo children = %+v", roots[0].Children)
	}
	if roots[0].DirectReportsCount != 2 {
		t.Errorf("ceo direct reports = %d, want 2", roots[0].DirectReportsCount)
	}
}

func TestProjectsActiveOnly(t *testing.T) {
	roster := testRoster()
	roster.Projects = append(roster.Projects,
		hris.Project{ID: "p2", Name: "Dam", Code: "DAM", Status: "COMPLETED"},
		hris.Project{ID: "p3", Name: "Pier", Code: "PIER"},
	)
	_, h := newTestServer(t, roster, "")

	active := decode[[]hris.Project](t, do(t, h, http.MethodGet, APIPrefix+"/org-chart/projects", nil))
	if len(active) != 1 || active[0].Code != "MILL" {
		t.Errorf("projects = %+v, want only MILL", active)
	}
	all := decode[[]hris.Project](t, do(t, h, http.MethodGet, APIPrefix+"/org-chart/projects?all=true", nil))
	if len(all) != 3 {
		t.Errorf("projects?all=true = %d, want 3", len(all))
	}
}

func TestSummary(t *testing.T) {
	_, h := newTestServer(t, testRoster(), "")
	got := decode[summaryResponse](t, do(t, h, http.MethodGet, APIPrefix+"/org-chart/summary", nil))
	if got.Employees != 4 || got.Active != 3 || got.Projects != 1 {
		t.Errorf("summary = %+v", got.Summary)
	}
	if got.Rendered != 4 || got.Hidden != 0 {
		t.Errorf("rendered = %d hidden = %d", got.Rendered, got.Hidden)
	}
	if got.RosterHash == "" || got.FetchedAt.IsZero() {
		t.Errorf("missing hash or fetch time: %+v", got)
	}
}

func TestChartHeaders(t *testing.T) {
	_, h := newTestServer(t, testRoster(), "")
	first := do(t, h, http.MethodGet, APIPrefix+"/org-chart/chart.svg", nil)
	if first.Header().Get("Content-Type") != "image/svg+xml" {
		t.Errorf("content type = %q", first.Header().Get("Content-Type"))
	}
	if first.Header().Get("ETag") == "" {
		t.Error("missing ETag")
	}
}

func TestBearerAuth(t *testing.T) {
	_, h := newTestServer(t, testRoster(), "s3cret")

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"health is public", "/healthz", "", 200},
		{"missing token", APIPrefix + "/org-chart/flat", "", 401},
		{"wrong token", APIPrefix + "/org-chart/flat", "Bearer nope", 401},
		{"basic auth", APIPrefix + "/org-chart/flat", "Basic s3cret", 401},
		{"header token", APIPrefix + "/org-chart/flat", "Bearer s3cret", 200},
		{"query token", APIPrefix + "/org-chart/flat?access_token=s3cret", "", 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	_, h := newTestServer(t, testRoster(), "")
	base := APIPrefix + "/sessions"

	w := do(t, h, http.MethodPost, base, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", w.Code, w.Body.String())
	}
	sess := decode[sessionResponse](t, w)
	if sess.View.Zoom != 0.7 || sess.View.Pan.X != 50 || sess.State != "idle" {
		t.Fatalf("new session = %+v", sess)
	}
	events := base + "/" + sess.ID + "/events"

	// A pan spread over three requests.
	steps := []struct {
		ev    map[string]any
		state string
	}{
		{map[string]any{"type": "pointer_down", "x": 0, "y": 0}, "panning"},
		{map[string]any{"type": "pointer_move", "x": 10, "y": 10}, "panning"},
		{map[string]any{"type": "pointer_up"}, "idle"},
	}
	for _, st := range steps {
		w = do(t, h, http.MethodPost, events, st.ev)
		if w.Code != http.StatusOK {
			t.Fatalf("%v = %d %s", st.ev["type"], w.Code, w.Body.String())
		}
		sess = decode[sessionResponse](t, w)
		if sess.State != st.state {
			t.Errorf("after %v state = %q, want %q", st.ev["type"], sess.State, st.state)
		}
	}
	if sess.View.Pan.X != 60 || sess.View.Pan.Y != 60 {
		t.Errorf("pan = %+v, want (60,60)", sess.View.Pan)
	}

	w = do(t, h, http.MethodPost, events, map[string]any{"type": "zoom_in"})
	sess = decode[sessionResponse](t, w)
	if math.Abs(sess.View.Zoom-0.8) > 1e-9 {
		t.Errorf("zoom = %v, want 0.8", sess.View.Zoom)
	}

	w = do(t, h, http.MethodPost, events, map[string]any{"type": "select", "id": "dev"})
	sess = decode[sessionResponse](t, w)
	if sess.View.SelectedID != "dev" || len(sess.Selected) == 0 {
		t.Errorf("selection = %q %+v", sess.View.SelectedID, sess.Selected)
	}

	w = do(t, h, http.MethodGet, base+"/"+sess.ID, nil)
	if got := decode[sessionResponse](t, w); got.View.SelectedID != "dev" {
		t.Errorf("stored selection = %q", got.View.SelectedID)
	}

	w = do(t, h, http.MethodDelete, base+"/"+sess.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete = %d", w.Code)
	}
	w = do(t, h, http.MethodGet, base+"/"+sess.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
}

func TestSessionEventErrors(t *testing.T) {
	_, h := newTestServer(t, testRoster(), "")
	sess := decode[sessionResponse](t, do(t, h, http.MethodPost, APIPrefix+"/sessions", nil))
	events := APIPrefix + "/sessions/" + sess.ID + "/events"

	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{"unknown type", events, map[string]any{"type": "spin"}, 400},
		{"select without id", events, map[string]any{"type": "select"}, 400},
		{"select off chart", events, map[string]any{"type": "select", "id": "ghost"}, 404},
		{"unknown session", APIPrefix + "/sessions/nope/events", map[string]any{"type": "reset"}, 404},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, tt.path, tt.body)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
		})
	}
}

func TestSessionSurvivesReload(t *testing.T) {
	roster := testRoster()
	srv, h := newTestServer(t, roster, "")

	sess := decode[sessionResponse](t, do(t, h, http.MethodPost, APIPrefix+"/sessions", map[string]any{
		"view": map[string]any{"zoom": 1.5, "pan": map[string]any{"x": 5, "y": 6}, "selected_id": "dev"},
	}))
	if sess.View.SelectedID != "dev" || sess.View.Zoom != 1.5 {
		t.Fatalf("created = %+v", sess.View)
	}

	// dev leaves the company.
	roster.Employees = roster.Employees[:2]
	if err := srv.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	got := decode[sessionResponse](t, do(t, h, http.MethodGet, APIPrefix+"/sessions/"+sess.ID, nil))
	if got.View.Zoom != 1.5 || got.View.Pan.X != 5 {
		t.Errorf("view not kept: %+v", got.View)
	}
	if got.View.SelectedID != "" {
		t.Errorf("selection of removed employee kept: %q", got.View.SelectedID)
	}
}

func TestReloadPublishesRosterUpdates(t *testing.T) {
	roster := testRoster()
	srv, h := newTestServer(t, roster, "")
	ts := httptest.NewServer(h)
	defer ts.Close()

	svc := realtime.NewService("ws" + strings.TrimPrefix(ts.URL, "http") + APIPrefix + "/ws")
	updates := make(chan realtime.RosterUpdate, 4)
	svc.Subscribe(realtime.EventRosterUpdated, func(ev realtime.Event) {
		var u realtime.RosterUpdate
		if err := ev.Decode(&u); err == nil {
			updates <- u
		}
	})
	if err := svc.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer svc.Disconnect()

	deadline := time.Now().Add(5 * time.Second)
	for srv.Hub().ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Unchanged roster: no event.
	if err := srv.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	roster.Employees = append(roster.Employees, emp("ops", "ceo", hris.StatusActive))
	if err := srv.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	select {
	case u := <-updates:
		if u.Employees != 5 || u.Active != 4 || u.Source != "static:test" {
			t.Errorf("update = %+v", u)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no roster.updated event")
	}
	select {
	case u := <-updates:
		t.Errorf("unexpected second update %+v", u)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestReloadFailureKeepsSnapshot(t *testing.T) {
	roster := testRoster()
	srv, h := newTestServer(t, roster, "")

	roster.Employees = append(roster.Employees, emp("ceo", "", hris.StatusActive))
	if err := srv.Reload(context.Background()); err == nil {
		t.Fatal("duplicate id accepted")
	}
	w := do(t, h, http.MethodGet, APIPrefix+"/org-chart/summary", nil)
	if got := decode[summaryResponse](t, w); got.Employees != 4 {
		t.Errorf("employees = %d, want previous snapshot's 4", got.Employees)
	}
}
