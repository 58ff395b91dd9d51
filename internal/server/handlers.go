package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/orgtower/pkg/buildinfo"
	"github.com/matzehuels/orgtower/pkg/chart"
	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/hris"
	"github.com/matzehuels/orgtower/pkg/orgtree"
)

// GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{
		"status":  "ok",
		"version": buildinfo.Version,
		"clients": s.opts.Hub.ClientCount(),
	}
	if snap, err := s.current(); err == nil {
		body["roster_hash"] = snap.hash
		body["loaded_at"] = snap.loadedAt
	} else {
		body["status"] = "loading"
	}
	writeJSON(w, http.StatusOK, body)
}

// GET /org-chart/flat lists active employees; ?all=true includes everyone.
func (s *Server) handleFlat(w http.ResponseWriter, r *http.Request) {
	snap, err := s.current()
	if err != nil {
		writeError(w, err)
		return
	}
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))
	employees := snap.roster.Employees
	if !all {
		employees = activeOnly(employees)
	}
	if employees == nil {
		employees = []hris.Employee{}
	}
	writeJSON(w, http.StatusOK, employees)
}

// GET /org-chart/corporate?depth=N returns the nested tree of active
// employees, N levels below the roots. Roots come from the whole roster, so
// an active report of someone on leave is dropped with its manager rather
// than promoted to a root.
func (s *Server) handleCorporate(w http.ResponseWriter, r *http.Request) {
	snap, err := s.current()
	if err != nil {
		writeError(w, err)
		return
	}
	depth, err := parseDepth(r.URL.Query().Get("depth"))
	if err != nil {
		writeError(w, err)
		return
	}
	f := orgtree.Build(snap.roster.Employees, orgtree.Limits{MaxDepth: depth + 1})
	tree := activeBranches(chart.FromForest(f))
	recount(tree, hris.DirectReports(snap.roster.Employees))
	writeJSON(w, http.StatusOK, tree)
}

// activeBranches drops inactive nodes together with everything below them.
func activeBranches(nodes []chart.TreeNode) []chart.TreeNode {
	out := make([]chart.TreeNode, 0, len(nodes))
	for _, n := range nodes {
		if n.Status != string(hris.StatusActive) {
			continue
		}
		n.Children = activeBranches(n.Children)
		if len(n.Children) == 0 {
			n.Children = nil
		}
		out = append(out, n)
	}
	return out
}

// recount replaces the active-only report counts with counts over the whole
// roster, so people on leave still widen their manager's span.
func recount(nodes []chart.TreeNode, counts map[string]int) {
	for i := range nodes {
		nodes[i].DirectReportsCount = counts[nodes[i].ID]
		nodes[i].SpanColor = hris.SpanColor(counts[nodes[i].ID])
		recount(nodes[i].Children, counts)
	}
}

// GET /org-chart/projects lists active projects; ?all=true includes every
// status.
func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	snap, err := s.current()
	if err != nil {
		writeError(w, err)
		return
	}
	projects := []hris.Project{}
	all := queryBool(r.URL.Query().Get("all"))
	for _, p := range snap.roster.Projects {
		if all || p.IsActive() {
			projects = append(projects, p)
		}
	}
	writeJSON(w, http.StatusOK, projects)
}

type searchHit struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Title      string `json:"job_title,omitempty"`
	Department string `json:"department,omitempty"`
}

// GET /org-chart/search?q=
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	snap, err := s.current()
	if err != nil {
		writeError(w, err)
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "query parameter q is required"))
		return
	}
	hits := []searchHit{}
	for _, e := range snap.roster.Search(q, searchLimit) {
		hits = append(hits, searchHit{ID: e.ID, Name: e.Name(), Title: e.Title, Department: e.Department})
	}
	writeJSON(w, http.StatusOK, hits)
}

type summaryResponse struct {
	hris.Summary
	Rendered    int       `json:"rendered"`
	Hidden      int       `json:"hidden"`
	Unreachable []string  `json:"unreachable,omitempty"`
	RosterHash  string    `json:"roster_hash"`
	FetchedAt   time.Time `json:"fetched_at"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// GET /org-chart/summary
func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.current()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		Summary:     snap.roster.Summarize(),
		Rendered:    snap.forest.Stats.Rendered,
		Hidden:      snap.forest.Stats.Hidden(),
		Unreachable: snap.forest.Stats.Unreachable,
		RosterHash:  snap.hash,
		FetchedAt:   snap.roster.FetchedAt,
		LoadedAt:    snap.loadedAt,
	})
}

// GET /org-chart/layout
func (s *Server) handleLayout(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.current()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.chart)
}

// handleChart renders the current layout. Query parameters: type, style,
// straight, spans, detailed, selected.
func (s *Server) handleChart(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := s.current()
		if err != nil {
			writeError(w, err)
			return
		}
		q := r.URL.Query()
		opts := s.pipelineOptions()
		opts.Formats = []string{format}
		opts.VizType = q.Get("type")
		opts.Style = q.Get("style")
		opts.Straight = queryBool(q.Get("straight"))
		opts.Spans = queryBool(q.Get("spans"))
		opts.Detailed = queryBool(q.Get("detailed"))
		opts.Selected = q.Get("selected")

		artifacts, hit, err := s.opts.Runner.RenderWithCacheInfo(r.Context(), snap.hash, snap.forest, snap.layout, opts)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("ETag", strconv.Quote(snap.hash))
		if hit {
			w.Header().Set("X-Cache", "HIT")
		} else {
			w.Header().Set("X-Cache", "MISS")
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(artifacts[format])
	}
}

type employeeResponse struct {
	Employee      hris.Employee `json:"employee"`
	Detail        []hris.Field  `json:"detail"`
	DirectReports int           `json:"direct_reports_count"`
	SpanColor     string        `json:"span_color"`
	OnChart       bool          `json:"on_chart"`
}

// GET /org-chart/employees/{id} returns the detail panel of one employee.
func (s *Server) handleEmployee(w http.ResponseWriter, r *http.Request) {
	snap, err := s.current()
	if err != nil {
		writeError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	e, ok := snap.roster.Employee(id)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeEmployeeNotFound, "employee %q not found", id))
		return
	}
	reports := hris.DirectReports(snap.roster.Employees)[id]
	_, onChart := snap.layout.Lookup(id)
	writeJSON(w, http.StatusOK, employeeResponse{
		Employee:      e,
		Detail:        hris.Detail(e),
		DirectReports: reports,
		SpanColor:     hris.SpanColor(reports),
		OnChart:       onChart,
	})
}

func parseDepth(raw string) (int, error) {
	if raw == "" {
		return defaultCorporateDepth, nil
	}
	d, err := strconv.Atoi(raw)
	if err != nil || d < 1 || d > maxCorporateDepth {
		return 0, errors.New(errors.ErrCodeInvalidInput, "depth must be an integer between 1 and %d", maxCorporateDepth)
	}
	return d, nil
}

func activeOnly(employees []hris.Employee) []hris.Employee {
	var out []hris.Employee
	for _, e := range employees {
		if e.Status == hris.StatusActive {
			out = append(out, e)
		}
	}
	return out
}

func queryBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}
