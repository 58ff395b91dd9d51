package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/hris"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const roster = `[
  {"id": "1", "first_name": "Ada", "last_name": "King", "status": "active"},
  {"id": "2", "manager_id": "1", "first_name": "Ben", "last_name": "Ode", "status": "on_leave"}
]`

func write(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "roster.json", roster)
	projects := write(t, dir, "projects.json", `[{"id":"p1","name":"Tower","crews":[{"name":"A","members":[{"id":"2","name":"Ben Ode","role":"Foreman"}]}]}]`)

	src := New(path, WithProjects(projects))
	r, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(r.Employees) != 2 || r.Employees[1].Status != hris.StatusOnLeave {
		t.Errorf("employees = %+v", r.Employees)
	}
	if len(r.Projects) != 1 || !r.Projects[0].Crews[0].Members[0].IsForeman() {
		t.Errorf("projects = %+v", r.Projects)
	}
	if r.FetchedAt.IsZero() {
		t.Error("FetchedAt should be the file mtime")
	}
	if !strings.HasPrefix(src.Name(), "file:") || !filepath.IsAbs(strings.TrimPrefix(src.Name(), "file:")) {
		t.Errorf("Name = %q", src.Name())
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
		code errors.Code
	}{
		{"missing", filepath.Join(dir, "nope.json"), errors.ErrCodeFileNotFound},
		{"malformed", write(t, dir, "bad.json", `{"employees": [{"first_name": "x"}]}`), errors.ErrCodeInvalidEmployee},
		{"not json", write(t, dir, "text.json", `hello`), errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.path).Load(context.Background())
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "roster.json", roster)

	ctx, cancel := context.WithCancel(context.Background())
	reloads := make(chan *hris.Roster, 4)
	done := make(chan error, 1)

	src := New(path, WithDebounce(20*time.Millisecond))
	go func() {
		done <- src.Watch(ctx, func(r *hris.Roster, err error) {
			if err == nil {
				reloads <- r
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	write(t, dir, "unrelated.txt", "ignored")
	write(t, dir, "roster.json", `[{"id": "9", "status": "ACTIVE"}]`)

	select {
	case r := <-reloads:
		if len(r.Employees) != 1 || r.Employees[0].ID != "9" {
			t.Errorf("reloaded roster = %+v", r.Employees)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned %v", err)
	}
}
