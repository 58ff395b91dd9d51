package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/orgtower/pkg/canvas"
	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/hris"
	"github.com/matzehuels/orgtower/pkg/orgtree"
	"github.com/matzehuels/orgtower/pkg/orgtree/layout"
)

func testController() *canvas.Controller {
	employees := []hris.Employee{
		{ID: "ceo", Status: hris.StatusActive},
		{ID: "cto", ManagerID: "ceo", Status: hris.StatusActive},
	}
	l := layout.Compute(orgtree.Build(employees, orgtree.DefaultLimits()), layout.DefaultConfig())
	return canvas.New(l, canvas.Config{})
}

// exercise runs the shared Store contract.
func exercise(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if got, err := store.Get(ctx, "missing"); got != nil || err != nil {
		t.Fatalf("Get(missing) = %v, %v", got, err)
	}

	sess := New(canvas.DefaultConfig().DefaultView(), time.Hour)
	sess.View.SelectedID = "cto"
	sess.Gesture = canvas.Gesture{Panning: true, Anchor: canvas.Point{X: 3, Y: 4}}
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil || got == nil {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if got.View != sess.View || got.Gesture != sess.Gesture {
		t.Errorf("round trip = %+v, want %+v", got, sess)
	}

	expired := New(canvas.ViewState{Zoom: 1}, time.Hour)
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	if err := store.Set(ctx, expired); err != nil {
		t.Fatalf("Set(expired): %v", err)
	}
	if got, _ := store.Get(ctx, expired.ID); got != nil {
		t.Error("expired session returned")
	}
	if err := store.Cleanup(ctx); err != nil {
		t.Errorf("Cleanup: %v", err)
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := store.Get(ctx, sess.ID); got != nil {
		t.Error("deleted session returned")
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exercise(t, s)
	if s.Len() != 0 {
		t.Errorf("Len after cleanup and delete = %d", s.Len())
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	exercise(t, s)

	if err := s.Set(context.Background(), &Session{ID: "../escape"}); err == nil {
		t.Error("ids with separators should be rejected")
	}
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("ORGTOWER_TEST_REDIS_URL")
	if url == "" {
		t.Skip("ORGTOWER_TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatal(err)
	}
	client := redis.NewClient(opts)
	defer client.Close()
	exercise(t, NewRedisStore(client, "orgtower:test:session:"))
}

func TestViewerStore(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	v := NewViewerStoreAt(fs, time.Hour)
	ctx := context.Background()

	if got, err := v.Load(ctx); got != nil || err != nil {
		t.Fatalf("Load on empty store = %v, %v", got, err)
	}
	if err := v.Save(ctx, New(canvas.ViewState{Zoom: 1.5}, time.Minute)); err != nil {
		t.Fatal(err)
	}
	got, err := v.Load(ctx)
	if err != nil || got == nil || got.View.Zoom != 1.5 {
		t.Fatalf("Load = %+v, %v", got, err)
	}
	if time.Until(got.ExpiresAt) < 59*time.Minute {
		t.Errorf("Save should extend expiry to the store TTL, got %v", got.ExpiresAt)
	}
	if err := v.Forget(ctx); err != nil {
		t.Fatal(err)
	}
	if got, _ := v.Load(ctx); got != nil {
		t.Error("Forget should delete the session")
	}
}

func TestApply(t *testing.T) {
	c := testController()

	steps := []Event{
		{Type: EventZoomIn},
		{Type: EventWheel, DeltaY: 120},
		{Type: EventPointerDown, X: 0, Y: 0},
		{Type: EventPointerMove, X: 30, Y: 40},
		{Type: EventPointerUp},
	}
	for _, ev := range steps {
		if err := Apply(c, ev); err != nil {
			t.Fatalf("Apply(%+v): %v", ev, err)
		}
	}
	v := c.View()
	if v.Zoom < 0.749 || v.Zoom > 0.751 {
		t.Errorf("zoom = %v, want 0.75", v.Zoom)
	}
	if v.Pan != (canvas.Point{X: 80, Y: 90}) {
		t.Errorf("pan = %+v, want {80 90}", v.Pan)
	}
	if c.State() != canvas.Idle {
		t.Errorf("state = %v", c.State())
	}

	if err := Apply(c, Event{Type: EventSelect, ID: "cto"}); err != nil {
		t.Fatal(err)
	}
	if c.View().SelectedID != "cto" {
		t.Errorf("selected = %q", c.View().SelectedID)
	}
	if err := Apply(c, Event{Type: EventSelect, ID: "nobody"}); !errors.Is(err, errors.ErrCodeEmployeeNotFound) {
		t.Errorf("select unknown: %v", err)
	}
	if err := Apply(c, Event{Type: EventReset}); err != nil {
		t.Fatal(err)
	}
	if c.View().Zoom != 0.7 || c.View().SelectedID != "cto" {
		t.Errorf("after reset = %+v", c.View())
	}
	if err := Apply(c, Event{Type: EventClearSelection}); err != nil || c.View().SelectedID != "" {
		t.Errorf("clear selection: %v, %+v", err, c.View())
	}
}

func TestEventValidate(t *testing.T) {
	tests := []struct {
		ev      Event
		wantErr bool
	}{
		{Event{Type: EventReset}, false},
		{Event{Type: EventSelect, ID: "a"}, false},
		{Event{Type: EventSelect}, true},
		{Event{Type: "teleport"}, true},
		{Event{}, true},
	}
	for _, tt := range tests {
		err := tt.ev.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%+v) = %v, wantErr %v", tt.ev, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidEvent) {
			t.Errorf("Validate(%+v) code = %s", tt.ev, errors.GetCode(err))
		}
	}
}
