package httputil

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/orgtower/pkg/errors"
)

func TestRetry(t *testing.T) {
	transient := &RetryableError{Err: stderrors.New("flaky")}
	permanent := stderrors.New("bad request")

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   bool
	}{
		{"success", 0, nil, 1, false},
		{"recovers", 2, transient, 3, false},
		{"exhausted", 5, transient, 3, true},
		{"permanent", 5, permanent, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), 3, time.Millisecond, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 3, time.Hour, func() error {
		return &RetryableError{Err: stderrors.New("down")}
	})
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestClientGet(t *testing.T) {
	var gotAuth, gotID, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotID = r.Header.Get(HeaderRequestID)
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`[{"id":"1"}]`))
	}))
	defer srv.Close()

	c := NewClient(WithBearerToken("s3cret"))
	var out []map[string]string
	if err := c.Get(context.Background(), srv.URL+"/org-chart/flat", &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(out) != 1 || out[0]["id"] != "1" {
		t.Errorf("decoded %v", out)
	}
	if gotAuth != "Bearer s3cret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if len(gotID) != 36 {
		t.Errorf("X-Request-ID = %q, want a UUID", gotID)
	}
	if gotUA == "" {
		t.Error("User-Agent not set")
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":"yes"}`))
	}))
	defer srv.Close()

	c := NewClient(WithRetry(3, time.Millisecond))
	var out map[string]string
	if err := c.Get(context.Background(), srv.URL, &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if calls.Load() != 3 || out["ok"] != "yes" {
		t.Errorf("calls = %d, out = %v", calls.Load(), out)
	}
}

func TestClientStatusCodes(t *testing.T) {
	tests := []struct {
		status int
		code   errors.Code
	}{
		{http.StatusNotFound, errors.ErrCodeNotFound},
		{http.StatusUnauthorized, errors.ErrCodeUnauthorized},
		{http.StatusForbidden, errors.ErrCodeUnauthorized},
		{http.StatusTeapot, errors.ErrCodeNetwork},
		{http.StatusServiceUnavailable, errors.ErrCodeNetwork},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewClient(WithRetry(1, time.Millisecond))
			var out any
			err := c.Get(context.Background(), srv.URL, &out)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestClientInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	var out any
	err := NewClient().Get(context.Background(), srv.URL, &out)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want invalid input", err)
	}
}

func TestSnapshots(t *testing.T) {
	s, err := NewSnapshots(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	var miss []string
	if _, ok, err := s.Load("flat", &miss); ok || err != nil {
		t.Fatalf("Load on empty store: ok=%v err=%v", ok, err)
	}

	if err := s.Save("flat", []string{"a", "b"}); err != nil {
		t.Fatal(err)
	}
	base := time.Now()
	s.now = func() time.Time { return base.Add(time.Hour) }

	var got []string
	age, ok, err := s.Load("flat", &got)
	if !ok || err != nil {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if len(got) != 2 || got[1] != "b" {
		t.Errorf("got %v", got)
	}
	if age < 59*time.Minute {
		t.Errorf("age = %v, want about an hour", age)
	}
}

func TestSnapshotsNamespace(t *testing.T) {
	s, _ := NewSnapshots(t.TempDir())
	a := s.Namespace("a:")
	b := s.Namespace("b:")

	if err := a.Save("k", "from a"); err != nil {
		t.Fatal(err)
	}
	var v string
	if _, ok, _ := b.Load("k", &v); ok {
		t.Error("namespaces should not share keys")
	}
	if _, ok, _ := a.Load("k", &v); !ok || v != "from a" {
		t.Errorf("Load = %q, %v", v, ok)
	}
	if a.Dir() != s.Dir() {
		t.Error("namespace should share the directory")
	}
}
