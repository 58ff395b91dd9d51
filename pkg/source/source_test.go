package source

import (
	"context"
	"testing"

	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/hris"
)

func TestKind(t *testing.T) {
	tests := []struct {
		location string
		want     string
		wantErr  bool
	}{
		{"roster.json", KindFile, false},
		{"/var/data/people.json", KindFile, false},
		{"https://hris.example.com/api", KindHTTP, false},
		{"http://localhost:8000", KindHTTP, false},
		{"mongodb://localhost:27017/hr", KindMongo, false},
		{"mongodb+srv://cluster.example.net/hr", KindMongo, false},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := Kind(tt.location)
		if (err != nil) != tt.wantErr {
			t.Errorf("Kind(%q) error = %v, wantErr %v", tt.location, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("Kind(%q) = %q, want %q", tt.location, got, tt.want)
		}
	}
}

func TestStatic(t *testing.T) {
	s := Static{Label: "test", Roster: &hris.Roster{Employees: []hris.Employee{
		{ID: "1", Status: hris.StatusActive},
	}}}
	if s.Name() != "static:test" {
		t.Errorf("Name = %q", s.Name())
	}
	r, err := s.Load(context.Background())
	if err != nil || len(r.Employees) != 1 {
		t.Fatalf("Load = %v, %v", r, err)
	}

	bad := Static{Roster: &hris.Roster{Employees: []hris.Employee{{ID: "1", Status: hris.StatusActive}, {ID: "1", Status: hris.StatusActive}}}}
	if _, err := bad.Load(context.Background()); !errors.Is(err, errors.ErrCodeInvalidEmployee) {
		t.Errorf("duplicate ids: err = %v", err)
	}

	empty, err := Static{}.Load(context.Background())
	if err != nil || len(empty.Employees) != 0 {
		t.Errorf("nil roster: %v, %v", empty, err)
	}
}
