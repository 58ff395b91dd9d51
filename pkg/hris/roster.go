package hris

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/matzehuels/orgtower/pkg/errors"
)

// Roster is one snapshot of the HR data source, refreshed wholesale.
type Roster struct {
	Employees []Employee `json:"employees"`
	Projects  []Project  `json:"projects,omitempty"`
	FetchedAt time.Time  `json:"fetched_at,omitempty"`
}

// DecodeRoster reads a roster from r and validates it.
// The input is either a JSON array of employees or an object with
// "employees" and "projects" keys.
func DecodeRoster(r io.Reader) (*Roster, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read roster")
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return &Roster{}, nil
	}

	var roster Roster
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &roster.Employees); err != nil {
			return nil, asInvalid(err)
		}
	case '{':
		if err := json.Unmarshal(data, &roster); err != nil {
			return nil, asInvalid(err)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "roster must be a JSON array or object")
	}

	if err := roster.Validate(); err != nil {
		return nil, err
	}
	return &roster, nil
}

// DecodeEmployees reads a JSON array of employees and validates it.
func DecodeEmployees(r io.Reader) ([]Employee, error) {
	var employees []Employee
	if err := json.NewDecoder(r).Decode(&employees); err != nil {
		return nil, asInvalid(err)
	}
	if err := Validate(employees); err != nil {
		return nil, err
	}
	return employees, nil
}

// DecodeProjects reads a JSON array of projects and validates it.
func DecodeProjects(r io.Reader) ([]Project, error) {
	var projects []Project
	if err := json.NewDecoder(r).Decode(&projects); err != nil {
		return nil, asInvalid(err)
	}
	for i, p := range projects {
		if err := p.Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidProject, err, "project %d (%s)", i, p.ID)
		}
	}
	return projects, nil
}

// Validate checks every employee and project of the roster.
func (r *Roster) Validate() error {
	if err := Validate(r.Employees); err != nil {
		return err
	}
	for i, p := range r.Projects {
		if err := p.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidProject, err, "project %d (%s)", i, p.ID)
		}
	}
	return nil
}

// Validate checks each record and that IDs are unique.
func Validate(employees []Employee) error {
	seen := make(map[string]int, len(employees))
	for i, e := range employees {
		if err := e.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidEmployee, err, "employee %d (%s)", i, e.ID)
		}
		if prev, dup := seen[e.ID]; dup {
			return errors.New(errors.ErrCodeInvalidEmployee, "employee %d: duplicate id %q (first seen at %d)", i, e.ID, prev)
		}
		seen[e.ID] = i
	}
	return nil
}

// Employee returns the employee with the given ID.
func (r *Roster) Employee(id string) (Employee, bool) {
	for _, e := range r.Employees {
		if e.ID == id {
			return e, true
		}
	}
	return Employee{}, false
}

// Search returns up to limit employees whose name contains q
// (case-insensitive). Only active employees are considered.
func (r *Roster) Search(q string, limit int) []Employee {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return nil
	}
	var out []Employee
	for _, e := range r.Employees {
		if e.Status != StatusActive {
			continue
		}
		if strings.Contains(strings.ToLower(e.Name()), q) {
			out = append(out, e)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}

// Summary holds the roster figures shown in the chart status bar.
type Summary struct {
	Employees int `json:"employees"`
	Active    int `json:"active"`
	Projects  int `json:"projects"`
}

// Summarize counts employees, active employees and projects.
func (r *Roster) Summarize() Summary {
	s := Summary{Employees: len(r.Employees), Projects: len(r.Projects)}
	for _, e := range r.Employees {
		if e.Status == StatusActive {
			s.Active++
		}
	}
	return s
}

// DirectReports counts direct reports per manager ID over the whole roster,
// independent of any rendering caps.
func DirectReports(employees []Employee) map[string]int {
	out := make(map[string]int)
	for _, e := range employees {
		if e.HasManager() {
			out[e.ManagerID]++
		}
	}
	return out
}

func asInvalid(err error) error {
	if errors.GetCode(err) != "" {
		return err
	}
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode roster")
}
