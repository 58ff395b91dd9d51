package hris

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/matzehuels/orgtower/pkg/errors"
)

// DateLayout is the wire format of hire dates.
const DateLayout = "2006-01-02"

// Employee is one record of the flat roster.
type Employee struct {
	ID             string    `json:"id"`
	ManagerID      string    `json:"manager_id,omitempty"`
	EmployeeNumber string    `json:"employee_number,omitempty"`
	FirstName      string    `json:"first_name,omitempty"`
	LastName       string    `json:"last_name,omitempty"`
	DisplayName    string    `json:"display_name"`
	Title          string    `json:"title,omitempty"`
	Department     string    `json:"department,omitempty"`
	Trade          string    `json:"trade,omitempty"`
	Status         Status    `json:"status"`
	HireDate       time.Time `json:"-"`
}

// HasManager reports whether the employee names a manager other than itself.
// Whether that manager exists in the roster is decided by the tree builder.
func (e Employee) HasManager() bool {
	return e.ManagerID != "" && e.ManagerID != e.ID
}

// Name returns the display name, falling back to first and last name and
// finally to the ID.
func (e Employee) Name() string {
	if e.DisplayName != "" {
		return e.DisplayName
	}
	if full := strings.TrimSpace(e.FirstName + " " + e.LastName); full != "" {
		return full
	}
	return e.ID
}

// Initials returns up to two upper-case initials for avatar badges: first
// and last name when both are set, otherwise the first and last word of
// [Employee.Name].
func (e Employee) Initials() string {
	words := []string{strings.TrimSpace(e.FirstName), strings.TrimSpace(e.LastName)}
	if words[0] == "" || words[1] == "" {
		words = strings.Fields(e.Name())
	}
	if len(words) == 0 {
		return ""
	}
	first, last := words[0], words[len(words)-1]
	out := []rune(strings.ToUpper(first))[:1]
	if len(words) > 1 {
		out = append(out, []rune(strings.ToUpper(last))[0])
	}
	return string(out)
}

// Validate checks a single record. Roster-level rules (unique IDs) are
// checked by [Validate].
func (e Employee) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.ID, validation.Required, validation.By(idRule)),
		validation.Field(&e.ManagerID, validation.By(optionalIDRule)),
		validation.Field(&e.Status, validation.Required, validation.In(StatusActive, StatusOnLeave, StatusTerminated, StatusSuspended)),
		validation.Field(&e.DisplayName, validation.Length(0, 200)),
	)
}

func idRule(value any) error {
	s, _ := value.(string)
	return errors.ValidateID(s)
}

func optionalIDRule(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	return errors.ValidateID(s)
}

// employeeWire is the permissive input shape.
type employeeWire struct {
	ID             json.RawMessage `json:"id"`
	ManagerID      json.RawMessage `json:"manager_id"`
	ParentID       json.RawMessage `json:"parentId"`
	ReportsToID    json.RawMessage `json:"reports_to_id"`
	EmployeeNumber string          `json:"employee_number"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	DisplayName    string          `json:"display_name"`
	Name           string          `json:"name"`
	Title          string          `json:"title"`
	JobTitle       string          `json:"job_title"`
	Department     string          `json:"department"`
	DepartmentName string          `json:"department_name"`
	Trade          string          `json:"trade"`
	Status         string          `json:"status"`
	HireDate       string          `json:"hire_date"`
}

// UnmarshalJSON decodes an employee, accepting the HRIS field aliases.
// Numeric IDs are converted to strings. A value that is not an object is
// malformed input rather than an invalid employee.
func (e *Employee) UnmarshalJSON(data []byte) error {
	if v := bytes.TrimSpace(data); len(v) == 0 || (v[0] != '{' && !bytes.Equal(v, []byte("null"))) {
		return errors.New(errors.ErrCodeInvalidInput, "employee must be a JSON object, got %.20s", v)
	}
	var w employeeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidEmployee, err, "decode employee")
	}

	out := Employee{
		ID:             rawID(w.ID),
		ManagerID:      firstNonEmpty(rawID(w.ManagerID), rawID(w.ParentID), rawID(w.ReportsToID)),
		EmployeeNumber: w.EmployeeNumber,
		FirstName:      w.FirstName,
		LastName:       w.LastName,
		DisplayName:    firstNonEmpty(w.DisplayName, w.Name),
		Title:          firstNonEmpty(w.Title, w.JobTitle),
		Department:     firstNonEmpty(w.Department, w.DepartmentName),
		Trade:          w.Trade,
		Status:         StatusActive,
	}
	if w.Status != "" {
		st, err := ParseStatus(w.Status)
		if err != nil {
			return err
		}
		out.Status = st
	}
	if w.HireDate != "" {
		t, err := ParseDate(w.HireDate)
		if err != nil {
			return err
		}
		out.HireDate = t
	}
	*e = out
	return nil
}

// MarshalJSON encodes the canonical shape with the hire date as YYYY-MM-DD.
func (e Employee) MarshalJSON() ([]byte, error) {
	type plain Employee
	out := struct {
		plain
		DisplayName string `json:"display_name"`
		HireDate    string `json:"hire_date,omitempty"`
	}{plain: plain(e), DisplayName: e.Name()}
	if !e.HireDate.IsZero() {
		out.HireDate = e.HireDate.Format(DateLayout)
	}
	return json.Marshal(out)
}

// ParseDate parses a hire date. Timestamps are truncated to their date part,
// matching how the HRIS API serialises datetimes.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, errors.Wrap(errors.ErrCodeInvalidEmployee, err, "invalid hire date %q", s)
	}
	return t, nil
}

func rawID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
