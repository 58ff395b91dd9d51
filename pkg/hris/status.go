package hris

import (
	"strings"

	"github.com/matzehuels/orgtower/pkg/errors"
)

// Status is the employment status of an employee.
type Status string

// Employment statuses.
const (
	StatusActive     Status = "ACTIVE"
	StatusOnLeave    Status = "ON_LEAVE"
	StatusTerminated Status = "TERMINATED"
	StatusSuspended  Status = "SUSPENDED"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusActive, StatusOnLeave, StatusTerminated, StatusSuspended}

// ParseStatus parses a status case-insensitively. Spaces and dashes are
// accepted in place of underscores ("on leave", "on-leave").
func ParseStatus(s string) (Status, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	for _, st := range Statuses {
		if Status(norm) == st {
			return st, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidEmployee, "unknown status %q", s)
}

// Label returns the human-readable form ("ON LEAVE").
func (s Status) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// Color returns the indicator dot colour used on chart nodes.
func (s Status) Color() string {
	switch s {
	case StatusActive:
		return "#22c55e"
	case StatusOnLeave:
		return "#eab308"
	case StatusTerminated:
		return "#ef4444"
	case StatusSuspended:
		return "#f97316"
	}
	return "#9ca3af"
}
