// Package hris defines the HR records that feed the org chart and validates
// them at the ingestion boundary.
//
// Rosters arrive from external collaborators (a REST API, a JSON file, a
// MongoDB collection) as loosely shaped JSON. This package turns them into
// typed [Employee] and [Project] values and rejects malformed records early,
// so that tree building and layout never see half-formed data.
//
// # Employees
//
// An [Employee] references its manager through ManagerID. A ManagerID that is
// empty, refers to the employee itself, or names an employee that is not in
// the same roster is not an error: the employee simply becomes a root of the
// org chart. A missing ID, a duplicate ID, an unknown [Status] or an
// unparsable hire date is an error and fails the whole roster.
//
// # Wire format
//
// [DecodeRoster] accepts either a bare JSON array of employees or an object
// with "employees" and "projects" keys. Field aliases used by the HRIS
// backend ("parentId", "reports_to_id", "department_name", "job_title") are
// accepted on input; output always uses the canonical names.
//
//	roster, err := hris.DecodeRoster(f)
//	if err != nil {
//	    return err // errors.ErrCodeInvalidEmployee
//	}
//	forest := orgtree.Build(roster.Employees, orgtree.DefaultLimits())
package hris
