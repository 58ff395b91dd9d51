package hris

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// RoleForeman is the crew role highlighted in the project view.
const RoleForeman = "Foreman"

// ProjectActive is the status of a project that is currently running.
const ProjectActive = "ACTIVE"

// Project is a job site with its crews. Projects arrive already nested and
// need no tree building.
type Project struct {
	ID             string `json:"id" bson:"id"`
	Name           string `json:"name" bson:"name"`
	Code           string `json:"code,omitempty" bson:"code,omitempty"`
	Status         string `json:"status,omitempty" bson:"status,omitempty"`
	ProjectManager string `json:"project_manager,omitempty" bson:"project_manager,omitempty"`
	TotalWorkers   int    `json:"total_workers" bson:"total_workers"`
	Crews          []Crew `json:"crews" bson:"crews"`
}

// Crew groups the members assigned to a project under one crew name.
type Crew struct {
	Name    string   `json:"name" bson:"name"`
	Members []Member `json:"members" bson:"members"`
}

// Member is an employee's assignment to a crew.
type Member struct {
	ID    string `json:"id" bson:"id"`
	Name  string `json:"name" bson:"name"`
	Title string `json:"job_title,omitempty" bson:"job_title,omitempty"`
	Trade string `json:"trade,omitempty" bson:"trade,omitempty"`
	Role  string `json:"role,omitempty" bson:"role,omitempty"`
}

// IsActive reports whether the project is running. The comparison ignores
// case; an empty status is not active.
func (p Project) IsActive() bool { return strings.EqualFold(p.Status, ProjectActive) }

// IsForeman reports whether the member leads the crew.
func (m Member) IsForeman() bool { return m.Role == RoleForeman }

// Validate checks the project header and every member reference.
func (p Project) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ID, validation.Required, validation.By(idRule)),
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.TotalWorkers, validation.Min(0)),
		validation.Field(&p.Crews),
	)
}

// Validate checks the crew's members.
func (c Crew) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Members),
	)
}

// Validate checks that the member carries an ID.
func (m Member) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ID, validation.Required, validation.By(idRule)),
	)
}

// MemberCount returns the number of members across all crews.
func (p Project) MemberCount() int {
	n := 0
	for _, c := range p.Crews {
		n += len(c.Members)
	}
	return n
}
