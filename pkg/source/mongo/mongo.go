// Package mongo loads rosters from MongoDB collections.
//
// Employees are read from one collection and projects, optionally, from
// another. Documents use the snake_case field names of the HRIS API.
package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/hris"
)

// Default collection names.
const (
	DefaultEmployees = "employees"
	DefaultProjects  = "projects"
)

// Config selects the database and collections.
type Config struct {
	URI       string
	Database  string
	Employees string // DefaultEmployees when empty
	Projects  string // DefaultProjects when empty; "-" skips projects
	Timeout   time.Duration
}

// Source reads rosters from MongoDB.
type Source struct {
	client    *mongo.Client
	db        string
	employees *mongo.Collection
	projects  *mongo.Collection
	owned     bool
}

// Connect dials MongoDB and returns a source that owns the client.
func Connect(ctx context.Context, cfg Config) (*Source, error) {
	if cfg.URI == "" || cfg.Database == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo source needs a uri and a database")
	}
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.Timeout > 0 {
		opts.SetTimeout(cfg.Timeout)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}
	s := New(client, cfg)
	s.owned = true
	return s, nil
}

// New wraps an existing client. The caller keeps ownership of client.
func New(client *mongo.Client, cfg Config) *Source {
	db := client.Database(cfg.Database)
	s := &Source{
		client:    client,
		db:        cfg.Database,
		employees: db.Collection(orDefault(cfg.Employees, DefaultEmployees)),
	}
	if cfg.Projects != "-" {
		s.projects = db.Collection(orDefault(cfg.Projects, DefaultProjects))
	}
	return s
}

// Name returns "mongo:" followed by database and collection.
func (s *Source) Name() string {
	return "mongo:" + s.db + "/" + s.employees.Name()
}

// Load reads every employee in natural order, then every project.
func (s *Source) Load(ctx context.Context) (*hris.Roster, error) {
	var docs []employeeDoc
	if err := findAll(ctx, s.employees, &docs); err != nil {
		return nil, err
	}
	roster := &hris.Roster{Employees: make([]hris.Employee, 0, len(docs))}
	for i, d := range docs {
		e, err := d.employee()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidEmployee, err, "document %d", i)
		}
		roster.Employees = append(roster.Employees, e)
	}

	if s.projects != nil {
		if err := findAll(ctx, s.projects, &roster.Projects); err != nil {
			return nil, err
		}
	}

	if err := roster.Validate(); err != nil {
		return nil, err
	}
	roster.FetchedAt = time.Now().UTC()
	return roster, nil
}

// Close disconnects the client if the source created it.
func (s *Source) Close(ctx context.Context) error {
	if !s.owned {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func findAll(ctx context.Context, coll *mongo.Collection, out any) error {
	cur, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "$natural", Value: 1}}))
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "query %s", coll.Name())
	}
	if err := cur.All(ctx, out); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s", coll.Name())
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// employeeDoc is the stored shape of an employee.
type employeeDoc struct {
	ID             any        `bson:"id"`
	ManagerID      any        `bson:"manager_id,omitempty"`
	EmployeeNumber string     `bson:"employee_number,omitempty"`
	FirstName      string     `bson:"first_name,omitempty"`
	LastName       string     `bson:"last_name,omitempty"`
	DisplayName    string     `bson:"display_name,omitempty"`
	Title          string     `bson:"job_title,omitempty"`
	Department     string     `bson:"department,omitempty"`
	Trade          string     `bson:"trade,omitempty"`
	Status         string     `bson:"status,omitempty"`
	HireDate       *time.Time `bson:"hire_date,omitempty"`
}

func (d employeeDoc) employee() (hris.Employee, error) {
	e := hris.Employee{
		ID:             idString(d.ID),
		ManagerID:      idString(d.ManagerID),
		EmployeeNumber: d.EmployeeNumber,
		FirstName:      d.FirstName,
		LastName:       d.LastName,
		DisplayName:    d.DisplayName,
		Title:          d.Title,
		Department:     d.Department,
		Trade:          d.Trade,
		Status:         hris.StatusActive,
	}
	if d.Status != "" {
		st, err := hris.ParseStatus(d.Status)
		if err != nil {
			return hris.Employee{}, err
		}
		e.Status = st
	}
	if d.HireDate != nil {
		e.HireDate = d.HireDate.UTC().Truncate(24 * time.Hour)
	}
	return e, nil
}
