package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/hris"
)

func TestIDString(t *testing.T) {
	oid := primitive.NewObjectID()
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"E-1", "E-1"},
		{int32(7), "7"},
		{int64(42), "42"},
		{float64(3), "3"},
		{oid, oid.Hex()},
	}
	for _, tt := range tests {
		if got := idString(tt.in); got != tt.want {
			t.Errorf("idString(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEmployeeDoc(t *testing.T) {
	hire := time.Date(2021, 4, 5, 13, 30, 0, 0, time.UTC)
	doc := employeeDoc{
		ID:         int32(2),
		ManagerID:  int32(1),
		FirstName:  "Ben",
		LastName:   "Ode",
		Title:      "Foreman",
		Status:     "on leave",
		HireDate:   &hire,
		Department: "Field",
	}
	e, err := doc.employee()
	if err != nil {
		t.Fatal(err)
	}
	if e.ID != "2" || e.ManagerID != "1" || e.Status != hris.StatusOnLeave {
		t.Errorf("employee = %+v", e)
	}
	if got := e.HireDate.Format(hris.DateLayout); got != "2021-04-05" {
		t.Errorf("hire date = %s", got)
	}

	if _, err := (employeeDoc{ID: "x", Status: "retired"}).employee(); err == nil {
		t.Error("unknown status should fail")
	}
	if e, _ := (employeeDoc{ID: "x"}).employee(); e.Status != hris.StatusActive {
		t.Errorf("empty status = %q, want ACTIVE", e.Status)
	}
}

func TestConnectRequiresConfig(t *testing.T) {
	if _, err := Connect(context.Background(), Config{}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v", err)
	}
}

// TestLoadIntegration runs against a live server when ORGTOWER_TEST_MONGO_URI is set.
func TestLoadIntegration(t *testing.T) {
	uri := os.Getenv("ORGTOWER_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("ORGTOWER_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	db := "orgtower_test_" + primitive.NewObjectID().Hex()
	src, err := Connect(ctx, Config{URI: uri, Database: db})
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close(ctx)
	defer src.client.Database(db).Drop(ctx)

	_, err = src.employees.InsertMany(ctx, []any{
		bson.M{"id": "1", "first_name": "Ada", "status": "ACTIVE"},
		bson.M{"id": "2", "manager_id": "1", "first_name": "Ben", "status": "ACTIVE"},
	})
	if err != nil {
		t.Fatal(err)
	}
	_, err = src.projects.InsertOne(ctx, bson.M{"id": "p1", "name": "Harbor", "crews": bson.A{}})
	if err != nil {
		t.Fatal(err)
	}

	r, err := src.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(r.Employees) != 2 || r.Employees[1].ManagerID != "1" || len(r.Projects) != 1 {
		t.Errorf("roster = %+v", r)
	}
	if src.Name() != "mongo:"+db+"/employees" {
		t.Errorf("Name = %q", src.Name())
	}
}
