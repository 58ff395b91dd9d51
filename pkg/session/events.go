package session

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/matzehuels/orgtower/pkg/canvas"
	"github.com/matzehuels/orgtower/pkg/errors"
)

// Event types accepted by [Apply].
const (
	EventPointerDown    = "pointer_down"
	EventPointerMove    = "pointer_move"
	EventPointerUp      = "pointer_up"
	EventPointerLeave   = "pointer_leave"
	EventWheel          = "wheel"
	EventZoomIn         = "zoom_in"
	EventZoomOut        = "zoom_out"
	EventReset          = "reset"
	EventSelect         = "select"
	EventClearSelection = "clear_selection"
)

// Event is one input forwarded by a remote viewer. Coordinates are screen
// coordinates of the viewer's viewport.
type Event struct {
	Type   string  `json:"type"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	DeltaY float64 `json:"delta_y,omitempty"`
	ID     string  `json:"id,omitempty"`
}

// Validate checks the event type and that select names an employee.
func (e Event) Validate() error {
	err := validation.ValidateStruct(&e,
		validation.Field(&e.Type, validation.Required, validation.In(
			EventPointerDown, EventPointerMove, EventPointerUp, EventPointerLeave,
			EventWheel, EventZoomIn, EventZoomOut, EventReset, EventSelect, EventClearSelection,
		)),
		validation.Field(&e.ID, validation.When(e.Type == EventSelect, validation.Required)),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidEvent, err, "invalid %q event", e.Type)
	}
	return nil
}

// Apply feeds e to the controller. Selecting an employee that is not on the
// chart returns an EMPLOYEE_NOT_FOUND error and leaves the view unchanged.
func Apply(c *canvas.Controller, e Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	p := canvas.Point{X: e.X, Y: e.Y}
	switch e.Type {
	case EventPointerDown:
		c.PointerDown(p)
	case EventPointerMove:
		c.PointerMove(p)
	case EventPointerUp:
		c.PointerUp()
	case EventPointerLeave:
		c.PointerLeave()
	case EventWheel:
		c.Wheel(e.DeltaY, p)
	case EventZoomIn:
		c.ZoomIn()
	case EventZoomOut:
		c.ZoomOut()
	case EventReset:
		c.Reset()
	case EventSelect:
		if !c.Select(e.ID) {
			return errors.New(errors.ErrCodeEmployeeNotFound, "employee %q is not on the chart", e.ID)
		}
	case EventClearSelection:
		c.ClearSelection()
	}
	return nil
}
