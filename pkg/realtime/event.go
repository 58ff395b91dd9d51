package realtime

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/orgtower/pkg/errors"
)

// Event types.
const (
	EventRosterUpdated = "roster.updated"
	EventRosterFailed  = "roster.failed"
)

// Wildcard subscribes a handler to every event type.
const Wildcard = "*"

// Event is one message on the wire.
type Event struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Time    time.Time       `json:"time"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEvent creates an event with a fresh ID and payload encoded as JSON.
func NewEvent(typ string, payload any) (Event, error) {
	ev := Event{ID: uuid.NewString(), Type: typ, Time: time.Now().UTC()}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Event{}, errors.Wrap(errors.ErrCodeInternal, err, "encode %s payload", typ)
		}
		ev.Payload = data
	}
	return ev, nil
}

// Decode unmarshals the payload into v.
func (e Event) Decode(v any) error {
	if len(e.Payload) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "event %s has no payload", e.ID)
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s payload", e.Type)
	}
	return nil
}

// RosterUpdate is the payload of [EventRosterUpdated].
type RosterUpdate struct {
	Source     string    `json:"source"`
	RosterHash string    `json:"roster_hash"`
	Employees  int       `json:"employees"`
	Active     int       `json:"active"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// RosterFailure is the payload of [EventRosterFailed].
type RosterFailure struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}
