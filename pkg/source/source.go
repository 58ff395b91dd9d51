// Package source defines where rosters come from.
//
// A [Source] returns one complete snapshot of the HR data per call; the
// pipeline never merges partial updates. Implementations live in
// subpackages:
//
//   - [github.com/matzehuels/orgtower/pkg/source/file]: a JSON file on disk, with change watching
//   - [github.com/matzehuels/orgtower/pkg/source/httpapi]: the HRIS REST API
//   - [github.com/matzehuels/orgtower/pkg/source/mongo]: a MongoDB collection
//
// Every implementation validates what it loads, so a roster returned without
// error is safe to hand to the tree builder.
package source

import (
	"context"
	"strings"

	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/hris"
)

// Source loads roster snapshots.
type Source interface {
	// Name identifies the source in logs and cache keys.
	Name() string
	// Load fetches a complete, validated roster.
	Load(ctx context.Context) (*hris.Roster, error)
}

// Static serves a fixed roster. It is used for stdin input and tests.
type Static struct {
	Label  string
	Roster *hris.Roster
}

// Name returns "static:" followed by the label.
func (s Static) Name() string { return "static:" + s.Label }

// Load returns a copy of the roster after validating it.
func (s Static) Load(context.Context) (*hris.Roster, error) {
	if s.Roster == nil {
		return &hris.Roster{}, nil
	}
	if err := s.Roster.Validate(); err != nil {
		return nil, err
	}
	r := *s.Roster
	return &r, nil
}

// Kinds of source accepted by [Kind].
const (
	KindFile  = "file"
	KindHTTP  = "http"
	KindMongo = "mongo"
)

// Kind infers the source kind from a location: http(s) URLs are the HRIS
// API, mongodb URIs are a database, anything else is a file path.
func Kind(location string) (string, error) {
	switch {
	case location == "":
		return "", errors.New(errors.ErrCodeInvalidConfig, "source location is required")
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return KindHTTP, nil
	case strings.HasPrefix(location, "mongodb://"), strings.HasPrefix(location, "mongodb+srv://"):
		return KindMongo, nil
	default:
		return KindFile, nil
	}
}
