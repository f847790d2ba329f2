package davclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmaehler/davbox/vobject"
)

// MutationState tracks where a read-modify-write cycle stands.
type MutationState int

const (
	// StateLocated means the resource has been read but not yet changed.
	StateLocated MutationState = iota
	// StateMutated means edits have been applied to the local copy.
	StateMutated
	// StateWritten means the server accepted the rewrite.
	StateWritten
	// StateConflict means the server rejected the rewrite because the
	// resource changed after it was read. Terminal; start over by
	// locating the resource again.
	StateConflict
)

func (s MutationState) String() string {
	switch s {
	case StateLocated:
		return "located"
	case StateMutated:
		return "mutated"
	case StateWritten:
		return "written"
	case StateConflict:
		return "conflict"
	default:
		return fmt.Sprintf("MutationState(%d)", int(s))
	}
}

// Mutation is one read-modify-write cycle over a located resource. Edits
// rewrite only the named fields; every other byte of the resource is
// carried through verbatim, including fields written by other clients
// that this program does not understand.
type Mutation struct {
	c           *Client
	res         LocatedResource
	contentType string
	rec         *vobject.Record
	comp        *vobject.Component
	state       MutationState
}

// NewMutation parses the located resource's body and positions the
// mutation at its primary component (the VEVENT/VTODO inside the
// calendar wrapper, or the VCARD itself).
func (c *Client) NewMutation(res LocatedResource, contentType string) (*Mutation, error) {
	rec, err := vobject.Parse(string(res.RawBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	comp, ok := rec.Primary()
	if !ok {
		return nil, fmt.Errorf("%w: resource %s has no primary component", ErrMalformed, res.Href)
	}
	return &Mutation{
		c:           c,
		res:         res,
		contentType: contentType,
		rec:         rec,
		comp:        comp,
		state:       StateLocated,
	}, nil
}

// State reports the cycle's current position.
func (m *Mutation) State() MutationState { return m.state }

// Component exposes the primary component for reads between Apply and
// Commit.
func (m *Mutation) Component() *vobject.Component { return m.comp }

// Apply upserts the given edits into the primary component. Edits with
// Set false are ignored, so callers can pass a full change struct and
// let absent fields fall through untouched.
func (m *Mutation) Apply(edits ...vobject.FieldEdit) error {
	switch m.state {
	case StateLocated, StateMutated:
	default:
		return fmt.Errorf("%w: cannot apply edits to a %s mutation", ErrInvalidInput, m.state)
	}
	m.comp.ApplyEdits(edits...)
	m.state = StateMutated
	return nil
}

// Commit writes the mutated body back under the etag read at locate
// time. On a precondition failure the mutation moves to StateConflict
// and is not retried; the caller decides whether to re-locate and start
// a fresh cycle.
func (m *Mutation) Commit(ctx context.Context) (string, error) {
	if m.state != StateMutated {
		return "", fmt.Errorf("%w: cannot commit a %s mutation", ErrInvalidInput, m.state)
	}
	etag, err := m.c.UpdateResource(ctx, m.res.Href, m.res.ETag.OrElse(""), m.contentType, []byte(m.rec.String()))
	if err != nil {
		if errors.Is(err, ErrConflict) {
			m.state = StateConflict
		}
		return "", err
	}
	m.state = StateWritten
	return etag, nil
}
