package davclient

import "errors"

// Error taxonomy of the engine. Callers branch with errors.Is; the wrapped
// message names the identifier concerned.
var (
	// ErrNotFound marks a named collection or identified resource that
	// does not exist on the server.
	ErrNotFound = errors.New("davbox: not found")

	// ErrConflict marks a write rejected by its precondition: the target
	// changed since it was read, or a created name already exists.
	ErrConflict = errors.New("davbox: conflict")

	// ErrInvalidInput marks missing or unusable caller input.
	ErrInvalidInput = errors.New("davbox: invalid input")

	// ErrMalformed marks a server body that does not match the expected
	// grammar.
	ErrMalformed = errors.New("davbox: malformed data")
)
